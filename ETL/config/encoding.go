package config

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// LookupEncoding возвращает кодировку CSV по имени из конфигурации.
// Для utf-8 (и пустого имени) возвращается nil: перекодирование не нужно.
func LookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return nil, nil
	case "latin-1", "latin1", "iso-8859-1":
		return charmap.ISO8859_1, nil
	case "cp1252", "windows-1252":
		return charmap.Windows1252, nil
	default:
		return nil, fmt.Errorf("неподдерживаемая кодировка: %s", name)
	}
}
