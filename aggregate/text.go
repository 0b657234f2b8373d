package aggregate

import (
	"database/sql"
	"strings"

	"golang.org/x/text/cases"
)

// Matcher ищет подстроки без учета регистра (Unicode case folding).
// Не безопасен для использования из нескольких горутин.
type Matcher struct {
	caser   cases.Caser
	needles []string
}

// NewMatcher создает Matcher; пустые подстроки игнорируются
func NewMatcher(needles ...string) *Matcher {
	m := &Matcher{caser: cases.Fold()}
	for _, n := range needles {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		m.needles = append(m.needles, m.caser.String(n))
	}
	return m
}

// Match проверяет, что значение содержит хотя бы одну из подстрок. NULL не совпадает ни с чем.
func (m *Matcher) Match(v sql.NullString) bool {
	if !v.Valid || len(m.needles) == 0 {
		return false
	}
	folded := m.caser.String(v.String)
	for _, n := range m.needles {
		if strings.Contains(folded, n) {
			return true
		}
	}
	return false
}

// TextContainsAny проверяет вхождение любой из подстрок без учета регистра
func TextContainsAny(v sql.NullString, needles []string) bool {
	return NewMatcher(needles...).Match(v)
}
