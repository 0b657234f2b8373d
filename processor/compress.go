package processor

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/golang/snappy"
)

// CompressedExt - расширение файлов снимка, сжатых Snappy (framing format)
const CompressedExt = ".sz"

// IsCompressedPath проверяет, что файл сжат Snappy
func IsCompressedPath(path string) bool {
	return strings.EqualFold(filepath.Ext(path), CompressedExt)
}

// BaseExt возвращает расширение файла без суффикса сжатия (".csv.sz" -> ".csv")
func BaseExt(path string) string {
	if IsCompressedPath(path) {
		path = path[:len(path)-len(CompressedExt)]
	}
	return strings.ToLower(filepath.Ext(path))
}

// NewCompressWriter оборачивает w в потоковый Snappy-писатель.
// Close обязателен: он сбрасывает последний блок.
func NewCompressWriter(w io.Writer) io.WriteCloser {
	return snappy.NewBufferedWriter(w)
}

// NewDecompressReader оборачивает r в потоковый Snappy-читатель
func NewDecompressReader(r io.Reader) io.Reader {
	return snappy.NewReader(r)
}
