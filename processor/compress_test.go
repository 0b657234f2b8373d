package processor

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressRoundTrip(t *testing.T) {
	payload := strings.Repeat("COD_DANE;AÑO;MES\n5001;2019;1\n", 500)

	var buf bytes.Buffer
	w := NewCompressWriter(&buf)
	_, err := io.WriteString(w, payload)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.Less(t, buf.Len(), len(payload))

	out, err := io.ReadAll(NewDecompressReader(&buf))
	require.NoError(t, err)
	assert.Equal(t, payload, string(out))
}

func TestDecompressRejectsGarbage(t *testing.T) {
	_, err := io.ReadAll(NewDecompressReader(strings.NewReader("not snappy")))
	assert.Error(t, err)
}

func TestPathHelpers(t *testing.T) {
	assert.True(t, IsCompressedPath("base.csv.sz"))
	assert.True(t, IsCompressedPath("BASE.CSV.SZ"))
	assert.False(t, IsCompressedPath("base.csv"))

	assert.Equal(t, ".csv", BaseExt("out/base.csv.sz"))
	assert.Equal(t, ".xlsx", BaseExt("base.XLSX"))
	assert.Equal(t, "", BaseExt("base.sz"))
}
