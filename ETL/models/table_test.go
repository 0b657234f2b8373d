package models

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCell_EmptyIsNull(t *testing.T) {
	assert.False(t, Cell("").Valid)
	assert.False(t, Cell("   ").Valid)
	assert.Equal(t, sql.NullString{String: " ANTIOQUIA", Valid: true}, Cell(" ANTIOQUIA"))
}

func TestNormalizeColumnName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  COD_DANE ", "COD_DANE"},
		{"\ufeffCOD_DANE", "COD_DANE"},
		{"AN\u0303O", "AÑO"}, // N + combining tilde
		{"\tMES\n", "MES"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeColumnName(tt.in), "input %q", tt.in)
	}
}

func TestCanonicalCode(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"05001", "5001"},
		{"5001.0", "5001"},
		{" 1 ", "1"},
		{"A009", "A009"},
		{"1.5", "1.5"},
		{"NaN", "NaN"},
		{"Inf", "Inf"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanonicalCode(tt.in), "input %q", tt.in)
	}
}

func TestTable_AppendRowPadsShortRows(t *testing.T) {
	tbl := NewTable("A", "B", "C")
	tbl.AppendRow([]sql.NullString{Text("1")})

	require.Equal(t, 1, tbl.Len())
	assert.Len(t, tbl.Rows[0], 3)
	assert.False(t, tbl.Rows[0][2].Valid)
}

func TestTable_ColumnAndRecords(t *testing.T) {
	tbl := NewTable("A", "B")
	tbl.AppendRow([]sql.NullString{Text("x"), {}})
	tbl.AppendRow([]sql.NullString{Text("y"), Text("2")})

	col, ok := tbl.Column("B")
	require.True(t, ok)
	assert.False(t, col[0].Valid)
	assert.Equal(t, "2", col[1].String)

	_, ok = tbl.Column("Z")
	assert.False(t, ok)

	assert.Equal(t, [][]string{{"A", "B"}, {"x", ""}, {"y", "2"}}, tbl.Records())
}

func TestTable_NormalizeColumnsKeepsRows(t *testing.T) {
	tbl := NewTable(" COD_DANE ", "MES ")
	tbl.AppendRow([]sql.NullString{Text("5001"), Text("1")})

	norm := tbl.NormalizeColumns()
	assert.Equal(t, []string{"COD_DANE", "MES"}, norm.Columns)
	assert.Equal(t, tbl.Rows, norm.Rows)
	assert.Equal(t, " COD_DANE ", tbl.Columns[0], "исходная таблица не меняется")
}

func TestSchemaError_Message(t *testing.T) {
	err := &SchemaError{Table: "divipola", Column: ColCodDane}
	assert.Contains(t, err.Error(), "divipola")
	assert.Contains(t, err.Error(), ColCodDane)
}
