package models

import (
	"database/sql"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Table представляет таблицу с упорядоченным списком колонок.
// Каждая строка содержит ровно len(Columns) ячеек, пустые значения хранятся как NULL.
type Table struct {
	Columns []string
	Rows    [][]sql.NullString
}

// NewTable создает пустую таблицу с заданными колонками
func NewTable(columns ...string) Table {
	return Table{
		Columns: append([]string(nil), columns...),
		Rows:    make([][]sql.NullString, 0),
	}
}

// Len возвращает количество строк
func (t Table) Len() int {
	return len(t.Rows)
}

// ColumnIndex возвращает индекс колонки или -1
func (t Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumn проверяет наличие колонки
func (t Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// AppendRow добавляет строку, дополняя или обрезая ее до количества колонок
func (t *Table) AppendRow(row []sql.NullString) {
	if len(row) != len(t.Columns) {
		fixed := make([]sql.NullString, len(t.Columns))
		copy(fixed, row)
		row = fixed
	}
	t.Rows = append(t.Rows, row)
}

// Column возвращает значения колонки по имени
func (t Table) Column(name string) ([]sql.NullString, bool) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, false
	}
	values := make([]sql.NullString, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row[idx]
	}
	return values, true
}

// WithRows возвращает таблицу с теми же колонками и другим набором строк
func (t Table) WithRows(rows [][]sql.NullString) Table {
	return Table{Columns: t.Columns, Rows: rows}
}

// NormalizeColumns возвращает копию таблицы с нормализованными заголовками
func (t Table) NormalizeColumns() Table {
	columns := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		columns[i] = NormalizeColumnName(c)
	}
	return Table{Columns: columns, Rows: t.Rows}
}

// Records возвращает строки таблицы в виде строк (NULL -> пустая строка), первая запись - заголовок
func (t Table) Records() [][]string {
	records := make([][]string, 0, len(t.Rows)+1)
	records = append(records, append([]string(nil), t.Columns...))
	for _, row := range t.Rows {
		record := make([]string, len(row))
		for i, v := range row {
			if v.Valid {
				record[i] = v.String
			}
		}
		records = append(records, record)
	}
	return records
}

// NormalizeColumnName убирает пробелы по краям, BOM и приводит заголовок к форме NFC
func NormalizeColumnName(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	return norm.NFC.String(strings.TrimSpace(name))
}

// Cell создает ячейку из сырого значения: пустая строка считается NULL
func Cell(raw string) sql.NullString {
	if strings.TrimSpace(raw) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: raw, Valid: true}
}

// Text создает непустую ячейку
func Text(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

// CanonicalCode приводит числовой код к каноническому виду ("05001" и "5001.0" -> "5001").
// Нечисловые коды возвращаются без пробелов по краям.
func CanonicalCode(raw string) string {
	s := strings.TrimSpace(raw)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return s
	}
	return strconv.FormatInt(int64(f), 10)
}
