// Package aggregate содержит общие агрегаты, из которых собираются все представления дашборда:
// подсчет по группам, топ и антитоп, разбиение на интервалы, перекодировка категорий.
package aggregate

import (
	"database/sql"
	"sort"
	"strconv"
	"strings"

	"github.com/LilVoxy/coursework_mortality/ETL/models"
)

// SnapshotTable - имя таблицы в ошибках схемы
const SnapshotTable = "snapshot"

// CountRow - одна группа и число строк в ней
type CountRow struct {
	Keys  []sql.NullString
	Count int
}

// Key возвращает первый ключ группы
func (r CountRow) Key() sql.NullString {
	if len(r.Keys) == 0 {
		return sql.NullString{}
	}
	return r.Keys[0]
}

// HasNullKey проверяет, что хотя бы один ключ группы пуст
func (r CountRow) HasNullKey() bool {
	for _, k := range r.Keys {
		if !k.Valid {
			return true
		}
	}
	return false
}

// Counts - результат GroupCount. Группы идут в порядке первого появления.
type Counts struct {
	Columns []string
	Rows    []CountRow
}

// Len возвращает количество групп
func (c Counts) Len() int {
	return len(c.Rows)
}

// Total возвращает сумму по всем группам (равна числу строк исходной таблицы)
func (c Counts) Total() int {
	total := 0
	for _, r := range c.Rows {
		total += r.Count
	}
	return total
}

// Max возвращает группу с наибольшим числом строк без учета пустых ключей.
// При равенстве побеждает группа, встретившаяся раньше.
func (c Counts) Max() (CountRow, bool) {
	return c.pick(func(a, b int) bool { return a > b })
}

// Min возвращает группу с наименьшим числом строк без учета пустых ключей
func (c Counts) Min() (CountRow, bool) {
	return c.pick(func(a, b int) bool { return a < b })
}

func (c Counts) pick(better func(a, b int) bool) (CountRow, bool) {
	var best CountRow
	found := false
	for _, r := range c.Rows {
		if r.HasNullKey() {
			continue
		}
		if !found || better(r.Count, best.Count) {
			best, found = r, true
		}
	}
	return best, found
}

// clone возвращает копию со своим срезом строк
func (c Counts) clone() Counts {
	return Counts{
		Columns: c.Columns,
		Rows:    append([]CountRow(nil), c.Rows...),
	}
}

// SortByKeys возвращает копию, упорядоченную по ключам; пустые ключи идут последними
func (c Counts) SortByKeys() Counts {
	sorted := c.clone()
	sort.SliceStable(sorted.Rows, func(i, j int) bool {
		a, b := sorted.Rows[i].Keys, sorted.Rows[j].Keys
		for k := range a {
			if cmp := compareNull(a[k], b[k]); cmp != 0 {
				return cmp < 0
			}
		}
		return false
	})
	return sorted
}

func compareNull(a, b sql.NullString) int {
	switch {
	case a.Valid && b.Valid:
		return strings.Compare(a.String, b.String)
	case a.Valid:
		return -1
	case b.Valid:
		return 1
	default:
		return 0
	}
}

// GroupCount считает строки для каждой комбинации значений columns.
// Пустое значение образует отдельную группу, строки не теряются.
func GroupCount(table models.Table, columns ...string) (Counts, error) {
	indexes, err := columnIndexes(table, columns)
	if err != nil {
		return Counts{}, err
	}

	counts := Counts{Columns: append([]string(nil), columns...)}
	positions := make(map[string]int)
	var key strings.Builder

	for _, row := range table.Rows {
		key.Reset()
		keys := make([]sql.NullString, len(indexes))
		for i, idx := range indexes {
			keys[i] = row[idx]
			writeGroupKey(&key, row[idx])
		}

		if pos, ok := positions[key.String()]; ok {
			counts.Rows[pos].Count++
			continue
		}
		positions[key.String()] = len(counts.Rows)
		counts.Rows = append(counts.Rows, CountRow{Keys: keys, Count: 1})
	}

	return counts, nil
}

// writeGroupKey кодирует значение с длиной, чтобы составные ключи не совпадали случайно
func writeGroupKey(b *strings.Builder, v sql.NullString) {
	if !v.Valid {
		b.WriteString("N;")
		return
	}
	b.WriteString("V")
	b.WriteString(strconv.Itoa(len(v.String)))
	b.WriteByte(':')
	b.WriteString(v.String)
}

func columnIndexes(table models.Table, columns []string) ([]int, error) {
	indexes := make([]int, len(columns))
	for i, c := range columns {
		idx := table.ColumnIndex(c)
		if idx < 0 {
			return nil, &models.SchemaError{Table: SnapshotTable, Column: c}
		}
		indexes[i] = idx
	}
	return indexes, nil
}

// Distinct возвращает отсортированные различные непустые значения колонки
func Distinct(table models.Table, column string) ([]string, error) {
	values, ok := table.Column(column)
	if !ok {
		return nil, &models.SchemaError{Table: SnapshotTable, Column: column}
	}

	seen := make(map[string]struct{})
	var distinct []string
	for _, v := range values {
		if !v.Valid {
			continue
		}
		if _, dup := seen[v.String]; dup {
			continue
		}
		seen[v.String] = struct{}{}
		distinct = append(distinct, v.String)
	}
	sort.Strings(distinct)
	return distinct, nil
}

// CountDistinct возвращает число различных непустых значений колонки
func CountDistinct(table models.Table, column string) (int, error) {
	distinct, err := Distinct(table, column)
	if err != nil {
		return 0, err
	}
	return len(distinct), nil
}

// Where возвращает строки, значение колонки в которых удовлетворяет условию
func Where(table models.Table, column string, keep func(sql.NullString) bool) (models.Table, error) {
	idx := table.ColumnIndex(column)
	if idx < 0 {
		return models.Table{}, &models.SchemaError{Table: SnapshotTable, Column: column}
	}

	rows := make([][]sql.NullString, 0, len(table.Rows))
	for _, row := range table.Rows {
		if keep(row[idx]) {
			rows = append(rows, row)
		}
	}
	return table.WithRows(rows), nil
}

// NotNull - условие для Where: значение не пустое
func NotNull(v sql.NullString) bool {
	return v.Valid
}
