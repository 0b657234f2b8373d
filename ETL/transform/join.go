package transform

import (
	"database/sql"

	"github.com/LilVoxy/coursework_mortality/ETL/models"
)

// CollisionSuffix добавляется к колонке справочника, имя которой уже занято в левой таблице
const CollisionSuffix = "_y"

// JoinSpec описывает левое соединение таблицы фактов со справочником
type JoinSpec struct {
	LeftName  string // имя левой таблицы для сообщений об ошибках
	RightName string // имя справочника
	LeftKey   string
	RightKey  string

	// Колонки справочника, добавляемые к результату (nil - все колонки).
	// Отсутствующие в справочнике колонки пропускаются.
	RightColumns []string
}

// JoinStats содержит статистику соединения
type JoinStats struct {
	Matched        int
	Unmatched      int      // строки без пары, включая строки с пустым ключом
	DuplicateKeys  int      // повторные ключи справочника (берется первая строка)
	SkippedColumns []string // запрошенные колонки, которых нет в справочнике
}

// LeftJoin выполняет левое соединение left и right по ключам spec.
// Результат содержит ровно столько строк, сколько left, в том же порядке.
// Ключи сравниваются после обрезки пробелов и приведения числовых кодов к каноническому виду.
func LeftJoin(left, right models.Table, spec JoinSpec) (models.Table, JoinStats, error) {
	var stats JoinStats

	leftKey := left.ColumnIndex(spec.LeftKey)
	if leftKey < 0 {
		return models.Table{}, stats, &models.SchemaError{Table: spec.LeftName, Column: spec.LeftKey}
	}
	rightKey := right.ColumnIndex(spec.RightKey)
	if rightKey < 0 {
		return models.Table{}, stats, &models.SchemaError{Table: spec.RightName, Column: spec.RightKey}
	}

	requested := spec.RightColumns
	if requested == nil {
		requested = right.Columns
	}

	// Колонки справочника, попадающие в результат
	var rightIdx []int
	columns := append([]string(nil), left.Columns...)
	for _, name := range requested {
		idx := right.ColumnIndex(name)
		if idx < 0 {
			stats.SkippedColumns = append(stats.SkippedColumns, name)
			continue
		}
		// Общий ключ с одинаковым именем попадает в результат один раз
		if idx == rightKey && spec.RightKey == spec.LeftKey {
			continue
		}
		if left.HasColumn(name) {
			name += CollisionSuffix
		}
		columns = append(columns, name)
		rightIdx = append(rightIdx, idx)
	}

	// Индекс справочника: первая строка с данным ключом
	index := make(map[string]int, len(right.Rows))
	for i, row := range right.Rows {
		key := row[rightKey]
		if !key.Valid {
			continue
		}
		code := models.CanonicalCode(key.String)
		if _, exists := index[code]; exists {
			stats.DuplicateKeys++
			continue
		}
		index[code] = i
	}

	result := models.NewTable(columns...)
	result.Rows = make([][]sql.NullString, len(left.Rows))
	for r, row := range left.Rows {
		out := make([]sql.NullString, len(columns))
		copy(out, row)

		key := row[leftKey]
		match, found := -1, false
		if key.Valid {
			match, found = index[models.CanonicalCode(key.String)]
		}
		if found {
			stats.Matched++
			for i, idx := range rightIdx {
				out[len(left.Columns)+i] = right.Rows[match][idx]
			}
		} else {
			stats.Unmatched++
		}
		result.Rows[r] = out
	}

	return result, stats, nil
}
