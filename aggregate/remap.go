package aggregate

import (
	"database/sql"

	"github.com/LilVoxy/coursework_mortality/ETL/models"
)

// Mapping - таблица перекодировки: код -> метка
type Mapping map[string]string

// SexLabels - коды пола DANE
var SexLabels = Mapping{
	"1": "Hombre",
	"2": "Mujer",
	"3": "Sin identificar",
}

// RemapCategory перекодирует значение. Незнакомые значения возвращаются без изменений,
// NULL остается NULL. Числовые коды сравниваются в каноническом виде ("1.0" == "1").
func RemapCategory(v sql.NullString, mapping Mapping) sql.NullString {
	if !v.Valid {
		return v
	}
	if label, ok := mapping[v.String]; ok {
		return models.Text(label)
	}
	if label, ok := mapping[models.CanonicalCode(v.String)]; ok {
		return models.Text(label)
	}
	return v
}

// RemapColumn возвращает копию таблицы с перекодированной колонкой
func RemapColumn(table models.Table, column string, mapping Mapping) (models.Table, error) {
	idx := table.ColumnIndex(column)
	if idx < 0 {
		return models.Table{}, &models.SchemaError{Table: SnapshotTable, Column: column}
	}

	rows := make([][]sql.NullString, len(table.Rows))
	for r, row := range table.Rows {
		out := append([]sql.NullString(nil), row...)
		out[idx] = RemapCategory(row[idx], mapping)
		rows[r] = out
	}
	return table.WithRows(rows), nil
}
