package transform

import (
	"database/sql"

	"github.com/LilVoxy/coursework_mortality/ETL/models"
)

// Project оставляет колонки desired, присутствующие в таблице, в порядке desired.
// Возвращает также список колонок desired, которых в таблице не оказалось.
func Project(table models.Table, desired []string) (models.Table, []string) {
	var (
		columns []string
		indexes []int
		missing []string
	)
	for _, name := range desired {
		idx := table.ColumnIndex(name)
		if idx < 0 {
			missing = append(missing, name)
			continue
		}
		columns = append(columns, name)
		indexes = append(indexes, idx)
	}

	projected := models.NewTable(columns...)
	projected.Rows = make([][]sql.NullString, len(table.Rows))
	for r, row := range table.Rows {
		out := make([]sql.NullString, len(indexes))
		for i, idx := range indexes {
			out[i] = row[idx]
		}
		projected.Rows[r] = out
	}
	return projected, missing
}
