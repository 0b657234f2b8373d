package dashboard

import (
	"database/sql"
	"strings"

	"github.com/LilVoxy/coursework_mortality/ETL/models"
)

// Filter - выбор пользователя в выпадающих списках дашборда. Пустое поле не фильтрует.
type Filter struct {
	Department string `json:"departamento,omitempty"`
	Chapter    string `json:"causa,omitempty"`
}

// Constraint - условие равенства значения колонки
type Constraint struct {
	Column string
	Value  string
}

// Constraints возвращает непустые условия фильтра
func (f Filter) Constraints() []Constraint {
	var constraints []Constraint
	if v := strings.TrimSpace(f.Department); v != "" {
		constraints = append(constraints, Constraint{Column: models.ColDepartment, Value: v})
	}
	if v := strings.TrimSpace(f.Chapter); v != "" {
		constraints = append(constraints, Constraint{Column: models.ColChapter, Value: v})
	}
	return constraints
}

// IsEmpty проверяет, что фильтр ничего не ограничивает
func (f Filter) IsEmpty() bool {
	return len(f.Constraints()) == 0
}

// Apply оставляет строки, удовлетворяющие всем условиям фильтра.
// Условие на отсутствующую колонку не пропускает ни одной строки.
func (f Filter) Apply(table models.Table) models.Table {
	constraints := f.Constraints()
	if len(constraints) == 0 {
		return table
	}

	indexes := make([]int, len(constraints))
	for i, c := range constraints {
		indexes[i] = table.ColumnIndex(c.Column)
		if indexes[i] < 0 {
			return table.WithRows([][]sql.NullString{})
		}
	}

	rows := make([][]sql.NullString, 0)
	for _, row := range table.Rows {
		keep := true
		for i, c := range constraints {
			cell := row[indexes[i]]
			if !cell.Valid || strings.TrimSpace(cell.String) != c.Value {
				keep = false
				break
			}
		}
		if keep {
			rows = append(rows, row)
		}
	}
	return table.WithRows(rows)
}
