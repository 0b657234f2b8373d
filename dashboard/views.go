package dashboard

import (
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/LilVoxy/coursework_mortality/ETL/models"
	"github.com/LilVoxy/coursework_mortality/aggregate"
)

// Status - состояние результата представления
type Status string

const (
	StatusOK          Status = "ok"
	StatusEmpty       Status = "empty"
	StatusUnavailable Status = "unavailable"
)

// Сообщения для пользователя дашборда
const (
	MessageNoData        = "No hay datos disponibles para mostrar."
	MessageNoHomicides   = "No hay datos disponibles para mostrar homicidios."
	MessageUnavailable   = "Vista no disponible: faltan columnas %s."
	MessageUnknownView   = "Vista desconocida: %s."
	ColumnTotalDeaths    = "Total Muertes"
	ColumnDate           = "FECHA"
	ColumnMunicipality   = "Municipio"
	ColumnDeaths         = "Muertes"
	ColumnCause          = "Causa"
	ColumnQuantity       = "Cantidad"
	ColumnAgeGroup       = "Grupo de Edad"
	ColumnNumberOfDeaths = "Número de Muertes"
)

// ViewResult - таблица, готовая для отрисовки графика или таблицы
type ViewResult struct {
	View    View     `json:"view"`
	Status  Status   `json:"status"`
	Message string   `json:"message,omitempty"`
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

func okResult(view View, columns []string, rows [][]any) ViewResult {
	if len(rows) == 0 {
		return emptyResult(view, columns, MessageNoData)
	}
	return ViewResult{View: view, Status: StatusOK, Columns: columns, Rows: rows}
}

func emptyResult(view View, columns []string, message string) ViewResult {
	return ViewResult{View: view, Status: StatusEmpty, Message: message, Columns: columns, Rows: [][]any{}}
}

func unavailableResult(view View, missing []string) ViewResult {
	return ViewResult{
		View:    view,
		Status:  StatusUnavailable,
		Message: fmt.Sprintf(MessageUnavailable, strings.Join(missing, ", ")),
		Columns: []string{},
		Rows:    [][]any{},
	}
}

// cellText возвращает значение ключа или метку для пустого значения
func cellText(v sql.NullString, nullLabel string) string {
	if !v.Valid {
		return nullLabel
	}
	return v.String
}

// renderMap - число смертей по департаментам с координатами.
// Департаменты без координат и пустые отбрасываются.
func renderMap(table models.Table, coordinates *CoordinateTable) (ViewResult, error) {
	columns := []string{models.ColDepartment, ColumnTotalDeaths, "LAT", "LON"}

	counts, err := aggregate.GroupCount(table, models.ColDepartment)
	if err != nil {
		return ViewResult{}, err
	}

	rows := make([][]any, 0, counts.Len())
	for _, r := range counts.SortByKeys().Rows {
		if !r.Key().Valid {
			continue
		}
		coord, ok := coordinates.Lookup(r.Key().String)
		if !ok {
			continue
		}
		rows = append(rows, []any{r.Key().String, r.Count, coord.Lat, coord.Lon})
	}
	return okResult(ViewMap, columns, rows), nil
}

// renderMonth - число смертей по месяцам (первое число месяца), по возрастанию даты.
// Строки с некорректным годом или месяцем не учитываются.
func renderMonth(table models.Table) (ViewResult, error) {
	columns := []string{ColumnDate, ColumnTotalDeaths}

	counts, err := aggregate.GroupCount(table, models.ColYear, models.ColMonth)
	if err != nil {
		return ViewResult{}, err
	}

	perMonth := make(map[time.Time]int)
	for _, r := range counts.Rows {
		date, ok := firstOfMonth(r.Keys[0], r.Keys[1])
		if !ok {
			continue
		}
		perMonth[date] += r.Count
	}

	dates := make([]time.Time, 0, len(perMonth))
	for d := range perMonth {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	rows := make([][]any, len(dates))
	for i, d := range dates {
		rows[i] = []any{d.Format(time.DateOnly), perMonth[d]}
	}
	return okResult(ViewMonth, columns, rows), nil
}

func firstOfMonth(year, month sql.NullString) (time.Time, bool) {
	if !year.Valid || !month.Valid {
		return time.Time{}, false
	}
	y, err := strconv.Atoi(models.CanonicalCode(year.String))
	if err != nil {
		return time.Time{}, false
	}
	m, err := strconv.Atoi(models.CanonicalCode(month.String))
	if err != nil || m < 1 || m > 12 {
		return time.Time{}, false
	}
	return time.Date(y, time.Month(m), 1, 0, 0, 0, 0, time.UTC), true
}

// renderViolent - муниципалитеты с наибольшим числом насильственных смертей
func renderViolent(table models.Table, needles []string, n int) (ViewResult, error) {
	columns := []string{ColumnMunicipality, ColumnDeaths}

	violent, err := aggregate.Where(table, models.ColMannerDeath, aggregate.NewMatcher(needles...).Match)
	if err != nil {
		return ViewResult{}, err
	}
	violent, err = aggregate.Where(violent, models.ColMunicipality, aggregate.NotNull)
	if err != nil {
		return ViewResult{}, err
	}
	if violent.Len() == 0 {
		return emptyResult(ViewViolent, columns, MessageNoHomicides), nil
	}

	counts, err := aggregate.GroupCount(violent, models.ColMunicipality)
	if err != nil {
		return ViewResult{}, err
	}
	return okResult(ViewViolent, columns, countRows(aggregate.TopN(counts, n), "")), nil
}

// renderLow - муниципалитеты с наименьшим числом смертей (все причины)
func renderLow(table models.Table, n int) (ViewResult, error) {
	columns := []string{ColumnMunicipality, ColumnDeaths}

	known, err := aggregate.Where(table, models.ColMunicipality, aggregate.NotNull)
	if err != nil {
		return ViewResult{}, err
	}
	counts, err := aggregate.GroupCount(known, models.ColMunicipality)
	if err != nil {
		return ViewResult{}, err
	}
	return okResult(ViewLow, columns, countRows(aggregate.BottomN(counts, n), "")), nil
}

// renderCauses - число смертей по главам CIE-10 по убыванию; пустая глава - unclassified
func renderCauses(table models.Table) (ViewResult, error) {
	columns := []string{ColumnCause, ColumnQuantity}

	counts, err := aggregate.GroupCount(table, models.ColChapter)
	if err != nil {
		return ViewResult{}, err
	}
	return okResult(ViewCauses, columns, countRows(aggregate.SortDescending(counts), aggregate.Unclassified)), nil
}

// renderAge - гистограмма по возрастным интервалам в порядке интервалов
func renderAge(table models.Table, set aggregate.BucketSet) (ViewResult, error) {
	columns := []string{ColumnAgeGroup, ColumnNumberOfDeaths}
	if table.Len() == 0 {
		return emptyResult(ViewAge, columns, MessageNoData), nil
	}

	counts, err := aggregate.Histogram(table, models.ColAgeGroup, set)
	if err != nil {
		return ViewResult{}, err
	}
	return okResult(ViewAge, columns, countRows(counts, aggregate.Unclassified)), nil
}

// renderSex - число смертей по департаменту и полу
func renderSex(table models.Table) (ViewResult, error) {
	columns := []string{models.ColDepartment, models.ColSex, ColumnQuantity}

	remapped, err := aggregate.RemapColumn(table, models.ColSex, aggregate.SexLabels)
	if err != nil {
		return ViewResult{}, err
	}
	counts, err := aggregate.GroupCount(remapped, models.ColDepartment, models.ColSex)
	if err != nil {
		return ViewResult{}, err
	}

	rows := make([][]any, 0, counts.Len())
	for _, r := range counts.SortByKeys().Rows {
		if r.HasNullKey() {
			continue
		}
		rows = append(rows, []any{r.Keys[0].String, r.Keys[1].String, r.Count})
	}
	return okResult(ViewSex, columns, rows), nil
}

// countRows превращает одноколоночный подсчет в строки [ключ, число]
func countRows(counts aggregate.Counts, nullLabel string) [][]any {
	rows := make([][]any, 0, counts.Len())
	for _, r := range counts.Rows {
		if !r.Key().Valid && nullLabel == "" {
			continue
		}
		rows = append(rows, []any{cellText(r.Key(), nullLabel), r.Count})
	}
	return rows
}
