package dashboard

import (
	"sort"
	"strings"

	"github.com/LilVoxy/coursework_mortality/ETL/models"
)

// View - имя представления дашборда
type View string

const (
	ViewMap     View = "map"
	ViewMonth   View = "month"
	ViewViolent View = "violent"
	ViewLow     View = "low"
	ViewCauses  View = "causes"
	ViewAge     View = "age"
	ViewSex     View = "sex"
)

// Views - все представления в порядке вкладок
var Views = []View{ViewMap, ViewMonth, ViewViolent, ViewLow, ViewCauses, ViewAge, ViewSex}

// названия вкладок исходного дашборда
var viewAliases = map[string]View{
	"mapa":      ViewMap,
	"mes":       ViewMonth,
	"violentas": ViewViolent,
	"menor":     ViewLow,
	"causas":    ViewCauses,
	"edad":      ViewAge,
	"sexo":      ViewSex,
}

// ParseView возвращает представление по имени (английскому или испанскому)
func ParseView(name string) (View, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, v := range Views {
		if string(v) == name {
			return v, true
		}
	}
	v, ok := viewAliases[name]
	return v, ok
}

// Contract - колонки снимка, необходимые каждому представлению. AÑO обязателен для всего снимка.
var Contract = map[View][]string{
	ViewMap:     {models.ColDepartment},
	ViewMonth:   {models.ColYear, models.ColMonth},
	ViewViolent: {models.ColMannerDeath, models.ColMunicipality},
	ViewLow:     {models.ColMunicipality},
	ViewCauses:  {models.ColChapter},
	ViewAge:     {models.ColAgeGroup},
	ViewSex:     {models.ColDepartment, models.ColSex},
}

// Capability сообщает, можно ли построить представление
type Capability struct {
	Renderable bool     `json:"disponible"`
	Missing    []string `json:"faltantes,omitempty"`
}

// Capabilities - возможности всех представлений для конкретного снимка
type Capabilities map[View]Capability

// CheckContract проверяет снимок по контракту один раз после загрузки
func CheckContract(table models.Table) Capabilities {
	caps := make(Capabilities, len(Contract))
	for view, required := range Contract {
		missing := missingColumns(table, required)
		caps[view] = Capability{Renderable: len(missing) == 0, Missing: missing}
	}
	return caps
}

func missingColumns(table models.Table, required []string) []string {
	var missing []string
	for _, c := range required {
		if !table.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	sort.Strings(missing)
	return missing
}
