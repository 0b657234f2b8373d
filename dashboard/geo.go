package dashboard

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/LilVoxy/coursework_mortality/ETL/config"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultCoordinateTable - имя встроенной таблицы координат департаментов
const DefaultCoordinateTable = "departamentos"

// Координаты департаментов Колумбии
var departmentCoordinates = map[string]config.Coordinate{
	"AMAZONAS":           {Lat: -1.4419, Lon: -70.1449},
	"ANTIOQUIA":          {Lat: 6.2518, Lon: -75.5636},
	"ARAUCA":             {Lat: 7.0856, Lon: -70.7591},
	"ATLÁNTICO":          {Lat: 10.9685, Lon: -74.7813},
	"BOLÍVAR":            {Lat: 10.3910, Lon: -75.4794},
	"BOYACÁ":             {Lat: 5.4545, Lon: -73.3620},
	"CALDAS":             {Lat: 5.0703, Lon: -75.5138},
	"CAQUETÁ":            {Lat: 0.8699, Lon: -73.8419},
	"CASANARE":           {Lat: 5.3548, Lon: -71.9269},
	"CAUCA":              {Lat: 2.4411, Lon: -76.6063},
	"CESAR":              {Lat: 9.3373, Lon: -73.6536},
	"CHOCÓ":              {Lat: 5.6947, Lon: -76.6612},
	"CÓRDOBA":            {Lat: 8.7470, Lon: -75.8814},
	"CUNDINAMARCA":       {Lat: 4.6486, Lon: -74.2479},
	"GUAINÍA":            {Lat: 2.5854, Lon: -68.5247},
	"GUAVIARE":           {Lat: 2.0439, Lon: -72.3311},
	"HUILA":              {Lat: 2.5359, Lon: -75.5277},
	"LA GUAJIRA":         {Lat: 11.3548, Lon: -72.5203},
	"MAGDALENA":          {Lat: 10.5929, Lon: -74.1860},
	"META":               {Lat: 3.6438, Lon: -73.6137},
	"NARIÑO":             {Lat: 1.2136, Lon: -77.2811},
	"NORTE DE SANTANDER": {Lat: 7.9073, Lon: -72.5046},
	"PUTUMAYO":           {Lat: 0.4350, Lon: -76.6469},
	"QUINDÍO":            {Lat: 4.4610, Lon: -75.6674},
	"RISARALDA":          {Lat: 5.2468, Lon: -75.7366},
	"SAN ANDRÉS":         {Lat: 12.5847, Lon: -81.7006},
	"SANTANDER":          {Lat: 7.1254, Lon: -73.1198},
	"SUCRE":              {Lat: 9.3047, Lon: -75.3978},
	"TOLIMA":             {Lat: 4.4389, Lon: -75.2322},
	"VALLE DEL CAUCA":    {Lat: 3.4516, Lon: -76.5320},
	"VAUPÉS":             {Lat: 0.8550, Lon: -70.8116},
	"VICHADA":            {Lat: 5.0702, Lon: -69.3040},
	"BOGOTÁ, D.C.":       {Lat: 4.7110, Lon: -74.0721},
}

// CoordinateTable сопоставляет департамент с координатами без учета регистра и диакритики
type CoordinateTable struct {
	name    string
	entries map[string]config.Coordinate
}

// NewCoordinateTable строит таблицу координат
func NewCoordinateTable(name string, coordinates map[string]config.Coordinate) *CoordinateTable {
	t := &CoordinateTable{name: name, entries: make(map[string]config.Coordinate, len(coordinates))}
	for department, c := range coordinates {
		t.entries[departmentKey(department)] = c
	}
	return t
}

// LookupCoordinateTable возвращает встроенную таблицу или таблицу из конфигурации
func LookupCoordinateTable(name string, custom map[string]map[string]config.Coordinate) (*CoordinateTable, error) {
	if coords, ok := custom[name]; ok {
		return NewCoordinateTable(name, coords), nil
	}
	if name == "" || name == DefaultCoordinateTable {
		return NewCoordinateTable(DefaultCoordinateTable, departmentCoordinates), nil
	}
	return nil, fmt.Errorf("неизвестная таблица координат: %s", name)
}

// Name возвращает имя таблицы
func (t *CoordinateTable) Name() string {
	return t.name
}

// Lookup ищет координаты департамента
func (t *CoordinateTable) Lookup(department string) (config.Coordinate, bool) {
	c, ok := t.entries[departmentKey(department)]
	return c, ok
}

// departmentKey убирает диакритику, лишние пробелы и приводит имя к верхнему регистру
func departmentKey(name string) string {
	stripAccents := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	key, _, err := transform.String(stripAccents, name)
	if err != nil {
		key = name
	}
	return strings.ToUpper(strings.Join(strings.Fields(key), " "))
}
