package aggregate

import (
	"database/sql"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/LilVoxy/coursework_mortality/ETL/models"
)

// Unclassified - метка для значений вне всех интервалов, пустых и нечисловых
const Unclassified = "unclassified"

// Bucket - именованный интервал [Min, Max) и/или перечень категориальных значений
type Bucket struct {
	Label  string
	Min    float64
	Max    float64
	Values []string
}

// BucketSet - упорядоченный набор непересекающихся интервалов
type BucketSet struct {
	Name    string
	Buckets []Bucket
}

// Labels возвращает метки интервалов по порядку
func (s BucketSet) Labels() []string {
	labels := make([]string, len(s.Buckets))
	for i, b := range s.Buckets {
		labels[i] = b.Label
	}
	return labels
}

// Наборы пятилетних возрастных интервалов. Оба используются разными вариантами дашборда.
var (
	QuinquennialTo29     = quinquennial("quinquenal_29", 30, false)
	QuinquennialLifespan = quinquennial("quinquenal_completo", 85, true)
)

func quinquennial(name string, upper int, openEnded bool) BucketSet {
	set := BucketSet{Name: name}
	for lo := 0; lo < upper; lo += 5 {
		set.Buckets = append(set.Buckets, Bucket{
			Label: fmt.Sprintf("%d-%d", lo, lo+4),
			Min:   float64(lo),
			Max:   float64(lo + 5),
		})
	}
	if openEnded {
		set.Buckets = append(set.Buckets, Bucket{
			Label: fmt.Sprintf("%d+", upper),
			Min:   float64(upper),
			Max:   math.Inf(1),
		})
	}
	return set
}

// LookupBucketSet возвращает встроенный набор интервалов по имени
func LookupBucketSet(name string) (BucketSet, bool) {
	switch name {
	case QuinquennialTo29.Name:
		return QuinquennialTo29, true
	case QuinquennialLifespan.Name:
		return QuinquennialLifespan, true
	default:
		return BucketSet{}, false
	}
}

// BucketByRange относит значение к одному интервалу набора.
// Функция тотальна: все, что не попало ни в один интервал, получает Unclassified.
func BucketByRange(v sql.NullString, set BucketSet) string {
	if !v.Valid {
		return Unclassified
	}
	s := strings.TrimSpace(v.String)

	for _, b := range set.Buckets {
		for _, value := range b.Values {
			if value == s {
				return b.Label
			}
		}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return Unclassified
	}
	for _, b := range set.Buckets {
		if f >= b.Min && f < b.Max {
			return b.Label
		}
	}
	return Unclassified
}

// Histogram считает строки по интервалам набора.
// Возвращает все интервалы по порядку (включая пустые), Unclassified - последним и только если он не пуст.
func Histogram(table models.Table, column string, set BucketSet) (Counts, error) {
	values, ok := table.Column(column)
	if !ok {
		return Counts{}, &models.SchemaError{Table: SnapshotTable, Column: column}
	}

	perLabel := make(map[string]int, len(set.Buckets)+1)
	for _, v := range values {
		perLabel[BucketByRange(v, set)]++
	}

	counts := Counts{Columns: []string{column}}
	for _, label := range set.Labels() {
		counts.Rows = append(counts.Rows, CountRow{Keys: []sql.NullString{models.Text(label)}, Count: perLabel[label]})
	}
	if n := perLabel[Unclassified]; n > 0 {
		counts.Rows = append(counts.Rows, CountRow{Keys: []sql.NullString{models.Text(Unclassified)}, Count: n})
	}
	return counts, nil
}
