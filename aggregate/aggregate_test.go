package aggregate

import (
	"database/sql"
	"fmt"
	"math/rand"
	"testing"

	"github.com/LilVoxy/coursework_mortality/ETL/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTable(columns []string, rows ...[]string) models.Table {
	t := models.NewTable(columns...)
	for _, raw := range rows {
		row := make([]sql.NullString, len(raw))
		for i, v := range raw {
			row[i] = models.Cell(v)
		}
		t.AppendRow(row)
	}
	return t
}

// asMap сводит одноколоночный результат к map; пустой ключ - "<null>"
func asMap(c Counts) map[string]int {
	m := make(map[string]int, c.Len())
	for _, r := range c.Rows {
		k := "<null>"
		if r.Key().Valid {
			k = r.Key().String
		}
		m[k] = r.Count
	}
	return m
}

func keys(c Counts) []string {
	out := make([]string, c.Len())
	for i, r := range c.Rows {
		out[i] = r.Key().String
	}
	return out
}

func TestGroupCount_Department(t *testing.T) {
	snapshot := newTable([]string{"COD_DANE", "DEPARTAMENTO"},
		[]string{"05001", "ANTIOQUIA"},
		[]string{"05001", "ANTIOQUIA"},
		[]string{"05001", "ANTIOQUIA"},
	)

	counts, err := GroupCount(snapshot, "DEPARTAMENTO")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"ANTIOQUIA": 3}, asMap(counts))
}

func TestGroupCount_NullIsOwnGroup(t *testing.T) {
	snapshot := newTable([]string{"Nombre_capitulo"},
		[]string{"Causas externas"},
		[]string{""},
		[]string{"Causas externas"},
	)

	counts, err := GroupCount(snapshot, "Nombre_capitulo")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Causas externas": 2, "<null>": 1}, asMap(counts))
	assert.Equal(t, snapshot.Len(), counts.Total())
}

func TestGroupCount_MultiColumnAndOrder(t *testing.T) {
	snapshot := newTable([]string{"DEPARTAMENTO", "SEXO"},
		[]string{"CAUCA", "2"},
		[]string{"ANTIOQUIA", "1"},
		[]string{"CAUCA", "2"},
		[]string{"CAUCA", ""},
	)

	counts, err := GroupCount(snapshot, "DEPARTAMENTO", "SEXO")
	require.NoError(t, err)

	want := []CountRow{
		{Keys: []sql.NullString{models.Text("CAUCA"), models.Text("2")}, Count: 2},
		{Keys: []sql.NullString{models.Text("ANTIOQUIA"), models.Text("1")}, Count: 1},
		{Keys: []sql.NullString{models.Text("CAUCA"), {}}, Count: 1},
	}
	if diff := cmp.Diff(want, counts.Rows); diff != "" {
		t.Errorf("GroupCount() mismatch (-want +got):\n%s", diff)
	}

	sorted := counts.SortByKeys()
	assert.Equal(t, "ANTIOQUIA", sorted.Rows[0].Key().String)
	assert.True(t, sorted.Rows[2].HasNullKey(), "пустые ключи последними")
}

func TestGroupCount_UnknownColumn(t *testing.T) {
	_, err := GroupCount(newTable([]string{"A"}), "B")
	var schemaErr *models.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "B", schemaErr.Column)
}

func TestGroupCount_CountConservation(t *testing.T) {
	rng := rand.New(rand.NewSource(2019))
	departments := []string{"ANTIOQUIA", "CAUCA", "", "META", "CHOCÓ"}
	snapshot := models.NewTable("DEPARTAMENTO", "SEXO")
	for i := 0; i < 500; i++ {
		snapshot.AppendRow([]sql.NullString{
			models.Cell(departments[rng.Intn(len(departments))]),
			models.Cell(fmt.Sprint(rng.Intn(4))),
		})
	}

	for _, cols := range [][]string{{"DEPARTAMENTO"}, {"SEXO"}, {"DEPARTAMENTO", "SEXO"}} {
		counts, err := GroupCount(snapshot, cols...)
		require.NoError(t, err)
		assert.Equal(t, snapshot.Len(), counts.Total(), "%v", cols)
	}
}

func TestMaxMin(t *testing.T) {
	counts, err := GroupCount(newTable([]string{"D"},
		[]string{""}, []string{""}, []string{""},
		[]string{"META"}, []string{"CAUCA"}, []string{"CAUCA"}, []string{"HUILA"},
	), "D")
	require.NoError(t, err)

	maxRow, ok := counts.Max()
	require.True(t, ok)
	assert.Equal(t, "CAUCA", maxRow.Key().String, "пустые ключи не участвуют")

	minRow, ok := counts.Min()
	require.True(t, ok)
	assert.Equal(t, "META", minRow.Key().String, "при равенстве - первая группа")

	_, ok = Counts{}.Max()
	assert.False(t, ok)
}

func TestTopNBottomN(t *testing.T) {
	counts := Counts{Columns: []string{"MUNICIPIO"}}
	for i, n := range []int{3, 7, 1, 7, 2} {
		counts.Rows = append(counts.Rows, CountRow{Keys: []sql.NullString{models.Text(fmt.Sprintf("m%d", i))}, Count: n})
	}

	assert.Equal(t, []string{"m1", "m3", "m0"}, keys(TopN(counts, 3)))
	assert.Equal(t, []string{"m2", "m4"}, keys(BottomN(counts, 2)))
	assert.Equal(t, 5, TopN(counts, 10).Len())
	assert.Equal(t, 0, TopN(counts, 0).Len())
	assert.Equal(t, 0, BottomN(counts, -1).Len())
	assert.Equal(t, []string{"m0", "m1", "m2", "m3", "m4"}, keys(counts), "исходный порядок не меняется")

	// результат - подмножество исходных групп
	for _, n := range []int{1, 2, 5, 8} {
		top := TopN(counts, n)
		assert.Equal(t, min(n, counts.Len()), top.Len())
		for _, r := range top.Rows {
			assert.Contains(t, counts.Rows, r)
		}
	}
}

func TestBucketByRange_AgeScenario(t *testing.T) {
	var got []string
	for _, v := range []string{"0", "3", "7", "12", "29", "99"} {
		got = append(got, BucketByRange(models.Text(v), QuinquennialTo29))
	}
	assert.Equal(t, []string{"0-4", "0-4", "5-9", "10-14", "25-29", Unclassified}, got)
}

func TestBucketByRange_Totality(t *testing.T) {
	inputs := []sql.NullString{{}, models.Text("abc"), models.Text("-1"), models.Text("NaN"), models.Text(" 4.5 "), models.Text("1e9")}
	for _, set := range []BucketSet{QuinquennialTo29, QuinquennialLifespan} {
		labels := append(set.Labels(), Unclassified)
		for _, in := range inputs {
			assert.Contains(t, labels, BucketByRange(in, set))
		}
	}

	assert.Equal(t, "0-4", BucketByRange(models.Text(" 4.5 "), QuinquennialTo29))
	assert.Equal(t, "85+", BucketByRange(models.Text("1e9"), QuinquennialLifespan))
	assert.Equal(t, "80-84", BucketByRange(models.Text("84"), QuinquennialLifespan))
}

func TestBucketByRange_CategoricalValues(t *testing.T) {
	set := BucketSet{Name: "grupos", Buckets: []Bucket{
		{Label: "menores", Min: 0, Max: 18},
		{Label: "desconocido", Values: []string{"99", "NA"}},
	}}
	assert.Equal(t, "desconocido", BucketByRange(models.Text("99"), set))
	assert.Equal(t, "desconocido", BucketByRange(models.Text("NA"), set))
	assert.Equal(t, "menores", BucketByRange(models.Text("5"), set))
	assert.Equal(t, Unclassified, BucketByRange(models.Text("40"), set))
}

func TestLookupBucketSet(t *testing.T) {
	set, ok := LookupBucketSet("quinquenal_completo")
	require.True(t, ok)
	assert.Len(t, set.Buckets, 18)
	assert.Equal(t, "85+", set.Labels()[17])

	set, ok = LookupBucketSet("quinquenal_29")
	require.True(t, ok)
	assert.Equal(t, []string{"0-4", "5-9", "10-14", "15-19", "20-24", "25-29"}, set.Labels())

	_, ok = LookupBucketSet("decenal")
	assert.False(t, ok)
}

func TestHistogram(t *testing.T) {
	snapshot := newTable([]string{"GRUPO_EDAD1"},
		[]string{"0"}, []string{"3"}, []string{"7"}, []string{"12"}, []string{"29"}, []string{"99"}, []string{""},
	)

	counts, err := Histogram(snapshot, "GRUPO_EDAD1", QuinquennialTo29)
	require.NoError(t, err)
	assert.Equal(t, []string{"0-4", "5-9", "10-14", "15-19", "20-24", "25-29", Unclassified}, keys(counts))
	assert.Equal(t, map[string]int{"0-4": 2, "5-9": 1, "10-14": 1, "15-19": 0, "20-24": 0, "25-29": 1, Unclassified: 2}, asMap(counts))
	assert.Equal(t, snapshot.Len(), counts.Total())

	clean, err := Histogram(newTable([]string{"GRUPO_EDAD1"}, []string{"1"}), "GRUPO_EDAD1", QuinquennialTo29)
	require.NoError(t, err)
	assert.NotContains(t, keys(clean), Unclassified)

	_, err = Histogram(snapshot, "EDAD", QuinquennialTo29)
	assert.Error(t, err)
}

func TestRemapCategory_SexScenario(t *testing.T) {
	snapshot := newTable([]string{"SEXO"}, []string{"1"}, []string{"1"}, []string{"2"}, []string{"3"})

	remapped, err := RemapColumn(snapshot, "SEXO", SexLabels)
	require.NoError(t, err)
	counts, err := GroupCount(remapped, "SEXO")
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"Hombre": 2, "Mujer": 1, "Sin identificar": 1}, asMap(counts))
	assert.Equal(t, models.Text("1"), snapshot.Rows[0][0], "исходная таблица не меняется")
}

func TestRemapCategory(t *testing.T) {
	assert.Equal(t, models.Text("Hombre"), RemapCategory(models.Text("1.0"), SexLabels))
	assert.Equal(t, models.Text("Mujer"), RemapCategory(models.Text(" 2 "), SexLabels))
	assert.Equal(t, models.Text("9"), RemapCategory(models.Text("9"), SexLabels))
	assert.False(t, RemapCategory(sql.NullString{}, SexLabels).Valid)

	// идемпотентность: метки не пересекаются с кодами
	for _, v := range []string{"1", "2", "3", "9", "Hombre"} {
		once := RemapCategory(models.Text(v), SexLabels)
		assert.Equal(t, once, RemapCategory(once, SexLabels))
	}

	_, err := RemapColumn(newTable([]string{"A"}), "SEXO", SexLabels)
	assert.Error(t, err)
}

func TestTextContainsAny(t *testing.T) {
	needles := []string{"homicidio"}
	assert.True(t, TextContainsAny(models.Text("Homicidio"), needles))
	assert.True(t, TextContainsAny(models.Text("HOMICIDIO CULPOSO"), needles))
	assert.False(t, TextContainsAny(models.Text("Natural"), needles))
	assert.False(t, TextContainsAny(sql.NullString{}, needles))
	assert.False(t, TextContainsAny(models.Text("Homicidio"), []string{"", "  "}))

	// свертка регистра работает и для букв с диакритикой
	assert.True(t, TextContainsAny(models.Text("ACCIDENTE DE TRÁNSITO"), []string{"tránsito"}))
}

func TestDistinctAndWhere(t *testing.T) {
	snapshot := newTable([]string{"DEPARTAMENTO", "MANERA_MUERTE"},
		[]string{"META", "Natural"},
		[]string{"CAUCA", "Homicidio"},
		[]string{"", "Homicidio"},
		[]string{"META", ""},
	)

	departments, err := Distinct(snapshot, "DEPARTAMENTO")
	require.NoError(t, err)
	assert.Equal(t, []string{"CAUCA", "META"}, departments)

	n, err := CountDistinct(snapshot, "MANERA_MUERTE")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	violent, err := Where(snapshot, "MANERA_MUERTE", NewMatcher("homicidio").Match)
	require.NoError(t, err)
	assert.Equal(t, 2, violent.Len())

	known, err := Where(snapshot, "DEPARTAMENTO", NotNull)
	require.NoError(t, err)
	assert.Equal(t, 3, known.Len())

	_, err = Distinct(snapshot, "X")
	assert.Error(t, err)
	_, err = Where(snapshot, "X", NotNull)
	assert.Error(t, err)
}
