package transform

import (
	"context"
	"database/sql"
	"testing"

	"github.com/LilVoxy/coursework_mortality/ETL/models"
	"github.com/LilVoxy/coursework_mortality/ETL/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// table строит таблицу из строк, пустая строка - NULL
func table(columns []string, rows ...[]string) models.Table {
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

func values(t *testing.T, tbl models.Table, column string) []string {
	t.Helper()
	cells, ok := tbl.Column(column)
	require.True(t, ok, "колонка %s", column)
	out := make([]string, len(cells))
	for i, c := range cells {
		if c.Valid {
			out[i] = c.String
		} else {
			out[i] = "<null>"
		}
	}
	return out
}

func TestLeftJoin_RowCountAndMatching(t *testing.T) {
	facts := table([]string{"COD_DANE", "SEXO"},
		[]string{"05001", "1"},
		[]string{"5001", "2"},
		[]string{" 5001.0 ", "1"},
		[]string{"99999", "3"},
		[]string{"", "1"},
	)
	divisions := table([]string{"COD_DANE", "DEPARTAMENTO", "MUNICIPIO"},
		[]string{"5001", "ANTIOQUIA", "MEDELLÍN"},
		[]string{"", "SIN CODIGO", "X"},
	)

	joined, stats, err := LeftJoin(facts, divisions, DivisionJoin)
	require.NoError(t, err)

	assert.Equal(t, facts.Len(), joined.Len())
	assert.Equal(t, []string{"COD_DANE", "SEXO", "DEPARTAMENTO", "MUNICIPIO"}, joined.Columns)
	assert.Equal(t, []string{"ANTIOQUIA", "ANTIOQUIA", "ANTIOQUIA", "<null>", "<null>"}, values(t, joined, "DEPARTAMENTO"))
	assert.Equal(t, []string{"05001", "5001", " 5001.0 ", "99999", "<null>"}, values(t, joined, "COD_DANE"), "левый ключ не меняется")
	assert.Equal(t, 3, stats.Matched)
	assert.Equal(t, 2, stats.Unmatched)
	assert.Equal(t, []string{"FECHA1erFIS"}, stats.SkippedColumns)
}

func TestLeftJoin_DuplicateKeysFirstWins(t *testing.T) {
	facts := table([]string{"COD_DANE"}, []string{"5001"}, []string{"5001"})
	divisions := table([]string{"COD_DANE", "DEPARTAMENTO"},
		[]string{"5001", "ANTIOQUIA"},
		[]string{"05001", "DUPLICADO"},
	)

	joined, stats, err := LeftJoin(facts, divisions, DivisionJoin)
	require.NoError(t, err)
	assert.Equal(t, 2, joined.Len(), "дубликаты справочника не размножают строки")
	assert.Equal(t, []string{"ANTIOQUIA", "ANTIOQUIA"}, values(t, joined, "DEPARTAMENTO"))
	assert.Equal(t, 1, stats.DuplicateKeys)
}

func TestLeftJoin_DifferentKeyNamesAndCollisions(t *testing.T) {
	left := table([]string{"COD_MUERTE", "Detalle"}, []string{"A000", "izq"}, []string{"Z999", "izq"})
	causes := table([]string{"CodigoCIE4", "Nombre_capitulo", "Detalle"},
		[]string{"A000", "Ciertas enfermedades", "der"},
	)

	joined, stats, err := LeftJoin(left, causes, CauseJoin)
	require.NoError(t, err)

	assert.Equal(t, []string{"COD_MUERTE", "Detalle", "CodigoCIE4", "Nombre_capitulo", "Detalle_y"}, joined.Columns)
	assert.Equal(t, []string{"A000", "<null>"}, values(t, joined, "CodigoCIE4"))
	assert.Equal(t, []string{"der", "<null>"}, values(t, joined, "Detalle_y"))
	assert.Equal(t, 1, stats.Unmatched)
}

func TestLeftJoin_MissingKey(t *testing.T) {
	facts := table([]string{"SEXO"}, []string{"1"})
	divisions := table([]string{"COD_DANE"}, []string{"5001"})

	_, _, err := LeftJoin(facts, divisions, DivisionJoin)
	var schemaErr *models.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "hechos", schemaErr.Table)
	assert.Equal(t, "COD_DANE", schemaErr.Column)

	_, _, err = LeftJoin(table([]string{"COD_DANE"}), table([]string{"DEPARTAMENTO"}), DivisionJoin)
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "divipola", schemaErr.Table)
}

func TestProject(t *testing.T) {
	src := table([]string{"B", "A", "C"}, []string{"b", "a", "c"})

	projected, missing := Project(src, []string{"A", "X", "B"})
	assert.Equal(t, []string{"A", "B"}, projected.Columns)
	assert.Equal(t, []sql.NullString{models.Text("a"), models.Text("b")}, projected.Rows[0])
	assert.Equal(t, []string{"X"}, missing)
}

func sampleExtracted() *models.ExtractedData {
	factsRow := func(dane, sex, cause string) []string {
		return []string{dane, "2019", "1", "10", "30", sex, "1", "10", "3", "Natural", cause}
	}
	return &models.ExtractedData{
		Facts: table(append([]string{" COD_DANE "}, models.FactsColumns[1:]...),
			factsRow("05001", "1", "A000"),
			factsRow("05001", "2", "A000"),
			factsRow("05001", "1", "Z999"),
			factsRow("08001", "3", "A000"),
		),
		Divisions: table(models.DivisionColumns,
			[]string{"5001", "ANTIOQUIA", "MEDELLÍN", "1813"},
			[]string{"8001", "ATLÁNTICO", "BARRANQUILLA", "1813"},
		),
		Causes: table(models.CauseColumns,
			[]string{"A000", "Ciertas enfermedades infecciosas", "Cólera", "Cólera no especificado"},
		),
	}
}

func TestTransformer_Transform(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	transformer := NewTransformer(utils.NewETLLoggerWithCore(core, true))

	data, err := transformer.Transform(context.Background(), sampleExtracted())
	require.NoError(t, err)

	unified := data.Unified
	assert.Equal(t, models.UnifiedColumns, unified.Columns)
	assert.Equal(t, 4, unified.Len())
	assert.Equal(t, []string{"ANTIOQUIA", "ANTIOQUIA", "ANTIOQUIA", "ATLÁNTICO"}, values(t, unified, "DEPARTAMENTO"))
	assert.Equal(t, "<null>", values(t, unified, "Nombre_capitulo")[2], "неизвестная причина дает NULL, строка сохраняется")

	meta := data.Metadata
	assert.Equal(t, 4, meta.FactsProcessed)
	assert.Equal(t, 0, meta.UnmatchedDivisions)
	assert.Equal(t, 1, meta.UnmatchedCauses)
	assert.Empty(t, meta.DroppedColumns)
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.WarnLevel).FilterMessageSnippet("без пары").Len())
}

func TestTransformer_DropsMissingColumns(t *testing.T) {
	data := sampleExtracted()
	data.Causes = table([]string{"CodigoCIE4", "Nombre_capitulo"}, []string{"A000", "Infecciosas"})

	out, err := NewTransformer(utils.NewNopLogger()).Transform(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, []string{"Descripcion_mortalidad", "Detalle"}, out.Metadata.DroppedColumns)
	assert.NotContains(t, out.Unified.Columns, "Detalle")
	assert.Equal(t, 4, out.Unified.Len())
}

func TestTransformer_MissingFactsKey(t *testing.T) {
	data := sampleExtracted()
	data.Facts = table([]string{"SEXO"}, []string{"1"})

	_, err := NewTransformer(utils.NewNopLogger()).Transform(context.Background(), data)
	var schemaErr *models.SchemaError
	assert.ErrorAs(t, err, &schemaErr)
}
