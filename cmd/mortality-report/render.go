package main

import (
	"fmt"
	"io"

	"github.com/LilVoxy/coursework_mortality/dashboard"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

func newWriter(w io.Writer) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	// подписи колонок выводятся как есть, без перевода в верхний регистр
	style := table.StyleLight
	style.Format.Header = text.FormatDefault
	tw.SetStyle(style)
	return tw
}

func render(tw table.Writer, markdown bool) {
	if markdown {
		tw.RenderMarkdown()
		return
	}
	tw.Render()
}

// renderView выводит представление таблицей; пустое или недоступное - сообщением
func renderView(w io.Writer, result dashboard.ViewResult, markdown bool) {
	if result.Status != dashboard.StatusOK {
		fmt.Fprintf(w, "[%s] %s\n", result.Status, result.Message)
		return
	}

	tw := newWriter(w)
	header := make(table.Row, len(result.Columns))
	for i, c := range result.Columns {
		header[i] = c
	}
	tw.AppendHeader(header)

	// числовые колонки выравниваются вправо
	var configs []table.ColumnConfig
	for i, v := range result.Rows[0] {
		switch v.(type) {
		case int, float64:
			configs = append(configs, table.ColumnConfig{Number: i + 1, Align: text.AlignRight})
		}
	}
	tw.SetColumnConfigs(configs)

	for _, row := range result.Rows {
		tw.AppendRow(table.Row(row))
	}
	render(tw, markdown)
}

func renderKPIs(w io.Writer, kpis dashboard.KPIs, markdown bool) {
	tw := newWriter(w)
	tw.AppendHeader(table.Row{"Indicador", "Valor"})
	tw.AppendRows([]table.Row{
		{"Total registros", kpis.TotalRecords},
		{"Tipos de muerte", kpis.DeathTypes},
		{"Sexo con más muertes", kpis.SexMax},
		{"Departamento con más muertes", kpis.DeptMax},
		{"Departamento con menos muertes", kpis.DeptMin},
	})
	render(tw, markdown)

	if len(kpis.Missing) > 0 {
		fmt.Fprintf(w, "Columnas faltantes: %v\n", kpis.Missing)
	}
}
