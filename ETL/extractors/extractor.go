package extractors

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/LilVoxy/coursework_mortality/ETL/config"
	"github.com/LilVoxy/coursework_mortality/ETL/models"
	"github.com/LilVoxy/coursework_mortality/ETL/utils"
	"golang.org/x/sync/errgroup"
)

// SourceExtractor читает одну исходную таблицу
type SourceExtractor struct {
	name    string
	path    string
	columns []string
	options ReadOptions
	logger  *utils.ETLLogger
}

// NewSourceExtractor создает новый экземпляр SourceExtractor.
// Если columns не пуст, из таблицы оставляются только эти колонки, и каждая из них обязательна.
func NewSourceExtractor(name, path string, columns []string, options ReadOptions, logger *utils.ETLLogger) *SourceExtractor {
	return &SourceExtractor{
		name:    name,
		path:    path,
		columns: columns,
		options: options,
		logger:  logger,
	}
}

// ExtractTable читает таблицу источника
func (e *SourceExtractor) ExtractTable(ctx context.Context) (models.Table, error) {
	if err := ctx.Err(); err != nil {
		return models.Table{}, err
	}

	e.logger.Debug("Начало чтения таблицы %s из %s", e.name, e.path)

	table, err := ReadTable(e.path, e.options)
	if err != nil {
		return models.Table{}, fmt.Errorf("ошибка чтения таблицы %s: %w", e.name, err)
	}

	if len(e.columns) > 0 {
		table, err = selectColumns(table, e.name, e.columns)
		if err != nil {
			return models.Table{}, err
		}
	}

	e.logger.Debug("Таблица %s: %d строк, %d колонок", e.name, table.Len(), len(table.Columns))
	return table, nil
}

// selectColumns оставляет в таблице только перечисленные колонки в заданном порядке
func selectColumns(table models.Table, name string, columns []string) (models.Table, error) {
	indexes := make([]int, len(columns))
	for i, column := range columns {
		idx := table.ColumnIndex(column)
		if idx < 0 {
			return models.Table{}, &models.SchemaError{Table: name, Column: column}
		}
		indexes[i] = idx
	}

	selected := models.NewTable(columns...)
	selected.Rows = make([][]sql.NullString, len(table.Rows))
	for r, row := range table.Rows {
		out := make([]sql.NullString, len(indexes))
		for i, idx := range indexes {
			out[i] = row[idx]
		}
		selected.Rows[r] = out
	}
	return selected, nil
}

// Extractor координирует чтение трех исходных таблиц
type Extractor struct {
	logger             *utils.ETLLogger
	factsExtractor     *SourceExtractor
	causesExtractor    *SourceExtractor
	divisionsExtractor *SourceExtractor
}

// NewExtractor создает новый экземпляр Extractor
func NewExtractor(sources config.SourcesConfig, logger *utils.ETLLogger) *Extractor {
	options := ReadOptions{
		Delimiter: config.DelimiterRune(sources.Delimiter),
		Encoding:  sources.Encoding,
	}
	return &Extractor{
		logger:             logger,
		factsExtractor:     NewSourceExtractor("hechos", sources.FactsPath, models.FactsColumns, options, logger),
		causesExtractor:    NewSourceExtractor("causas", sources.CausesPath, nil, options, logger),
		divisionsExtractor: NewSourceExtractor("divipola", sources.DivisionsPath, nil, options, logger),
	}
}

// Extract читает факты, справочник причин и справочник DIVIPOLA параллельно.
// Первая ошибка отменяет остальные чтения.
func (e *Extractor) Extract(ctx context.Context) (*models.ExtractedData, error) {
	startTime := time.Now()
	e.logger.LogExtractStart()

	var extractedData models.ExtractedData
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		table, err := e.factsExtractor.ExtractTable(gctx)
		if err != nil {
			return fmt.Errorf("ошибка извлечения фактов: %w", err)
		}
		extractedData.Facts = table
		return nil
	})

	g.Go(func() error {
		table, err := e.causesExtractor.ExtractTable(gctx)
		if err != nil {
			return fmt.Errorf("ошибка извлечения справочника причин: %w", err)
		}
		extractedData.Causes = table
		return nil
	})

	g.Go(func() error {
		table, err := e.divisionsExtractor.ExtractTable(gctx)
		if err != nil {
			return fmt.Errorf("ошибка извлечения справочника DIVIPOLA: %w", err)
		}
		extractedData.Divisions = table
		return nil
	})

	if err := g.Wait(); err != nil {
		e.logger.Error("Ошибка при извлечении данных: %v", err)
		return nil, err
	}

	e.logger.LogExtractComplete(
		extractedData.Facts.Len(),
		extractedData.Causes.Len(),
		extractedData.Divisions.Len(),
		time.Since(startTime),
	)

	return &extractedData, nil
}
