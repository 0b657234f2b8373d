package transform

import (
	"context"
	"fmt"
	"time"

	"github.com/LilVoxy/coursework_mortality/ETL/models"
	"github.com/LilVoxy/coursework_mortality/ETL/utils"
)

// Соединения единой таблицы: факты с DIVIPOLA по COD_DANE, затем с причинами по COD_MUERTE
var (
	DivisionJoin = JoinSpec{
		LeftName:     "hechos",
		RightName:    "divipola",
		LeftKey:      models.ColCodDane,
		RightKey:     models.ColCodDane,
		RightColumns: models.DivisionColumns,
	}

	CauseJoin = JoinSpec{
		LeftName:     "hechos+divipola",
		RightName:    "causas",
		LeftKey:      models.ColCauseCode,
		RightKey:     models.ColCIE4,
		RightColumns: models.CauseColumns,
	}
)

// Transformer строит единую таблицу из прочитанных источников
type Transformer struct {
	logger *utils.ETLLogger
}

// NewTransformer создает новый экземпляр Transformer
func NewTransformer(logger *utils.ETLLogger) *Transformer {
	return &Transformer{logger: logger}
}

// Transform выполняет оба соединения и проекцию на итоговую схему
func (t *Transformer) Transform(ctx context.Context, extractedData *models.ExtractedData) (*models.TransformedData, error) {
	startTime := time.Now()
	t.logger.Info("Начало фазы Transform (Преобразование данных)")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	facts := extractedData.Facts.NormalizeColumns()
	divisions := extractedData.Divisions.NormalizeColumns()
	causes := extractedData.Causes.NormalizeColumns()

	// 1. Факты + DIVIPOLA
	t.logger.Info("Соединение фактов со справочником DIVIPOLA...")
	withDivisions, divisionStats, err := LeftJoin(facts, divisions, DivisionJoin)
	if err != nil {
		t.logger.Error("Ошибка при соединении с DIVIPOLA: %v", err)
		return nil, fmt.Errorf("ошибка соединения с DIVIPOLA: %w", err)
	}
	t.logJoinStats("divipola", divisionStats)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 2. Результат + справочник причин
	t.logger.Info("Соединение со справочником причин смерти...")
	withCauses, causeStats, err := LeftJoin(withDivisions, causes, CauseJoin)
	if err != nil {
		t.logger.Error("Ошибка при соединении со справочником причин: %v", err)
		return nil, fmt.Errorf("ошибка соединения со справочником причин: %w", err)
	}
	t.logJoinStats("causas", causeStats)

	// 3. Проекция на итоговую схему
	unified, missing := Project(withCauses, models.UnifiedColumns)
	if len(missing) > 0 {
		t.logger.Debug("Колонки отсутствуют в источниках и пропущены: %v", missing)
	}

	transformedData := &models.TransformedData{
		Unified: unified,
		Metadata: models.ETLMetadata{
			RunTimestamp:          time.Now(),
			FactsProcessed:        facts.Len(),
			DivisionsProcessed:    divisions.Len(),
			CausesProcessed:       causes.Len(),
			UnmatchedDivisions:    divisionStats.Unmatched,
			UnmatchedCauses:       causeStats.Unmatched,
			DuplicateDivisionKeys: divisionStats.DuplicateKeys,
			DuplicateCauseKeys:    causeStats.DuplicateKeys,
			DroppedColumns:        missing,
		},
	}

	t.logger.Info("Фаза Transform завершена. Строк: %d. Длительность: %v", unified.Len(), time.Since(startTime))
	return transformedData, nil
}

func (t *Transformer) logJoinStats(name string, stats JoinStats) {
	t.logger.Debug("Соединение %s: найдено %d, без пары %d", name, stats.Matched, stats.Unmatched)
	if stats.DuplicateKeys > 0 {
		t.logger.Warn("Справочник %s содержит %d повторных ключей, используется первая строка", name, stats.DuplicateKeys)
	}
	if stats.Unmatched > 0 {
		t.logger.Warn("Справочник %s: %d строк без пары", name, stats.Unmatched)
	}
	if len(stats.SkippedColumns) > 0 {
		t.logger.Debug("Справочник %s: нет колонок %v", name, stats.SkippedColumns)
	}
}
