package load

import (
	"context"
	"fmt"
	"time"

	"github.com/LilVoxy/coursework_mortality/ETL/models"
	"github.com/LilVoxy/coursework_mortality/ETL/utils"
)

// LoadManager отвечает за запись единой таблицы во все места назначения
type LoadManager struct {
	logger  *utils.ETLLogger
	loaders []SnapshotLoader
}

// NewLoadManager создает новый экземпляр LoadManager.
// Первый загрузчик считается основным снимком.
func NewLoadManager(logger *utils.ETLLogger, loaders ...SnapshotLoader) *LoadManager {
	return &LoadManager{
		logger:  logger,
		loaders: loaders,
	}
}

// Load выполняет фазу загрузки данных ETL-процесса
// Принимает обработанные данные из фазы Transform и заполняет RowsWritten
func (m *LoadManager) Load(ctx context.Context, transformedData *models.TransformedData) error {
	startTime := time.Now()
	m.logger.Info("Начало фазы Load (Загрузка данных)")

	if len(m.loaders) == 0 {
		return fmt.Errorf("не задано ни одного места назначения снимка")
	}

	for i, loader := range m.loaders {
		written, err := loader.LoadSnapshot(ctx, transformedData.Unified)
		if err != nil {
			m.logger.Error("Ошибка при записи снимка в %s: %v", loader.Target(), err)
			return fmt.Errorf("ошибка при записи снимка в %s: %w", loader.Target(), err)
		}
		if i == 0 {
			transformedData.Metadata.RowsWritten = written
		}
		m.logger.Info("Снимок записан в %s: %d строк", loader.Target(), written)
	}

	duration := time.Since(startTime)
	m.logger.Info("Фаза Load завершена. Длительность: %v", duration)

	return nil
}
