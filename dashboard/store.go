// Package dashboard строит представления дашборда смертности из единого снимка.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/LilVoxy/coursework_mortality/ETL/extractors"
	"github.com/LilVoxy/coursework_mortality/ETL/models"
	"github.com/LilVoxy/coursework_mortality/ETL/utils"
	"github.com/LilVoxy/coursework_mortality/database"
)

// Store загружает снимок один раз за процесс и отдает его только для чтения
type Store struct {
	source  string
	options extractors.ReadOptions
	logger  *utils.ETLLogger

	once  sync.Once
	table models.Table
	err   error
}

// NewStore создает хранилище снимка. source - путь к файлу (.csv, .csv.sz, .xlsx)
// или URL базы данных (sqlite://..., mysql://...).
func NewStore(source string, options extractors.ReadOptions, logger *utils.ETLLogger) *Store {
	return &Store{
		source:  source,
		options: options,
		logger:  logger,
	}
}

// NewStoreFromTable создает хранилище поверх уже загруженной таблицы
func NewStoreFromTable(table models.Table) *Store {
	s := &Store{source: "memoria", logger: utils.NewNopLogger()}
	s.once.Do(func() {
		s.table, s.err = validateSnapshot(table)
	})
	return s
}

// Source возвращает источник снимка
func (s *Store) Source() string {
	return s.source
}

// Load загружает снимок при первом вызове; последующие вызовы возвращают тот же результат
func (s *Store) Load(ctx context.Context) (models.Table, error) {
	s.once.Do(func() {
		startTime := time.Now()
		s.logger.Info("Загрузка снимка из %s", s.source)

		table, err := s.read(ctx)
		if err == nil {
			table, err = validateSnapshot(table)
		}
		if err != nil {
			s.err = err
			s.logger.Error("Ошибка загрузки снимка: %v", err)
			return
		}

		s.table = table
		s.logger.Info("Снимок загружен: %d строк, %d колонок за %v", table.Len(), len(table.Columns), time.Since(startTime))
	})
	return s.table, s.err
}

func (s *Store) read(ctx context.Context) (models.Table, error) {
	if database.IsSnapshotURL(s.source) {
		db, cfg, err := database.Open(s.source)
		if err != nil {
			return models.Table{}, err
		}
		defer db.Close()
		return database.ReadSnapshot(ctx, db, cfg.Table)
	}

	table, err := extractors.ReadTable(s.source, s.options)
	if errors.Is(err, models.ErrInputNotFound) {
		return models.Table{}, fmt.Errorf("%w: %s", models.ErrSnapshotNotFound, s.source)
	}
	return table, err
}

// validateSnapshot проверяет обязательную колонку года
func validateSnapshot(table models.Table) (models.Table, error) {
	table = table.NormalizeColumns()
	if !table.HasColumn(models.ColYear) {
		return models.Table{}, models.ErrMissingYear
	}
	return table, nil
}
