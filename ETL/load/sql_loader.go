package load

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/LilVoxy/coursework_mortality/ETL/models"
	"github.com/LilVoxy/coursework_mortality/ETL/utils"
	"github.com/LilVoxy/coursework_mortality/database"
)

// SQLLoader записывает копию снимка в таблицу базы данных
type SQLLoader struct {
	db     *sql.DB
	table  string
	logger *utils.ETLLogger
}

// NewSQLLoader создает новый экземпляр SQLLoader
func NewSQLLoader(db *sql.DB, table string, logger *utils.ETLLogger) *SQLLoader {
	if table == "" {
		table = database.DefaultSnapshotTable
	}
	return &SQLLoader{
		db:     db,
		table:  table,
		logger: logger,
	}
}

// Target возвращает имя таблицы снимка
func (l *SQLLoader) Target() string {
	return "sql:" + l.table
}

// LoadSnapshot пересоздает таблицу снимка
func (l *SQLLoader) LoadSnapshot(ctx context.Context, table models.Table) (int, error) {
	startTime := time.Now()
	l.logger.Info("Начало загрузки снимка в таблицу %s (всего: %d)", l.table, table.Len())

	written, err := database.ReplaceSnapshot(ctx, l.db, l.table, table)
	if err != nil {
		return 0, fmt.Errorf("ошибка загрузки снимка в таблицу %s: %w", l.table, err)
	}

	l.logger.Debug("Таблица %s загружена за %v", l.table, time.Since(startTime))
	return written, nil
}
