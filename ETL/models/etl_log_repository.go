package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Формат хранения времени: фиксированная ширина, UTC, сортируется как строка
const runTimeLayout = "2006-01-02 15:04:05.000000"

// SQLETLLogRepository реализация ETLLogRepository поверх database/sql.
// Запросы совместимы с MySQL и SQLite.
type SQLETLLogRepository struct {
	db *sql.DB
}

// NewSQLETLLogRepository создает новый экземпляр SQLETLLogRepository
func NewSQLETLLogRepository(db *sql.DB) *SQLETLLogRepository {
	return &SQLETLLogRepository{
		db: db,
	}
}

// CreateETLLogTable создает таблицу для логирования ETL процесса, если она не существует
func (r *SQLETLLogRepository) CreateETLLogTable(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS etl_run_log (
		id VARCHAR(36) PRIMARY KEY,
		start_time VARCHAR(32) NOT NULL,
		end_time VARCHAR(32) NULL,
		status VARCHAR(16) NOT NULL DEFAULT 'in_progress',
		facts_processed INT DEFAULT 0,
		divisions_processed INT DEFAULT 0,
		causes_processed INT DEFAULT 0,
		rows_written INT DEFAULT 0,
		unmatched_divisions INT DEFAULT 0,
		unmatched_causes INT DEFAULT 0,
		error_message TEXT,
		execution_time_seconds DOUBLE DEFAULT 0
	)
	`

	_, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return fmt.Errorf("ошибка при создании таблицы etl_run_log: %w", err)
	}

	return nil
}

// CreateLogEntry создает новую запись о запуске ETL
func (r *SQLETLLogRepository) CreateLogEntry(ctx context.Context, startTime time.Time) (string, error) {
	id := uuid.NewString()
	query := `
	INSERT INTO etl_run_log (id, start_time, status)
	VALUES (?, ?, 'in_progress')
	`

	_, err := r.db.ExecContext(ctx, query, id, formatRunTime(startTime))
	if err != nil {
		return "", fmt.Errorf("ошибка при создании записи о запуске ETL: %w", err)
	}

	return id, nil
}

// UpdateLogEntrySuccess обновляет запись при успешном завершении ETL
func (r *SQLETLLogRepository) UpdateLogEntrySuccess(ctx context.Context, id string, endTime time.Time, metadata ETLMetadata) error {
	executionTime, err := r.executionTime(ctx, id, endTime)
	if err != nil {
		return err
	}

	query := `
	UPDATE etl_run_log
	SET
		end_time = ?,
		status = 'success',
		facts_processed = ?,
		divisions_processed = ?,
		causes_processed = ?,
		rows_written = ?,
		unmatched_divisions = ?,
		unmatched_causes = ?,
		execution_time_seconds = ?
	WHERE id = ?
	`

	_, err = r.db.ExecContext(ctx,
		query,
		formatRunTime(endTime),
		metadata.FactsProcessed,
		metadata.DivisionsProcessed,
		metadata.CausesProcessed,
		metadata.RowsWritten,
		metadata.UnmatchedDivisions,
		metadata.UnmatchedCauses,
		executionTime,
		id,
	)
	if err != nil {
		return fmt.Errorf("ошибка при обновлении записи о запуске ETL: %w", err)
	}

	return nil
}

// UpdateLogEntryFailure обновляет запись при неудачном завершении ETL
func (r *SQLETLLogRepository) UpdateLogEntryFailure(ctx context.Context, id string, endTime time.Time, errorMessage string) error {
	executionTime, err := r.executionTime(ctx, id, endTime)
	if err != nil {
		return err
	}

	query := `
	UPDATE etl_run_log
	SET
		end_time = ?,
		status = 'failed',
		error_message = ?,
		execution_time_seconds = ?
	WHERE id = ?
	`

	_, err = r.db.ExecContext(ctx, query, formatRunTime(endTime), errorMessage, executionTime, id)
	if err != nil {
		return fmt.Errorf("ошибка при обновлении записи о запуске ETL: %w", err)
	}

	return nil
}

// GetLastSuccessfulRun получает информацию о последнем успешном запуске ETL
func (r *SQLETLLogRepository) GetLastSuccessfulRun(ctx context.Context) (*ETLRunLog, error) {
	return r.getLastRun(ctx, RunStatusSuccess)
}

// GetRecentRuns получает последние запуски ETL, начиная с самого нового
func (r *SQLETLLogRepository) GetRecentRuns(ctx context.Context, limit int) ([]ETLRunLog, error) {
	query := selectRunColumns + `
	FROM etl_run_log
	ORDER BY start_time DESC
	LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении списка запусков ETL: %w", err)
	}
	defer rows.Close()

	var logs []ETLRunLog
	for rows.Next() {
		log, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка при сканировании записи о запуске ETL: %w", err)
		}
		logs = append(logs, *log)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка после итерации по записям о запусках ETL: %w", err)
	}

	return logs, nil
}

// GetETLStateMonitor получает сводку о состоянии ETL процесса
func (r *SQLETLLogRepository) GetETLStateMonitor(ctx context.Context) (*ETLStateMonitor, error) {
	lastSuccessful, err := r.GetLastSuccessfulRun(ctx)
	if err != nil {
		return nil, err
	}

	lastFailed, err := r.getLastRun(ctx, RunStatusFailed)
	if err != nil {
		return nil, err
	}

	var totalSuccess, totalFailed sql.NullInt64
	var avgExecutionTime sql.NullFloat64
	err = r.db.QueryRowContext(ctx, `
		SELECT
			SUM(CASE WHEN status = 'success' THEN 1 ELSE 0 END),
			SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END),
			AVG(CASE WHEN status = 'success' THEN execution_time_seconds ELSE NULL END)
		FROM etl_run_log
	`).Scan(&totalSuccess, &totalFailed, &avgExecutionTime)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении статистики запусков ETL: %w", err)
	}

	return &ETLStateMonitor{
		LastSuccessfulRun:       lastSuccessful,
		LastFailedRun:           lastFailed,
		TotalSuccessfulRuns:     int(totalSuccess.Int64),
		TotalFailedRuns:         int(totalFailed.Int64),
		AvgExecutionTimeSeconds: avgExecutionTime.Float64,
	}, nil
}

const selectRunColumns = `
	SELECT
		id, start_time, COALESCE(end_time, ''), status,
		facts_processed, divisions_processed, causes_processed, rows_written,
		unmatched_divisions, unmatched_causes,
		COALESCE(error_message, ''), execution_time_seconds`

func (r *SQLETLLogRepository) getLastRun(ctx context.Context, status string) (*ETLRunLog, error) {
	query := selectRunColumns + `
	FROM etl_run_log
	WHERE status = ?
	ORDER BY end_time DESC
	LIMIT 1
	`

	log, err := scanRun(r.db.QueryRowContext(ctx, query, status))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Нет запусков с таким статусом
		}
		return nil, fmt.Errorf("ошибка при получении последнего запуска ETL со статусом %s: %w", status, err)
	}

	return log, nil
}

// executionTime рассчитывает время выполнения в секундах от start_time записи
func (r *SQLETLLogRepository) executionTime(ctx context.Context, id string, endTime time.Time) (float64, error) {
	var raw string
	err := r.db.QueryRowContext(ctx, "SELECT start_time FROM etl_run_log WHERE id = ?", id).Scan(&raw)
	if err != nil {
		return 0, fmt.Errorf("ошибка при получении времени начала ETL: %w", err)
	}

	startTime, err := parseRunTime(raw)
	if err != nil {
		return 0, err
	}

	return endTime.Sub(startTime).Seconds(), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*ETLRunLog, error) {
	var log ETLRunLog
	var start, end string
	err := row.Scan(
		&log.ID, &start, &end, &log.Status,
		&log.FactsProcessed, &log.DivisionsProcessed, &log.CausesProcessed, &log.RowsWritten,
		&log.UnmatchedDivisions, &log.UnmatchedCauses,
		&log.ErrorMessage, &log.ExecutionTimeSeconds,
	)
	if err != nil {
		return nil, err
	}

	if log.StartTime, err = parseRunTime(start); err != nil {
		return nil, err
	}
	if end != "" {
		if log.EndTime, err = parseRunTime(end); err != nil {
			return nil, err
		}
	}

	return &log, nil
}

func formatRunTime(t time.Time) string {
	return t.UTC().Format(runTimeLayout)
}

func parseRunTime(raw string) (time.Time, error) {
	t, err := time.ParseInLocation(runTimeLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("некорректное время в журнале ETL %q: %w", raw, err)
	}
	return t, nil
}
