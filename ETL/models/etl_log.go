package models

import (
	"context"
	"time"
)

// Статусы запуска ETL
const (
	RunStatusInProgress = "in_progress"
	RunStatusSuccess    = "success"
	RunStatusFailed     = "failed"
)

// ETLRunLog представляет запись о запуске ETL процесса
type ETLRunLog struct {
	ID                   string    `json:"id"`
	StartTime            time.Time `json:"start_time"`
	EndTime              time.Time `json:"end_time"`
	Status               string    `json:"status"` // "success", "failed", "in_progress"
	FactsProcessed       int       `json:"facts_processed"`
	DivisionsProcessed   int       `json:"divisions_processed"`
	CausesProcessed      int       `json:"causes_processed"`
	RowsWritten          int       `json:"rows_written"`
	UnmatchedDivisions   int       `json:"unmatched_divisions"`
	UnmatchedCauses      int       `json:"unmatched_causes"`
	ErrorMessage         string    `json:"error_message,omitempty"`
	ExecutionTimeSeconds float64   `json:"execution_time_seconds"`
}

// ETLLogRepository представляет репозиторий для работы с логами ETL
type ETLLogRepository interface {
	// CreateETLLogTable создает таблицу журнала, если ее нет
	CreateETLLogTable(ctx context.Context) error

	// CreateLogEntry создает новую запись о запуске ETL
	CreateLogEntry(ctx context.Context, startTime time.Time) (string, error)

	// UpdateLogEntrySuccess обновляет запись при успешном завершении ETL
	UpdateLogEntrySuccess(ctx context.Context, id string, endTime time.Time, metadata ETLMetadata) error

	// UpdateLogEntryFailure обновляет запись при неудачном завершении ETL
	UpdateLogEntryFailure(ctx context.Context, id string, endTime time.Time, errorMessage string) error

	// GetLastSuccessfulRun получает информацию о последнем успешном запуске ETL
	GetLastSuccessfulRun(ctx context.Context) (*ETLRunLog, error)

	// GetRecentRuns получает последние запуски ETL
	GetRecentRuns(ctx context.Context, limit int) ([]ETLRunLog, error)

	// GetETLStateMonitor возвращает сводку по всем запускам
	GetETLStateMonitor(ctx context.Context) (*ETLStateMonitor, error)
}

// ETLStateMonitor предоставляет сводку по запускам ETL
type ETLStateMonitor struct {
	LastSuccessfulRun       *ETLRunLog `json:"last_successful_run"`
	LastFailedRun           *ETLRunLog `json:"last_failed_run,omitempty"`
	TotalSuccessfulRuns     int        `json:"total_successful_runs"`
	TotalFailedRuns         int        `json:"total_failed_runs"`
	AvgExecutionTimeSeconds float64    `json:"avg_execution_time_seconds"`
}
