package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LilVoxy/coursework_mortality/ETL/config"
	"github.com/LilVoxy/coursework_mortality/ETL/extractors"
	"github.com/LilVoxy/coursework_mortality/ETL/load"
	"github.com/LilVoxy/coursework_mortality/ETL/models"
	"github.com/LilVoxy/coursework_mortality/ETL/transform"
	"github.com/LilVoxy/coursework_mortality/ETL/utils"
	"github.com/go-co-op/gocron"
	"github.com/jedib0t/go-pretty/v6/table"
)

// ErrSinkDisabled - операция требует базы данных, а sink отключен
var ErrSinkDisabled = errors.New("база данных журнала отключена (sink.enabled=false)")

type ETLRunner struct {
	config      config.Config
	sinkDB      *sql.DB
	logger      *utils.ETLLogger
	extractor   *extractors.Extractor
	transformer *transform.Transformer
	loadManager *load.LoadManager
	etlLogRepo  models.ETLLogRepository
}

// NewETLRunner создает новый экземпляр ETLRunner
func NewETLRunner(ctx context.Context, etlConfig config.Config, logger *utils.ETLLogger) (*ETLRunner, error) {
	logger.Info("Инициализация ETL Runner")

	runner := &ETLRunner{
		config:      etlConfig,
		logger:      logger,
		extractor:   extractors.NewExtractor(etlConfig.Sources, logger.Named("extract")),
		transformer: transform.NewTransformer(logger.Named("transform")),
	}

	loaders := []load.SnapshotLoader{load.NewFileLoader(etlConfig.Output, logger.Named("load"))}

	// Необязательная база данных: копия снимка и журнал запусков
	if etlConfig.Sink.Enabled {
		db, err := config.ConnectDatabase(etlConfig.Sink)
		if err != nil {
			return nil, fmt.Errorf("ошибка подключения к базе данных: %w", err)
		}
		runner.sinkDB = db

		etlLogRepo := models.NewSQLETLLogRepository(db)
		if err := etlLogRepo.CreateETLLogTable(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("ошибка при создании таблицы логов ETL: %w", err)
		}
		runner.etlLogRepo = etlLogRepo

		loaders = append(loaders, load.NewSQLLoader(db, etlConfig.Sink.Table, logger.Named("load")))
	}

	runner.loadManager = load.NewLoadManager(logger.Named("load"), loaders...)
	return runner, nil
}

// Close закрывает соединение с базой данных
func (r *ETLRunner) Close() {
	r.logger.Info("Завершение работы ETL Runner")
	if err := config.CloseDatabase(r.sinkDB); err != nil {
		r.logger.Error("%v", err)
	}
}

// ExecuteETL выполняет полный ETL процесс
func (r *ETLRunner) ExecuteETL(ctx context.Context) (*models.ETLMetadata, error) {
	r.logger.LogETLStart()
	startTime := time.Now()

	// Создаем запись в журнале ETL
	var logID string
	if r.etlLogRepo != nil {
		id, err := r.etlLogRepo.CreateLogEntry(ctx, startTime)
		if err != nil {
			r.logger.Error("Ошибка при создании записи в журнале ETL: %v", err)
			return nil, fmt.Errorf("ошибка при создании записи в журнале ETL: %w", err)
		}
		logID = id

		lastRun, err := r.etlLogRepo.GetLastSuccessfulRun(ctx)
		if err != nil {
			r.logger.Warn("Не удалось получить информацию о последнем успешном запуске: %v", err)
		} else if lastRun != nil {
			r.logger.Info("Последний успешный запуск: %v, строк: %d", lastRun.EndTime, lastRun.RowsWritten)
		}
	}

	// 1. Фаза извлечения данных (Extract)
	extractedData, err := r.extractor.Extract(ctx)
	if err != nil {
		return nil, r.fail(ctx, logID, "Extract", err)
	}

	// 2. Фаза трансформации данных (Transform)
	transformedData, err := r.transformer.Transform(ctx, extractedData)
	if err != nil {
		return nil, r.fail(ctx, logID, "Transform", err)
	}

	// 3. Фаза загрузки данных (Load)
	if err := r.loadManager.Load(ctx, transformedData); err != nil {
		return nil, r.fail(ctx, logID, "Load", err)
	}

	metadata := transformedData.Metadata
	if r.etlLogRepo != nil {
		if err := r.etlLogRepo.UpdateLogEntrySuccess(ctx, logID, time.Now(), metadata); err != nil {
			r.logger.Error("Ошибка при обновлении записи в журнале ETL: %v", err)
		}
	}

	r.logger.LogETLComplete(startTime, metadata.RowsWritten, metadata.UnmatchedDivisions, metadata.UnmatchedCauses)
	return &metadata, nil
}

// fail фиксирует ошибку фазы в журнале и возвращает ее
func (r *ETLRunner) fail(ctx context.Context, logID, phase string, err error) error {
	errMsg := fmt.Sprintf("Ошибка в фазе %s: %v", phase, err)
	r.logger.Error("%s", errMsg)

	if r.etlLogRepo != nil {
		// запись в журнал не зависит от отмены контекста запуска
		if logErr := r.etlLogRepo.UpdateLogEntryFailure(context.WithoutCancel(ctx), logID, time.Now(), errMsg); logErr != nil {
			r.logger.Error("Ошибка при обновлении записи в журнале ETL: %v", logErr)
		}
	}
	return fmt.Errorf("ошибка в фазе %s: %w", phase, err)
}

// StartScheduler запускает планировщик для регулярного выполнения ETL и блокируется до отмены ctx
func (r *ETLRunner) StartScheduler(ctx context.Context) error {
	scheduler := gocron.NewScheduler(time.UTC)

	r.logger.Info("Запуск планировщика ETL с интервалом %v", r.config.RunInterval)

	_, err := scheduler.Every(r.config.RunInterval).SingletonMode().Do(func() {
		r.logger.Info("Запланированный запуск ETL процесса")
		if _, err := r.ExecuteETL(ctx); err != nil {
			r.logger.Error("Ошибка при выполнении запланированного ETL: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("ошибка при настройке планировщика: %w", err)
	}

	// Запускаем планировщик
	scheduler.StartAsync()

	// Ожидаем сигнал остановки из контекста
	<-ctx.Done()

	// Останавливаем планировщик
	scheduler.Stop()
	r.logger.Info("Планировщик ETL остановлен")
	return nil
}

// PrintStatus выводит сводку и последние запуски из журнала ETL
func (r *ETLRunner) PrintStatus(ctx context.Context, w io.Writer, limit int) error {
	if r.etlLogRepo == nil {
		return ErrSinkDisabled
	}

	monitor, err := r.etlLogRepo.GetETLStateMonitor(ctx)
	if err != nil {
		return err
	}
	runs, err := r.etlLogRepo.GetRecentRuns(ctx, limit)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Успешных запусков: %d, неудачных: %d, среднее время: %.2f с\n",
		monitor.TotalSuccessfulRuns, monitor.TotalFailedRuns, monitor.AvgExecutionTimeSeconds)

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"ID", "Начало", "Статус", "Строк", "Без DIVIPOLA", "Без причины", "Секунд", "Ошибка"})
	for _, run := range runs {
		tw.AppendRow(table.Row{
			run.ID,
			run.StartTime.Format(time.DateTime),
			run.Status,
			run.RowsWritten,
			run.UnmatchedDivisions,
			run.UnmatchedCauses,
			fmt.Sprintf("%.2f", run.ExecutionTimeSeconds),
			run.ErrorMessage,
		})
	}
	tw.Render()
	return nil
}

func main() {
	// Параметры командной строки
	modePtr := flag.String("mode", "once", "Режим работы: once, scheduled или status")
	configPtr := flag.String("config", "", "Путь к YAML-файлу конфигурации")
	limitPtr := flag.Int("limit", 10, "Количество запусков в режиме status")

	flag.Parse()

	etlConfig, err := config.LoadConfig(*configPtr)
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	logger := utils.NewETLLogger(etlConfig.EnableDetailedLogging, etlConfig.LogDir)
	defer logger.Close()

	logger.Info("Запуск ETL Runner в режиме: %s", *modePtr)

	// Контекст отменяется при получении сигнала завершения
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *modePtr, *limitPtr, etlConfig, logger); err != nil {
		logger.Error("%v", err)
		logger.Close()
		os.Exit(1)
	}

	logger.Info("ETL Runner завершил работу")
}

func run(ctx context.Context, mode string, limit int, etlConfig config.Config, logger *utils.ETLLogger) error {
	if mode != "once" && mode != "scheduled" && mode != "status" {
		return fmt.Errorf("неизвестный режим работы: %s (доступные режимы: once, scheduled, status)", mode)
	}

	runner, err := NewETLRunner(ctx, etlConfig, logger)
	if err != nil {
		return fmt.Errorf("ошибка при создании ETL Runner: %w", err)
	}
	defer runner.Close()

	switch mode {
	case "scheduled":
		return runner.StartScheduler(ctx)
	case "status":
		return runner.PrintStatus(ctx, os.Stdout, limit)
	default:
		_, err := runner.ExecuteETL(ctx)
		return err
	}
}
