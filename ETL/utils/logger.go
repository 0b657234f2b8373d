package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ETLLogger представляет логгер для ETL-процесса и сервера дашборда
type ETLLogger struct {
	sugar     *zap.SugaredLogger
	isVerbose bool
	// file - открытый лог-файл; закрывается только корневым логгером
	file *os.File
}

// NewETLLogger создает новый экземпляр логгера.
// Пишет в stdout и, если задан logDir, в файл etl_log_<дата>.log.
func NewETLLogger(verbose bool, logDir string) *ETLLogger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.Lock(os.Stdout), level),
	}

	var (
		logFile *os.File
		fileErr error
	)
	if logDir != "" {
		// Создаем или открываем лог-файл для записи
		logFileName := filepath.Join(logDir, fmt.Sprintf("etl_log_%s.log", time.Now().Format("2006-01-02")))
		file, err := os.OpenFile(logFileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			fileErr = err
		} else {
			logFile = file
			cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(file), level))
		}
	}

	logger := NewETLLoggerWithCore(zapcore.NewTee(cores...), verbose)
	logger.file = logFile
	if fileErr != nil {
		logger.Error("Не удалось открыть или создать файл лога: %v", fileErr)
	}
	return logger
}

// NewETLLoggerWithCore создает логгер поверх готового zapcore.Core
func NewETLLoggerWithCore(core zapcore.Core, verbose bool) *ETLLogger {
	return &ETLLogger{
		sugar:     zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).Sugar(),
		isVerbose: verbose,
	}
}

// NewNopLogger возвращает логгер, который ничего не пишет
func NewNopLogger() *ETLLogger {
	return &ETLLogger{sugar: zap.NewNop().Sugar()}
}

// Named возвращает дочерний логгер с именем компонента
func (l *ETLLogger) Named(component string) *ETLLogger {
	return &ETLLogger{sugar: l.sugar.Named(component), isVerbose: l.isVerbose}
}

// Info логирует информационное сообщение
func (l *ETLLogger) Info(format string, v ...interface{}) {
	l.sugar.Infof(format, v...)
}

// Warn логирует предупреждение
func (l *ETLLogger) Warn(format string, v ...interface{}) {
	l.sugar.Warnf(format, v...)
}

// Error логирует сообщение об ошибке
func (l *ETLLogger) Error(format string, v ...interface{}) {
	l.sugar.Errorf(format, v...)
}

// Debug логирует отладочное сообщение (только если включен verbose режим)
func (l *ETLLogger) Debug(format string, v ...interface{}) {
	if !l.isVerbose {
		return
	}
	l.sugar.Debugf(format, v...)
}

// Sync сбрасывает буферы логгера
func (l *ETLLogger) Sync() error {
	return l.sugar.Sync()
}

// Close сбрасывает буферы и закрывает лог-файл. Повторный вызов ничего не делает.
// Ошибка Sync для stdout не возвращается: терминалы ее не поддерживают.
func (l *ETLLogger) Close() error {
	_ = l.sugar.Sync()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	if err != nil {
		return fmt.Errorf("ошибка закрытия файла лога: %w", err)
	}
	return nil
}

// LogETLStart логирует начало ETL-процесса
func (l *ETLLogger) LogETLStart() {
	l.Info("Начало выполнения ETL-процесса")
}

// LogETLComplete логирует завершение ETL-процесса
func (l *ETLLogger) LogETLComplete(startTime time.Time, rowsWritten, unmatchedDivisions, unmatchedCauses int) {
	l.Info("ETL-процесс завершён. Длительность: %v", time.Since(startTime))
	l.Info("Записано строк: %d, без совпадения в Divipola: %d, без совпадения в справочнике причин: %d",
		rowsWritten, unmatchedDivisions, unmatchedCauses)
}

// LogExtractStart логирует начало фазы извлечения данных
func (l *ETLLogger) LogExtractStart() {
	l.Info("Начало фазы Extract (Извлечение данных)")
}

// LogExtractComplete логирует завершение фазы извлечения данных
func (l *ETLLogger) LogExtractComplete(facts, causes, divisions int, duration time.Duration) {
	l.Info("Фаза Extract завершена. Длительность: %v", duration)
	l.Info("Извлечено: %d записей о смертях, %d кодов причин, %d муниципалитетов", facts, causes, divisions)
}
