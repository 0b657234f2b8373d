package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestETLLogger_DebugOnlyWhenVerbose(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	quiet := NewETLLoggerWithCore(core, false)
	quiet.Debug("скрыто %d", 1)
	quiet.Info("видно %d", 2)

	loud := NewETLLoggerWithCore(core, true)
	loud.Debug("отладка %s", "ok")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "видно 2", entries[0].Message)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "отладка ok", entries[1].Message)
	assert.Equal(t, zapcore.DebugLevel, entries[1].Level)
}

func TestETLLogger_NamedAndPhaseHelpers(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := NewETLLoggerWithCore(core, false).Named("extract")

	logger.LogExtractComplete(10, 3, 4, time.Second)
	logger.Error("ошибка: %v", os.ErrNotExist)

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "extract", entries[0].LoggerName)
	assert.Contains(t, entries[1].Message, "10 записей")
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
}

func TestNewETLLogger_WritesDailyFile(t *testing.T) {
	dir := t.TempDir()
	logger := NewETLLogger(true, dir)
	logger.Info("запуск %s", "теста")
	_ = logger.Sync()

	matches, err := filepath.Glob(filepath.Join(dir, "etl_log_*.log"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "запуск теста"))
}

func TestETLLogger_CloseReleasesFile(t *testing.T) {
	dir := t.TempDir()
	logger := NewETLLogger(false, dir)
	require.NotNil(t, logger.file)
	logger.Named("etl").Info("до закрытия")

	// дочерний логгер файлом не владеет
	assert.NoError(t, logger.Named("ws").Close())
	require.NotNil(t, logger.file)

	require.NoError(t, logger.Close())
	assert.Nil(t, logger.file)
	assert.NoError(t, logger.Close())

	matches, err := filepath.Glob(filepath.Join(dir, "etl_log_*.log"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "до закрытия")
	assert.NoError(t, os.Remove(matches[0]))
}

func TestNewNopLogger(t *testing.T) {
	logger := NewNopLogger()
	logger.Info("ничего")
	logger.Debug("ничего")
	assert.NotNil(t, logger.Named("x"))
	assert.NoError(t, logger.Close())
}
