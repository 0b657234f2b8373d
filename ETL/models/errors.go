package models

import (
	"errors"
	"fmt"
)

var (
	// ErrInputNotFound - входной файл ETL отсутствует
	ErrInputNotFound = errors.New("входной файл не найден")

	// ErrSnapshotNotFound - файл снимка для дашборда отсутствует
	ErrSnapshotNotFound = errors.New("файл снимка не найден")

	// ErrMissingYear - в снимке нет колонки года
	ErrMissingYear = errors.New("в снимке отсутствует колонка " + ColYear)
)

// SchemaError сообщает об отсутствии обязательной колонки
type SchemaError struct {
	Table  string
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("таблица %s: отсутствует колонка %q", e.Table, e.Column)
}
