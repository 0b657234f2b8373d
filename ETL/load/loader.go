package load

import (
	"context"

	"github.com/LilVoxy/coursework_mortality/ETL/models"
)

// SnapshotLoader записывает единую таблицу в одно место назначения.
// Каждый вызов полностью заменяет предыдущий снимок.
type SnapshotLoader interface {
	// LoadSnapshot записывает таблицу и возвращает число записанных строк
	LoadSnapshot(ctx context.Context, table models.Table) (int, error)

	// Target описывает место назначения для логов
	Target() string
}
