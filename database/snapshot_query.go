// database/snapshot_query.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/LilVoxy/coursework_mortality/ETL/models"
)

// QuoteIdent экранирует имя таблицы или колонки обратными кавычками (MySQL и SQLite)
func QuoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// ReadSnapshot читает таблицу снимка целиком
func ReadSnapshot(ctx context.Context, db *sql.DB, table string) (models.Table, error) {
	rows, err := db.QueryContext(ctx, "SELECT * FROM "+QuoteIdent(table))
	if err != nil {
		return models.Table{}, fmt.Errorf("ошибка чтения таблицы снимка %s: %w", table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return models.Table{}, fmt.Errorf("ошибка получения колонок снимка: %w", err)
	}
	for i, c := range columns {
		columns[i] = models.NormalizeColumnName(c)
	}

	snapshot := models.NewTable(columns...)
	for rows.Next() {
		row := make([]sql.NullString, len(columns))
		dest := make([]interface{}, len(columns))
		for i := range row {
			dest[i] = &row[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return models.Table{}, fmt.Errorf("ошибка обработки строки снимка: %w", err)
		}
		for i, cell := range row {
			if cell.Valid {
				row[i] = models.Cell(cell.String)
			}
		}
		snapshot.Rows = append(snapshot.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return models.Table{}, fmt.Errorf("ошибка после итерации по снимку: %w", err)
	}

	return snapshot, nil
}

// stagingSuffix - суффикс таблицы, в которую загружается новый снимок перед заменой
const stagingSuffix = "_staging"

// ReplaceSnapshot заменяет таблицу снимка новыми строками.
// Строки сначала загружаются в промежуточную таблицу, и только после успешной
// загрузки старая таблица удаляется, а промежуточная переименовывается.
// При ошибке загрузки прежний снимок остается на месте (в MySQL DDL фиксируется неявно).
// Все колонки хранятся как TEXT, NULL сохраняется.
func ReplaceSnapshot(ctx context.Context, db *sql.DB, table string, snapshot models.Table) (int, error) {
	if len(snapshot.Columns) == 0 {
		return 0, fmt.Errorf("снимок для таблицы %s не содержит колонок", table)
	}

	staging := table + stagingSuffix
	if err := loadStaging(ctx, db, staging, snapshot); err != nil {
		if _, dropErr := db.ExecContext(ctx, "DROP TABLE IF EXISTS "+QuoteIdent(staging)); dropErr != nil {
			return 0, fmt.Errorf("%w (не удалось удалить %s: %v)", err, staging, dropErr)
		}
		return 0, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("ошибка при начале транзакции: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+QuoteIdent(table)); err != nil {
		return 0, fmt.Errorf("ошибка удаления таблицы %s: %w", table, err)
	}
	renameQuery := fmt.Sprintf("ALTER TABLE %s RENAME TO %s", QuoteIdent(staging), QuoteIdent(table))
	if _, err := tx.ExecContext(ctx, renameQuery); err != nil {
		return 0, fmt.Errorf("ошибка переименования %s в %s: %w", staging, table, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("ошибка при фиксации транзакции: %w", err)
	}
	return snapshot.Len(), nil
}

// loadStaging пересоздает промежуточную таблицу и записывает в нее все строки снимка
func loadStaging(ctx context.Context, db *sql.DB, staging string, snapshot models.Table) error {
	quoted := make([]string, len(snapshot.Columns))
	definitions := make([]string, len(snapshot.Columns))
	placeholders := make([]string, len(snapshot.Columns))
	for i, c := range snapshot.Columns {
		quoted[i] = QuoteIdent(c)
		definitions[i] = quoted[i] + " TEXT"
		placeholders[i] = "?"
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ошибка при начале транзакции: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+QuoteIdent(staging)); err != nil {
		return fmt.Errorf("ошибка удаления таблицы %s: %w", staging, err)
	}
	createQuery := fmt.Sprintf("CREATE TABLE %s (%s)", QuoteIdent(staging), strings.Join(definitions, ", "))
	if _, err := tx.ExecContext(ctx, createQuery); err != nil {
		return fmt.Errorf("ошибка создания таблицы %s: %w", staging, err)
	}

	insertQuery := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		QuoteIdent(staging), strings.Join(quoted, ", "), strings.Join(placeholders, ", "))
	stmt, err := tx.PrepareContext(ctx, insertQuery)
	if err != nil {
		return fmt.Errorf("ошибка при подготовке запроса: %w", err)
	}
	defer stmt.Close()

	args := make([]interface{}, len(snapshot.Columns))
	for r, row := range snapshot.Rows {
		if len(row) != len(snapshot.Columns) {
			return fmt.Errorf("строка %d: %d значений при %d колонках", r+1, len(row), len(snapshot.Columns))
		}
		for i, cell := range row {
			args[i] = cell
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("ошибка вставки строки %d: %w", r+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ошибка при фиксации транзакции: %w", err)
	}
	return nil
}
