package load

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/LilVoxy/coursework_mortality/ETL/config"
	"github.com/LilVoxy/coursework_mortality/ETL/models"
	"github.com/LilVoxy/coursework_mortality/ETL/utils"
	"github.com/LilVoxy/coursework_mortality/processor"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/transform"
)

// SheetName - лист книги Excel с итоговым снимком
const SheetName = "Base_Unificada"

// FileLoader записывает снимок в файл .csv, .csv.sz или .xlsx
type FileLoader struct {
	path      string
	delimiter rune
	encoding  string
	logger    *utils.ETLLogger
}

// NewFileLoader создает новый экземпляр FileLoader
func NewFileLoader(output config.OutputConfig, logger *utils.ETLLogger) *FileLoader {
	return &FileLoader{
		path:      output.SnapshotPath,
		delimiter: config.DelimiterRune(output.Delimiter),
		encoding:  output.Encoding,
		logger:    logger,
	}
}

// Target возвращает путь к файлу снимка
func (l *FileLoader) Target() string {
	return l.path
}

// LoadSnapshot записывает таблицу во временный файл и атомарно заменяет им прежний снимок
func (l *FileLoader) LoadSnapshot(ctx context.Context, table models.Table) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	startTime := time.Now()
	l.logger.Info("Запись снимка в %s (строк: %d)", l.path, table.Len())

	ext := processor.BaseExt(l.path)
	if ext != ".csv" && ext != ".xlsx" {
		return 0, fmt.Errorf("неподдерживаемый формат снимка: %s", l.path)
	}

	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("ошибка создания каталога %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return 0, fmt.Errorf("ошибка создания временного файла: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if err := l.write(tmp, ext, table); err != nil {
		return 0, err
	}
	if err := tmp.Sync(); err != nil {
		return 0, fmt.Errorf("ошибка сброса файла снимка: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("ошибка закрытия файла снимка: %w", err)
	}
	if err := os.Rename(tmpName, l.path); err != nil {
		return 0, fmt.Errorf("ошибка замены файла снимка: %w", err)
	}
	committed = true

	l.logger.Debug("Снимок %s записан за %v", l.path, time.Since(startTime))
	return table.Len(), nil
}

func (l *FileLoader) write(file *os.File, ext string, table models.Table) error {
	buffered := bufio.NewWriter(file)

	var w io.Writer = buffered
	var compressor io.WriteCloser
	if processor.IsCompressedPath(l.path) {
		compressor = processor.NewCompressWriter(buffered)
		w = compressor
	}

	var err error
	switch ext {
	case ".xlsx":
		err = writeXLSX(w, table)
	default:
		err = writeCSV(w, table, l.delimiter, l.encoding)
	}
	if err != nil {
		return err
	}

	if compressor != nil {
		if err := compressor.Close(); err != nil {
			return fmt.Errorf("ошибка сжатия снимка: %w", err)
		}
	}
	if err := buffered.Flush(); err != nil {
		return fmt.Errorf("ошибка записи снимка: %w", err)
	}
	return nil
}

// writeCSV пишет заголовок и строки, NULL записывается пустой ячейкой
func writeCSV(w io.Writer, table models.Table, delimiter rune, encoding string) error {
	enc, err := config.LookupEncoding(encoding)
	if err != nil {
		return fmt.Errorf("кодировка снимка: %w", err)
	}
	var encoder *transform.Writer
	if enc != nil {
		// Close сбрасывает остаток перекодировщика
		encoder = transform.NewWriter(w, enc.NewEncoder())
		w = encoder
	}

	writer := csv.NewWriter(w)
	writer.Comma = delimiter
	if err := writer.WriteAll(table.Records()); err != nil {
		return fmt.Errorf("ошибка записи CSV: %w", err)
	}

	if encoder != nil {
		if err := encoder.Close(); err != nil {
			return fmt.Errorf("ошибка перекодирования снимка: %w", err)
		}
	}
	return nil
}

// writeXLSX пишет таблицу на лист Base_Unificada потоковым писателем excelize
func writeXLSX(w io.Writer, table models.Table) error {
	book := excelize.NewFile()
	defer book.Close()

	if err := book.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("ошибка переименования листа: %w", err)
	}

	stream, err := book.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("ошибка создания потокового писателя: %w", err)
	}

	header := make([]interface{}, len(table.Columns))
	for i, name := range table.Columns {
		header[i] = name
	}
	if err := stream.SetRow("A1", header); err != nil {
		return fmt.Errorf("ошибка записи заголовка: %w", err)
	}

	for r, row := range table.Rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := stream.SetRow(cell, xlsxValues(row)); err != nil {
			return fmt.Errorf("ошибка записи строки %d: %w", r+1, err)
		}
	}

	if err := stream.Flush(); err != nil {
		return fmt.Errorf("ошибка завершения листа: %w", err)
	}
	if err := book.Write(w); err != nil {
		return fmt.Errorf("ошибка записи книги Excel: %w", err)
	}
	return nil
}

func xlsxValues(row []sql.NullString) []interface{} {
	values := make([]interface{}, len(row))
	for i, cell := range row {
		if cell.Valid {
			values[i] = cell.String
		}
	}
	return values
}
