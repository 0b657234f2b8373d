package extractors

import (
	"bufio"
	"bytes"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/LilVoxy/coursework_mortality/ETL/config"
	"github.com/LilVoxy/coursework_mortality/ETL/models"
	"github.com/LilVoxy/coursework_mortality/processor"
	"github.com/go-gota/gota/dataframe"
	"github.com/xuri/excelize/v2"
)

// gotaNaN - значение, которым gota помечает пропуски при выводе Records
const gotaNaN = "NaN"

// ReadOptions задает параметры чтения исходной таблицы
type ReadOptions struct {
	// Разделитель CSV (по умолчанию ';')
	Delimiter rune
	// Кодировка CSV: utf-8 (по умолчанию), latin-1 или windows-1252
	Encoding string
	// Лист книги Excel (по умолчанию первый)
	Sheet string
}

// ReadTable читает таблицу из файла .xlsx, .csv или сжатого Snappy .csv.sz.
// Заголовки нормализуются, пустые ячейки становятся NULL.
func ReadTable(path string, opts ReadOptions) (models.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return models.Table{}, fmt.Errorf("%w: %s", models.ErrInputNotFound, path)
		}
		return models.Table{}, fmt.Errorf("ошибка открытия файла %s: %w", path, err)
	}
	defer file.Close()

	var r io.Reader = bufio.NewReader(file)
	if processor.IsCompressedPath(path) {
		r = processor.NewDecompressReader(r)
	}

	switch ext := processor.BaseExt(path); ext {
	case ".xlsx", ".xlsm":
		return readXLSX(r, opts.Sheet)
	case ".csv", ".txt":
		decoded, err := decodeReader(r, opts.Encoding)
		if err != nil {
			return models.Table{}, err
		}
		return readCSV(decoded, opts.Delimiter)
	default:
		return models.Table{}, fmt.Errorf("неподдерживаемый формат файла %q: %s", ext, path)
	}
}

func decodeReader(r io.Reader, encoding string) (io.Reader, error) {
	enc, err := config.LookupEncoding(encoding)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return r, nil
	}
	return enc.NewDecoder().Reader(r), nil
}

func readCSV(r io.Reader, delimiter rune) (models.Table, error) {
	if delimiter == 0 {
		delimiter = ';'
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return models.Table{}, fmt.Errorf("ошибка чтения CSV: %w", err)
	}

	// Все колонки читаются как строки: коды DANE и CIE сохраняют ведущие нули
	df := dataframe.ReadCSV(bytes.NewReader(data),
		dataframe.WithDelimiter(delimiter),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
	)
	if df.Err != nil {
		// gota не принимает файл без строк данных
		if header, ok := headerOnly(data, delimiter); ok {
			return tableFromRecords([][]string{header}, "")
		}
		return models.Table{}, fmt.Errorf("ошибка разбора CSV: %w", df.Err)
	}

	return tableFromRecords(df.Records(), gotaNaN)
}

// headerOnly возвращает заголовок, если CSV состоит только из него
func headerOnly(data []byte, delimiter rune) ([]string, bool) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	header, err := reader.Read()
	if err != nil {
		return nil, false
	}
	if _, err := reader.Read(); err != io.EOF {
		return nil, false
	}
	return header, true
}

func readXLSX(r io.Reader, sheet string) (models.Table, error) {
	book, err := excelize.OpenReader(r)
	if err != nil {
		return models.Table{}, fmt.Errorf("ошибка открытия книги Excel: %w", err)
	}
	defer book.Close()

	if sheet == "" {
		sheets := book.GetSheetList()
		if len(sheets) == 0 {
			return models.Table{}, errors.New("книга Excel не содержит листов")
		}
		sheet = sheets[0]
	}

	rows, err := book.GetRows(sheet)
	if err != nil {
		return models.Table{}, fmt.Errorf("ошибка чтения листа %s: %w", sheet, err)
	}

	return tableFromRecords(rows, "")
}

// tableFromRecords строит таблицу из записей, первая запись - заголовок.
// Значение nullToken (если задано) трактуется как NULL.
func tableFromRecords(records [][]string, nullToken string) (models.Table, error) {
	if len(records) == 0 {
		return models.Table{}, errors.New("таблица не содержит заголовка")
	}

	header := make([]string, len(records[0]))
	for i, name := range records[0] {
		header[i] = models.NormalizeColumnName(name)
	}

	table := models.NewTable(header...)
	table.Rows = make([][]sql.NullString, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make([]sql.NullString, len(header))
		for i := 0; i < len(header) && i < len(record); i++ {
			if nullToken != "" && record[i] == nullToken {
				continue
			}
			row[i] = models.Cell(record[i])
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}
