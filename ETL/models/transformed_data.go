package models

import "time"

// ExtractedData содержит исходные таблицы, прочитанные на фазе Extract
type ExtractedData struct {
	Facts     Table // Anexo1: записи о смертях
	Causes    Table // Anexo2: справочник кодов причин
	Divisions Table // Anexo3: справочник Divipola
}

// TransformedData содержит единую таблицу для загрузки в снимок
type TransformedData struct {
	Unified Table

	// Метаданные
	Metadata ETLMetadata
}

// ETLMetadata содержит метаданные о запуске ETL
type ETLMetadata struct {
	RunTimestamp          time.Time
	FactsProcessed        int
	DivisionsProcessed    int
	CausesProcessed       int
	RowsWritten           int
	UnmatchedDivisions    int
	UnmatchedCauses       int
	DuplicateDivisionKeys int
	DuplicateCauseKeys    int
	DroppedColumns        []string
}
