package models

// Колонки исходных таблиц (Anexo1 - факты, Anexo2 - коды причин, Anexo3 - Divipola)
const (
	ColCodDane      = "COD_DANE"
	ColYear         = "AÑO"
	ColMonth        = "MES"
	ColHour         = "HORA"
	ColMinute       = "MINUTOS"
	ColSex          = "SEXO"
	ColMaritalState = "ESTADO_CIVIL"
	ColAgeGroup     = "GRUPO_EDAD1"
	ColEducation    = "NIVEL_EDUCATIVO"
	ColMannerDeath  = "MANERA_MUERTE"
	ColCauseCode    = "COD_MUERTE"

	ColDepartment        = "DEPARTAMENTO"
	ColMunicipality      = "MUNICIPIO"
	ColFirstRegistration = "FECHA1erFIS"

	ColCIE4        = "CodigoCIE4"
	ColChapter     = "Nombre_capitulo"
	ColDescription = "Descripcion_mortalidad"
	ColDetail      = "Detalle"
)

// FactsColumns - колонки, читаемые из таблицы фактов смертности
var FactsColumns = []string{
	ColCodDane, ColYear, ColMonth, ColHour, ColMinute, ColSex, ColMaritalState,
	ColAgeGroup, ColEducation, ColMannerDeath, ColCauseCode,
}

// DivisionColumns - колонки справочника административного деления
var DivisionColumns = []string{ColCodDane, ColDepartment, ColMunicipality, ColFirstRegistration}

// CauseColumns - колонки справочника причин смерти
var CauseColumns = []string{ColCIE4, ColChapter, ColDescription, ColDetail}

// UnifiedColumns - итоговая схема единой таблицы (порядок важен)
var UnifiedColumns = []string{
	ColCodDane, ColYear, ColMonth, ColHour, ColMinute, ColSex, ColMaritalState, ColAgeGroup,
	ColEducation, ColMannerDeath, ColChapter, ColDescription,
	ColDetail, ColDepartment, ColMunicipality, ColFirstRegistration,
}
