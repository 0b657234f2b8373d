package config

import (
	"errors"
	"fmt"
	"os"
	"time"
	"unicode/utf8"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix - префикс переменных окружения, переопределяющих конфигурацию
const EnvPrefix = "MORTALIDAD_"

// Config содержит конфигурацию ETL-процесса и дашборда
type Config struct {
	// Исходные таблицы
	Sources SourcesConfig `yaml:"sources" envPrefix:"SOURCE_"`

	// Итоговый снимок
	Output OutputConfig `yaml:"output" envPrefix:"OUTPUT_"`

	// Необязательная SQL-база для копии снимка и журнала запусков
	Sink DatabaseConfig `yaml:"sink" envPrefix:"SINK_"`

	// Интервал запуска ETL в режиме scheduled
	RunInterval time.Duration `yaml:"run_interval" env:"RUN_INTERVAL"`

	// Настройки дашборда
	Dashboard DashboardConfig `yaml:"dashboard" envPrefix:"DASHBOARD_"`

	// Включение/отключение подробного логирования
	EnableDetailedLogging bool `yaml:"enable_detailed_logging" env:"DETAILED_LOGGING"`

	// Каталог для файлов лога (пусто - только stdout)
	LogDir string `yaml:"log_dir" env:"LOG_DIR"`
}

// SourcesConfig содержит пути к исходным таблицам
type SourcesConfig struct {
	FactsPath     string `yaml:"facts_path" env:"FACTS_PATH"`
	CausesPath    string `yaml:"causes_path" env:"CAUSES_PATH"`
	DivisionsPath string `yaml:"divisions_path" env:"DIVISIONS_PATH"`
	Delimiter     string `yaml:"delimiter" env:"DELIMITER"`
	Encoding      string `yaml:"encoding" env:"ENCODING"` // utf-8, latin-1 или windows-1252 (только CSV)
}

// OutputConfig содержит настройки итогового снимка
type OutputConfig struct {
	SnapshotPath string `yaml:"snapshot_path" env:"SNAPSHOT_PATH"`
	Delimiter    string `yaml:"delimiter" env:"DELIMITER"`
	Encoding     string `yaml:"encoding" env:"ENCODING"`
}

// Coordinate - координаты центра департамента
type Coordinate struct {
	Lat float64 `yaml:"lat"`
	Lon float64 `yaml:"lon"`
}

// DashboardConfig содержит настройки сервера дашборда
type DashboardConfig struct {
	Port int `yaml:"port" env:"PORT"`

	// Источник снимка: путь к файлу или sqlite://..., mysql://...
	Snapshot string `yaml:"snapshot" env:"SNAPSHOT"`

	// Набор возрастных интервалов: quinquenal_29 или quinquenal_completo
	BucketSet string `yaml:"bucket_set" env:"BUCKET_SET"`

	// Имя таблицы координат департаментов
	CoordinateTable string `yaml:"coordinate_table" env:"COORDINATE_TABLE"`

	// Дополнительные таблицы координат: имя -> департамент -> координаты
	CoordinateTables map[string]map[string]Coordinate `yaml:"coordinate_tables"`

	// Подстроки MANERA_MUERTE, по которым смерть считается насильственной
	ViolentNeedles []string `yaml:"violent_needles" env:"VIOLENT_NEEDLES" envSeparator:","`

	// Размер топа муниципалитетов
	TopN int `yaml:"top_n" env:"TOP_N"`
}

// Значения конфигурации по умолчанию
var (
	DefaultSinkConfig = DatabaseConfig{
		Enabled: false,
		Driver:  "sqlite",
		Path:    "mortalidad.db",
		Host:    "localhost",
		Port:    3306,
		User:    "root",
		DBName:  "mortalidad",
		Table:   "mortality_snapshot",
	}

	DefaultDashboardConfig = DashboardConfig{
		Port:            8050,
		Snapshot:        "src/Base_Unificada_Limpia_Completa.csv",
		BucketSet:       "quinquenal_29",
		CoordinateTable: "departamentos",
		ViolentNeedles:  []string{"homicidio"},
		TopN:            10,
	}

	DefaultConfig = Config{
		Sources: SourcesConfig{
			FactsPath:     "Anexo1.NoFetal2019_CE_15-03-23.xlsx",
			CausesPath:    "Anexo2.CodigosDeMuerte_CE_15-03-23.xlsx",
			DivisionsPath: "Anexo3.Divipola_CE_15-03-23.xlsx",
			Delimiter:     ";",
			Encoding:      "utf-8",
		},
		Output: OutputConfig{
			SnapshotPath: "src/Base_Unificada_Limpia_Completa.csv",
			Delimiter:    ";",
			Encoding:     "utf-8",
		},
		Sink:                  DefaultSinkConfig,
		RunInterval:           24 * time.Hour,
		Dashboard:             DefaultDashboardConfig,
		EnableDetailedLogging: false,
	}
)

// GetConfig возвращает конфигурацию по умолчанию
func GetConfig() Config {
	config := DefaultConfig
	config.Dashboard.ViolentNeedles = append([]string(nil), DefaultDashboardConfig.ViolentNeedles...)
	return config
}

// LoadConfig собирает конфигурацию: значения по умолчанию, затем YAML-файл (если задан),
// затем переменные окружения с префиксом MORTALIDAD_
func LoadConfig(path string) (Config, error) {
	config := GetConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("ошибка чтения файла конфигурации: %w", err)
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return Config{}, fmt.Errorf("ошибка разбора файла конфигурации %s: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(&config, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("ошибка чтения переменных окружения: %w", err)
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

// Validate проверяет согласованность конфигурации
func (c Config) Validate() error {
	if c.Sources.FactsPath == "" || c.Sources.CausesPath == "" || c.Sources.DivisionsPath == "" {
		return errors.New("не заданы пути к исходным таблицам")
	}
	if c.Output.SnapshotPath == "" {
		return errors.New("не задан путь к итоговому снимку")
	}
	if utf8.RuneCountInString(c.Sources.Delimiter) > 1 || utf8.RuneCountInString(c.Output.Delimiter) > 1 {
		return errors.New("разделитель CSV должен быть одним символом")
	}
	if _, err := LookupEncoding(c.Sources.Encoding); err != nil {
		return fmt.Errorf("sources.encoding: %w", err)
	}
	if _, err := LookupEncoding(c.Output.Encoding); err != nil {
		return fmt.Errorf("output.encoding: %w", err)
	}
	if c.RunInterval <= 0 {
		return errors.New("интервал запуска ETL должен быть положительным")
	}
	if c.Sink.Enabled && c.Sink.Driver != "mysql" && c.Sink.Driver != "sqlite" {
		return fmt.Errorf("неподдерживаемый драйвер базы данных: %s", c.Sink.Driver)
	}
	return nil
}

// DelimiterRune возвращает первый символ разделителя или ';'
func DelimiterRune(delimiter string) rune {
	r, _ := utf8.DecodeRuneInString(delimiter)
	if r == utf8.RuneError {
		return ';'
	}
	return r
}
