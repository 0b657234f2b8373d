package config

import (
	"database/sql"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// DatabaseConfig содержит настройки подключения к базе данных
type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled" env:"ENABLED"`
	Driver   string `yaml:"driver" env:"DRIVER"` // mysql или sqlite
	Path     string `yaml:"path" env:"PATH"`     // файл базы для sqlite
	Host     string `yaml:"host" env:"HOST"`
	Port     int    `yaml:"port" env:"PORT"`
	User     string `yaml:"user" env:"USER"`
	Password string `yaml:"password" env:"PASSWORD"`
	DBName   string `yaml:"dbname" env:"DBNAME"`
	Table    string `yaml:"table" env:"TABLE"` // таблица снимка
}

// DSN формирует строку подключения для выбранного драйвера
func (c DatabaseConfig) DSN() string {
	if c.Driver == "sqlite" {
		return c.Path
	}

	cfg := mysql.NewConfig()
	cfg.User = c.User
	cfg.Passwd = c.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	cfg.DBName = c.DBName
	cfg.ParseTime = true
	return cfg.FormatDSN()
}

// ConnectDatabase устанавливает подключение к базе данных снимка
func ConnectDatabase(config DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open(config.Driver, config.DSN())
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к базе данных %s: %w", config.Driver, err)
	}

	// Настройка параметров подключения
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	if config.Driver == "sqlite" {
		// SQLite допускает одного писателя
		db.SetMaxOpenConns(1)
	}

	// Проверка подключения
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("не удалось установить соединение с базой данных %s: %w", config.Driver, err)
	}

	return db, nil
}

// CloseDatabase закрывает подключение к базе данных
func CloseDatabase(db *sql.DB) error {
	if db == nil {
		return nil
	}
	if err := db.Close(); err != nil {
		return fmt.Errorf("ошибка при закрытии соединения с базой данных: %w", err)
	}
	return nil
}
