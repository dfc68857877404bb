package config

import (
	"fmt"
	"net/url"
)

type DbConfig interface {
	GetDriverName() string
	GetConnectionString() string
}

// PostgresConfig represents the configuration needed to connect to a PostgreSQL database
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
}

func (pc *PostgresConfig) GetDriverName() string {
	return "postgres"
}

func (pc *PostgresConfig) GetConnectionString() string {
	sslMode := pc.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		pc.Host, pc.Port, pc.User, pc.Password, pc.DBName, sslMode)
}

// SQLiteConfig описывает локальный файл базы данных.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

func (sc *SQLiteConfig) GetDriverName() string {
	return "sqlite3"
}

func (sc *SQLiteConfig) GetConnectionString() string {
	params := url.Values{}
	params.Set("_busy_timeout", "5000")
	params.Set("_journal_mode", "WAL")
	params.Set("_foreign_keys", "1")
	return "file:" + sc.Path + "?" + params.Encode()
}
