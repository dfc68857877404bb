package config

import (
	"os"
	"strconv"
	"strings"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// StorageConfig выбирает хранилище: локальный SQLite файл или Postgres.
type StorageConfig struct {
	Driver   string         `yaml:"driver"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// DbConfig возвращает конфигурацию подключения для выбранного драйвера.
func (s StorageConfig) DbConfig() DbConfig {
	if strings.EqualFold(s.Driver, DriverPostgres) {
		pg := s.Postgres
		return &pg
	}
	lite := s.SQLite
	return &lite
}

func applyStorageEnv(s *StorageConfig) {
	s.Driver = getEnv("DB_DRIVER", orDefault(s.Driver, DriverSQLite))
	s.SQLite.Path = getEnv("DB_PATH", orDefault(s.SQLite.Path, "./central.db"))

	s.Postgres.Host = getEnv("POSTGRES_HOST", orDefault(s.Postgres.Host, "localhost"))
	s.Postgres.Port = getEnv("POSTGRES_PORT", orDefault(s.Postgres.Port, "5432"))
	s.Postgres.User = getEnv("POSTGRES_USER", orDefault(s.Postgres.User, "postgres"))
	s.Postgres.Password = getEnv("POSTGRES_PASSWORD", orDefault(s.Postgres.Password, "postgres"))
	s.Postgres.DBName = getEnv("POSTGRES_NAME", orDefault(s.Postgres.DBName, "postgres"))
	s.Postgres.SSLMode = getEnv("POSTGRES_SSLMODE", orDefault(s.Postgres.SSLMode, "disable"))
}

func getEnv(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return f
}

func orDefault(value, def string) string {
	if value == "" {
		return def
	}
	return value
}
