package postgres

import (
	"catalog_importer/config"
	"catalog_importer/pkg/dbconnect"
	"catalog_importer/pkg/logger"
	"database/sql"
	"errors"
	"fmt"
	"github.com/lib/pq"
	"sync"
	"time"
)

const maxRetries = 10
const dbMaxOpenConns = 20
const retryDelay = 5 * time.Second

// uniqueViolationCode SQLSTATE 23505 unique_violation.
const uniqueViolationCode = "23505"

var Dialect = dbconnect.NewDialect(
	"postgres",
	"BIGSERIAL PRIMARY KEY",
	"JSONB",
	"TIMESTAMP WITH TIME ZONE",
	true,
	isUniqueViolation,
)

type PostgresDatabase struct {
	config.DbConfig
	db  *sql.DB
	log logger.Logger
	mu  sync.Mutex // Для защиты доступа к db

	// retryDelay вынесен в поле, чтобы тесты не ждали по 5 секунд
	retryDelay time.Duration
	maxRetries int
}

func NewPgConnector(dbConfig config.DbConfig, log logger.Logger) *PostgresDatabase {
	return &PostgresDatabase{
		DbConfig:   dbConfig,
		log:        log,
		retryDelay: retryDelay,
		maxRetries: maxRetries,
	}
}

func (pg *PostgresDatabase) Dialect() dbconnect.Dialect {
	return Dialect
}

func (pg *PostgresDatabase) Connect() (*sql.DB, error) {
	pg.mu.Lock()
	defer pg.mu.Unlock()

	if pg.db != nil {
		return pg.db, nil
	}

	var err error
	conStr := pg.GetConnectionString()

	for i := 0; i < pg.maxRetries; i++ {
		var db *sql.DB
		db, err = sql.Open("postgres", conStr)
		if err != nil {
			pg.log.Error("Failed to connect to Postgres (attempt %d/%d): %v", i+1, pg.maxRetries, err)
			time.Sleep(pg.retryDelay)
			continue
		}

		db.SetMaxOpenConns(dbMaxOpenConns)

		if err = db.Ping(); err != nil {
			pg.log.Error("Failed to ping Postgres db (attempt %d/%d): %v", i+1, pg.maxRetries, err)
			db.Close()
			time.Sleep(pg.retryDelay)
			continue
		}

		pg.log.Log("Successfully connected to Postgres")
		pg.db = db
		return pg.db, nil
	}
	return nil, fmt.Errorf("postgres connect failed after %d attempts: %w", pg.maxRetries, err)
}

func (pg *PostgresDatabase) Ping() error {
	pg.mu.Lock()
	defer pg.mu.Unlock()

	if pg.db == nil {
		return fmt.Errorf("database connection is not established")
	}

	if err := pg.db.Ping(); err != nil {
		pg.db.Close()
		pg.db = nil
		return fmt.Errorf("ping failed: %w", err)
	}
	return nil
}

func (pg *PostgresDatabase) Close() error {
	pg.mu.Lock()
	defer pg.mu.Unlock()

	if pg.db == nil {
		return nil
	}
	err := pg.db.Close()
	pg.db = nil
	return err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolationCode
	}
	return false
}
