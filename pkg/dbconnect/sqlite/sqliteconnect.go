package sqlite

import (
	"catalog_importer/config"
	"catalog_importer/pkg/dbconnect"
	"catalog_importer/pkg/logger"
	"database/sql"
	"errors"
	"fmt"
	"github.com/mattn/go-sqlite3"
	"sync"
)

var Dialect = dbconnect.NewDialect(
	"sqlite",
	"INTEGER PRIMARY KEY AUTOINCREMENT",
	"TEXT",
	"TIMESTAMP",
	false,
	isUniqueViolation,
)

// SQLiteDatabase локальное хранилище в одном файле. Пишет только одно
// соединение: SQLite сериализует запись, а лишние соединения дают SQLITE_BUSY.
type SQLiteDatabase struct {
	config.DbConfig
	db  *sql.DB
	log logger.Logger
	mu  sync.Mutex
}

func NewSQLiteConnector(dbConfig config.DbConfig, log logger.Logger) *SQLiteDatabase {
	return &SQLiteDatabase{DbConfig: dbConfig, log: log}
}

func (s *SQLiteDatabase) Dialect() dbconnect.Dialect {
	return Dialect
}

func (s *SQLiteDatabase) Connect() (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return s.db, nil
	}

	db, err := sql.Open("sqlite3", s.GetConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite: %w", err)
	}

	s.log.Log("Successfully opened SQLite database")
	s.db = db
	return s.db, nil
}

func (s *SQLiteDatabase) Ping() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return fmt.Errorf("database connection is not established")
	}
	return s.db.Ping()
}

func (s *SQLiteDatabase) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func isUniqueViolation(err error) bool {
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
