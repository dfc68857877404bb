package app

import (
	"catalog_importer/config"
	"catalog_importer/internal/core/services"
	"catalog_importer/internal/core/storage"
	"catalog_importer/internal/suppliers/euroklimate"
	"catalog_importer/internal/suppliers/generalclimate"
	"catalog_importer/internal/suppliers/importer"
	"catalog_importer/internal/suppliers/mhi"
	"catalog_importer/metrics"
	"catalog_importer/migrations/catalog"
	"catalog_importer/pkg/business/service/feed"
	"catalog_importer/pkg/dbconnect"
	"catalog_importer/pkg/dbconnect/migration"
	"catalog_importer/pkg/dbconnect/postgres"
	"catalog_importer/pkg/dbconnect/sqlite"
	"catalog_importer/pkg/logger"
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// ImporterApp собирает хранилище, миграции и адаптеры поставщиков.
type ImporterApp struct {
	dbconnect.Database
	cfg     *config.AppConfig
	log     logger.Logger
	db      *sql.DB
	catalog *storage.Catalog
	runner  *services.Runner
}

// NewConnector выбирает подключение по драйверу из конфигурации.
func NewConnector(cfg config.StorageConfig, log logger.Logger) dbconnect.Database {
	if strings.EqualFold(cfg.Driver, config.DriverPostgres) {
		return postgres.NewPgConnector(cfg.DbConfig(), log.WithPrefix("[postgres]"))
	}
	return sqlite.NewSQLiteConnector(cfg.DbConfig(), log.WithPrefix("[sqlite]"))
}

func NewImporterApp(connector dbconnect.Database, cfg *config.AppConfig, log logger.Logger) *ImporterApp {
	return &ImporterApp{Database: connector, cfg: cfg, log: log}
}

// Open подключается к базе и применяет миграции. Повторный вызов ничего не делает.
func (a *ImporterApp) Open() error {
	if a.db != nil {
		return nil
	}
	db, err := a.Connect()
	if err != nil {
		return fmt.Errorf("failed to connect to storage: %w", err)
	}
	if err := migration.Apply(db, a.log, catalog.Migrations(a.Dialect(), a.log)); err != nil {
		return err
	}
	a.db = db
	a.catalog = storage.NewCatalog(db, a.Dialect())
	a.runner = a.newRunner()
	a.log.Log("Catalog migrations applied successfully!")
	return nil
}

func (a *ImporterApp) newRunner() *services.Runner {
	limiter := feed.NewLimiter(a.cfg.Import.FeedRateLimit)
	opts := func(m *importer.Mapping) importer.Options {
		return importer.Options{
			URLs:           a.cfg.FeedURLs(m.Supplier, m.FeedEnv),
			Limiter:        limiter,
			SkipBadRecords: a.cfg.Import.SkipBadRecords,
			Log:            a.log,
		}
	}

	runner := services.NewRunner(a.log.WithPrefix("[runner]"))
	runner.Register(generalclimate.NewAdapter(a.catalog, opts(generalclimate.Mapping())))
	runner.Register(euroklimate.NewAdapter(a.catalog, opts(euroklimate.Mapping())))
	runner.Register(mhi.NewAdapter(a.catalog, opts(mhi.Mapping())))
	return runner
}

func (a *ImporterApp) Runner() *services.Runner {
	return a.runner
}

func (a *ImporterApp) Catalog() *storage.Catalog {
	return a.catalog
}

// PushMetrics отправляет метрики в Pushgateway, если он настроен.
func (a *ImporterApp) PushMetrics(ctx context.Context) {
	url := a.cfg.Metrics.PushgatewayURL
	if url == "" {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := metrics.Push(ctx, url, a.cfg.Metrics.Job); err != nil {
		a.log.Error("Failed to push metrics to %s: %v", url, err)
	}
}

func (a *ImporterApp) Close() error {
	a.db = nil
	return a.Database.Close()
}

// SupplierCodes перечисляет коды поставщиков, доступных для импорта.
func SupplierCodes() []string {
	return []string{
		generalclimate.Mapping().Supplier,
		euroklimate.Mapping().Supplier,
		mhi.Mapping().Supplier,
	}
}
