package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CATALOG_CONFIG", "")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("POSTGRES_HOST", "db")
	t.Setenv("IMPORT_SKIP_BAD_RECORDS", "true")
	t.Setenv("FEED_RATE_LIMIT", "2.5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Driver != "postgres" {
		t.Fatalf("Driver: want=%q got=%q", "postgres", cfg.Storage.Driver)
	}
	dbCfg := cfg.Storage.DbConfig()
	if dbCfg.GetDriverName() != "postgres" {
		t.Fatalf("driver name: got=%q", dbCfg.GetDriverName())
	}
	want := "host=db port=5432 user=postgres password=postgres dbname=postgres sslmode=disable"
	if dbCfg.GetConnectionString() != want {
		t.Fatalf("conn string: want=%q got=%q", want, dbCfg.GetConnectionString())
	}
	if !cfg.Import.SkipBadRecords {
		t.Fatalf("SkipBadRecords: want=true")
	}
	if cfg.Import.FeedRateLimit != 2.5 {
		t.Fatalf("FeedRateLimit: want=2.5 got=%v", cfg.Import.FeedRateLimit)
	}
	if cfg.Schedule != DefaultSchedule {
		t.Fatalf("Schedule: want=%q got=%q", DefaultSchedule, cfg.Schedule)
	}
}

func TestLoadDefaultsToSQLite(t *testing.T) {
	t.Setenv("CATALOG_CONFIG", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DB_PATH", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	dbCfg := cfg.Storage.DbConfig()
	if dbCfg.GetDriverName() != "sqlite3" {
		t.Fatalf("driver name: want=sqlite3 got=%q", dbCfg.GetDriverName())
	}
	if cfg.Storage.SQLite.Path != "./central.db" {
		t.Fatalf("DB_PATH default: got=%q", cfg.Storage.SQLite.Path)
	}
}

func TestFeedURLsEnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	body := "feeds:\n  mhi:\n    urls:\n      - https://a.example/1.json\n      - https://a.example/2.json\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CATALOG_CONFIG", path)
	t.Setenv("MHI_URLS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.FeedURLs("mhi", "MHI_URLS"); len(got) != 2 {
		t.Fatalf("yaml urls: want=2 got=%v", got)
	}

	t.Setenv("MHI_URLS", " https://b.example/x.json, ,https://b.example/y.json ")
	got := cfg.FeedURLs("mhi", "MHI_URLS")
	if len(got) != 2 || got[0] != "https://b.example/x.json" || got[1] != "https://b.example/y.json" {
		t.Fatalf("env urls: got=%v", got)
	}
	if got := cfg.FeedURLs("unknown", "UNSET_FEED_URL"); got != nil {
		t.Fatalf("unknown supplier: want=nil got=%v", got)
	}
}
