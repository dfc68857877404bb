package config

import (
	"errors"
	"fmt"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
	"os"
	"strings"
)

const DefaultSchedule = "0 0 */6 * * *"

type FeedConfig struct {
	URLs []string `yaml:"urls"`
}

type ImportConfig struct {
	// SkipBadRecords переключает адаптеры с fail-fast на "залогировать и продолжить".
	SkipBadRecords bool `yaml:"skip_bad_records"`
	// FeedRateLimit ограничивает число запросов к фидам в секунду, 0 означает без ограничения.
	FeedRateLimit float64 `yaml:"feed_rate_limit"`
}

type MetricsConfig struct {
	PushgatewayURL string `yaml:"pushgateway_url"`
	Job            string `yaml:"job"`
	// Addr адрес HTTP /metrics в режиме schedule, пустой выключает сервер.
	Addr string `yaml:"addr"`
}

type AppConfig struct {
	Storage  StorageConfig         `yaml:"storage"`
	Feeds    map[string]FeedConfig `yaml:"feeds"`
	Import   ImportConfig          `yaml:"import"`
	Metrics  MetricsConfig         `yaml:"metrics"`
	Schedule string                `yaml:"schedule"`
	LogMode  string                `yaml:"log_mode"`
}

func LoadConfig(filename string) (*AppConfig, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	config := &AppConfig{}
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", filename, err)
	}
	return config, nil
}

// Load собирает конфигурацию процесса: .env (если есть), YAML файл из CATALOG_CONFIG
// (если задан), затем переменные окружения поверх.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &AppConfig{}
	if path := getEnv("CATALOG_CONFIG", ""); path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	applyStorageEnv(&cfg.Storage)
	cfg.Import.SkipBadRecords = getEnvBool("IMPORT_SKIP_BAD_RECORDS", cfg.Import.SkipBadRecords)
	cfg.Import.FeedRateLimit = getEnvFloat("FEED_RATE_LIMIT", cfg.Import.FeedRateLimit)
	cfg.Metrics.PushgatewayURL = getEnv("PROMETHEUS_PUSHGATEWAY_URL", cfg.Metrics.PushgatewayURL)
	cfg.Metrics.Job = getEnv("PROMETHEUS_JOB", orDefault(cfg.Metrics.Job, "catalog_import"))
	cfg.Metrics.Addr = getEnv("METRICS_ADDR", cfg.Metrics.Addr)
	cfg.Schedule = getEnv("IMPORT_SCHEDULE", orDefault(cfg.Schedule, DefaultSchedule))
	cfg.LogMode = getEnv("LOG_MODE", cfg.LogMode)
	return cfg, nil
}

// FeedURLs возвращает адреса фидов поставщика. Переменная окружения envKey
// (одна ссылка или список через запятую) важнее значения из YAML.
func (c *AppConfig) FeedURLs(code, envKey string) []string {
	if envKey != "" {
		if urls := splitURLs(os.Getenv(envKey)); len(urls) > 0 {
			return urls
		}
	}
	if c.Feeds == nil {
		return nil
	}
	var urls []string
	for _, u := range c.Feeds[code].URLs {
		urls = append(urls, splitURLs(u)...)
	}
	return urls
}

func splitURLs(raw string) []string {
	var urls []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			urls = append(urls, part)
		}
	}
	return urls
}
