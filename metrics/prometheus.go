package metrics

import (
	"context"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
	"net/http"
	"time"
)

// Registry собственный реестр импортера. Его отдает MetricsHandler и его же
// отправляет Push.
var Registry = prometheus.NewRegistry()

var (
	feedRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_feed_requests_total",
			Help: "Total number of supplier feed requests.",
		},
		[]string{"supplier", "status"},
	)
	feedRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_feed_request_duration_seconds",
			Help:    "Histogram of supplier feed request durations.",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"supplier", "status"},
	)
	importRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_import_runs_total",
			Help: "Total number of supplier import runs by outcome.",
		},
		[]string{"supplier", "status"},
	)
	importRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_import_records_total",
			Help: "Total number of feed records by outcome.",
		},
		[]string{"supplier", "outcome"},
	)
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_http_requests_total",
			Help: "Total number of requests served by the importer HTTP endpoint.",
		},
		[]string{"path", "status"},
	)
	importLastSuccess = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "catalog_import_last_success_timestamp_seconds",
			Help: "Unix time of the last successful import run.",
		},
		[]string{"supplier"},
	)
)

func init() {
	Registry.MustRegister(feedRequestsTotal)
	Registry.MustRegister(feedRequestDuration)
	Registry.MustRegister(importRunsTotal)
	Registry.MustRegister(importRecordsTotal)
	Registry.MustRegister(importLastSuccess)
	Registry.MustRegister(httpRequestsTotal)
}

// RecordFeedRequest записывает метрики для запроса фида. statusCode 0 значит,
// что ответа не было (таймаут, обрыв соединения).
func RecordFeedRequest(supplier string, statusCode int, duration time.Duration) {
	status := classifyStatus(statusCode)
	feedRequestsTotal.WithLabelValues(supplier, status).Inc()
	feedRequestDuration.WithLabelValues(supplier, status).Observe(duration.Seconds())
}

// RecordRun записывает итог запуска адаптера и счетчики его записей.
func RecordRun(supplier, status string, run *RunMetrics) {
	importRunsTotal.WithLabelValues(supplier, status).Inc()
	if run != nil {
		importRecordsTotal.WithLabelValues(supplier, "imported").Add(float64(run.Imported.Load()))
		importRecordsTotal.WithLabelValues(supplier, "skipped").Add(float64(run.Skipped.Load()))
	}
	if status == "ok" {
		importLastSuccess.WithLabelValues(supplier).SetToCurrentTime()
	}
}

// RecordRequest учитывает запрос к собственному HTTP-эндпоинту импортера.
func RecordRequest(path string, statusCode int) {
	httpRequestsTotal.WithLabelValues(path, classifyStatus(statusCode)).Inc()
}

// classifyStatus классифицирует HTTP-статус код в строку.
func classifyStatus(statusCode int) string {
	if statusCode >= 200 && statusCode < 300 {
		return "2xx"
	} else if statusCode >= 300 && statusCode < 400 {
		return "3xx"
	} else if statusCode >= 400 && statusCode < 500 {
		return "4xx"
	} else if statusCode >= 500 && statusCode < 600 {
		return "5xx"
	}
	return "error"
}

// MetricsHandler возвращает HTTP-обработчик для экспорта метрик Prometheus.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Push отправляет текущие значения в Prometheus Pushgateway.
func Push(ctx context.Context, url, job string) error {
	return push.New(url, job).Gatherer(Registry).PushContext(ctx)
}
