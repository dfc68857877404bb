package middleware

import (
	"catalog_importer/metrics"
	"catalog_importer/pkg/logger"
	"net/http"
	"time"
)

// statusRecorder запоминает код ответа обработчика.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// Instrument считает запросы к next и пишет медленные ответы в лог.
func Instrument(next http.Handler, log logger.Logger, slow time.Duration) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		metrics.RecordRequest(r.URL.Path, rw.status)
		if elapsed := time.Since(start); slow > 0 && elapsed > slow {
			log.Log("%s %s served in %s, status %d", r.Method, r.URL.Path, elapsed, rw.status)
		}
	})
}
