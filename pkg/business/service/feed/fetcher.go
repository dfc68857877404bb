package feed

import (
	"catalog_importer/metrics"
	"context"
	"fmt"
	"golang.org/x/time/rate"
	"io"
	"net/http"
	"time"
)

// Fetcher определяет интерфейс для получения данных по URL
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// StatusError ответ сервера с кодом вне диапазона 2xx.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d for %s", e.Code, e.URL)
}

// HTTPFetcher читает фид целиком. Каждый запрос ограничен Timeout,
// а при заданном Limiter запросы идут не чаще его лимита.
type HTTPFetcher struct {
	Client   *http.Client
	Timeout  time.Duration
	Limiter  *rate.Limiter
	Supplier string
}

func NewHTTPFetcher(supplier string, timeout time.Duration, limiter *rate.Limiter) *HTTPFetcher {
	return &HTTPFetcher{
		Client:   &http.Client{},
		Timeout:  timeout,
		Limiter:  limiter,
		Supplier: supplier,
	}
}

// NewLimiter строит лимитер на perSecond запросов в секунду. Ноль и меньше дает nil (без ограничения).
func NewLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(perSecond), 1)
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if f.Limiter != nil {
		if err := f.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	start := time.Now()
	resp, err := f.Client.Do(req)
	if err != nil {
		metrics.RecordFeedRequest(f.Supplier, 0, time.Since(start))
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.RecordFeedRequest(f.Supplier, resp.StatusCode, time.Since(start))
		return nil, &StatusError{URL: url, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	metrics.RecordFeedRequest(f.Supplier, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}
