package services

import (
	"catalog_importer/pkg/logger"
	"context"
	"errors"
	"fmt"
	"time"
)

// BatchLayout формат идентификатора пакета: UTC с миллисекундами.
const BatchLayout = "2006-01-02T15:04:05.000Z"

func NewBatchID(now time.Time) string {
	return now.UTC().Format(BatchLayout)
}

// Runner хранит адаптеры в порядке регистрации и запускает их последовательно.
type Runner struct {
	adapters []SupplierAdapter
	byCode   map[string]SupplierAdapter
	log      logger.Logger
	now      func() time.Time
}

func NewRunner(log logger.Logger) *Runner {
	return &Runner{
		byCode: map[string]SupplierAdapter{},
		log:    log,
		now:    time.Now,
	}
}

func (r *Runner) Register(adapter SupplierAdapter) {
	if _, ok := r.byCode[adapter.Code()]; ok {
		panic(fmt.Sprintf("adapter %s registered twice", adapter.Code()))
	}
	r.adapters = append(r.adapters, adapter)
	r.byCode[adapter.Code()] = adapter
}

func (r *Runner) Codes() []string {
	codes := make([]string, 0, len(r.adapters))
	for _, a := range r.adapters {
		codes = append(codes, a.Code())
	}
	return codes
}

// RunOne запускает адаптер по коду. Пустой batchID заменяется текущим временем.
func (r *Runner) RunOne(ctx context.Context, code, batchID string) (int, error) {
	adapter, ok := r.byCode[code]
	if !ok {
		return 0, NewImportError(KindConfig, code, fmt.Errorf("unknown supplier %q", code))
	}
	if batchID == "" {
		batchID = NewBatchID(r.now())
	}

	r.log.Log("Запуск импорта %s, batch %s", code, batchID)
	count, err := adapter.Run(ctx, batchID)
	if err != nil {
		return count, err
	}
	r.log.Log("Импорт %s завершен: %d", code, count)
	return count, nil
}

// RunAll запускает все адаптеры подряд с batch "<ts>_<code>". Падение одного
// поставщика не останавливает остальных; ошибки собираются через errors.Join.
func (r *Runner) RunAll(ctx context.Context) error {
	ts := NewBatchID(r.now())
	var errs []error
	for _, adapter := range r.adapters {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if _, err := r.RunOne(ctx, adapter.Code(), ts+"_"+adapter.Code()); err != nil {
			r.log.Error("Импорт %s завершился ошибкой: %v", adapter.Code(), err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
