package importer

import (
	"catalog_importer/internal/core/category"
	"catalog_importer/internal/core/models"
	"catalog_importer/internal/core/services"
	"catalog_importer/internal/core/storage"
	"catalog_importer/metrics"
	"catalog_importer/pkg/business/service/feed"
	"catalog_importer/pkg/logger"
	"context"
	"errors"
	"fmt"
	"golang.org/x/time/rate"
)

// Decoder разбирает тело одного ответа фида в записи.
type Decoder func(body []byte) ([]feed.Record, error)

type Options struct {
	URLs []string
	// Fetcher по умолчанию HTTP с таймаутом из маппинга.
	Fetcher feed.Fetcher
	Limiter *rate.Limiter
	// SkipBadRecords пропускать записи с ошибкой вместо остановки импорта.
	SkipBadRecords bool
	Log            logger.Logger
}

// Adapter общий конвейер импорта: fetch -> decode -> запись за записью в каталог -> import_log.
type Adapter struct {
	mapping  *Mapping
	decode   Decoder
	catalog  *storage.Catalog
	resolver category.Resolver
	fetcher  feed.Fetcher
	urls     []string
	skipBad  bool
	log      logger.Logger
}

func NewAdapter(mapping *Mapping, decode Decoder, catalog *storage.Catalog, opts Options) *Adapter {
	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = feed.NewHTTPFetcher(mapping.Supplier, mapping.Timeout, opts.Limiter)
	}
	log := opts.Log
	if log == nil {
		log = logger.NewNop()
	}
	return &Adapter{
		mapping:  mapping,
		decode:   decode,
		catalog:  catalog,
		resolver: category.NewResolver(catalog, mapping.CategoryOptions()),
		fetcher:  fetcher,
		urls:     opts.URLs,
		skipBad:  opts.SkipBadRecords,
		log:      log.WithPrefix("[" + mapping.Supplier + "]"),
	}
}

func (a *Adapter) Code() string {
	return a.mapping.Supplier
}

// Run выполняет импорт. Ошибки конфигурации возвращаются до сетевых запросов
// и не пишутся в import_log, все остальные пишут одну строку status=error.
// Уже обработанные записи остаются в базе.
func (a *Adapter) Run(ctx context.Context, batchID string) (int, error) {
	code := a.mapping.Supplier
	run := &metrics.RunMetrics{}

	supplier, err := a.catalog.SupplierByCode(ctx, code)
	if err != nil {
		metrics.RecordRun(code, string(models.ImportStatusError), nil)
		if errors.Is(err, storage.ErrSupplierNotFound) {
			return 0, services.NewImportError(services.KindConfig, code,
				fmt.Errorf("добавьте поставщика %s в таблицу supplier", code))
		}
		return 0, services.NewImportError(services.KindStorage, code, err)
	}
	if len(a.urls) == 0 {
		metrics.RecordRun(code, string(models.ImportStatusError), nil)
		return 0, services.NewImportError(services.KindConfig, code,
			fmt.Errorf("%s не задан в .env", a.mapping.FeedEnv))
	}

	count, runErr := a.process(ctx, supplier.ID, batchID, run)
	if runErr != nil {
		a.log.Error("Импорт прерван: %v", runErr)
		var ie *services.ImportError
		message := runErr.Error()
		if errors.As(runErr, &ie) {
			message = ie.Err.Error()
		}
		if err := a.catalog.WriteImportLog(ctx, supplier.ID, batchID, models.ImportStatusError, message); err != nil {
			runErr = errors.Join(runErr, err)
		}
		metrics.RecordRun(code, string(models.ImportStatusError), run)
		return count, runErr
	}

	message := fmt.Sprintf("Импортировано: %d", count)
	if skipped := run.Skipped.Load(); skipped > 0 {
		message += fmt.Sprintf(", пропущено: %d", skipped)
	}
	if err := a.catalog.WriteImportLog(ctx, supplier.ID, batchID, models.ImportStatusOK, message); err != nil {
		metrics.RecordRun(code, string(models.ImportStatusError), run)
		return count, services.NewImportError(services.KindStorage, code, err)
	}
	a.log.Log("%s", message)
	metrics.RecordRun(code, string(models.ImportStatusOK), run)
	return count, nil
}

func (a *Adapter) process(ctx context.Context, supplierID int64, batchID string, run *metrics.RunMetrics) (int, error) {
	code := a.mapping.Supplier

	records, err := a.load(ctx)
	if err != nil {
		return 0, err
	}
	a.log.Log("Получено записей: %d", len(records))

	count := 0
	for i, rec := range records {
		run.Processed.Add(1)
		if err := a.importRecord(ctx, supplierID, batchID, rec); err != nil {
			if a.skipBad {
				run.Skipped.Add(1)
				a.log.Error("Запись %d пропущена: %v", i, err)
				continue
			}
			var ie *services.ImportError
			if errors.As(err, &ie) {
				ie.Err = fmt.Errorf("record %d: %w", i, ie.Err)
				return count, ie
			}
			return count, services.NewImportError(services.KindStorage, code, fmt.Errorf("record %d: %w", i, err))
		}
		run.Imported.Add(1)
		count++
	}
	return count, nil
}

// load выкачивает все URL по очереди и объединяет записи.
func (a *Adapter) load(ctx context.Context) ([]feed.Record, error) {
	code := a.mapping.Supplier
	var records []feed.Record
	for _, url := range a.urls {
		body, err := a.fetcher.Fetch(ctx, url)
		if err != nil {
			return nil, services.NewImportError(services.KindTransport, code, err)
		}
		batch, err := a.decode(body)
		if err != nil {
			return nil, services.NewImportError(services.KindParse, code, fmt.Errorf("%s: %w", url, err))
		}
		records = append(records, batch...)
	}
	return records, nil
}

func (a *Adapter) importRecord(ctx context.Context, supplierID int64, batchID string, rec feed.Record) error {
	code := a.mapping.Supplier

	raw, err := rec.Raw()
	if err != nil {
		return services.NewImportError(services.KindRecord, code, err)
	}
	if err := a.catalog.SaveRawImport(ctx, supplierID, batchID, raw); err != nil {
		return services.NewImportError(services.KindStorage, code, err)
	}

	item, err := a.mapping.Extract(rec)
	if err != nil {
		return services.NewImportError(services.KindRecord, code, err)
	}
	if err := a.store(ctx, supplierID, item); err != nil {
		return services.NewImportError(services.KindStorage, code, err)
	}
	return nil
}

func (a *Adapter) store(ctx context.Context, supplierID int64, item Item) error {
	brandID, err := a.catalog.UpsertBrand(ctx, item.Brand)
	if err != nil {
		return err
	}

	categoryIDs, err := a.resolver.Resolve(ctx, supplierID, item.CategoryPath)
	if err != nil {
		return err
	}

	productID, err := a.catalog.UpsertProduct(ctx, models.ProductInput{
		SKU:         item.SKU,
		Barcode:     item.Barcode,
		Title:       item.Title,
		BrandID:     brandID,
		Description: item.Description,
		OfferKey:    &models.OfferKey{SupplierID: supplierID, SupplierSKU: item.SupplierSKU},
	})
	if err != nil {
		return err
	}

	if len(categoryIDs) > 0 {
		if err := a.catalog.LinkProductToCategories(ctx, productID, categoryIDs); err != nil {
			return err
		}
	}

	title := item.Title
	err = a.catalog.UpsertSupplierOffer(ctx, models.Offer{
		SupplierID:  supplierID,
		SupplierSKU: item.SupplierSKU,
		ProductID:   productID,
		Title:       &title,
		Price:       item.Price,
		Currency:    item.Currency,
		Stock:       item.Stock,
		URL:         item.URL,
		Data:        item.Raw,
	})
	if err != nil {
		return err
	}

	for _, p := range item.Properties {
		if err := a.catalog.SetProductProperty(ctx, productID, p.Name, p.Value); err != nil {
			return err
		}
	}

	if len(item.Images) > 0 {
		if err := a.catalog.AddImages(ctx, productID, item.Images); err != nil {
			return err
		}
	}
	return nil
}
