package category

import (
	"context"
	"fmt"
)

// Policy правило сопоставления сегмента пути с существующим узлом.
type Policy string

const (
	// PolicyExact сравнивает название как есть.
	PolicyExact Policy = "exact"
	// PolicyNormalized сравнивает NormalizeName(название), так что "Сплит-системы"
	// и "сплит-системы" сходятся в один узел.
	PolicyNormalized Policy = "normalized"
)

// ParsePolicy разбирает значение из конфигурации маппинга. Пустое значение дает exact.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicyExact:
		return PolicyExact, nil
	case PolicyNormalized:
		return PolicyNormalized, nil
	}
	return "", fmt.Errorf("unknown category policy %q", s)
}

type Options struct {
	Policy Policy
	// Memoize включает кэш (поставщик, ключ пути) -> лист. Результат тогда только [лист].
	Memoize bool
}

// Store примитивы хранилища, на которых работает резолвер.
type Store interface {
	FindCategoryByName(ctx context.Context, name string, parentID *int64) (int64, bool, error)
	FindCategoryByNormName(ctx context.Context, nameNorm string, parentID *int64) (int64, bool, error)
	InsertCategory(ctx context.Context, name, nameNorm string, parentID *int64) error
	LookupCategoryMap(ctx context.Context, supplierID int64, pathKey string) (int64, bool, error)
	SaveCategoryMap(ctx context.Context, supplierID int64, pathKey string, categoryID int64) error
}

type Resolver interface {
	Resolve(ctx context.Context, supplierID int64, path []string) ([]int64, error)
}

type PathResolver struct {
	store Store
	opts  Options
}

func NewResolver(store Store, opts Options) *PathResolver {
	if opts.Policy == "" {
		opts.Policy = PolicyExact
	}
	return &PathResolver{store: store, opts: opts}
}

// Resolve возвращает id категорий для пути root->leaf согласно настройкам резолвера.
// Пустой путь дает nil без ошибки.
func (r *PathResolver) Resolve(ctx context.Context, supplierID int64, path []string) ([]int64, error) {
	if r.opts.Memoize {
		return r.memoized(ctx, supplierID, path, r.opts.Policy)
	}
	return r.walk(ctx, CleanPath(path), r.opts.Policy)
}

// UpsertPath проходит путь по точному совпадению названия и родителя, создавая
// недостающие узлы. Возвращает всю цепочку root->leaf.
func (r *PathResolver) UpsertPath(ctx context.Context, path []string) ([]int64, error) {
	return r.walk(ctx, CleanPath(path), PolicyExact)
}

// ResolveSupplierPath ищет лист по кэшу поставщика, а при промахе проходит путь
// по нормализованным названиям и запоминает результат. Всегда возвращает [лист].
func (r *PathResolver) ResolveSupplierPath(ctx context.Context, supplierID int64, path []string) ([]int64, error) {
	return r.memoized(ctx, supplierID, path, PolicyNormalized)
}

func (r *PathResolver) memoized(ctx context.Context, supplierID int64, path []string, policy Policy) ([]int64, error) {
	key := PathKey(path)
	if key == "" {
		return nil, nil
	}

	leaf, ok, err := r.store.LookupCategoryMap(ctx, supplierID, key)
	if err != nil {
		return nil, err
	}
	if ok {
		return []int64{leaf}, nil
	}

	chain, err := r.walk(ctx, CleanPath(path), policy)
	if err != nil {
		return nil, err
	}
	if len(chain) == 0 {
		return nil, nil
	}
	leaf = chain[len(chain)-1]
	if err := r.store.SaveCategoryMap(ctx, supplierID, key, leaf); err != nil {
		return nil, err
	}
	return []int64{leaf}, nil
}

func (r *PathResolver) walk(ctx context.Context, path []string, policy Policy) ([]int64, error) {
	var chain []int64
	var parentID *int64
	for _, name := range path {
		id, err := r.node(ctx, name, parentID, policy)
		if err != nil {
			return nil, err
		}
		chain = append(chain, id)
		parent := id
		parentID = &parent
	}
	return chain, nil
}

// node находит или создает один узел под parentID. Уникальный индекс по
// (родитель, name_norm) делает вставку безопасной при гонке: проигравший
// просто находит строку победителя.
func (r *PathResolver) node(ctx context.Context, name string, parentID *int64, policy Policy) (int64, error) {
	nameNorm := NormalizeName(name)

	find := func() (int64, bool, error) {
		if policy == PolicyExact {
			return r.store.FindCategoryByName(ctx, name, parentID)
		}
		return r.store.FindCategoryByNormName(ctx, nameNorm, parentID)
	}

	id, ok, err := find()
	if err != nil || ok {
		return id, err
	}
	if err := r.store.InsertCategory(ctx, name, nameNorm, parentID); err != nil {
		return 0, err
	}
	if id, ok, err = find(); err != nil || ok {
		return id, err
	}

	// Точного совпадения нет, но вставка наткнулась на соседа с тем же name_norm.
	id, ok, err = r.store.FindCategoryByNormName(ctx, nameNorm, parentID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("category %q disappeared after insert", name)
	}
	return id, nil
}
