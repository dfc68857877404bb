package category_test

import (
	"catalog_importer/internal/core/category"
	"catalog_importer/internal/core/storage/storagetest"
	"context"
	"testing"
)

func TestUpsertPathIsIdempotent(t *testing.T) {
	ctx := context.Background()
	c := storagetest.Open(t)
	r := category.NewResolver(c, category.Options{Policy: category.PolicyExact})

	path := []string{"Кондиционеры", "Сплит-системы", "GC-EAF"}
	first, err := r.UpsertPath(ctx, path)
	if err != nil {
		t.Fatalf("UpsertPath: %v", err)
	}
	if len(first) != 3 {
		t.Fatalf("chain length: want=3 got=%d", len(first))
	}
	second, err := r.UpsertPath(ctx, path)
	if err != nil {
		t.Fatalf("UpsertPath again: %v", err)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("chain[%d]: want=%d got=%d", i, first[i], second[i])
		}
	}
	if n := storagetest.Count(t, c, "category"); n != 3 {
		t.Fatalf("category rows: want=3 got=%d", n)
	}
}

func TestUpsertPathSameNameDifferentParents(t *testing.T) {
	ctx := context.Background()
	c := storagetest.Open(t)
	r := category.NewResolver(c, category.Options{})

	a, err := r.UpsertPath(ctx, []string{"Кондиционеры", "Аксессуары"})
	if err != nil {
		t.Fatalf("UpsertPath: %v", err)
	}
	b, err := r.UpsertPath(ctx, []string{"Тепловые насосы", "Аксессуары"})
	if err != nil {
		t.Fatalf("UpsertPath: %v", err)
	}
	if a[1] == b[1] {
		t.Fatalf("leaves under different parents must differ")
	}
}

func TestUpsertPathFallsBackToNormalizedSibling(t *testing.T) {
	ctx := context.Background()
	c := storagetest.Open(t)
	r := category.NewResolver(c, category.Options{})

	a, err := r.UpsertPath(ctx, []string{"Кондиционеры"})
	if err != nil {
		t.Fatalf("UpsertPath: %v", err)
	}
	b, err := r.UpsertPath(ctx, []string{"КОНДИЦИОНЕРЫ"})
	if err != nil {
		t.Fatalf("UpsertPath: %v", err)
	}
	if a[0] != b[0] {
		t.Fatalf("want the existing sibling %d, got %d", a[0], b[0])
	}
}

func TestResolveSupplierPathCollapsesCase(t *testing.T) {
	ctx := context.Background()
	c := storagetest.Open(t)
	supplierID := storagetest.SupplierID(t, c, "euroklimate")
	r := category.NewResolver(c, category.Options{Policy: category.PolicyNormalized, Memoize: true})

	first, err := r.ResolveSupplierPath(ctx, supplierID, []string{"Кондиционеры", "Сплит-системы"})
	if err != nil {
		t.Fatalf("ResolveSupplierPath: %v", err)
	}
	second, err := r.ResolveSupplierPath(ctx, supplierID, []string{"кондиционеры", "сплит-системы"})
	if err != nil {
		t.Fatalf("ResolveSupplierPath: %v", err)
	}
	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("want single leaf, got %v and %v", first, second)
	}
	if first[0] != second[0] {
		t.Fatalf("leaf: want=%d got=%d", first[0], second[0])
	}
	if n := storagetest.Count(t, c, "category"); n != 2 {
		t.Fatalf("category rows: want=2 got=%d", n)
	}
	if n := storagetest.Count(t, c, "supplier_category_map"); n != 1 {
		t.Fatalf("category map rows: want=1 got=%d", n)
	}
}

func TestResolveSupplierPathUsesMap(t *testing.T) {
	ctx := context.Background()
	c := storagetest.Open(t)
	supplierID := storagetest.SupplierID(t, c, "euroklimate")
	r := category.NewResolver(c, category.Options{Policy: category.PolicyNormalized, Memoize: true})

	chain, err := r.UpsertPath(ctx, []string{"Обогреватели"})
	if err != nil {
		t.Fatalf("UpsertPath: %v", err)
	}
	key := category.PathKey([]string{"Конвекторы"})
	if err := c.SaveCategoryMap(ctx, supplierID, key, chain[0]); err != nil {
		t.Fatalf("SaveCategoryMap: %v", err)
	}

	got, err := r.Resolve(ctx, supplierID, []string{"Конвекторы"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(got) != 1 || got[0] != chain[0] {
		t.Fatalf("want mapped leaf %d, got %v", chain[0], got)
	}
	if n := storagetest.Count(t, c, "category"); n != 1 {
		t.Fatalf("category rows: want=1 got=%d", n)
	}
}

func TestResolveEmptyPath(t *testing.T) {
	ctx := context.Background()
	c := storagetest.Open(t)

	for _, opts := range []category.Options{
		{Policy: category.PolicyExact},
		{Policy: category.PolicyNormalized, Memoize: true},
	} {
		r := category.NewResolver(c, opts)
		ids, err := r.Resolve(ctx, 1, []string{"", "  "})
		if err != nil {
			t.Fatalf("Resolve(%+v): %v", opts, err)
		}
		if len(ids) != 0 {
			t.Fatalf("Resolve(%+v): want no ids got %v", opts, ids)
		}
	}
	if n := storagetest.Count(t, c, "category"); n != 0 {
		t.Fatalf("category rows: want=0 got=%d", n)
	}
}
