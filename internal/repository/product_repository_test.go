package repository

import (
	"context"
	"testing"
	"time"

	"shoplite/internal/domain"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func clearProducts(t *testing.T) {
	t.Helper()
	if _, err := testDB.Exec("DELETE FROM products"); err != nil {
		t.Fatalf("failed to clear products: %v", err)
	}
}

func seedCatalogProduct(t *testing.T, name, brand, category string, price, rating float64, stock int) *domain.Product {
	t.Helper()
	product := &domain.Product{
		ID:        uuid.New(),
		SKU:       "SKU-" + uuid.NewString()[:8],
		Name:      name,
		Brand:     brand,
		ImageURL:  "images/default-product.jpg",
		Price:     price,
		Stock:     stock,
		Category:  category,
		Rating:    rating,
		IsActive:  true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := NewProductRepository(testDB).Create(context.Background(), product); err != nil {
		t.Fatalf("failed to seed product %s: %v", name, err)
	}
	return product
}

func TestProperty_ProductCreationPreservesAttributes(t *testing.T) {
	repo := NewProductRepository(testDB)

	properties := gopter.NewProperties(nil)

	properties.Property("creating and retrieving a product preserves all attributes", prop.ForAll(
		func(name string, brand string, price float64, stock int, rating float64) bool {
			ctx := context.Background()

			product := &domain.Product{
				ID:        uuid.New(),
				SKU:       "SKU-" + uuid.NewString()[:8],
				Name:      name,
				Brand:     brand,
				ImageURL:  "images/default-product.jpg",
				Price:     price,
				Stock:     stock,
				Category:  domain.CategoryLaptop,
				Rating:    rating,
				IsActive:  true,
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			}

			if err := repo.Create(ctx, product); err != nil {
				t.Logf("FAIL: Failed to create product: %v", err)
				return false
			}

			retrieved, err := repo.FindByID(ctx, product.ID)
			if err != nil {
				t.Logf("FAIL: Failed to retrieve product: %v", err)
				return false
			}

			if retrieved.Name != product.Name || retrieved.Brand != product.Brand {
				t.Logf("FAIL: name/brand mismatch: %q/%q", retrieved.Name, retrieved.Brand)
				return false
			}
			if retrieved.Price < product.Price-0.01 || retrieved.Price > product.Price+0.01 {
				t.Logf("FAIL: price mismatch. Expected %f, got %f", product.Price, retrieved.Price)
				return false
			}
			if retrieved.Stock != product.Stock {
				t.Logf("FAIL: stock mismatch. Expected %d, got %d", product.Stock, retrieved.Stock)
				return false
			}
			if retrieved.Category != domain.CategoryLaptop {
				t.Logf("FAIL: category mismatch: %q", retrieved.Category)
				return false
			}

			return true
		},
		gen.RegexMatch(`[A-Za-z][A-Za-z0-9 ]{1,40}`),
		gen.RegexMatch(`[A-Za-z]{2,20}`),
		gen.Float64Range(0.01, 99999).Map(func(v float64) float64 {
			return float64(int(v*100)) / 100
		}),
		gen.IntRange(0, 500),
		gen.Float64Range(0, 5).Map(func(v float64) float64 {
			return float64(int(v*10)) / 10
		}),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProductListFiltersAndSorts(t *testing.T) {
	clearProducts(t)
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	seedCatalogProduct(t, "ProBook 14", "Lenari", domain.CategoryLaptop, 15999, 4.5, 12)
	seedCatalogProduct(t, "ZenBook 13", "Asaki", domain.CategoryLaptop, 18999, 4.8, 5)
	seedCatalogProduct(t, "Aero Buds", "Soniq", domain.CategoryHeadphones, 899, 4.2, 40)
	seedCatalogProduct(t, "Pixel Slab", "Graphite", domain.CategoryTablet, 7499, 3.9, 8)

	t.Run("category filter", func(t *testing.T) {
		products, total, err := repo.List(ctx, ProductFilter{Category: domain.CategoryLaptop}, 1, 10, "name", SortOrderAsc)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if total != 2 || len(products) != 2 {
			t.Fatalf("total = %d, products = %d, want 2/2", total, len(products))
		}
	})

	t.Run("price bounds", func(t *testing.T) {
		min, max := 1000.0, 16000.0
		products, total, err := repo.List(ctx, ProductFilter{MinPrice: &min, MaxPrice: &max}, 1, 10, "name", SortOrderAsc)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if total != 2 {
			t.Fatalf("total = %d, want 2", total)
		}
		for _, p := range products {
			if p.Price < min || p.Price > max {
				t.Errorf("product %s price %v outside bounds", p.Name, p.Price)
			}
		}
	})

	t.Run("search matches name and brand", func(t *testing.T) {
		_, total, err := repo.List(ctx, ProductFilter{Search: "book"}, 1, 10, "name", SortOrderAsc)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if total != 2 {
			t.Errorf("search 'book' total = %d, want 2", total)
		}

		_, total, err = repo.List(ctx, ProductFilter{Search: "soniq"}, 1, 10, "name", SortOrderAsc)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if total != 1 {
			t.Errorf("search 'soniq' total = %d, want 1", total)
		}
	})

	t.Run("price descending", func(t *testing.T) {
		products, _, err := repo.List(ctx, ProductFilter{}, 1, 10, "price", SortOrderDesc)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		for i := 1; i < len(products); i++ {
			if products[i].Price > products[i-1].Price {
				t.Fatalf("products not sorted by price descending at index %d", i)
			}
		}
	})

	t.Run("categories and price range metadata", func(t *testing.T) {
		categories, err := repo.Categories(ctx)
		if err != nil {
			t.Fatalf("Categories failed: %v", err)
		}
		if len(categories) != 3 {
			t.Errorf("categories = %v, want 3 distinct", categories)
		}

		priceRange, err := repo.PriceRange(ctx)
		if err != nil {
			t.Fatalf("PriceRange failed: %v", err)
		}
		if priceRange.Min != 899 || priceRange.Max != 18999 {
			t.Errorf("price range = %+v, want 899..18999", priceRange)
		}
	})

	t.Run("low stock", func(t *testing.T) {
		lowStock, err := repo.LowStock(ctx, 9, 10)
		if err != nil {
			t.Fatalf("LowStock failed: %v", err)
		}
		if len(lowStock) != 2 {
			t.Errorf("low stock count = %d, want 2", len(lowStock))
		}
	})
}

func TestProductUpdateAndDelete(t *testing.T) {
	clearProducts(t)
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	product := seedCatalogProduct(t, "ProBook 14", "Lenari", domain.CategoryLaptop, 15999, 4.5, 12)

	product.Price = 13999
	product.Stock = 9
	if err := repo.Update(ctx, product); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	found, err := repo.FindByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if found.Price != 13999 || found.Stock != 9 {
		t.Errorf("updated product = %v/%d, want 13999/9", found.Price, found.Stock)
	}

	if err := repo.Delete(ctx, product.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := repo.FindByID(ctx, product.ID); err != ErrProductNotFound {
		t.Errorf("error = %v, want ErrProductNotFound", err)
	}
	if err := repo.Delete(ctx, product.ID); err != ErrProductNotFound {
		t.Errorf("second delete error = %v, want ErrProductNotFound", err)
	}
}

func TestProductDuplicateSKU(t *testing.T) {
	clearProducts(t)
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	first := seedCatalogProduct(t, "ProBook 14", "Lenari", domain.CategoryLaptop, 15999, 4.5, 12)

	duplicate := &domain.Product{
		ID:        uuid.New(),
		SKU:       first.SKU,
		Name:      "ProBook 14 v2",
		Brand:     "Lenari",
		ImageURL:  "images/default-product.jpg",
		Price:     16999,
		Stock:     3,
		Category:  domain.CategoryLaptop,
		IsActive:  true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := repo.Create(ctx, duplicate); err != ErrProductAlreadyExists {
		t.Errorf("error = %v, want ErrProductAlreadyExists", err)
	}
}
