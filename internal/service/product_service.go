package service

import (
	"context"
	"time"

	"shoplite/internal/domain"
	"shoplite/internal/repository"

	"github.com/google/uuid"
)

// sortKeys maps the public sort vocabulary onto columns and directions.
// A leading "-" flips the natural direction of the key; rating's natural
// order is highest first.
var sortKeys = map[string]struct {
	column string
	order  repository.SortOrder
}{
	"name":    {"name", repository.SortOrderAsc},
	"-name":   {"name", repository.SortOrderDesc},
	"price":   {"price", repository.SortOrderAsc},
	"-price":  {"price", repository.SortOrderDesc},
	"rating":  {"rating", repository.SortOrderDesc},
	"-rating": {"rating", repository.SortOrderAsc},
	"newest":  {"created_at", repository.SortOrderDesc},
}

// ResolveSortKey translates a sort key to a column and direction. Unknown
// keys fall back to name ascending.
func ResolveSortKey(key string) (string, repository.SortOrder) {
	if s, ok := sortKeys[key]; ok {
		return s.column, s.order
	}
	return "name", repository.SortOrderAsc
}

// CatalogQuery is the full query surface of a product listing
type CatalogQuery struct {
	Category string
	MinPrice *float64
	MaxPrice *float64
	Search   string
	Sort     string
	Page     int
	Limit    int
}

// CatalogFilters is the filter metadata returned alongside a listing
type CatalogFilters struct {
	Categories []string              `json:"categories"`
	PriceRange repository.PriceRange `json:"priceRange"`
}

// ProductInput carries the fields an admin may set on a product
type ProductInput struct {
	SKU              string  `json:"sku"`
	Name             string  `json:"name" validate:"required,min=2,max=100"`
	Brand            string  `json:"brand" validate:"required"`
	ShortDescription string  `json:"short"`
	Description      string  `json:"description"`
	ImageURL         string  `json:"image"`
	Price            float64 `json:"price" validate:"required,gt=0"`
	Stock            int     `json:"stock" validate:"gte=0"`
	Category         string  `json:"category" validate:"required"`
	Rating           float64 `json:"rating" validate:"gte=0,lte=5"`
	Discount         float64 `json:"discount" validate:"gte=0,lte=100"`
	SalePrice        float64 `json:"salePrice" validate:"gte=0"`
	Featured         bool    `json:"featured"`
	IsActive         *bool   `json:"isActive"`
}

// ProductStatsSummary is the stats payload with its low-stock appendix
type ProductStatsSummary struct {
	Stats    repository.ProductStats `json:"data"`
	LowStock []*domain.Product       `json:"lowStock"`
}

// ProductService defines the interface for catalog business logic
type ProductService interface {
	List(ctx context.Context, query CatalogQuery) ([]*domain.Product, Pagination, CatalogFilters, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	ListByCategory(ctx context.Context, category string) ([]*domain.Product, error)
	Create(ctx context.Context, input ProductInput) (*domain.Product, error)
	Update(ctx context.Context, id uuid.UUID, input ProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context) (ProductStatsSummary, error)
}

type productService struct {
	productRepo repository.ProductRepository
}

// NewProductService creates a new instance of ProductService
func NewProductService(productRepo repository.ProductRepository) ProductService {
	return &productService{productRepo: productRepo}
}

// List translates the catalog query into a filtered, sorted, paginated
// repository lookup and attaches filter metadata for the storefront UI
func (s *productService) List(ctx context.Context, query CatalogQuery) ([]*domain.Product, Pagination, CatalogFilters, error) {
	page, limit := NormalizePage(query.Page, query.Limit, 20)
	column, order := ResolveSortKey(query.Sort)

	filter := repository.ProductFilter{
		Category: query.Category,
		MinPrice: query.MinPrice,
		MaxPrice: query.MaxPrice,
		Search:   query.Search,
	}

	products, total, err := s.productRepo.List(ctx, filter, page, limit, column, order)
	if err != nil {
		return nil, Pagination{}, CatalogFilters{}, err
	}

	categories, err := s.productRepo.Categories(ctx)
	if err != nil {
		return nil, Pagination{}, CatalogFilters{}, err
	}

	priceRange, err := s.productRepo.PriceRange(ctx)
	if err != nil {
		return nil, Pagination{}, CatalogFilters{}, err
	}

	filters := CatalogFilters{
		Categories: categories,
		PriceRange: priceRange,
	}

	return products, NewPagination(page, limit, total), filters, nil
}

// Get retrieves a single product
func (s *productService) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

// ListByCategory retrieves all products of a category, name ascending
func (s *productService) ListByCategory(ctx context.Context, category string) ([]*domain.Product, error) {
	return s.productRepo.ListByCategory(ctx, category)
}

// validateProductInput applies the invariants the schema cannot express
func validateProductInput(input ProductInput) *ValidationError {
	if !domain.IsValidCategory(input.Category) {
		return invalid("category", "category_invalid", input.Category+" is not a valid category")
	}
	if input.SalePrice > input.Price {
		return invalid("salePrice", "sale_price_exceeds_price", "sale price cannot exceed regular price")
	}
	return nil
}

// Create adds a product to the catalog
func (s *productService) Create(ctx context.Context, input ProductInput) (*domain.Product, error) {
	if verr := validateProductInput(input); verr != nil {
		return nil, verr
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}
	imageURL := input.ImageURL
	if imageURL == "" {
		imageURL = "images/default-product.jpg"
	}

	product := &domain.Product{
		ID:               uuid.New(),
		SKU:              input.SKU,
		Name:             input.Name,
		Brand:            input.Brand,
		ShortDescription: input.ShortDescription,
		Description:      input.Description,
		ImageURL:         imageURL,
		Price:            input.Price,
		Stock:            input.Stock,
		Category:         input.Category,
		Rating:           input.Rating,
		Discount:         input.Discount,
		SalePrice:        input.SalePrice,
		Featured:         input.Featured,
		IsActive:         isActive,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// Update replaces the mutable fields of an existing product
func (s *productService) Update(ctx context.Context, id uuid.UUID, input ProductInput) (*domain.Product, error) {
	if verr := validateProductInput(input); verr != nil {
		return nil, verr
	}

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	product.SKU = input.SKU
	product.Name = input.Name
	product.Brand = input.Brand
	product.ShortDescription = input.ShortDescription
	product.Description = input.Description
	if input.ImageURL != "" {
		product.ImageURL = input.ImageURL
	}
	product.Price = input.Price
	product.Stock = input.Stock
	product.Category = input.Category
	product.Rating = input.Rating
	product.Discount = input.Discount
	product.SalePrice = input.SalePrice
	product.Featured = input.Featured
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	product.UpdatedAt = time.Now()

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// Delete removes a product from the catalog
func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.productRepo.Delete(ctx, id)
}

// Stats aggregates the catalog and lists products running low
func (s *productService) Stats(ctx context.Context) (ProductStatsSummary, error) {
	stats, err := s.productRepo.Stats(ctx)
	if err != nil {
		return ProductStatsSummary{}, err
	}

	lowStock, err := s.productRepo.LowStock(ctx, 5, 5)
	if err != nil {
		return ProductStatsSummary{}, err
	}

	return ProductStatsSummary{Stats: stats, LowStock: lowStock}, nil
}
