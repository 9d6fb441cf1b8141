package transport

import (
	"errors"
	"net/http"
	"strconv"

	"shoplite/internal/domain"
	"shoplite/internal/middleware"
	"shoplite/internal/repository"
	"shoplite/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductListResponse is one page of the catalog with filter metadata
type ProductListResponse struct {
	Success    bool                   `json:"success"`
	Data       []*domain.Product      `json:"data"`
	Pagination service.Pagination     `json:"pagination"`
	Filters    service.CatalogFilters `json:"filters"`
}

// CategoryListResponse is the unpaginated listing of one category
type CategoryListResponse struct {
	Success  bool              `json:"success"`
	Data     []*domain.Product `json:"data"`
	Category string            `json:"category"`
	Count    int               `json:"count"`
}

// ProductStatsResponse is the catalog aggregate with its low-stock appendix
type ProductStatsResponse struct {
	Success  bool                    `json:"success"`
	Data     repository.ProductStats `json:"data"`
	LowStock []*domain.Product       `json:"lowStock"`
}

// ProductHandler handles HTTP requests for catalog operations
type ProductHandler struct {
	productService service.ProductService
	logger         *zap.Logger
	development    bool
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService, logger *zap.Logger, development bool) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
		development:    development,
	}
}

// RegisterRoutes registers all catalog routes. Reads are public; mutations
// require an authenticated admin.
func (h *ProductHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/stats/summary", h.Stats)
		r.Get("/category/{category}", h.ListByCategory)
		r.Get("/{id}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(adminMiddleware)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
}

// List returns a filtered, sorted, paginated catalog page
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	query := service.CatalogQuery{
		Category: q.Get("category"),
		Search:   q.Get("search"),
		Sort:     q.Get("sort"),
		Page:     atoiDefault(q.Get("page"), 1),
		Limit:    atoiDefault(q.Get("limit"), 20),
	}

	if raw := q.Get("minPrice"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "minPrice must be a number")
			return
		}
		query.MinPrice = &v
	}
	if raw := q.Get("maxPrice"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "maxPrice must be a number")
			return
		}
		query.MaxPrice = &v
	}

	products, pagination, filters, err := h.productService.List(r.Context(), query)
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithInternalError(w, "failed to fetch products", err, h.development)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ProductListResponse{
		Success:    true,
		Data:       products,
		Pagination: pagination,
		Filters:    filters,
	})
}

// Get returns a single product by ID
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID format")
		return
	}

	product, err := h.productService.Get(r.Context(), id)
	if err != nil {
		if err == repository.ErrProductNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}

		h.logger.Error("Failed to get product", zap.Error(err))
		middleware.RespondWithInternalError(w, "failed to fetch product", err, h.development)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    product,
	})
}

// ListByCategory returns every product of one category, name ascending
func (h *ProductHandler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")

	products, err := h.productService.ListByCategory(r.Context(), category)
	if err != nil {
		h.logger.Error("Failed to list products by category", zap.Error(err))
		middleware.RespondWithInternalError(w, "failed to fetch products", err, h.development)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, CategoryListResponse{
		Success:  true,
		Data:     products,
		Category: category,
		Count:    len(products),
	})
}

// Create adds a new product to the catalog (admin only)
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.ProductInput

	if err := middleware.DecodeAndValidate(r, &input); err != nil {
		if msg := middleware.FirstValidationMessage(err); msg != "" {
			middleware.RespondWithError(w, http.StatusBadRequest, msg)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.productService.Create(r.Context(), input)
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			middleware.RespondWithError(w, http.StatusBadRequest, verr.Message)
		case err == repository.ErrProductAlreadyExists:
			middleware.RespondWithError(w, http.StatusConflict, "product with this SKU already exists")
		default:
			h.logger.Error("Failed to create product", zap.Error(err))
			middleware.RespondWithInternalError(w, "failed to create product", err, h.development)
		}
		return
	}

	h.logger.Info("Product created", zap.String("product_id", product.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Product created successfully",
		"data":    product,
	})
}

// Update replaces a product's mutable fields (admin only)
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID format")
		return
	}

	var input service.ProductInput
	if err := middleware.DecodeAndValidate(r, &input); err != nil {
		if msg := middleware.FirstValidationMessage(err); msg != "" {
			middleware.RespondWithError(w, http.StatusBadRequest, msg)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.productService.Update(r.Context(), id, input)
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			middleware.RespondWithError(w, http.StatusBadRequest, verr.Message)
		case err == repository.ErrProductNotFound:
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
		default:
			h.logger.Error("Failed to update product", zap.Error(err))
			middleware.RespondWithInternalError(w, "failed to update product", err, h.development)
		}
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Product updated successfully",
		"data":    product,
	})
}

// Delete removes a product from the catalog (admin only)
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID format")
		return
	}

	if err := h.productService.Delete(r.Context(), id); err != nil {
		if err == repository.ErrProductNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}

		h.logger.Error("Failed to delete product", zap.Error(err))
		middleware.RespondWithInternalError(w, "failed to delete product", err, h.development)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Product deleted successfully",
	})
}

// Stats returns the catalog aggregate (admin dashboard)
func (h *ProductHandler) Stats(w http.ResponseWriter, r *http.Request) {
	summary, err := h.productService.Stats(r.Context())
	if err != nil {
		h.logger.Error("Failed to get product stats", zap.Error(err))
		middleware.RespondWithInternalError(w, "failed to fetch statistics", err, h.development)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ProductStatsResponse{
		Success:  true,
		Data:     summary.Stats,
		LowStock: summary.LowStock,
	})
}

// atoiDefault parses an integer query parameter, falling back on bad input
func atoiDefault(raw string, def int) int {
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
