package transport

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"shoplite/internal/domain"
	"shoplite/internal/middleware"
	"shoplite/internal/repository"
	"shoplite/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// estimatedDeliveryWindow is advisory only and never persisted
const estimatedDeliveryWindow = 7 * 24 * time.Hour

// CreatedOrder is the checkout confirmation payload
type CreatedOrder struct {
	ID                uuid.UUID          `json:"id"`
	OrderNumber       string             `json:"orderNumber"`
	Items             []domain.OrderItem `json:"items"`
	Subtotal          float64            `json:"subtotal"`
	Tax               float64            `json:"tax"`
	ShippingCost      float64            `json:"shippingCost"`
	Total             float64            `json:"total"`
	Status            domain.OrderStatus `json:"status"`
	CreatedAt         time.Time          `json:"createdAt"`
	EstimatedDelivery time.Time          `json:"estimatedDelivery"`
}

// CreateOrderResponse wraps a successful checkout
type CreateOrderResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Order   CreatedOrder `json:"order"`
}

// OrderView is an order with its derived display number
type OrderView struct {
	*domain.Order
	OrderNumber string `json:"orderNumber"`
}

// OrderListResponse is one page of the caller's orders
type OrderListResponse struct {
	Success    bool               `json:"success"`
	Data       []*domain.Order    `json:"data"`
	Pagination service.Pagination `json:"pagination"`
}

// UpdateStatusRequest asks to move an order to a new status
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// OrderHandler handles HTTP requests for order operations
type OrderHandler struct {
	orderService service.OrderService
	logger       *zap.Logger
	development  bool
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService service.OrderService, logger *zap.Logger, development bool) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
		development:  development,
	}
}

// RegisterRoutes registers all order routes. Every route requires
// authentication; the status transition additionally requires admin.
func (h *OrderHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Use(authMiddleware)

		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/stats/summary", h.Stats)
		r.Get("/{id}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(adminMiddleware)
			r.Patch("/{id}/status", h.UpdateStatus)
		})
	})
}

// callerID resolves the authenticated caller's user ID from the context
func callerID(r *http.Request) (uuid.UUID, bool) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(identity.UserID)
	if err != nil {
		return uuid.Nil, false
	}
	return userID, true
}

// Create handles checkout: validates, prices, and persists a new order
// owned by the caller
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	var input service.CreateOrderInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.logger.Debug("Order decode failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.orderService.CreateOrder(r.Context(), userID, input)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			middleware.RespondWithError(w, http.StatusBadRequest, verr.Message)
			return
		}

		h.logger.Error("Order creation failed", zap.Error(err))
		middleware.RespondWithInternalError(w, "failed to create order", err, h.development)
		return
	}

	h.logger.Info("Order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", userID.String()),
		zap.Float64("total", order.Total),
	)

	middleware.RespondWithJSON(w, http.StatusCreated, CreateOrderResponse{
		Success: true,
		Message: "Order placed successfully",
		Order: CreatedOrder{
			ID:                order.ID,
			OrderNumber:       order.Number(),
			Items:             order.Items,
			Subtotal:          order.Subtotal,
			Tax:               order.Tax,
			ShippingCost:      order.ShippingCost,
			Total:             order.Total,
			Status:            order.Status,
			CreatedAt:         order.CreatedAt,
			EstimatedDelivery: time.Now().Add(estimatedDeliveryWindow),
		},
	})
}

// List returns one page of the caller's orders
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	q := r.URL.Query()
	page := atoiDefault(q.Get("page"), 1)
	limit := atoiDefault(q.Get("limit"), 10)

	orders, pagination, err := h.orderService.ListOrders(r.Context(), userID, q.Get("status"), page, limit)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			middleware.RespondWithError(w, http.StatusBadRequest, verr.Message)
			return
		}

		h.logger.Error("Failed to list orders", zap.Error(err))
		middleware.RespondWithInternalError(w, "failed to fetch orders", err, h.development)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, OrderListResponse{
		Success:    true,
		Data:       orders,
		Pagination: pagination,
	})
}

// Get returns a single order after verifying the caller owns it
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid order ID format")
		return
	}

	order, err := h.orderService.GetOrder(r.Context(), userID, orderID)
	if err != nil {
		switch {
		case err == repository.ErrOrderNotFound:
			middleware.RespondWithError(w, http.StatusNotFound, "order not found")
		case err == service.ErrOrderForbidden:
			middleware.RespondWithError(w, http.StatusForbidden, "access denied: you can only view your own orders")
		default:
			h.logger.Error("Failed to get order", zap.Error(err))
			middleware.RespondWithInternalError(w, "failed to fetch order", err, h.development)
		}
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    OrderView{Order: order, OrderNumber: order.Number()},
	})
}

// Stats returns aggregate counts and totals for the caller's order history
func (h *OrderHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	stats, err := h.orderService.Stats(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to get order stats", zap.Error(err))
		middleware.RespondWithInternalError(w, "failed to fetch order statistics", err, h.development)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    stats,
	})
}

// UpdateStatus moves an order forward through its lifecycle (admin only)
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid order ID format")
		return
	}

	var req UpdateStatusRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if msg := middleware.FirstValidationMessage(err); msg != "" {
			middleware.RespondWithError(w, http.StatusBadRequest, msg)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	status, ok := domain.ParseOrderStatus(req.Status)
	if !ok {
		middleware.RespondWithError(w, http.StatusBadRequest, "unknown order status")
		return
	}

	order, err := h.orderService.UpdateStatus(r.Context(), orderID, status)
	if err != nil {
		switch {
		case err == repository.ErrOrderNotFound:
			middleware.RespondWithError(w, http.StatusNotFound, "order not found")
		case err == service.ErrInvalidTransition:
			middleware.RespondWithError(w, http.StatusConflict, "invalid order status transition")
		default:
			h.logger.Error("Failed to update order status", zap.Error(err))
			middleware.RespondWithInternalError(w, "failed to update order", err, h.development)
		}
		return
	}

	h.logger.Info("Order status updated",
		zap.String("order_id", order.ID.String()),
		zap.String("status", string(order.Status)),
	)

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    OrderView{Order: order, OrderNumber: order.Number()},
	})
}
