package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"shoplite/internal/domain"
	"shoplite/internal/repository"

	"github.com/google/uuid"
)

const (
	// TaxRate is the fixed VAT applied to every order subtotal
	TaxRate = 0.15

	// FreeShippingThreshold is the subtotal above which shipping is free
	FreeShippingThreshold = 1000.0

	// FlatShippingCost is charged below the free-shipping threshold
	FlatShippingCost = 99.0

	defaultCountry       = "South Africa"
	defaultPaymentMethod = "Credit Card"
)

var (
	// ErrOrderForbidden means the caller is authenticated but does not own
	// the order. Distinct from repository.ErrOrderNotFound.
	ErrOrderForbidden = errors.New("access denied: you can only view your own orders")

	// ErrInvalidTransition means the requested status change would move the
	// order lifecycle backwards or skip a state.
	ErrInvalidTransition = errors.New("invalid order status transition")
)

// OrderItemInput is one raw cart line as submitted by the client
type OrderItemInput struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// ShippingInput is the raw shipping block of a checkout payload
type ShippingInput struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// CreateOrderInput is the full checkout payload
type CreateOrderInput struct {
	Items         []OrderItemInput `json:"items"`
	Shipping      ShippingInput    `json:"shipping"`
	Notes         string           `json:"notes"`
	PaymentMethod string           `json:"paymentMethod"`
}

// OrderTotals is the deterministic pricing of a cart
type OrderTotals struct {
	Subtotal     float64
	Tax          float64
	ShippingCost float64
	Total        float64
}

// OrderService defines the interface for order business logic
type OrderService interface {
	CreateOrder(ctx context.Context, userID uuid.UUID, input CreateOrderInput) (*domain.Order, error)
	GetOrder(ctx context.Context, callerID, orderID uuid.UUID) (*domain.Order, error)
	ListOrders(ctx context.Context, userID uuid.UUID, status string, page, limit int) ([]*domain.Order, Pagination, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) (*domain.Order, error)
	Stats(ctx context.Context, userID uuid.UUID) (repository.OrderStats, error)
}

type orderService struct {
	orderRepo repository.OrderRepository
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(orderRepo repository.OrderRepository) OrderService {
	return &orderService{orderRepo: orderRepo}
}

// ValidateCreateOrder checks the checkout payload and reports the first
// violation found, or nil when the payload is acceptable.
func ValidateCreateOrder(input CreateOrderInput) *ValidationError {
	if len(input.Items) == 0 {
		return invalid("items", "items_empty", "order must contain at least one item")
	}

	for i, item := range input.Items {
		field := fmt.Sprintf("items[%d]", i)
		if item.ProductID == "" {
			return invalid(field+".productId", "item_product_id_required", "each item must have a productId")
		}
		if item.Name == "" {
			return invalid(field+".name", "item_name_required", "each item must have a name")
		}
		if item.Price <= 0 {
			return invalid(field+".price", "item_price_invalid", "item price must be greater than 0")
		}
		if item.Quantity < 1 {
			return invalid(field+".quantity", "item_quantity_invalid", "item quantity must be at least 1")
		}
	}

	if input.Shipping.Address == "" {
		return invalid("shipping.address", "shipping_address_required", "complete shipping information is required")
	}
	if input.Shipping.City == "" {
		return invalid("shipping.city", "shipping_city_required", "complete shipping information is required")
	}
	if input.Shipping.PostalCode == "" {
		return invalid("shipping.postalCode", "shipping_postal_code_required", "complete shipping information is required")
	}

	return nil
}

// PriceOrder computes subtotal, 15% VAT, shipping, and total for a cart.
// Shipping is free above the threshold, a flat fee otherwise. All amounts
// are rounded to currency precision.
func PriceOrder(items []OrderItemInput) OrderTotals {
	subtotal := 0.0
	for _, item := range items {
		subtotal += item.Price * float64(item.Quantity)
	}
	subtotal = round2(subtotal)

	tax := round2(subtotal * TaxRate)

	shippingCost := FlatShippingCost
	if subtotal > FreeShippingThreshold {
		shippingCost = 0
	}

	return OrderTotals{
		Subtotal:     subtotal,
		Tax:          tax,
		ShippingCost: shippingCost,
		Total:        round2(subtotal + tax + shippingCost),
	}
}

// CreateOrder validates and prices a checkout payload and persists the
// resulting order under the caller's identity. A client-supplied userId is
// never trusted. Stock is not decremented here; inventory is tracked
// elsewhere.
func (s *orderService) CreateOrder(ctx context.Context, userID uuid.UUID, input CreateOrderInput) (*domain.Order, error) {
	if verr := ValidateCreateOrder(input); verr != nil {
		return nil, verr
	}

	totals := PriceOrder(input.Items)

	items := make([]domain.OrderItem, len(input.Items))
	for i, item := range input.Items {
		items[i] = domain.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
		}
	}

	country := input.Shipping.Country
	if country == "" {
		country = defaultCountry
	}
	paymentMethod := input.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = defaultPaymentMethod
	}

	order := &domain.Order{
		ID:           uuid.New(),
		UserID:       userID,
		Items:        items,
		Subtotal:     totals.Subtotal,
		Tax:          totals.Tax,
		ShippingCost: totals.ShippingCost,
		Total:        totals.Total,
		Shipping: domain.ShippingAddress{
			Address:    input.Shipping.Address,
			City:       input.Shipping.City,
			PostalCode: input.Shipping.PostalCode,
			Country:    country,
		},
		Status:        domain.OrderStatusPending,
		PaymentMethod: paymentMethod,
		PaymentStatus: domain.PaymentStatusPending,
		Notes:         input.Notes,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}

	return order, nil
}

// GetOrder fetches one order and verifies the caller owns it. Stored fields
// are returned as persisted; nothing is recomputed on read.
func (s *orderService) GetOrder(ctx context.Context, callerID, orderID uuid.UUID) (*domain.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.UserID != callerID {
		return nil, ErrOrderForbidden
	}

	return order, nil
}

// ListOrders returns one page of the caller's orders, newest first,
// optionally filtered by status
func (s *orderService) ListOrders(ctx context.Context, userID uuid.UUID, status string, page, limit int) ([]*domain.Order, Pagination, error) {
	var statusFilter domain.OrderStatus
	if status != "" {
		parsed, ok := domain.ParseOrderStatus(status)
		if !ok {
			return nil, Pagination{}, invalid("status", "status_invalid", "unknown order status")
		}
		statusFilter = parsed
	}

	page, limit = NormalizePage(page, limit, 10)

	orders, total, err := s.orderRepo.ListByUser(ctx, userID, statusFilter, page, limit)
	if err != nil {
		return nil, Pagination{}, err
	}

	return orders, NewPagination(page, limit, total), nil
}

// UpdateStatus moves an order to a new status, enforcing the forward-only
// lifecycle
func (s *orderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !order.Status.CanTransitionTo(status) {
		return nil, ErrInvalidTransition
	}

	if err := s.orderRepo.UpdateStatus(ctx, orderID, status); err != nil {
		return nil, err
	}

	order.Status = status
	return order, nil
}

// Stats aggregates the caller's order history
func (s *orderService) Stats(ctx context.Context, userID uuid.UUID) (repository.OrderStats, error) {
	return s.orderRepo.StatsByUser(ctx, userID)
}

// round2 rounds to currency precision (two decimal places)
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
