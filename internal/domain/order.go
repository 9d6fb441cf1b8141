package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the fulfilment state of an order. Transitions only move
// forward: Pending -> Processing -> Shipped -> Delivered. Cancelled is
// reachable from Pending or Processing only.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

// ParseOrderStatus maps a string onto a known status
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return OrderStatus(s), true
	}
	return "", false
}

var statusRank = map[OrderStatus]int{
	OrderStatusPending:    0,
	OrderStatusProcessing: 1,
	OrderStatusShipped:    2,
	OrderStatusDelivered:  3,
}

// CanTransitionTo reports whether moving from s to next respects the
// forward-only lifecycle.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s == next {
		return false
	}
	if next == OrderStatusCancelled {
		return s == OrderStatusPending || s == OrderStatusProcessing
	}
	from, ok := statusRank[s]
	if !ok {
		// Cancelled and Delivered are terminal for forward moves
		return false
	}
	to, ok := statusRank[next]
	if !ok {
		return false
	}
	return to == from+1
}

// PaymentStatus tracks the payment side of an order
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "Pending"
	PaymentStatusPaid     PaymentStatus = "Paid"
	PaymentStatusFailed   PaymentStatus = "Failed"
	PaymentStatusRefunded PaymentStatus = "Refunded"
)

// OrderItem is a line-item snapshot of a product at order-creation time,
// decoupled from the live catalog record.
type OrderItem struct {
	ProductID string  `json:"productId" db:"product_id"`
	Name      string  `json:"name" db:"name"`
	Price     float64 `json:"price" db:"price"`
	Quantity  int     `json:"quantity" db:"quantity"`
}

// Total returns the line total for the item
func (i OrderItem) Total() float64 {
	return i.Price * float64(i.Quantity)
}

// ShippingAddress is the destination captured with the order
type ShippingAddress struct {
	Address    string `json:"address" db:"shipping_address"`
	City       string `json:"city" db:"shipping_city"`
	PostalCode string `json:"postalCode" db:"shipping_postal_code"`
	Country    string `json:"country" db:"shipping_country"`
}

// Order represents a placed order with its priced line items
type Order struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	UserID        uuid.UUID       `json:"userId" db:"user_id"`
	Items         []OrderItem     `json:"items"`
	Subtotal      float64         `json:"subtotal" db:"subtotal"`
	Tax           float64         `json:"tax" db:"tax"`
	ShippingCost  float64         `json:"shippingCost" db:"shipping_cost"`
	Total         float64         `json:"total" db:"total"`
	Shipping      ShippingAddress `json:"shipping"`
	Status        OrderStatus     `json:"status" db:"status"`
	PaymentMethod string          `json:"paymentMethod" db:"payment_method"`
	PaymentStatus PaymentStatus   `json:"paymentStatus" db:"payment_status"`
	Notes         string          `json:"notes,omitempty" db:"notes"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time       `json:"updatedAt" db:"updated_at"`
}

// Number derives the customer-facing order number from the order ID:
// "ORD-" plus the last six characters of the ID, uppercased. Derived on
// read, never stored.
func (o *Order) Number() string {
	id := o.ID.String()
	return "ORD-" + strings.ToUpper(id[len(id)-6:])
}
