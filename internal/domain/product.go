package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product categories form a fixed enumeration
const (
	CategoryLaptop     = "Laptop"
	CategorySmartphone = "Smartphone"
	CategoryHeadphones = "Headphones"
	CategoryAccessory  = "Accessory"
	CategoryTablet     = "Tablet"
	CategoryMonitor    = "Monitor"
	CategoryOther      = "Other"
)

// ValidCategories lists all accepted product categories
var ValidCategories = []string{
	CategoryLaptop,
	CategorySmartphone,
	CategoryHeadphones,
	CategoryAccessory,
	CategoryTablet,
	CategoryMonitor,
	CategoryOther,
}

// IsValidCategory reports whether category is a known product category
func IsValidCategory(category string) bool {
	for _, c := range ValidCategories {
		if c == category {
			return true
		}
	}
	return false
}

// Product represents a catalog entry
type Product struct {
	ID               uuid.UUID `json:"id" db:"id"`
	SKU              string    `json:"sku,omitempty" db:"sku"`
	Name             string    `json:"name" db:"name"`
	Brand            string    `json:"brand" db:"brand"`
	ShortDescription string    `json:"short" db:"short_description"`
	Description      string    `json:"description" db:"description"`
	ImageURL         string    `json:"image" db:"image_url"`
	Price            float64   `json:"price" db:"price"`
	Stock            int       `json:"stock" db:"stock"`
	Category         string    `json:"category" db:"category"`
	Rating           float64   `json:"rating" db:"rating"`
	Discount         float64   `json:"discount" db:"discount"`
	SalePrice        float64   `json:"salePrice,omitempty" db:"sale_price"`
	Featured         bool      `json:"featured" db:"featured"`
	IsActive         bool      `json:"isActive" db:"is_active"`
	CreatedAt        time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time `json:"updatedAt" db:"updated_at"`
}

// FinalPrice returns the price a buyer would actually pay: the sale price
// when one is set, otherwise the list price less any percentage discount.
func (p *Product) FinalPrice() float64 {
	if p.SalePrice > 0 {
		return p.SalePrice
	}
	if p.Discount > 0 {
		return p.Price * (1 - p.Discount/100)
	}
	return p.Price
}

// InStock reports whether the product has inventory available
func (p *Product) InStock() bool {
	return p.Stock > 0
}
