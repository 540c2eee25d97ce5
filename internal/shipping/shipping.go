// Package shipping prices delivery for a basket.
package shipping

import (
	"github.com/shopspring/decimal"

	"github.com/dukerupert/vanir/internal/domain"
)

// Basket is the delivery-relevant summary of a cart.
type Basket struct {
	// ProductsTotal is the basket total excluding delivery.
	ProductsTotal decimal.Decimal
	// SellerCount is the number of distinct sellers in the basket.
	SellerCount int
}

// Policy decides what a delivery option costs for a given basket.
type Policy struct{}

// NewPolicy creates a delivery pricing policy.
func NewPolicy() *Policy {
	return &Policy{}
}

// DeliveryPrice returns the cost of the given delivery option for the
// basket. Delivery is free only when all three hold: the option is not
// express, the option has a free threshold the basket total meets, and the
// basket comes from a single seller. Everything else pays list price.
func (p *Policy) DeliveryPrice(deliver domain.Deliver, basket Basket) decimal.Decimal {
	if deliver.IsExpress {
		return deliver.Price
	}
	if !deliver.FreeThreshold.Valid {
		return deliver.Price
	}
	if basket.ProductsTotal.LessThan(deliver.FreeThreshold.Decimal) {
		return deliver.Price
	}
	if basket.SellerCount != 1 {
		return deliver.Price
	}
	return decimal.Zero
}
