package domain

import "github.com/shopspring/decimal"

// Cart domain errors.
var (
	ErrCartEmpty       = &Error{Code: EINVALID, Message: "Cart is empty"}
	ErrInvalidQuantity = &Error{Code: EINVALID, Message: "Invalid quantity"}
	ErrStaleCart       = &Error{Code: ENOTFOUND, Message: "Cart references a product that is no longer available"}
)

// CartItem is a cart line joined with its live product position.
// UnitPrice is the discounted price snapshotted when the line was first
// added; it is never recomputed, so later offer changes do not move it.
type CartItem struct {
	Position   ProductPosition
	Quantity   int32
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
}

// CartSummary aggregates the cart with calculated totals.
type CartSummary struct {
	Items []CartItem

	// ProductsTotal is the sum of line totals, excluding delivery.
	ProductsTotal decimal.Decimal

	// SellerCount is the number of distinct sellers across all items.
	// Multi-seller baskets never qualify for free delivery.
	SellerCount int

	// ItemCount is the sum of line quantities, not the number of lines.
	ItemCount int
}
