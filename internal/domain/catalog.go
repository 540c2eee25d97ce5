package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Catalog domain errors.
var (
	ErrProductNotFound  = &Error{Code: ENOTFOUND, Message: "Product not found"}
	ErrPositionNotFound = &Error{Code: ENOTFOUND, Message: "Product position not found"}
)

// Category groups products. Categories form a tree via ParentID.
type Category struct {
	ID        int64
	Title     string
	ParentID  *int64
	IsDeleted bool
}

// Product describes a good for sale. A product has no price of its own;
// prices live on per-seller positions.
type Product struct {
	ID          int64
	Title       string
	Description string
	CategoryID  int64
	IsDeleted   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Seller is a vendor offering product positions in the storefront.
type Seller struct {
	ID      int64
	Title   string
	Address string
	Phone   string
	Email   string
}

// ProductPosition is one seller's listing of a product: its price and stock.
// A product may have many positions across sellers.
//
// CategoryID is denormalized from the owning product so that discount
// resolution does not need a second lookup.
type ProductPosition struct {
	ID           int64
	ProductID    int64
	SellerID     int64
	CategoryID   int64
	ProductTitle string
	SellerTitle  string
	Price        decimal.Decimal
	Quantity     int32
	FreeShipping bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// OfferKind is the discount mechanism of an offer.
type OfferKind string

const (
	// OfferPercent subtracts value percent from the price.
	OfferPercent OfferKind = "DP"
	// OfferAmount subtracts a fixed value from the price.
	OfferAmount OfferKind = "DA"
	// OfferFixedPrice replaces the price with value.
	OfferFixedPrice OfferKind = "FP"
)

// Offer is a scoped, time-bounded discount rule. It targets an explicit set
// of products and/or categories; the highest-priority active offer wins.
type Offer struct {
	ID          int64
	Description string
	Priority    int32
	Kind        OfferKind
	Value       decimal.Decimal
	DateStart   time.Time
	DateEnd     time.Time
	IsActive    bool
}

// Active reports whether the offer may be applied at the given moment.
// Both window ends are inclusive. Times collapse to UTC calendar dates so
// the comparison does not depend on the caller's timezone.
func (o Offer) Active(at time.Time) bool {
	if !o.IsActive {
		return false
	}
	day := utcDate(at)
	return !day.Before(utcDate(o.DateStart)) && !day.After(utcDate(o.DateEnd))
}

func utcDate(t time.Time) time.Time {
	y, m, d := t.In(time.UTC).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
