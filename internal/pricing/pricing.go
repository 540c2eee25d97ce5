// Package pricing resolves which discount offer applies to a product
// position and computes the resulting price.
package pricing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dukerupert/vanir/internal/domain"
)

// minPrice is the floor a discount may reduce a price to.
var minPrice = decimal.NewFromInt(1)

var hundred = decimal.NewFromInt(100)

// OfferSource provides the offers applicable to a product. Satisfied by
// repository.Querier.
type OfferSource interface {
	ListActiveOffers(ctx context.Context, productID, categoryID int64, at time.Time) ([]domain.Offer, error)
}

// Engine computes discounted position prices.
type Engine struct {
	offers OfferSource
	now    func() time.Time
}

// NewEngine creates a pricing engine over the given offer source.
func NewEngine(offers OfferSource) *Engine {
	return &Engine{offers: offers, now: time.Now}
}

// ResolveDiscount picks the winning offer for a position: among offers
// active right now that target the position's product or category, the one
// with the highest priority wins, and ties break toward the lowest offer ID.
// The second return is false when no offer applies.
func (e *Engine) ResolveDiscount(ctx context.Context, pos domain.ProductPosition) (domain.Offer, bool, error) {
	at := e.now()
	offers, err := e.offers.ListActiveOffers(ctx, pos.ProductID, pos.CategoryID, at)
	if err != nil {
		return domain.Offer{}, false, err
	}

	var best domain.Offer
	found := false
	for _, o := range offers {
		if !o.Active(at) {
			continue
		}
		if !found || o.Priority > best.Priority ||
			(o.Priority == best.Priority && o.ID < best.ID) {
			best = o
			found = true
		}
	}
	return best, found, nil
}

// Apply computes the discounted price for one offer. Unknown offer kinds
// leave the price untouched. The result is rounded to two decimal places,
// half away from zero, and never drops below the one-unit floor.
func Apply(offer domain.Offer, price decimal.Decimal) decimal.Decimal {
	var discounted decimal.Decimal
	switch offer.Kind {
	case domain.OfferPercent:
		discounted = price.Sub(price.Mul(offer.Value).Div(hundred))
	case domain.OfferAmount:
		discounted = price.Sub(offer.Value)
	case domain.OfferFixedPrice:
		discounted = offer.Value
	default:
		discounted = price
	}
	discounted = discounted.Round(2)
	if discounted.LessThan(minPrice) {
		return minPrice
	}
	return discounted
}

// PositionPrice returns the effective unit price of a position: its list
// price with the winning offer, if any, applied.
func (e *Engine) PositionPrice(ctx context.Context, pos domain.ProductPosition) (decimal.Decimal, error) {
	offer, ok, err := e.ResolveDiscount(ctx, pos)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if !ok {
		return pos.Price.Round(2), nil
	}
	return Apply(offer, pos.Price), nil
}
