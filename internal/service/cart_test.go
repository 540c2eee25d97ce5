package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/vanir/internal/domain"
	"github.com/dukerupert/vanir/internal/pricing"
	"github.com/dukerupert/vanir/internal/session"
)

type cartFixture struct {
	store *fakeStore
	cart  CartService
}

func newCartFixture() *cartFixture {
	store := newFakeStore()
	return &cartFixture{store: store, cart: NewCartService(store, pricing.NewEngine(store))}
}

func TestCartSummaryTotals(t *testing.T) {
	f := newCartFixture()
	f.store.positions[10] = domain.ProductPosition{ID: 10, SellerID: 1, Price: dec("200"), Quantity: 9}
	f.store.positions[20] = domain.ProductPosition{ID: 20, SellerID: 2, Price: dec("50"), Quantity: 9}

	sess := &session.Session{}
	require.NoError(t, f.cart.AddItem(context.Background(), sess, 10, 2, false))
	require.NoError(t, f.cart.AddItem(context.Background(), sess, 20, 1, false))

	summary, err := f.cart.Summary(context.Background(), sess)
	require.NoError(t, err)
	assert.True(t, summary.ProductsTotal.Equal(dec("450")), "total %s", summary.ProductsTotal)
	assert.Equal(t, 2, summary.SellerCount)
	assert.Equal(t, 3, summary.ItemCount)
}

func TestCartSnapshotPriceIgnoresLaterOffers(t *testing.T) {
	f := newCartFixture()
	f.store.positions[10] = domain.ProductPosition{ID: 10, SellerID: 1, Price: dec("200"), Quantity: 9}

	sess := &session.Session{}
	require.NoError(t, f.cart.AddItem(context.Background(), sess, 10, 1, false))

	// A price change after the add must not move the cart line.
	pos := f.store.positions[10]
	pos.Price = dec("999")
	f.store.positions[10] = pos

	summary, err := f.cart.Summary(context.Background(), sess)
	require.NoError(t, err)
	require.Len(t, summary.Items, 1)
	assert.True(t, summary.Items[0].UnitPrice.Equal(dec("200")),
		"unit price %s", summary.Items[0].UnitPrice)
}

func TestCartSummaryPrunesVanishedPositions(t *testing.T) {
	f := newCartFixture()
	f.store.positions[10] = domain.ProductPosition{ID: 10, SellerID: 1, Price: dec("200"), Quantity: 9}
	f.store.positions[20] = domain.ProductPosition{ID: 20, SellerID: 2, Price: dec("50"), Quantity: 9}

	sess := &session.Session{}
	require.NoError(t, f.cart.AddItem(context.Background(), sess, 10, 1, false))
	require.NoError(t, f.cart.AddItem(context.Background(), sess, 20, 1, false))

	delete(f.store.positions, 20)

	summary, err := f.cart.Summary(context.Background(), sess)
	require.NoError(t, err)
	require.Len(t, summary.Items, 1)
	assert.Equal(t, int64(10), summary.Items[0].Position.ID)
	assert.Equal(t, 1, sess.CartLen(), "vanished line must be pruned from the session")
}

func TestCartAddItemValidation(t *testing.T) {
	f := newCartFixture()
	sess := &session.Session{}

	err := f.cart.AddItem(context.Background(), sess, 10, 0, false)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	err = f.cart.AddItem(context.Background(), sess, 99, 1, false)
	assert.ErrorIs(t, err, ErrPositionNotFound)
}

func TestCartAddItemNegativeDeltaEmptiesLine(t *testing.T) {
	f := newCartFixture()
	f.store.positions[10] = domain.ProductPosition{ID: 10, SellerID: 1, Price: dec("200"), Quantity: 9}

	sess := &session.Session{}
	require.NoError(t, f.cart.AddItem(context.Background(), sess, 10, 3, false))
	require.NoError(t, f.cart.AddItem(context.Background(), sess, 10, -3, false))

	summary, err := f.cart.Summary(context.Background(), sess)
	require.NoError(t, err)
	assert.Empty(t, summary.Items)
	assert.Equal(t, 0, sess.CartLen())
}

func TestCartAddItemSnapshotsDiscountedPrice(t *testing.T) {
	f := newCartFixture()
	f.store.positions[10] = domain.ProductPosition{ID: 10, SellerID: 1, Price: dec("200"), Quantity: 9}
	now := time.Now()
	f.store.offers = []domain.Offer{{
		ID: 1, Priority: 1, Kind: domain.OfferPercent, Value: dec("10"),
		DateStart: now.AddDate(0, 0, -1), DateEnd: now.AddDate(0, 0, 1), IsActive: true,
	}}

	sess := &session.Session{}
	require.NoError(t, f.cart.AddItem(context.Background(), sess, 10, 1, false))

	summary, err := f.cart.Summary(context.Background(), sess)
	require.NoError(t, err)
	require.Len(t, summary.Items, 1)
	assert.True(t, summary.Items[0].UnitPrice.Equal(dec("180")),
		"unit price %s", summary.Items[0].UnitPrice)
}
