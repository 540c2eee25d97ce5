package pricing

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/vanir/internal/domain"
)

type stubOfferSource struct {
	offers []domain.Offer
	err    error
}

func (s *stubOfferSource) ListActiveOffers(ctx context.Context, productID, categoryID int64, at time.Time) ([]domain.Offer, error) {
	return s.offers, s.err
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func activeWindow(now time.Time) (time.Time, time.Time) {
	return now.AddDate(0, 0, -1), now.AddDate(0, 0, 1)
}

func TestApply(t *testing.T) {
	tests := []struct {
		name  string
		kind  domain.OfferKind
		value string
		price string
		want  string
	}{
		{"percent", domain.OfferPercent, "10", "200", "180"},
		{"percent rounds half away from zero", domain.OfferPercent, "15", "33.30", "28.31"},
		{"amount", domain.OfferAmount, "30", "200", "170"},
		{"fixed price", domain.OfferFixedPrice, "99", "200", "99"},
		{"amount clamps to floor", domain.OfferAmount, "250", "200", "1"},
		{"fixed price clamps to floor", domain.OfferFixedPrice, "0.50", "200", "1"},
		{"percent clamps to floor", domain.OfferPercent, "100", "200", "1"},
		{"unknown kind passes through", domain.OfferKind("XX"), "50", "123.45", "123.45"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offer := domain.Offer{Kind: tt.kind, Value: dec(tt.value)}
			got := Apply(offer, dec(tt.price))
			assert.True(t, got.Equal(dec(tt.want)),
				"Apply(%s, %s) = %s, want %s", tt.kind, tt.price, got, tt.want)
		})
	}
}

func TestResolveDiscount(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	start, end := activeWindow(now)

	offer := func(id int64, priority int32) domain.Offer {
		return domain.Offer{
			ID: id, Priority: priority, Kind: domain.OfferPercent,
			Value: dec("10"), DateStart: start, DateEnd: end, IsActive: true,
		}
	}

	t.Run("highest priority wins", func(t *testing.T) {
		src := &stubOfferSource{offers: []domain.Offer{
			offer(1, 5), offer(2, 10), offer(3, 7),
		}}
		engine := NewEngine(src)
		engine.now = func() time.Time { return now }

		got, ok, err := engine.ResolveDiscount(context.Background(), domain.ProductPosition{})
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, int64(2), got.ID)
	})

	t.Run("tie breaks to lowest id", func(t *testing.T) {
		src := &stubOfferSource{offers: []domain.Offer{
			offer(8, 10), offer(3, 10), offer(5, 10),
		}}
		engine := NewEngine(src)
		engine.now = func() time.Time { return now }

		got, ok, err := engine.ResolveDiscount(context.Background(), domain.ProductPosition{})
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, int64(3), got.ID)
	})

	t.Run("inactive and expired offers are skipped", func(t *testing.T) {
		inactive := offer(1, 100)
		inactive.IsActive = false
		expired := offer(2, 50)
		expired.DateEnd = now.AddDate(0, 0, -2)
		src := &stubOfferSource{offers: []domain.Offer{inactive, expired, offer(3, 1)}}
		engine := NewEngine(src)
		engine.now = func() time.Time { return now }

		got, ok, err := engine.ResolveDiscount(context.Background(), domain.ProductPosition{})
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, int64(3), got.ID)
	})

	t.Run("no offers", func(t *testing.T) {
		engine := NewEngine(&stubOfferSource{})
		engine.now = func() time.Time { return now }

		_, ok, err := engine.ResolveDiscount(context.Background(), domain.ProductPosition{})
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestPositionPrice(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	start, end := activeWindow(now)

	t.Run("applies winning offer", func(t *testing.T) {
		src := &stubOfferSource{offers: []domain.Offer{{
			ID: 1, Priority: 1, Kind: domain.OfferAmount, Value: dec("25"),
			DateStart: start, DateEnd: end, IsActive: true,
		}}}
		engine := NewEngine(src)
		engine.now = func() time.Time { return now }

		got, err := engine.PositionPrice(context.Background(), domain.ProductPosition{Price: dec("200")})
		require.NoError(t, err)
		assert.True(t, got.Equal(dec("175")), "got %s", got)
	})

	t.Run("no offer returns list price", func(t *testing.T) {
		engine := NewEngine(&stubOfferSource{})
		engine.now = func() time.Time { return now }

		got, err := engine.PositionPrice(context.Background(), domain.ProductPosition{Price: dec("49.90")})
		require.NoError(t, err)
		assert.True(t, got.Equal(dec("49.90")), "got %s", got)
	})
}
