package shipping

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/dukerupert/vanir/internal/domain"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestDeliveryPrice(t *testing.T) {
	standard := domain.Deliver{
		ID:            1,
		Title:         "Courier",
		Price:         dec("500"),
		FreeThreshold: decimal.NullDecimal{Decimal: dec("2000"), Valid: true},
	}
	express := domain.Deliver{
		ID:        2,
		Title:     "Express courier",
		Price:     dec("900"),
		IsExpress: true,
	}
	noThreshold := domain.Deliver{
		ID:    3,
		Title: "Pickup point",
		Price: dec("250"),
	}

	tests := []struct {
		name   string
		d      domain.Deliver
		basket Basket
		want   string
	}{
		{"qualifying basket is free", standard, Basket{dec("2500"), 1}, "0"},
		{"total exactly at threshold is free", standard, Basket{dec("2000"), 1}, "0"},
		{"below threshold pays", standard, Basket{dec("1999.99"), 1}, "500"},
		{"two sellers pay", standard, Basket{dec("2500"), 2}, "500"},
		{"express always pays", express, Basket{dec("10000"), 1}, "900"},
		{"no threshold never free", noThreshold, Basket{dec("10000"), 1}, "250"},
	}

	policy := NewPolicy()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := policy.DeliveryPrice(tt.d, tt.basket)
			assert.True(t, got.Equal(dec(tt.want)),
				"DeliveryPrice = %s, want %s", got, tt.want)
		})
	}
}
