package subscription

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mindfuelAPI/internal/config"
)

func TestPriceID(t *testing.T) {
	prices := config.StripePrices{ProMonthly: "price_pm", PremiumAnnual: "price_xa"}

	id, ok := PriceID(prices, PlanProMonthly)
	assert.True(t, ok)
	assert.Equal(t, "price_pm", id)

	id, ok = PriceID(prices, PlanPremiumAnnual)
	assert.True(t, ok)
	assert.Equal(t, "price_xa", id)

	_, ok = PriceID(prices, PlanProAnnual)
	assert.False(t, ok, "unconfigured plan")

	_, ok = PriceID(prices, Plan("gold"))
	assert.False(t, ok, "unknown plan")
}

func TestToCents(t *testing.T) {
	assert.Equal(t, int64(999), ToCents(9.99))
	assert.Equal(t, int64(1000), ToCents(10))
	assert.Equal(t, int64(7999), ToCents(79.99))
}
