package tier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"printshop/internal/storage"
)

func intPtr(v int) *int { return &v }

func priceTiers() []storage.QuantityTier {
	// нарочно не по порядку
	return []storage.QuantityTier{
		{MinQty: 500, UnitPrice: 6},
		{MinQty: 1, MaxQty: intPtr(99), UnitPrice: 10},
		{MinQty: 100, MaxQty: intPtr(499), UnitPrice: 8},
	}
}

func TestResolve_MatchesRange(t *testing.T) {
	cases := []struct {
		qty  int
		want float64
	}{
		{1, 10},
		{99, 10},
		{100, 8},
		{499, 8},
		{500, 6},
		{100000, 6},
	}

	for _, c := range cases {
		res, ok := Resolve(priceTiers(), c.qty)
		require.True(t, ok)
		assert.False(t, res.Fallback, "qty %d", c.qty)
		assert.Equal(t, c.want, res.Tier.UnitPrice, "qty %d", c.qty)
	}
}

func TestResolve_GapFallsBackToLowestTier(t *testing.T) {
	tiers := []storage.QuantityTier{
		{MinQty: 10, MaxQty: intPtr(49), UnitPrice: 5},
		{MinQty: 100, MaxQty: intPtr(199), UnitPrice: 4},
	}

	res, ok := Resolve(tiers, 60)
	require.True(t, ok)
	assert.True(t, res.Fallback)
	assert.Equal(t, 10, res.Tier.MinQty)
	assert.Equal(t, 5.0, res.Tier.UnitPrice)

	// ниже первой ступени — тоже нижняя ступень
	res, ok = Resolve(tiers, 0)
	require.True(t, ok)
	assert.True(t, res.Fallback)
	assert.Equal(t, 5.0, res.Tier.UnitPrice)
}

func TestResolve_Empty(t *testing.T) {
	_, ok := Resolve([]storage.QuantityTier{}, 10)
	assert.False(t, ok)

	_, ok = Resolve[storage.DiscountTier](nil, 10)
	assert.False(t, ok)
}

func TestResolve_DoesNotReorderInput(t *testing.T) {
	tiers := priceTiers()

	_, _ = Resolve(tiers, 250)

	assert.Equal(t, 500, tiers[0].MinQty)
	assert.Equal(t, 1, tiers[1].MinQty)
}

func TestResolve_Total(t *testing.T) {
	tiers := []storage.QuantityTier{
		{MinQty: 5, MaxQty: intPtr(9), UnitPrice: 3},
		{MinQty: 20, MaxQty: intPtr(30), UnitPrice: 2},
	}

	for qty := 0; qty <= 100; qty++ {
		_, ok := Resolve(tiers, qty)
		assert.True(t, ok, "qty %d", qty)
	}
}

func TestResolve_MonotonicUnitPrice(t *testing.T) {
	tiers := priceTiers()

	prev, ok := Resolve(tiers, 1)
	require.True(t, ok)

	for qty := 2; qty <= 2000; qty++ {
		cur, ok := Resolve(tiers, qty)
		require.True(t, ok)
		assert.LessOrEqual(t, cur.Tier.UnitPrice, prev.Tier.UnitPrice, "qty %d", qty)
		prev = cur
	}
}

func TestResolve_DiscountTiers(t *testing.T) {
	tiers := []storage.DiscountTier{
		{MinQty: 1, MaxQty: intPtr(99), Percent: 0},
		{MinQty: 100, MaxQty: intPtr(399), Percent: 10},
		{MinQty: 400, Percent: 20},
	}

	res, ok := Resolve(tiers, 100)
	require.True(t, ok)
	assert.Equal(t, 10.0, res.Tier.Percent)

	res, _ = Resolve(tiers, 400)
	assert.Equal(t, 20.0, res.Tier.Percent)
}
