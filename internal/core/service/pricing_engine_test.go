package service

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/sofa-configurator/internal/core/catalog"
	"github.com/rl1809/sofa-configurator/internal/core/domain"
)

func newTestEngine(t *testing.T, rules PricingRules) *PricingEngine {
	t.Helper()
	engine, err := NewPricingEngine(rules)
	require.NoError(t, err)
	return engine
}

func customCatalog(t *testing.T, materials []domain.Material, sizes []domain.Size) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(materials, sizes, catalog.DefaultAddons())
	require.NoError(t, err)
	return c
}

func TestCalculate_FabricTwoSeaterNoAddons(t *testing.T) {
	engine := newTestEngine(t, DefaultPricingRules())

	got := engine.Calculate(catalog.Default(), PricingInput{Material: "fabric", Size: "two_seater"})

	assert.Equal(t, 800.0, got.BasePrice)
	assert.Equal(t, 1.1, got.MaterialMultiplier)
	assert.Equal(t, 1.0, got.SizeMultiplier)
	assert.Equal(t, 0.0, got.AddonsTotal)
	assert.Equal(t, 880.0, got.Subtotal)
	require.NotNil(t, got.Discounts)
	assert.Nil(t, got.Discounts.StockClearance)
	assert.Nil(t, got.Discounts.Bundle)
	require.NotNil(t, got.Discounts.Seasonal)
	assert.Equal(t, 88.0, *got.Discounts.Seasonal)
	assert.Equal(t, 88.0, got.Discounts.Total)
	assert.Equal(t, 792.0, got.FinalPrice)
	require.NotNil(t, got.Savings)
	assert.Equal(t, 88.0, *got.Savings)
}

func TestCalculate_LeatherLShapeAllDiscountsStack(t *testing.T) {
	engine := newTestEngine(t, DefaultPricingRules())

	got := engine.Calculate(catalog.Default(), PricingInput{
		Material: "leather",
		Size:     "l_shape",
		Addons:   []string{"recliner", "storage", "headrest"},
	})

	assert.Equal(t, 800.0, got.BasePrice)
	assert.Equal(t, 1.4, got.MaterialMultiplier)
	assert.Equal(t, 1.6, got.SizeMultiplier)
	assert.Equal(t, 400.0, got.AddonsTotal)
	assert.Equal(t, 2192.0, got.Subtotal)

	require.NotNil(t, got.Discounts)
	require.NotNil(t, got.Discounts.StockClearance)
	require.NotNil(t, got.Discounts.Seasonal)
	require.NotNil(t, got.Discounts.Bundle)
	assert.Equal(t, 328.8, *got.Discounts.StockClearance)
	assert.Equal(t, 219.2, *got.Discounts.Seasonal)
	assert.Equal(t, 32.0, *got.Discounts.Bundle)
	assert.Equal(t, 580.0, got.Discounts.Total)
	assert.InDelta(t, *got.Discounts.StockClearance+*got.Discounts.Seasonal+*got.Discounts.Bundle, got.Discounts.Total, 1e-9)
	assert.Equal(t, 1612.0, got.FinalPrice)
	assert.Equal(t, 580.0, *got.Savings)
}

func TestCalculate_BundleUsesAddonsTotalNotSubtotal(t *testing.T) {
	engine := newTestEngine(t, DefaultPricingRules())

	got := engine.Calculate(catalog.Default(), PricingInput{
		Material: "fabric",
		Size:     "three_seater",
		Addons:   []string{"recliner", "storage", "headrest"},
	})

	// 800 * 1.1 = 880, * 1.25 = 1100, + 400 = 1500
	assert.Equal(t, 1500.0, got.Subtotal)
	require.NotNil(t, got.Discounts.Bundle)
	assert.Equal(t, 32.0, *got.Discounts.Bundle)
	assert.Equal(t, 150.0, *got.Discounts.Seasonal)
	assert.Equal(t, 182.0, got.Discounts.Total)
	assert.Equal(t, 1318.0, got.FinalPrice)
}

func TestCalculate_TwoAddonsNoBundle(t *testing.T) {
	engine := newTestEngine(t, DefaultPricingRules())

	got := engine.Calculate(catalog.Default(), PricingInput{
		Material: "fabric",
		Size:     "three_seater",
		Addons:   []string{"recliner", "storage"},
	})

	assert.Equal(t, 320.0, got.AddonsTotal)
	assert.Equal(t, 1420.0, got.Subtotal)
	assert.Nil(t, got.Discounts.Bundle)
	assert.Equal(t, 142.0, got.Discounts.Total)
	assert.Equal(t, 1278.0, got.FinalPrice)
}

func TestCalculate_SkipDiscounts(t *testing.T) {
	engine := newTestEngine(t, DefaultPricingRules())

	got := engine.Calculate(catalog.Default(), PricingInput{
		Material:      "leather",
		Size:          "two_seater",
		Addons:        []string{"recliner", "storage", "headrest"},
		SkipDiscounts: true,
	})

	assert.Nil(t, got.Discounts)
	assert.Nil(t, got.Savings)
	assert.Equal(t, got.Subtotal, got.FinalPrice)
	assert.Equal(t, 1520.0, got.FinalPrice)
}

func TestCalculate_SeasonalSaleInactive(t *testing.T) {
	rules := DefaultPricingRules()
	rules.SeasonalSaleActive = false
	engine := newTestEngine(t, rules)

	got := engine.Calculate(catalog.Default(), PricingInput{Material: "fabric", Size: "two_seater"})

	assert.Nil(t, got.Discounts)
	assert.Nil(t, got.Savings)
	assert.Equal(t, 880.0, got.FinalPrice)
}

func TestCalculate_LowStockPremiumAppliedFirst(t *testing.T) {
	engine := newTestEngine(t, DefaultPricingRules())
	c := customCatalog(t, []domain.Material{{
		Name:            "velvet",
		PriceMultiplier: 1.1,
		AllowedColors:   []string{"green"},
		MaxWidthCm:      300,
		DaysInStock:     10,
		StockLevel:      domain.StockLevelLow,
	}}, catalog.DefaultSizes())

	got := engine.Calculate(c, PricingInput{Material: "velvet", Size: "three_seater"})

	// 1.1 * 1.05 = 1.155 -> 1.16; 800 * 1.16 = 928; 928 * 1.25 = 1160
	assert.Equal(t, 1.16, got.MaterialMultiplier)
	assert.Equal(t, 1160.0, got.Subtotal)
	assert.Equal(t, 116.0, *got.Discounts.Seasonal)
	assert.Equal(t, 1044.0, got.FinalPrice)
}

func TestCalculate_RoundsAfterEveryStep(t *testing.T) {
	engine := newTestEngine(t, DefaultPricingRules())
	c := customCatalog(t,
		[]domain.Material{{Name: "oak", PriceMultiplier: 1.2345, AllowedColors: []string{"natural"}, MaxWidthCm: 300, StockLevel: domain.StockLevelHigh}},
		[]domain.Size{{Name: "wide", Seats: 3, WidthCm: 200, PriceMultiplier: 1.333}},
	)

	got := engine.Calculate(c, PricingInput{Material: "oak", Size: "wide"})

	// 800 * 1.2345 = 987.6; 987.6 * 1.333 = 1316.4708 -> 1316.47
	assert.Equal(t, 1316.47, got.Subtotal)
	// 1316.47 * 0.10 = 131.647 -> 131.65
	assert.Equal(t, 131.65, *got.Discounts.Seasonal)
	assert.Equal(t, 1184.82, got.FinalPrice)
}

func TestCalculate_UnknownKeysDegradeToNeutral(t *testing.T) {
	engine := newTestEngine(t, DefaultPricingRules())

	got := engine.Calculate(catalog.Default(), PricingInput{
		Material: "marble",
		Size:     "bench",
		Addons:   []string{"jacuzzi"},
	})

	assert.Equal(t, 1.0, got.MaterialMultiplier)
	assert.Equal(t, 1.0, got.SizeMultiplier)
	assert.Equal(t, 0.0, got.AddonsTotal)
	assert.Equal(t, 800.0, got.Subtotal)
	assert.Nil(t, got.Discounts.StockClearance)
	assert.Equal(t, 720.0, got.FinalPrice)
}

func TestCalculate_NilCatalogDoesNotPanic(t *testing.T) {
	engine := newTestEngine(t, DefaultPricingRules())

	got := engine.Calculate(nil, PricingInput{Material: "leather", Size: "l_shape", Addons: []string{"recliner"}})

	assert.Equal(t, 800.0, got.Subtotal)
	assert.Equal(t, 720.0, got.FinalPrice)
}

func TestCalculate_Idempotent(t *testing.T) {
	engine := newTestEngine(t, DefaultPricingRules())
	in := PricingInput{Material: "leather", Size: "three_seater", Addons: []string{"headrest", "storage", "recliner"}}

	first, err := json.Marshal(engine.Calculate(catalog.Default(), in))
	require.NoError(t, err)
	second, err := json.Marshal(engine.Calculate(catalog.Default(), in))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestCalculate_AllFieldsHaveAtMostTwoDecimals(t *testing.T) {
	engine := newTestEngine(t, DefaultPricingRules())
	c := catalog.Default()
	addonKeys := c.AddonKeys()

	twoPlaces := func(name string, v float64) {
		scaled := v * 100
		assert.InDelta(t, math.Round(scaled), scaled, 1e-6, "%s = %v", name, v)
		assert.GreaterOrEqual(t, v, 0.0, name)
	}

	for _, material := range c.MaterialKeys() {
		for _, size := range c.SizeKeys() {
			for mask := 0; mask < 1<<len(addonKeys); mask++ {
				var addons []string
				for i, key := range addonKeys {
					if mask&(1<<i) != 0 {
						addons = append(addons, key)
					}
				}
				got := engine.Calculate(c, PricingInput{Material: material, Size: size, Addons: addons})

				twoPlaces("basePrice", got.BasePrice)
				twoPlaces("materialMultiplier", got.MaterialMultiplier)
				twoPlaces("sizeMultiplier", got.SizeMultiplier)
				twoPlaces("addonsTotal", got.AddonsTotal)
				twoPlaces("subtotal", got.Subtotal)
				twoPlaces("finalPrice", got.FinalPrice)
				if got.Discounts != nil {
					twoPlaces("discounts.total", got.Discounts.Total)
					assert.InDelta(t, got.Subtotal-got.Discounts.Total, got.FinalPrice, 1e-9)
				}
			}
		}
	}
}

func TestCalculateWithDetails(t *testing.T) {
	engine := newTestEngine(t, DefaultPricingRules())

	breakdown, details := engine.CalculateWithDetails(catalog.Default(), PricingInput{
		Material: "fabric",
		Size:     "two_seater",
		Addons:   []string{"recliner", "cupholder"},
	})

	assert.Equal(t, 200.0, breakdown.AddonsTotal)
	assert.Equal(t, []domain.AddonPrice{
		{Name: "recliner", Price: 200},
		{Name: "cupholder", Price: 0},
	}, details)
}

func TestEstimateRange(t *testing.T) {
	engine := newTestEngine(t, DefaultPricingRules())
	c := catalog.Default()

	assert.Equal(t, domain.PriceRange{Min: 880, Max: 1280}, engine.EstimateRange(c, "fabric", "two_seater"))
	assert.Equal(t, domain.PriceRange{Min: 1792, Max: 2192}, engine.EstimateRange(c, "leather", "l_shape"))
}

func TestEstimateRange_IgnoresLowStockPremium(t *testing.T) {
	engine := newTestEngine(t, DefaultPricingRules())
	c := customCatalog(t, []domain.Material{{
		Name:            "velvet",
		PriceMultiplier: 1.1,
		AllowedColors:   []string{"green"},
		MaxWidthCm:      300,
		DaysInStock:     10,
		StockLevel:      domain.StockLevelLow,
	}}, catalog.DefaultSizes())

	assert.Equal(t, domain.PriceRange{Min: 880, Max: 1280}, engine.EstimateRange(c, "velvet", "two_seater"))

	// Calculate still applies the premium for the same material.
	got := engine.Calculate(c, PricingInput{Material: "velvet", Size: "two_seater", SkipDiscounts: true})
	assert.Equal(t, 1.16, got.MaterialMultiplier)
	assert.Equal(t, 928.0, got.Subtotal)
}

func TestPricingRules_Validate(t *testing.T) {
	assert.NoError(t, DefaultPricingRules().Validate())

	rules := DefaultPricingRules()
	rules.SeasonalSaleRate = 0.9
	assert.ErrorIs(t, rules.Validate(), ErrInvalidPricingRules)

	rules = DefaultPricingRules()
	rules.BundleRate = -0.1
	_, err := NewPricingEngine(rules)
	assert.ErrorIs(t, err, ErrInvalidPricingRules)
}

func TestRulesVersion(t *testing.T) {
	a := newTestEngine(t, DefaultPricingRules())
	b := newTestEngine(t, DefaultPricingRules())
	assert.Equal(t, a.RulesVersion(), b.RulesVersion())

	rules := DefaultPricingRules()
	rules.SeasonalSaleActive = false
	c := newTestEngine(t, rules)
	assert.NotEqual(t, a.RulesVersion(), c.RulesVersion())
}
