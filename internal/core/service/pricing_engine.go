package service

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rl1809/sofa-configurator/internal/core/catalog"
	"github.com/rl1809/sofa-configurator/internal/core/domain"
)

// ErrInvalidPricingRules is returned when a rule set could produce negative prices.
var ErrInvalidPricingRules = errors.New("invalid pricing rules")

// PricingRules holds the constants of the price composition. Discounts stack
// without a cap; the bundle rate applies to the add-on total only.
type PricingRules struct {
	BasePrice             float64
	LowStockPremium       float64
	StockClearanceMinDays int
	StockClearanceRate    float64
	SeasonalSaleActive    bool
	SeasonalSaleRate      float64
	BundleMinAddons       int
	BundleRate            float64
}

func DefaultPricingRules() PricingRules {
	return PricingRules{
		BasePrice:             800,
		LowStockPremium:       1.05,
		StockClearanceMinDays: 90,
		StockClearanceRate:    0.15,
		SeasonalSaleActive:    true,
		SeasonalSaleRate:      0.10,
		BundleMinAddons:       3,
		BundleRate:            0.08,
	}
}

func (r PricingRules) Validate() error {
	if r.BasePrice < 0 || r.LowStockPremium < 0 {
		return fmt.Errorf("%w: base price and low stock premium must be non-negative", ErrInvalidPricingRules)
	}
	for _, rate := range []float64{r.StockClearanceRate, r.SeasonalSaleRate, r.BundleRate} {
		if rate < 0 || rate > 1 {
			return fmt.Errorf("%w: discount rate %v outside [0, 1]", ErrInvalidPricingRules, rate)
		}
	}
	// addonsTotal never exceeds subtotal, so this bound keeps finalPrice >= 0.
	if r.StockClearanceRate+r.SeasonalSaleRate+r.BundleRate > 1 {
		return fmt.Errorf("%w: combined discount rates exceed 100%%", ErrInvalidPricingRules)
	}
	return nil
}

type PricingInput struct {
	Material      string
	Size          string
	Addons        []string
	SkipDiscounts bool
}

type PricingEngine struct {
	rules   PricingRules
	version string
}

func NewPricingEngine(rules PricingRules) (*PricingEngine, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	sum := sha256.Sum256([]byte(fmt.Sprintf("%+v", rules)))
	return &PricingEngine{rules: rules, version: hex.EncodeToString(sum[:8])}, nil
}

func (e *PricingEngine) Rules() PricingRules { return e.rules }

// RulesVersion fingerprints the rule set; cached quotes are keyed by it.
func (e *PricingEngine) RulesVersion() string { return e.version }

// Calculate composes the price in a fixed order, rounding to cents after
// every step. Reordering the steps changes the final cents.
func (e *PricingEngine) Calculate(c *catalog.Catalog, in PricingInput) domain.PricingBreakdown {
	basePrice := amount(e.rules.BasePrice)
	material, hasMaterial := c.LookupMaterial(in.Material)
	materialMultiplier := e.materialMultiplier(c, in.Material)
	sizeMultiplier := e.sizeMultiplier(c, in.Size)

	afterMaterial := mul(basePrice, materialMultiplier)
	afterSize := mul(afterMaterial, sizeMultiplier)
	addonsTotal := e.addonsTotal(c, in.Addons)
	subtotal := add(afterSize, addonsTotal)

	breakdown := domain.PricingBreakdown{
		BasePrice:          toFloat(basePrice),
		MaterialMultiplier: toFloat(materialMultiplier),
		SizeMultiplier:     toFloat(sizeMultiplier),
		AddonsTotal:        toFloat(addonsTotal),
		Subtotal:           toFloat(subtotal),
	}

	discountAmount := decimal.Zero
	if !in.SkipDiscounts {
		var discounts domain.Discounts

		if hasMaterial && material.DaysInStock >= e.rules.StockClearanceMinDays {
			d := mul(subtotal, amount(e.rules.StockClearanceRate))
			discounts.StockClearance = floatPtr(d)
			discountAmount = add(discountAmount, d)
		}

		if e.rules.SeasonalSaleActive {
			d := mul(subtotal, amount(e.rules.SeasonalSaleRate))
			discounts.Seasonal = floatPtr(d)
			discountAmount = add(discountAmount, d)
		}

		if len(in.Addons) >= e.rules.BundleMinAddons {
			d := mul(addonsTotal, amount(e.rules.BundleRate))
			discounts.Bundle = floatPtr(d)
			discountAmount = add(discountAmount, d)
		}

		if discountAmount.IsPositive() {
			discounts.Total = toFloat(round(discountAmount))
			breakdown.Discounts = &discounts
			breakdown.Savings = floatPtr(round(discountAmount))
		}
	}

	breakdown.FinalPrice = toFloat(round(subtotal.Sub(discountAmount)))
	return breakdown
}

// CalculateWithDetails also itemizes each add-on's price; unknown add-ons cost 0.
func (e *PricingEngine) CalculateWithDetails(c *catalog.Catalog, in PricingInput) (domain.PricingBreakdown, []domain.AddonPrice) {
	breakdown := e.Calculate(c, in)

	details := make([]domain.AddonPrice, 0, len(in.Addons))
	for _, key := range in.Addons {
		addon, _ := c.LookupAddon(key)
		details = append(details, domain.AddonPrice{Name: key, Price: addon.Price})
	}
	return breakdown, details
}

// EstimateRange returns the undiscounted price without add-ons and with
// every catalog add-on. It uses list multipliers; the low-stock premium is
// left to Calculate.
func (e *PricingEngine) EstimateRange(c *catalog.Catalog, material, size string) domain.PriceRange {
	minPrice := mul(mul(amount(e.rules.BasePrice), listMultiplier(c, material)), e.sizeMultiplier(c, size))

	var all []string
	if c != nil {
		all = c.AddonKeys()
	}
	maxPrice := add(minPrice, e.addonsTotal(c, all))

	return domain.PriceRange{Min: toFloat(minPrice), Max: toFloat(maxPrice)}
}

func (e *PricingEngine) materialMultiplier(c *catalog.Catalog, key string) decimal.Decimal {
	material, ok := c.LookupMaterial(key)
	if !ok {
		return decimal.NewFromInt(1)
	}
	multiplier := amount(material.PriceMultiplier)
	if material.StockLevel == domain.StockLevelLow {
		multiplier = mul(multiplier, amount(e.rules.LowStockPremium))
	}
	return multiplier
}

func listMultiplier(c *catalog.Catalog, key string) decimal.Decimal {
	material, ok := c.LookupMaterial(key)
	if !ok {
		return decimal.NewFromInt(1)
	}
	return amount(material.PriceMultiplier)
}

func (e *PricingEngine) sizeMultiplier(c *catalog.Catalog, key string) decimal.Decimal {
	size, ok := c.LookupSize(key)
	if !ok {
		return decimal.NewFromInt(1)
	}
	return amount(size.PriceMultiplier)
}

func (e *PricingEngine) addonsTotal(c *catalog.Catalog, keys []string) decimal.Decimal {
	total := decimal.Zero
	for _, key := range keys {
		addon, _ := c.LookupAddon(key)
		total = add(total, amount(addon.Price))
	}
	return total
}
