package service

import (
	"github.com/rl1809/sofa-configurator/internal/core/catalog"
	"github.com/rl1809/sofa-configurator/internal/core/domain"
)

// ConfigurationValidator is the strict boundary: unknown keys and
// incompatible combinations are rejected with a *domain.ValidationError.
type ConfigurationValidator interface {
	Validate(c *catalog.Catalog, payload any) (domain.Configuration, error)
}

// PriceCalculator is permissive: unknown keys price as neutral multipliers
// or zero-cost add-ons and never produce an error.
type PriceCalculator interface {
	Calculate(c *catalog.Catalog, in PricingInput) domain.PricingBreakdown
	CalculateWithDetails(c *catalog.Catalog, in PricingInput) (domain.PricingBreakdown, []domain.AddonPrice)
	EstimateRange(c *catalog.Catalog, material, size string) domain.PriceRange
	RulesVersion() string
}

// CatalogProvider hands out the catalog snapshot for one request.
type CatalogProvider interface {
	Current() *catalog.Catalog
}
