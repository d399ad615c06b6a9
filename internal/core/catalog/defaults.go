package catalog

import "github.com/rl1809/sofa-configurator/internal/core/domain"

func DefaultMaterials() []domain.Material {
	return []domain.Material{
		{
			Name:            "leather",
			PriceMultiplier: 1.4,
			AllowedColors:   []string{"black", "brown", "beige"},
			MaxWidthCm:      260,
			Description:     "Premium genuine leather with rich texture",
			DaysInStock:     120,
			StockLevel:      domain.StockLevelHigh,
		},
		{
			Name:            "fabric",
			PriceMultiplier: 1.1,
			AllowedColors:   []string{"gray", "blue", "orange"},
			MaxWidthCm:      300,
			Description:     "Durable woven fabric, soft and breathable",
			DaysInStock:     45,
			StockLevel:      domain.StockLevelMedium,
		},
	}
}

func DefaultSizes() []domain.Size {
	return []domain.Size{
		{Name: "two_seater", Seats: 2, WidthCm: 180, PriceMultiplier: 1.0, Description: "Compact 2-seater perfect for small spaces"},
		{Name: "three_seater", Seats: 3, WidthCm: 220, PriceMultiplier: 1.25, Description: "Classic 3-seater for comfortable seating"},
		{Name: "l_shape", Seats: 5, WidthCm: 280, PriceMultiplier: 1.6, Description: "Spacious L-shaped sectional for large rooms"},
	}
}

func DefaultAddons() []domain.Addon {
	return []domain.Addon{
		{Name: "recliner", Price: 200, Description: "Electric reclining mechanism for ultimate comfort"},
		{Name: "storage", Price: 120, Description: "Hidden storage compartment under the seat"},
		{Name: "headrest", Price: 80, Description: "Adjustable headrest for neck support"},
	}
}

// Default returns the built-in catalog. The tables are known to be valid.
func Default() *Catalog {
	c, err := New(DefaultMaterials(), DefaultSizes(), DefaultAddons())
	if err != nil {
		panic(err)
	}
	return c
}
