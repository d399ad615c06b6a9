package domain

// PricingBreakdown is the priced result of one configuration. All currency
// fields carry at most two decimal places.
type PricingBreakdown struct {
	BasePrice          float64    `json:"basePrice"`
	MaterialMultiplier float64    `json:"materialMultiplier"`
	SizeMultiplier     float64    `json:"sizeMultiplier"`
	AddonsTotal        float64    `json:"addonsTotal"`
	Subtotal           float64    `json:"subtotal"`
	Discounts          *Discounts `json:"discounts,omitempty"`
	FinalPrice         float64    `json:"finalPrice"`
	Savings            *float64   `json:"savings,omitempty"`
}

// Discounts lists the discount components that applied. Total is their sum.
type Discounts struct {
	StockClearance *float64 `json:"stockClearance,omitempty"`
	Seasonal       *float64 `json:"seasonal,omitempty"`
	Bundle         *float64 `json:"bundle,omitempty"`
	Total          float64  `json:"total"`
}

type AddonPrice struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}
