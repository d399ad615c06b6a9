package domain

type StockLevel string

const (
	StockLevelHigh   StockLevel = "high"
	StockLevelMedium StockLevel = "medium"
	StockLevelLow    StockLevel = "low"
)

func (l StockLevel) Valid() bool {
	switch l {
	case StockLevelHigh, StockLevelMedium, StockLevelLow:
		return true
	}
	return false
}

type Material struct {
	Name            string     `json:"name" yaml:"name"`
	PriceMultiplier float64    `json:"priceMultiplier" yaml:"priceMultiplier"`
	AllowedColors   []string   `json:"allowedColors" yaml:"allowedColors"`
	MaxWidthCm      int        `json:"maxWidthCm" yaml:"maxWidthCm"`
	Description     string     `json:"description" yaml:"description"`
	DaysInStock     int        `json:"daysInStock" yaml:"daysInStock"`
	StockLevel      StockLevel `json:"stockLevel" yaml:"stockLevel"`
}

// AllowsColor reports whether color is in the material's allowed set.
func (m Material) AllowsColor(color string) bool {
	for _, c := range m.AllowedColors {
		if c == color {
			return true
		}
	}
	return false
}

type Size struct {
	Name            string  `json:"name" yaml:"name"`
	Seats           int     `json:"seats" yaml:"seats"`
	WidthCm         int     `json:"widthCm" yaml:"widthCm"`
	PriceMultiplier float64 `json:"priceMultiplier" yaml:"priceMultiplier"`
	Description     string  `json:"description" yaml:"description"`
}

type Addon struct {
	Name        string  `json:"name" yaml:"name"`
	Price       float64 `json:"price" yaml:"price"`
	Description string  `json:"description" yaml:"description"`
}
