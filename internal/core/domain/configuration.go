package domain

// Configuration is a validated customer selection. Addons holds unique keys.
type Configuration struct {
	Material string   `json:"material"`
	Color    string   `json:"color"`
	Size     string   `json:"size"`
	Addons   []string `json:"addons"`
}

type ConfigurationResult struct {
	Success       bool             `json:"success"`
	Configuration Configuration    `json:"configuration"`
	Pricing       PricingBreakdown `json:"pricing"`
}

type ValidationResult struct {
	Valid  bool   `json:"valid"`
	Errors string `json:"errors,omitempty"`
}
