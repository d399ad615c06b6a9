package service

import "github.com/shopspring/decimal"

const currencyPlaces = 2

func amount(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

func round(d decimal.Decimal) decimal.Decimal {
	return d.Round(currencyPlaces)
}

// mul and add round after every operation so that composed prices match
// step-by-step arithmetic to the cent.
func mul(a, b decimal.Decimal) decimal.Decimal {
	return round(a.Mul(b))
}

func add(a, b decimal.Decimal) decimal.Decimal {
	return round(a.Add(b))
}

func toFloat(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

func floatPtr(d decimal.Decimal) *float64 {
	v := toFloat(d)
	return &v
}
