package port

import (
	"context"
	"time"

	"github.com/rl1809/sofa-configurator/internal/core/domain"
)

type QuoteCache interface {
	// GetQuote returns a cached breakdown, false on miss
	GetQuote(ctx context.Context, key string) (domain.PricingBreakdown, bool, error)

	// SetQuote stores a breakdown for ttl
	SetQuote(ctx context.Context, key string, breakdown domain.PricingBreakdown, ttl time.Duration) error
}
