package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rl1809/sofa-configurator/internal/core/catalog"
	"github.com/rl1809/sofa-configurator/internal/core/domain"
	"github.com/rl1809/sofa-configurator/internal/port"
)

var ErrCatalogUnavailable = errors.New("catalog unavailable")

const defaultQuoteTTL = 10 * time.Minute

type ConfiguratorService struct {
	catalogs  CatalogProvider
	validator ConfigurationValidator
	pricing   PriceCalculator
	cache     port.QuoteCache
	cacheTTL  time.Duration
	logger    *zap.Logger
}

type ConfiguratorServiceDeps struct {
	Catalogs  CatalogProvider
	Validator ConfigurationValidator
	Pricing   PriceCalculator
	// Cache is optional; nil disables quote caching.
	Cache    port.QuoteCache
	CacheTTL time.Duration
	Logger   *zap.Logger
}

func NewConfiguratorService(deps ConfiguratorServiceDeps) (*ConfiguratorService, error) {
	if deps.Catalogs == nil {
		return nil, errors.New("configurator service: catalog provider is required")
	}
	if deps.Pricing == nil {
		return nil, errors.New("configurator service: price calculator is required")
	}
	if deps.Validator == nil {
		deps.Validator = NewValidator()
	}
	if deps.CacheTTL <= 0 {
		deps.CacheTTL = defaultQuoteTTL
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	return &ConfiguratorService{
		catalogs:  deps.Catalogs,
		validator: deps.Validator,
		pricing:   deps.Pricing,
		cache:     deps.Cache,
		cacheTTL:  deps.CacheTTL,
		logger:    deps.Logger,
	}, nil
}

// Catalog returns the live catalog for browsing endpoints.
func (s *ConfiguratorService) Catalog() (*catalog.Catalog, error) {
	c := s.catalogs.Current()
	if c == nil {
		return nil, ErrCatalogUnavailable
	}
	return c, nil
}

// Configure validates payload and prices the normalized configuration. A
// rejected payload returns *domain.ValidationError and is never priced.
func (s *ConfiguratorService) Configure(ctx context.Context, payload any) (domain.ConfigurationResult, error) {
	c, err := s.Catalog()
	if err != nil {
		return domain.ConfigurationResult{}, err
	}

	cfg, err := s.validator.Validate(c, payload)
	if err != nil {
		s.logRejection(err)
		return domain.ConfigurationResult{}, err
	}
	s.logger.Debug("configuration validated",
		zap.String("material", cfg.Material),
		zap.String("color", cfg.Color),
		zap.String("size", cfg.Size),
		zap.Strings("addons", cfg.Addons),
	)

	pricing := s.price(ctx, c, PricingInput{
		Material: cfg.Material,
		Size:     cfg.Size,
		Addons:   cfg.Addons,
	})
	s.logger.Info("pricing calculated",
		zap.String("material", cfg.Material),
		zap.String("size", cfg.Size),
		zap.Float64("subtotal", pricing.Subtotal),
		zap.Float64("final_price", pricing.FinalPrice),
	)

	return domain.ConfigurationResult{
		Success:       true,
		Configuration: cfg,
		Pricing:       pricing,
	}, nil
}

// Validate runs validation only, for lightweight pre-checks.
func (s *ConfiguratorService) Validate(ctx context.Context, payload any) (domain.ValidationResult, error) {
	c, err := s.Catalog()
	if err != nil {
		return domain.ValidationResult{}, err
	}

	if _, err := s.validator.Validate(c, payload); err != nil {
		var verr *domain.ValidationError
		if !errors.As(err, &verr) {
			return domain.ValidationResult{}, err
		}
		return domain.ValidationResult{Valid: false, Errors: verr.Error()}, nil
	}
	return domain.ValidationResult{Valid: true}, nil
}

// Estimate returns the price range for a material and size pair.
func (s *ConfiguratorService) Estimate(ctx context.Context, material, size string) (domain.PriceRange, error) {
	c, err := s.Catalog()
	if err != nil {
		return domain.PriceRange{}, err
	}

	var violations []domain.Violation
	if _, ok := c.LookupMaterial(material); !ok {
		violations = append(violations, domain.Violation{
			Path:    "material",
			Message: "Material must be one of: " + strings.Join(c.MaterialKeys(), ", "),
		})
	}
	if _, ok := c.LookupSize(size); !ok {
		violations = append(violations, domain.Violation{
			Path:    "size",
			Message: "Size must be one of: " + strings.Join(c.SizeKeys(), ", "),
		})
	}
	if len(violations) > 0 {
		return domain.PriceRange{}, &domain.ValidationError{Violations: violations}
	}

	return s.pricing.EstimateRange(c, material, size), nil
}

func (s *ConfiguratorService) price(ctx context.Context, c *catalog.Catalog, in PricingInput) domain.PricingBreakdown {
	if s.cache == nil {
		return s.pricing.Calculate(c, in)
	}

	key := quoteKey(c.Version(), s.pricing.RulesVersion(), in)
	cached, ok, err := s.cache.GetQuote(ctx, key)
	if err != nil {
		s.logger.Warn("quote cache read failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		return cached
	}

	breakdown := s.pricing.Calculate(c, in)
	if err := s.cache.SetQuote(ctx, key, breakdown, s.cacheTTL); err != nil {
		s.logger.Warn("quote cache write failed", zap.String("key", key), zap.Error(err))
	}
	return breakdown
}

func (s *ConfiguratorService) logRejection(err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		s.logger.Warn("validation failed",
			zap.Int("violations", len(verr.Violations)),
			zap.String("errors", verr.Error()),
		)
		return
	}
	s.logger.Error("validation errored", zap.Error(err))
}

// quoteKey is independent of add-on order.
func quoteKey(catalogVersion, rulesVersion string, in PricingInput) string {
	addons := append([]string(nil), in.Addons...)
	sort.Strings(addons)
	raw := fmt.Sprintf("%s|%s|%s|%s|%s|%t",
		catalogVersion, rulesVersion, in.Material, in.Size, strings.Join(addons, ","), in.SkipDiscounts)
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
