package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/rl1809/sofa-configurator/internal/core/catalog"
	"github.com/rl1809/sofa-configurator/internal/port"
)

// CatalogService loads the catalog from its source into the live store.
type CatalogService struct {
	source port.CatalogSource
	store  *catalog.Store
	logger *zap.Logger
}

func NewCatalogService(source port.CatalogSource, store *catalog.Store, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{source: source, store: store, logger: logger}
}

func (s *CatalogService) Current() *catalog.Catalog {
	return s.store.Current()
}

// Reload replaces the live catalog. On failure the previous catalog stays in place.
func (s *CatalogService) Reload(ctx context.Context) error {
	if s.source == nil {
		return errors.New("catalog reload: no source configured")
	}

	next, err := s.source.Load(ctx)
	if err != nil {
		s.logger.Error("catalog reload failed", zap.Error(err))
		return fmt.Errorf("catalog reload: %w", err)
	}
	if next == nil {
		s.logger.Error("catalog reload returned no catalog")
		return errors.New("catalog reload: source returned no catalog")
	}

	prev := s.store.Swap(next)
	fields := []zap.Field{
		zap.String("version", next.Version()),
		zap.Int("materials", len(next.MaterialKeys())),
		zap.Int("sizes", len(next.SizeKeys())),
		zap.Int("addons", len(next.AddonKeys())),
	}
	if prev != nil {
		fields = append(fields, zap.String("previous_version", prev.Version()))
	}
	s.logger.Info("catalog loaded", fields...)
	return nil
}
