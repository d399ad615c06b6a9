package port

import (
	"context"

	"github.com/rl1809/sofa-configurator/internal/core/catalog"
)

type CatalogSource interface {
	// Load reads the full catalog from the backing source
	Load(ctx context.Context) (*catalog.Catalog, error)
}
