package storage

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rl1809/sofa-configurator/internal/core/catalog"
	"github.com/rl1809/sofa-configurator/internal/core/domain"
)

type catalogDocument struct {
	Materials []domain.Material `yaml:"materials"`
	Sizes     []domain.Size     `yaml:"sizes"`
	Addons    []domain.Addon    `yaml:"addons"`
}

// FileAdapter reads the catalog from a YAML document. Unknown keys are rejected.
type FileAdapter struct {
	path string
}

func NewFileAdapter(path string) *FileAdapter {
	return &FileAdapter{path: path}
}

func (f *FileAdapter) Load(ctx context.Context) (*catalog.Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("open catalog file: %w", err)
	}
	defer file.Close()

	var doc catalogDocument
	dec := yaml.NewDecoder(file)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode catalog file %s: %w", f.path, err)
	}

	c, err := catalog.New(doc.Materials, doc.Sizes, doc.Addons)
	if err != nil {
		return nil, fmt.Errorf("build catalog from %s: %w", f.path, err)
	}
	return c, nil
}

// StaticAdapter serves the built-in catalog.
type StaticAdapter struct{}

func NewStaticAdapter() StaticAdapter { return StaticAdapter{} }

func (StaticAdapter) Load(ctx context.Context) (*catalog.Catalog, error) {
	return catalog.Default(), nil
}
