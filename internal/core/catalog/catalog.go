package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rl1809/sofa-configurator/internal/core/domain"
)

var ErrInvalidCatalog = errors.New("invalid catalog")

// Catalog is an immutable set of material, size and add-on tables. Values
// handed out by its accessors are copies, so callers cannot mutate it.
type Catalog struct {
	materials map[string]domain.Material
	sizes     map[string]domain.Size
	addons    map[string]domain.Addon

	materialKeys []string
	sizeKeys     []string
	addonKeys    []string

	version string
}

// New builds a catalog from the given tables, keeping their order for listings.
func New(materials []domain.Material, sizes []domain.Size, addons []domain.Addon) (*Catalog, error) {
	c := &Catalog{
		materials: make(map[string]domain.Material, len(materials)),
		sizes:     make(map[string]domain.Size, len(sizes)),
		addons:    make(map[string]domain.Addon, len(addons)),
	}

	for _, m := range materials {
		if err := checkMaterial(m); err != nil {
			return nil, err
		}
		if _, dup := c.materials[m.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate material %q", ErrInvalidCatalog, m.Name)
		}
		m.AllowedColors = append([]string(nil), m.AllowedColors...)
		c.materials[m.Name] = m
		c.materialKeys = append(c.materialKeys, m.Name)
	}

	for _, s := range sizes {
		if s.Name == "" {
			return nil, fmt.Errorf("%w: size with empty name", ErrInvalidCatalog)
		}
		if s.WidthCm <= 0 || s.Seats <= 0 || s.PriceMultiplier < 0 {
			return nil, fmt.Errorf("%w: size %q has invalid dimensions or multiplier", ErrInvalidCatalog, s.Name)
		}
		if _, dup := c.sizes[s.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate size %q", ErrInvalidCatalog, s.Name)
		}
		c.sizes[s.Name] = s
		c.sizeKeys = append(c.sizeKeys, s.Name)
	}

	for _, a := range addons {
		if a.Name == "" {
			return nil, fmt.Errorf("%w: add-on with empty name", ErrInvalidCatalog)
		}
		if a.Price < 0 {
			return nil, fmt.Errorf("%w: add-on %q has negative price", ErrInvalidCatalog, a.Name)
		}
		if _, dup := c.addons[a.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate add-on %q", ErrInvalidCatalog, a.Name)
		}
		c.addons[a.Name] = a
		c.addonKeys = append(c.addonKeys, a.Name)
	}

	version, err := fingerprint(c.Materials(), c.Sizes(), c.Addons())
	if err != nil {
		return nil, err
	}
	c.version = version

	return c, nil
}

func checkMaterial(m domain.Material) error {
	switch {
	case m.Name == "":
		return fmt.Errorf("%w: material with empty name", ErrInvalidCatalog)
	case m.PriceMultiplier < 0:
		return fmt.Errorf("%w: material %q has negative multiplier", ErrInvalidCatalog, m.Name)
	case m.MaxWidthCm <= 0:
		return fmt.Errorf("%w: material %q has invalid max width", ErrInvalidCatalog, m.Name)
	case m.DaysInStock < 0:
		return fmt.Errorf("%w: material %q has negative days in stock", ErrInvalidCatalog, m.Name)
	case !m.StockLevel.Valid():
		return fmt.Errorf("%w: material %q has unknown stock level %q", ErrInvalidCatalog, m.Name, m.StockLevel)
	}
	return nil
}

func fingerprint(materials []domain.Material, sizes []domain.Size, addons []domain.Addon) (string, error) {
	payload, err := json.Marshal(struct {
		Materials []domain.Material `json:"materials"`
		Sizes     []domain.Size     `json:"sizes"`
		Addons    []domain.Addon    `json:"addons"`
	}{materials, sizes, addons})
	if err != nil {
		return "", fmt.Errorf("fingerprint catalog: %w", err)
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:8]), nil
}

// Version is a content fingerprint; equal tables yield equal versions.
func (c *Catalog) Version() string {
	if c == nil {
		return ""
	}
	return c.version
}

// Lookups on a nil catalog report absence rather than panic.
func (c *Catalog) LookupMaterial(key string) (domain.Material, bool) {
	if c == nil {
		return domain.Material{}, false
	}
	m, ok := c.materials[key]
	if !ok {
		return domain.Material{}, false
	}
	m.AllowedColors = append([]string(nil), m.AllowedColors...)
	return m, true
}

func (c *Catalog) LookupSize(key string) (domain.Size, bool) {
	if c == nil {
		return domain.Size{}, false
	}
	s, ok := c.sizes[key]
	return s, ok
}

func (c *Catalog) LookupAddon(key string) (domain.Addon, bool) {
	if c == nil {
		return domain.Addon{}, false
	}
	a, ok := c.addons[key]
	return a, ok
}

func (c *Catalog) Materials() []domain.Material {
	if c == nil {
		return nil
	}
	out := make([]domain.Material, 0, len(c.materialKeys))
	for _, key := range c.materialKeys {
		m, _ := c.LookupMaterial(key)
		out = append(out, m)
	}
	return out
}

func (c *Catalog) Sizes() []domain.Size {
	if c == nil {
		return nil
	}
	out := make([]domain.Size, 0, len(c.sizeKeys))
	for _, key := range c.sizeKeys {
		out = append(out, c.sizes[key])
	}
	return out
}

func (c *Catalog) Addons() []domain.Addon {
	if c == nil {
		return nil
	}
	out := make([]domain.Addon, 0, len(c.addonKeys))
	for _, key := range c.addonKeys {
		out = append(out, c.addons[key])
	}
	return out
}

func (c *Catalog) MaterialKeys() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.materialKeys...)
}

func (c *Catalog) SizeKeys() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.sizeKeys...)
}

func (c *Catalog) AddonKeys() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.addonKeys...)
}
