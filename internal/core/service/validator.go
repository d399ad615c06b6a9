package service

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rl1809/sofa-configurator/internal/core/catalog"
	"github.com/rl1809/sofa-configurator/internal/core/domain"
)

const (
	fieldMaterial = "material"
	fieldColor    = "color"
	fieldSize     = "size"
	fieldAddons   = "addons"
)

var knownFields = map[string]struct{}{
	fieldMaterial: {},
	fieldColor:    {},
	fieldSize:     {},
	fieldAddons:   {},
}

type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks payload against the catalog and returns the normalized
// configuration. Violations accumulate; checks that depend on an invalid
// material or size are skipped so one bad key yields one violation.
func (v *Validator) Validate(c *catalog.Catalog, payload any) (domain.Configuration, error) {
	obj, ok := payload.(map[string]any)
	if !ok {
		return domain.Configuration{}, &domain.ValidationError{
			Violations: []domain.Violation{{Message: "Configuration must be a JSON object"}},
		}
	}

	var violations []domain.Violation
	report := func(path, format string, args ...any) {
		violations = append(violations, domain.Violation{Path: path, Message: fmt.Sprintf(format, args...)})
	}

	unknown := make([]string, 0)
	for key := range obj {
		if _, ok := knownFields[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	for _, key := range unknown {
		report(key, "Unrecognized field")
	}

	materialKey, _ := obj[fieldMaterial].(string)
	material, materialOK := c.LookupMaterial(materialKey)
	if !materialOK {
		report(fieldMaterial, "Material must be one of: %s", strings.Join(c.MaterialKeys(), ", "))
	}

	color, colorOK := "", false
	switch raw := obj[fieldColor].(type) {
	case nil:
		report(fieldColor, "Color is required")
	case string:
		if raw == "" {
			report(fieldColor, "Color is required")
		} else {
			color, colorOK = raw, true
		}
	default:
		report(fieldColor, "Color must be a string")
	}

	sizeKey, _ := obj[fieldSize].(string)
	size, sizeOK := c.LookupSize(sizeKey)
	if !sizeOK {
		report(fieldSize, "Size must be one of: %s", strings.Join(c.SizeKeys(), ", "))
	}

	addons := make([]string, 0)
	switch raw := obj[fieldAddons].(type) {
	case nil:
	case []any:
		seen := make(map[string]struct{}, len(raw))
		for i, item := range raw {
			key, _ := item.(string)
			if _, ok := c.LookupAddon(key); !ok {
				report(fieldAddons+"."+strconv.Itoa(i), "Add-on must be one of: %s", strings.Join(c.AddonKeys(), ", "))
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			addons = append(addons, key)
		}
	case []string:
		return v.Validate(c, withAddonList(obj, raw))
	default:
		report(fieldAddons, "Add-ons must be a list")
	}

	if materialOK && colorOK && !material.AllowsColor(color) {
		report(fieldColor, "Color %q is not available for material %q", color, material.Name)
	}

	if materialOK && sizeOK && size.WidthCm > material.MaxWidthCm {
		report(fieldSize, "Size %q is not compatible with material %q (width constraint exceeded)", size.Name, material.Name)
	}

	for _, key := range addons {
		if _, ok := c.LookupAddon(key); !ok {
			report(fieldAddons, "One or more add-ons are invalid")
			break
		}
	}

	if len(violations) > 0 {
		return domain.Configuration{}, &domain.ValidationError{Violations: violations}
	}

	return domain.Configuration{
		Material: material.Name,
		Color:    color,
		Size:     size.Name,
		Addons:   addons,
	}, nil
}

// withAddonList rewrites a typed add-on list into the shape produced by
// JSON decoding, so typed callers share one code path.
func withAddonList(obj map[string]any, addons []string) map[string]any {
	out := make(map[string]any, len(obj))
	for k, v := range obj {
		out[k] = v
	}
	list := make([]any, len(addons))
	for i, a := range addons {
		list[i] = a
	}
	out[fieldAddons] = list
	return out
}
