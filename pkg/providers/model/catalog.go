package model

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Info describes one model a provider accepts.
type Info struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Catalog is the ordered allow-list of models for a provider.
type Catalog struct {
	Models []Info `yaml:"models"`
}

// UnsupportedModelError is returned when a request names a model outside the
// catalog. It is raised before any network activity.
type UnsupportedModelError struct {
	Name    string
	Allowed []string
}

func (e *UnsupportedModelError) Error() string {
	return fmt.Sprintf("invalid model: %s. Valid models are: %s", e.Name, strings.Join(e.Allowed, ", "))
}

// ParseCatalog decodes a YAML catalog. Empty catalogs and duplicate or blank
// names are rejected.
func ParseCatalog(data []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Catalog{}, fmt.Errorf("parse catalog: %w", err)
	}

	if len(c.Models) == 0 {
		return Catalog{}, errors.New("parse catalog: no models")
	}

	seen := make(map[string]bool, len(c.Models))
	for _, m := range c.Models {
		if m.Name == "" {
			return Catalog{}, errors.New("parse catalog: model without a name")
		}
		if seen[m.Name] {
			return Catalog{}, fmt.Errorf("parse catalog: duplicate model %q", m.Name)
		}
		seen[m.Name] = true
	}

	return c, nil
}

// Names returns the model names in catalog order.
func (c Catalog) Names() []string {
	names := make([]string, len(c.Models))
	for i, m := range c.Models {
		names[i] = m.Name
	}

	return names
}

// Supports reports whether name is in the catalog.
func (c Catalog) Supports(name string) bool {
	return slices.Contains(c.Names(), name)
}

// Validate returns an *UnsupportedModelError when name is not in the catalog.
func (c Catalog) Validate(name string) error {
	if c.Supports(name) {
		return nil
	}

	return &UnsupportedModelError{Name: name, Allowed: c.Names()}
}
