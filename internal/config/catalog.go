package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Brand is one tracked competitor. Collection names the per-brand document
// table in the search store.
type Brand struct {
	Key         string `yaml:"key"`
	DisplayName string `yaml:"display_name"`
	Collection  string `yaml:"collection"`
}

// Platform is one feedback source channel. Name is the short form used in
// comparison output, LongName the descriptive form used in per-brand output.
// HasRating marks store-review platforms whose documents carry a star rating;
// platforms without it are treated as community-style with engagement scores.
type Platform struct {
	Key       string `yaml:"key"`
	Name      string `yaml:"name"`
	LongName  string `yaml:"long_name"`
	HasRating bool   `yaml:"has_rating"`
}

// Catalog holds the ordered brand and platform enumerations. Order is part of
// the contract: every fan-out operation iterates brands and platforms in
// declaration order so formatted output is deterministic.
type Catalog struct {
	Brands    []Brand    `yaml:"brands"`
	Platforms []Platform `yaml:"platforms"`
}

// DefaultCatalog returns the built-in three-carrier, three-platform catalog.
func DefaultCatalog() *Catalog {
	return &Catalog{
		Brands: []Brand{
			{Key: "tmobile", DisplayName: "T-Mobile", Collection: "feedback_tmobile"},
			{Key: "verizon", DisplayName: "Verizon", Collection: "feedback_verizon"},
			{Key: "att", DisplayName: "AT&T", Collection: "feedback_att"},
		},
		Platforms: []Platform{
			{Key: "reddit", Name: "Reddit", LongName: "Reddit Community Discussions"},
			{Key: "google_play", Name: "Google Play Store", LongName: "Google Play Store Reviews (Android)", HasRating: true},
			{Key: "app_store", Name: "Apple App Store", LongName: "Apple App Store Reviews (iOS)", HasRating: true},
		},
	}
}

// LoadCatalog reads a catalog from a YAML file. An empty path returns the
// built-in default.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parse catalog file: %w", err)
	}

	if err := cat.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", path, err)
	}
	return &cat, nil
}

// Validate checks that the catalog is non-empty and keys are unique.
func (c *Catalog) Validate() error {
	if len(c.Brands) == 0 {
		return fmt.Errorf("no brands configured")
	}
	if len(c.Platforms) == 0 {
		return fmt.Errorf("no platforms configured")
	}

	seen := make(map[string]bool, len(c.Brands))
	for _, b := range c.Brands {
		if b.Key == "" || b.Collection == "" {
			return fmt.Errorf("brand %q missing key or collection", b.DisplayName)
		}
		if seen[b.Key] {
			return fmt.Errorf("duplicate brand key %q", b.Key)
		}
		seen[b.Key] = true
	}

	seen = make(map[string]bool, len(c.Platforms))
	for _, p := range c.Platforms {
		if p.Key == "" {
			return fmt.Errorf("platform %q missing key", p.Name)
		}
		if seen[p.Key] {
			return fmt.Errorf("duplicate platform key %q", p.Key)
		}
		seen[p.Key] = true
	}
	return nil
}

// BrandByKey looks up a brand by its key. Returns false if unknown.
func (c *Catalog) BrandByKey(key string) (Brand, bool) {
	for _, b := range c.Brands {
		if b.Key == key {
			return b, true
		}
	}
	return Brand{}, false
}

// PlatformByKey looks up a platform by its key. Returns false if unknown.
func (c *Catalog) PlatformByKey(key string) (Platform, bool) {
	for _, p := range c.Platforms {
		if p.Key == key {
			return p, true
		}
	}
	return Platform{}, false
}

// BrandKeys returns brand keys in declaration order.
func (c *Catalog) BrandKeys() []string {
	keys := make([]string, len(c.Brands))
	for i, b := range c.Brands {
		keys[i] = b.Key
	}
	return keys
}

// PlatformKeys returns platform keys in declaration order.
func (c *Catalog) PlatformKeys() []string {
	keys := make([]string, len(c.Platforms))
	for i, p := range c.Platforms {
		keys[i] = p.Key
	}
	return keys
}
