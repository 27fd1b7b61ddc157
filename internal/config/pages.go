package config

import (
	"fmt"

	domlisting "github.com/kailas-cloud/unidash/internal/domain/listing"
	"github.com/kailas-cloud/unidash/internal/domain/listing/filter"
	"github.com/kailas-cloud/unidash/internal/domain/listing/sortkey"
)

// PageConfig declares one listing page.
type PageConfig struct {
	Name     string            `yaml:"name"`
	Title    string            `yaml:"title"`
	Source   string            `yaml:"source"`
	PageSize int               `yaml:"page_size"`
	Fields   map[string]string `yaml:"fields"` // canonical name -> dotted source path
	Search   *SearchConfig     `yaml:"search"`
	Facets   []FacetConfig     `yaml:"facets"`
	Ranges   []RangeConfig     `yaml:"ranges"`
	Sort     SortConfig        `yaml:"sort"`
}

// SearchConfig declares the free-text criterion of a page.
type SearchConfig struct {
	Name   string   `yaml:"name"` // default: q
	Fields []string `yaml:"fields"`
}

// FacetConfig declares a multi-select criterion.
type FacetConfig struct {
	Name  string `yaml:"name"`
	Field string `yaml:"field"` // default: name
	Label string `yaml:"label"`
}

// RangeConfig declares an inclusive numeric range criterion.
type RangeConfig struct {
	Name    string  `yaml:"name"`
	Field   string  `yaml:"field"` // default: name
	Min     float64 `yaml:"min"`
	Max     float64 `yaml:"max"`
	Missing string  `yaml:"missing"` // zero (default) or exclude
}

// SortConfig declares the sort key registry of a page.
type SortConfig struct {
	Default string          `yaml:"default"` // default: relevance
	Keys    []SortKeyConfig `yaml:"keys"`
}

// SortKeyConfig declares one named sort order.
type SortKeyConfig struct {
	Name  string `yaml:"name"`
	Field string `yaml:"field"`
	Kind  string `yaml:"kind"` // string, number, time
	Desc  bool   `yaml:"desc"`
}

// Definitions builds the page definitions in declaration order.
func (c *Config) Definitions() ([]domlisting.Definition, error) {
	defs := make([]domlisting.Definition, 0, len(c.Pages))
	seen := make(map[string]bool, len(c.Pages))
	for i, p := range c.Pages {
		if seen[p.Name] {
			return nil, fmt.Errorf("pages[%d]: duplicate page name %q", i, p.Name)
		}
		seen[p.Name] = true

		def, err := p.Definition()
		if err != nil {
			return nil, fmt.Errorf("pages[%d]: %w", i, err)
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// Definition builds the page definition.
func (p PageConfig) Definition() (domlisting.Definition, error) {
	b := domlisting.NewDefinition(p.Name).
		Title(p.Title).
		Source(p.Source).
		PageSize(p.PageSize)

	for name, path := range p.Fields {
		b.Map(name, path)
	}
	if p.Search != nil {
		name := p.Search.Name
		if name == "" {
			name = "q"
		}
		b.Search(name, p.Search.Fields...)
	}
	for _, f := range p.Facets {
		b.Facet(f.Name, orDefault(f.Field, f.Name), f.Label)
	}
	for _, r := range p.Ranges {
		b.Range(r.Name, orDefault(r.Field, r.Name), r.Min, r.Max, filter.Missing(r.Missing))
	}
	for _, k := range p.Sort.Keys {
		b.SortKey(k.Name, k.Field, sortkey.Kind(k.Kind), k.Desc)
	}
	b.DefaultSort(p.Sort.Default)

	def, err := b.Build()
	if err != nil {
		return domlisting.Definition{}, fmt.Errorf("build page: %w", err)
	}
	return def, nil
}

// Sources returns the distinct record sources read by the configured pages.
func (c *Config) Sources() []string {
	var out []string
	seen := make(map[string]bool)
	for _, p := range c.Pages {
		src := orDefault(p.Source, p.Name)
		if !seen[src] {
			seen[src] = true
			out = append(out, src)
		}
	}
	return out
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
