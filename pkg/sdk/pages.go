package unidash

import (
	"fmt"
	"math"

	domlisting "github.com/kailas-cloud/unidash/internal/domain/listing"
	"github.com/kailas-cloud/unidash/internal/domain/listing/filter"
	"github.com/kailas-cloud/unidash/internal/domain/listing/sortkey"
)

// SortKind is how a sort key compares values.
type SortKind string

// Sort kinds.
const (
	SortString SortKind = SortKind(sortkey.KindString) // collated, case-insensitive
	SortNumber SortKind = SortKind(sortkey.KindNumber) // missing values count as 0
	SortTime   SortKind = SortKind(sortkey.KindTime)   // RFC 3339 or date-only timestamps
)

// PageSpec declares a listing page over one record source.
type PageSpec struct {
	Name     string
	Title    string            // defaults to Name
	Source   string            // stored collection; defaults to Name
	PageSize int               // defaults to 20
	Fields   map[string]string // output field -> dotted path in the raw object

	Search      *SearchSpec
	Facets      []FacetSpec
	Ranges      []RangeSpec
	SortKeys    []SortKeySpec
	DefaultSort string // empty keeps the stored order
}

// SearchSpec is a free-text criterion matching any of Fields.
type SearchSpec struct {
	Name   string // query key; defaults to "q"
	Fields []string
}

// FacetSpec is a multi-select criterion with option counts.
type FacetSpec struct {
	Name  string
	Field string // defaults to Name
	Label string // defaults to Name
}

// RangeSpec is an inclusive numeric criterion.
type RangeSpec struct {
	Name  string
	Field string // defaults to Name
	Min   float64
	Max   float64
	// ExcludeMissing drops records without a numeric value while the
	// range is active. By default they count as 0.
	ExcludeMissing bool
}

// SortKeySpec is a named sort order.
type SortKeySpec struct {
	Name  string
	Field string // defaults to Name
	Kind  SortKind
	Desc  bool
}

func (p PageSpec) definition() (domlisting.Definition, error) {
	b := domlisting.NewDefinition(p.Name)
	if p.Title != "" {
		b.Title(p.Title)
	}
	if p.Source != "" {
		b.Source(p.Source)
	}
	if p.PageSize > 0 {
		b.PageSize(p.PageSize)
	}
	for field, path := range p.Fields {
		b.Map(field, path)
	}
	if p.Search != nil {
		b.Search(orDefault(p.Search.Name, "q"), p.Search.Fields...)
	}
	for _, f := range p.Facets {
		b.Facet(f.Name, orDefault(f.Field, f.Name), f.Label)
	}
	for _, r := range p.Ranges {
		missing := filter.MissingZero
		if r.ExcludeMissing {
			missing = filter.MissingExclude
		}
		b.Range(r.Name, orDefault(r.Field, r.Name), r.Min, r.Max, missing)
	}
	for _, k := range p.SortKeys {
		b.SortKey(k.Name, orDefault(k.Field, k.Name), sortkey.Kind(k.Kind), k.Desc)
	}
	b.DefaultSort(p.DefaultSort)
	return b.Build()
}

func definitions(pages []PageSpec) ([]domlisting.Definition, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: at least one page is required (use WithPages)", ErrInvalidSchema)
	}
	defs := make([]domlisting.Definition, 0, len(pages))
	for _, p := range pages {
		d, err := p.definition()
		if err != nil {
			return nil, err
		}
		defs = append(defs, d)
	}
	return defs, nil
}

// Range is a closed numeric interval. Use math.Inf for an open side.
type Range struct {
	Min float64
	Max float64
}

// AtLeast returns the range [minV, +Inf).
func AtLeast(minV float64) Range { return Range{Min: minV, Max: math.Inf(1)} }

// AtMost returns the range (-Inf, maxV].
func AtMost(maxV float64) Range { return Range{Min: math.Inf(-1), Max: maxV} }

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
