package listing

import (
	"github.com/kailas-cloud/unidash/internal/domain/listing/filter"
	"github.com/kailas-cloud/unidash/internal/domain/listing/page"
	"github.com/kailas-cloud/unidash/internal/domain/listing/sortkey"
	"github.com/kailas-cloud/unidash/internal/domain/record"
)

// Facet declares a multi-select criterion whose options are counted from the collection.
type Facet struct {
	Name  string
	Field string
	Label string
}

// Definition is the immutable declarative schema of one listing page:
// where its records come from and which fields are searchable, filterable and sortable.
type Definition struct {
	name       string
	title      string
	source     string
	pageSize   int
	normalizer record.Normalizer
	criteria   []filter.Criterion
	facets     []Facet
	sorts      sortkey.Registry
}

// Name returns the page name.
func (d Definition) Name() string { return d.name }

// Title returns the display title.
func (d Definition) Title() string { return d.title }

// Source returns the record collection the page reads.
func (d Definition) Source() string { return d.source }

// PageSize returns the number of records per page.
func (d Definition) PageSize() int {
	if d.pageSize <= 0 {
		return page.DefaultSize
	}
	return d.pageSize
}

// Normalizer returns the ingestion-time record normalizer.
func (d Definition) Normalizer() record.Normalizer { return d.normalizer }

// Criteria returns every filter criterion in declaration order.
func (d Definition) Criteria() []filter.Criterion { return d.criteria }

// Facets returns the multi-select criteria with their labels.
func (d Definition) Facets() []Facet { return d.facets }

// Facet returns a facet by criterion name.
func (d Definition) Facet(name string) (Facet, bool) {
	for _, f := range d.facets {
		if f.Name == name {
			return f, true
		}
	}
	return Facet{}, false
}

// Sorts returns the sort key registry.
func (d Definition) Sorts() sortkey.Registry { return d.sorts }

// NewState returns a fully defined filter state with every criterion inactive.
func (d Definition) NewState() filter.State {
	// criteria were validated together in Build
	s, _ := filter.NewState(d.criteria...)
	return s
}
