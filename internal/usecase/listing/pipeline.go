package listing

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/unidash/internal/domain"
	domlisting "github.com/kailas-cloud/unidash/internal/domain/listing"
	"github.com/kailas-cloud/unidash/internal/domain/listing/facet"
	"github.com/kailas-cloud/unidash/internal/domain/listing/filter"
	"github.com/kailas-cloud/unidash/internal/domain/listing/page"
	"github.com/kailas-cloud/unidash/internal/domain/listing/sortkey"
	"github.com/kailas-cloud/unidash/internal/domain/record"
)

// PipelineState is the user-controlled state of one pipeline.
type PipelineState struct {
	Filters filter.State
	Sort    string
	Page    int
}

// View is the rendered output of a pipeline.
type View struct {
	Page    page.Page
	Sort    string
	Facets  []facet.Group
	Filters filter.State
	// Err is set when the last fetch failed; the collection is then empty.
	Err error
}

// Pipeline is the owned view-model of one listing page: the collection, the
// state driving it and the derived view. It is not safe for concurrent use.
type Pipeline struct {
	def     domlisting.Definition
	fetcher Fetcher

	state      PipelineState
	collection []record.Record
	facets     []facet.Group
	err        error

	// filtered and sorted, before pagination
	ordered []record.Record
	current page.Page
}

// NewPipeline creates a pipeline with every criterion inactive, the default
// sort key and an empty collection. fetcher may be nil when the collection
// is only ever set directly.
func NewPipeline(def domlisting.Definition, fetcher Fetcher) *Pipeline {
	p := &Pipeline{
		def:     def,
		fetcher: fetcher,
		state: PipelineState{
			Filters: def.NewState(),
			Sort:    def.Sorts().Default(),
			Page:    1,
		},
	}
	p.recompute()
	return p
}

// Definition returns the page definition.
func (p *Pipeline) Definition() domlisting.Definition { return p.def }

// SetCollection replaces the collection. A non-nil err marks a failed fetch:
// the collection is emptied and the error is surfaced through View.
func (p *Pipeline) SetCollection(records []record.Record, err error) {
	if err != nil {
		records = nil
	}
	p.load(records, computeFacets(p.def, records), err)
}

// load installs a collection with precomputed facets.
func (p *Pipeline) load(records []record.Record, facets []facet.Group, err error) {
	p.collection = records
	p.facets = facets
	p.err = err
	p.recompute()
}

// Refresh refetches the collection. On failure the pipeline shows an empty
// collection with the error in View and the wrapped error is returned.
func (p *Pipeline) Refresh(ctx context.Context) error {
	if p.fetcher == nil {
		return fmt.Errorf("refresh %s: %w: no fetcher configured", p.def.Name(), domain.ErrFetch)
	}
	records, err := p.fetcher.Fetch(ctx, p.def)
	p.SetCollection(records, err)
	if err != nil {
		return fmt.Errorf("refresh %s: %w", p.def.Name(), err)
	}
	return nil
}

// SetSearch sets the query of a text criterion.
func (p *Pipeline) SetSearch(name, query string) error {
	if err := p.state.Filters.SetQuery(name, query); err != nil {
		return fmt.Errorf("set search: %w", err)
	}
	p.recompute()
	return nil
}

// SetSelected sets the accepted values of a multi-select criterion.
// Every value must be one of the facet options of the current collection.
// After a failed fetch there are no options to check against; the values are
// kept and match nothing until a collection loads.
func (p *Pipeline) SetSelected(name string, values ...string) error {
	g, ok := p.facetGroup(name)
	if ok && p.err == nil {
		for _, v := range values {
			if record.Fold(v) == "" {
				continue
			}
			if !g.Contains(v) {
				return fmt.Errorf("%w: %q is not an option of %s", domain.ErrInvalidFilterValue, v, name)
			}
		}
	}
	if err := p.state.Filters.SetSelected(name, values...); err != nil {
		return fmt.Errorf("set selected: %w", err)
	}
	p.recompute()
	return nil
}

// SetRange sets the bounds of a range criterion. min > max is rejected.
func (p *Pipeline) SetRange(name string, minV, maxV float64) error {
	if err := p.state.Filters.SetRange(name, minV, maxV); err != nil {
		return fmt.Errorf("set range: %w", err)
	}
	p.recompute()
	return nil
}

// ClearFilters resets every criterion to inactive.
func (p *Pipeline) ClearFilters() {
	p.state.Filters.Reset()
	p.recompute()
}

// SetSort selects a sort key from the page registry.
func (p *Pipeline) SetSort(key string) error {
	if !p.def.Sorts().Has(key) {
		return fmt.Errorf("%w: %q", domain.ErrInvalidSortKey, key)
	}
	if key == "" {
		key = sortkey.Relevance
	}
	p.state.Sort = key
	p.recompute()
	return nil
}

// SetPage navigates to a page. Out-of-range numbers are clamped.
func (p *Pipeline) SetPage(number int) {
	p.current = page.Paginate(p.ordered, number, p.def.PageSize())
	p.state.Page = p.current.Number
}

// State returns a copy of the current state.
func (p *Pipeline) State() PipelineState {
	s := p.state
	s.Filters = p.state.Filters.Clone()
	return s
}

// View returns the current page slice, facets and state.
func (p *Pipeline) View() View {
	return View{
		Page:    p.current,
		Sort:    p.state.Sort,
		Facets:  p.facets,
		Filters: p.state.Filters.Clone(),
		Err:     p.err,
	}
}

// recompute runs filter, sort, resets to page 1 and paginates.
// Facets depend on the collection only and are not touched here.
func (p *Pipeline) recompute() {
	filtered := filter.Apply(p.collection, p.state.Filters)
	p.ordered = p.def.Sorts().Sort(filtered, p.state.Sort)
	p.SetPage(1)
}

func (p *Pipeline) facetGroup(name string) (facet.Group, bool) {
	for _, g := range p.facets {
		if g.Name == name {
			return g, true
		}
	}
	return facet.Group{}, false
}

func computeFacets(def domlisting.Definition, records []record.Record) []facet.Group {
	defs := def.Facets()
	groups := make([]facet.Group, len(defs))
	for i, f := range defs {
		groups[i] = facet.Group{
			Name:    f.Name,
			Label:   f.Label,
			Field:   f.Field,
			Options: facet.Compute(records, f.Field),
		}
	}
	return groups
}
