package unidash

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/kailas-cloud/unidash/internal/domain/listing/facet"
	"github.com/kailas-cloud/unidash/internal/domain/listing/filter"
	listinguc "github.com/kailas-cloud/unidash/internal/usecase/listing"
)

// Query selects a slice of a page. The zero Query returns page 1 of the
// whole collection in the page's default order.
type Query struct {
	Search   map[string]string   // text criterion -> query
	Selected map[string][]string // facet -> accepted values
	Ranges   map[string]Range    // range criterion -> bounds
	Sort     string              // sort key; empty keeps the page default
	Page     int                 // 1-indexed; out-of-range numbers are clamped
}

// View is one rendered page of results.
type View struct {
	Items      []map[string]any
	Page       int
	PageSize   int
	TotalPages int
	TotalItems int
	StartIndex int // 0-based offset of the first item
	EndIndex   int // exclusive
	Sort       string
	Facets     []FacetGroup
	// Err is set when the collection could not be fetched; the view is then empty.
	Err error
}

// FacetGroup is the option list of one facet over the full collection.
type FacetGroup struct {
	Name    string
	Label   string
	Field   string
	Options []FacetOption
}

// FacetOption is one facet value with its occurrence count.
type FacetOption struct {
	Value string
	Label string
	Count int
}

// PageService queries one listing page.
type PageService struct {
	name string
	svc  listingUseCase
	obs  *observer
}

// Name returns the page name.
func (s *PageService) Name() string { return s.name }

// Query runs q against a fresh pipeline over the page's cached collection.
// A failed fetch is reported in View.Err, not as an error; errors are
// ErrNotFound for an unknown page and ErrInvalidFilterValue or
// ErrInvalidSortKey for a rejected query.
func (s *PageService) Query(ctx context.Context, q Query) (v View, err error) {
	start := time.Now()
	defer func() { s.obs.observeQuery(s.name, start, v, err) }()

	p, err := s.svc.Open(ctx, s.name)
	if err != nil {
		return View{}, fmt.Errorf("query %s: %w", s.name, err)
	}
	if err = applyQuery(p, q); err != nil {
		return View{}, fmt.Errorf("query %s: %w", s.name, err)
	}
	return viewFrom(p.View()), nil
}

// Facets returns the facet groups of the page's full collection.
func (s *PageService) Facets(ctx context.Context) (_ []FacetGroup, err error) {
	start := time.Now()
	defer func() { s.obs.observe("facets", s.name, start, err) }()

	groups, err := s.svc.Facets(ctx, s.name)
	if err != nil {
		return nil, fmt.Errorf("facets %s: %w", s.name, err)
	}
	return facetGroupsFrom(groups), nil
}

// Refresh refetches the page's collection.
func (s *PageService) Refresh(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("refresh", s.name, start, err) }()

	if err = s.svc.Refresh(ctx, s.name); err != nil {
		return fmt.Errorf("refresh %s: %w", s.name, err)
	}
	return nil
}

// applyQuery sets filters in declaration order, then sort, then page.
func applyQuery(p *listinguc.Pipeline, q Query) error {
	def := p.Definition()
	if err := checkNames(def.Criteria(), filter.Text, q.Search); err != nil {
		return err
	}
	if err := checkNames(def.Criteria(), filter.MultiSelect, q.Selected); err != nil {
		return err
	}
	if err := checkNames(def.Criteria(), filter.Range, q.Ranges); err != nil {
		return err
	}

	for _, c := range def.Criteria() {
		var err error
		switch c.Kind() {
		case filter.Text:
			if v, ok := q.Search[c.Name()]; ok {
				err = p.SetSearch(c.Name(), v)
			}
		case filter.MultiSelect:
			if v, ok := q.Selected[c.Name()]; ok {
				err = p.SetSelected(c.Name(), v...)
			}
		case filter.Range:
			if r, ok := q.Ranges[c.Name()]; ok {
				err = p.SetRange(c.Name(), r.Min, r.Max)
			}
		}
		if err != nil {
			return err
		}
	}

	if q.Sort != "" {
		if err := p.SetSort(q.Sort); err != nil {
			return err
		}
	}
	if q.Page > 0 {
		p.SetPage(q.Page)
	}
	return nil
}

// checkNames rejects query keys that do not name a criterion of kind.
func checkNames[V any](cs []filter.Criterion, kind filter.Kind, m map[string]V) error {
	for name := range m {
		i := slices.IndexFunc(cs, func(c filter.Criterion) bool { return c.Name() == name })
		if i < 0 {
			return fmt.Errorf("%w: unknown criterion %q", ErrInvalidFilterValue, name)
		}
		if cs[i].Kind() != kind {
			return fmt.Errorf("%w: criterion %q is %s, not %s", ErrInvalidFilterValue, name, cs[i].Kind(), kind)
		}
	}
	return nil
}

func viewFrom(v listinguc.View) View {
	items := make([]map[string]any, len(v.Page.Items))
	for i, r := range v.Page.Items {
		items[i] = r.Map()
	}
	return View{
		Items:      items,
		Page:       v.Page.Number,
		PageSize:   v.Page.Size,
		TotalPages: v.Page.TotalPages,
		TotalItems: v.Page.TotalItems,
		StartIndex: v.Page.StartIndex,
		EndIndex:   v.Page.EndIndex,
		Sort:       v.Sort,
		Facets:     facetGroupsFrom(v.Facets),
		Err:        v.Err,
	}
}

func facetGroupsFrom(groups []facet.Group) []FacetGroup {
	out := make([]FacetGroup, len(groups))
	for i, g := range groups {
		opts := make([]FacetOption, len(g.Options))
		for j, o := range g.Options {
			opts[j] = FacetOption{Value: o.Value, Label: o.Label, Count: o.Count}
		}
		out[i] = FacetGroup{Name: g.Name, Label: g.Label, Field: g.Field, Options: opts}
	}
	return out
}
