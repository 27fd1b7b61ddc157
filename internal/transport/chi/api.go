package chi

import (
	"slices"

	domlisting "github.com/kailas-cloud/unidash/internal/domain/listing"
	"github.com/kailas-cloud/unidash/internal/domain/listing/facet"
	"github.com/kailas-cloud/unidash/internal/domain/listing/filter"
	"github.com/kailas-cloud/unidash/internal/domain/record"
	listinguc "github.com/kailas-cloud/unidash/internal/usecase/listing"
)

// ErrorCode is a machine-readable error identifier.
type ErrorCode string

// Error codes returned in ErrorResponse.
const (
	ErrorCodeBadRequest         ErrorCode = "bad_request"
	ErrorCodeUnauthorized       ErrorCode = "unauthorized"
	ErrorCodePageNotFound       ErrorCode = "page_not_found"
	ErrorCodeRouteNotFound      ErrorCode = "route_not_found"
	ErrorCodeMethodNotAllowed   ErrorCode = "method_not_allowed"
	ErrorCodeInvalidFilterValue ErrorCode = "invalid_filter_value"
	ErrorCodeInvalidSortKey     ErrorCode = "invalid_sort_key"
	ErrorCodeFetchFailed        ErrorCode = "fetch_failed"
	ErrorCodeInternalError      ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks"`
	Missing []string          `json:"missing,omitempty"`
}

// CriterionResponse describes one filter criterion of a page.
type CriterionResponse struct {
	Name    string   `json:"name"`
	Kind    string   `json:"kind"`
	Fields  []string `json:"fields"`
	Min     *float64 `json:"min,omitempty"`
	Max     *float64 `json:"max,omitempty"`
	Missing string   `json:"missing,omitempty"`
}

// FacetResponse describes a facet declared on a page.
type FacetResponse struct {
	Name  string `json:"name"`
	Field string `json:"field"`
	Label string `json:"label"`
}

// SortKeyResponse describes a sort key of a page.
type SortKeyResponse struct {
	Name  string `json:"name"`
	Field string `json:"field"`
	Kind  string `json:"kind"`
	Desc  bool   `json:"desc"`
}

// PageResponse describes a configured listing page.
type PageResponse struct {
	Name        string              `json:"name"`
	Title       string              `json:"title"`
	Source      string              `json:"source"`
	PageSize    int                 `json:"page_size"`
	Criteria    []CriterionResponse `json:"criteria"`
	Facets      []FacetResponse     `json:"facets"`
	DefaultSort string              `json:"default_sort"`
	SortKeys    []SortKeyResponse   `json:"sort_keys"`
}

// PageListResponse is the body of GET /pages.
type PageListResponse struct {
	Items []PageResponse `json:"items"`
}

// FacetOptionResponse is one selectable facet value.
type FacetOptionResponse struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Count    int    `json:"count"`
	Selected bool   `json:"selected,omitempty"`
}

// FacetGroupResponse is the option list of one facet.
type FacetGroupResponse struct {
	Name    string                `json:"name"`
	Label   string                `json:"label"`
	Field   string                `json:"field"`
	Options []FacetOptionResponse `json:"options"`
}

// FacetListResponse is the body of GET /pages/{page}/facets.
type FacetListResponse struct {
	Items []FacetGroupResponse `json:"items"`
}

// FilterValueResponse echoes the applied value of an active criterion.
type FilterValueResponse struct {
	Query    string   `json:"query,omitempty"`
	Selected []string `json:"selected,omitempty"`
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
}

// RecordListResponse is the body of GET /pages/{page}/records.
type RecordListResponse struct {
	Items      []map[string]any               `json:"items"`
	Page       int                            `json:"page"`
	PageSize   int                            `json:"page_size"`
	TotalPages int                            `json:"total_pages"`
	TotalItems int                            `json:"total_items"`
	StartIndex int                            `json:"start_index"`
	EndIndex   int                            `json:"end_index"`
	HasPrev    bool                           `json:"has_prev"`
	HasNext    bool                           `json:"has_next"`
	Sort       string                         `json:"sort"`
	Filters    map[string]FilterValueResponse `json:"filters"`
	Facets     []FacetGroupResponse           `json:"facets"`
	Error      *ErrorResponse                 `json:"error,omitempty"`
}

func pageToResponse(def domlisting.Definition) PageResponse {
	criteria := def.Criteria()
	resp := PageResponse{
		Name:        def.Name(),
		Title:       def.Title(),
		Source:      def.Source(),
		PageSize:    def.PageSize(),
		Criteria:    make([]CriterionResponse, len(criteria)),
		Facets:      make([]FacetResponse, len(def.Facets())),
		DefaultSort: def.Sorts().Default(),
		SortKeys:    make([]SortKeyResponse, len(def.Sorts().Keys())),
	}
	for i, c := range criteria {
		cr := CriterionResponse{Name: c.Name(), Kind: string(c.Kind()), Fields: c.Fields()}
		if c.Kind() == filter.Range {
			minV, maxV := c.Bounds()
			cr.Min, cr.Max = &minV, &maxV
			cr.Missing = string(c.Missing())
		}
		resp.Criteria[i] = cr
	}
	for i, f := range def.Facets() {
		resp.Facets[i] = FacetResponse{Name: f.Name, Field: f.Field, Label: f.Label}
	}
	for i, k := range def.Sorts().Keys() {
		resp.SortKeys[i] = SortKeyResponse{Name: k.Name(), Field: k.Field(), Kind: string(k.Kind()), Desc: k.Desc()}
	}
	return resp
}

func facetsToResponse(groups []facet.Group, state filter.State) []FacetGroupResponse {
	out := make([]FacetGroupResponse, len(groups))
	for i, g := range groups {
		var selected []string
		if v, ok := state.Value(g.Name); ok {
			selected = v.Selected()
		}
		opts := make([]FacetOptionResponse, len(g.Options))
		for j, o := range g.Options {
			opts[j] = FacetOptionResponse{
				Value:    o.Value,
				Label:    o.Label,
				Count:    o.Count,
				Selected: slices.Contains(selected, o.Value),
			}
		}
		out[i] = FacetGroupResponse{Name: g.Name, Label: g.Label, Field: g.Field, Options: opts}
	}
	return out
}

func filtersToResponse(state filter.State) map[string]FilterValueResponse {
	out := make(map[string]FilterValueResponse)
	for _, c := range state.Criteria() {
		if !state.IsActive(c.Name()) {
			continue
		}
		v, _ := state.Value(c.Name())
		switch c.Kind() {
		case filter.Text:
			out[c.Name()] = FilterValueResponse{Query: v.Query()}
		case filter.MultiSelect:
			out[c.Name()] = FilterValueResponse{Selected: v.Selected()}
		case filter.Range:
			minV, maxV := v.Range()
			out[c.Name()] = FilterValueResponse{Min: &minV, Max: &maxV}
		}
	}
	return out
}

func viewToResponse(v listinguc.View) RecordListResponse {
	resp := RecordListResponse{
		Items:      recordsToMaps(v.Page.Items),
		Page:       v.Page.Number,
		PageSize:   v.Page.Size,
		TotalPages: v.Page.TotalPages,
		TotalItems: v.Page.TotalItems,
		StartIndex: v.Page.StartIndex,
		EndIndex:   v.Page.EndIndex,
		HasPrev:    v.Page.HasPrev(),
		HasNext:    v.Page.HasNext(),
		Sort:       v.Sort,
		Filters:    filtersToResponse(v.Filters),
		Facets:     facetsToResponse(v.Facets, v.Filters),
	}
	if v.Err != nil {
		resp.Error = &ErrorResponse{Code: ErrorCodeFetchFailed, Message: safeDomainMessage(v.Err)}
	}
	return resp
}

func recordsToMaps(rs []record.Record) []map[string]any {
	out := make([]map[string]any, len(rs))
	for i, r := range rs {
		out[i] = r.Map()
	}
	return out
}
