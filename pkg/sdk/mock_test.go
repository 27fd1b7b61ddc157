package unidash

import (
	"context"
	"testing"

	domlisting "github.com/kailas-cloud/unidash/internal/domain/listing"
	"github.com/kailas-cloud/unidash/internal/domain/listing/facet"
	"github.com/kailas-cloud/unidash/internal/domain/record"
	healthuc "github.com/kailas-cloud/unidash/internal/usecase/health"
	listinguc "github.com/kailas-cloud/unidash/internal/usecase/listing"
)

// --- listingUseCase mock ---

type mockListingUC struct {
	defs      []domlisting.Definition
	openFn    func(ctx context.Context, name string) (*listinguc.Pipeline, error)
	refreshFn func(ctx context.Context, name string) error
	facetsFn  func(ctx context.Context, name string) ([]facet.Group, error)
}

func (m *mockListingUC) Definitions() []domlisting.Definition { return m.defs }

func (m *mockListingUC) Open(ctx context.Context, name string) (*listinguc.Pipeline, error) {
	return m.openFn(ctx, name)
}

func (m *mockListingUC) Refresh(ctx context.Context, name string) error {
	return m.refreshFn(ctx, name)
}

func (m *mockListingUC) Facets(ctx context.Context, name string) ([]facet.Group, error) {
	return m.facetsFn(ctx, name)
}

// --- recordStore mock ---

type mockRecords struct {
	saveFn    func(ctx context.Context, source string, raw []map[string]any) error
	deleteFn  func(ctx context.Context, source string) error
	sourcesFn func(ctx context.Context) ([]string, error)
}

func (m *mockRecords) Save(ctx context.Context, source string, raw []map[string]any) error {
	return m.saveFn(ctx, source, raw)
}

func (m *mockRecords) Delete(ctx context.Context, source string) error {
	return m.deleteFn(ctx, source)
}

func (m *mockRecords) Sources(ctx context.Context) ([]string, error) {
	return m.sourcesFn(ctx)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(context.Context) healthuc.Report { return m.report }

// --- helpers ---

func testClient(listing listingUseCase, recs recordStore) *Client {
	return &Client{listing: listing, records: recs}
}

func testDefinition(t *testing.T) domlisting.Definition {
	t.Helper()
	d, err := PageSpec{
		Name:     "results",
		PageSize: 2,
		Search:   &SearchSpec{Fields: []string{"name"}},
		Facets:   []FacetSpec{{Name: "status", Label: "Status"}},
		Ranges:   []RangeSpec{{Name: "score", Min: 0, Max: 100}},
		SortKeys: []SortKeySpec{
			{Name: "score", Kind: SortNumber, Desc: true},
			{Name: "name", Kind: SortString},
		},
	}.definition()
	if err != nil {
		t.Fatalf("definition: %v", err)
	}
	return d
}

func testPipeline(t *testing.T) *listinguc.Pipeline {
	t.Helper()
	p := listinguc.NewPipeline(testDefinition(t), nil)
	p.SetCollection([]record.Record{
		record.Normalize(map[string]any{"name": "Bob", "score": 70, "status": "pass"}),
		record.Normalize(map[string]any{"name": "Amy", "score": 90, "status": "pass"}),
		record.Normalize(map[string]any{"name": "Cid", "score": 70, "status": "fail"}),
	}, nil)
	return p
}
