package listing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/unidash/internal/domain"
	domlisting "github.com/kailas-cloud/unidash/internal/domain/listing"
	"github.com/kailas-cloud/unidash/internal/domain/record"
)

func newService(t *testing.T, f Fetcher, ttl time.Duration) *Service {
	t.Helper()
	svc, err := New([]domlisting.Definition{resultsDef(t, 2)}, f, ttl, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return svc
}

func TestNew_DuplicatePage(t *testing.T) {
	d := resultsDef(t, 2)
	_, err := New([]domlisting.Definition{d, d}, &mockFetcher{}, 0, nil)
	if !errors.Is(err, domain.ErrInvalidSchema) {
		t.Errorf("expected ErrInvalidSchema, got %v", err)
	}
}

func TestService_Definition(t *testing.T) {
	svc := newService(t, &mockFetcher{}, 0)
	if _, err := svc.Definition("results"); err != nil {
		t.Fatalf("Definition: %v", err)
	}
	if _, err := svc.Definition("missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if len(svc.Definitions()) != 1 {
		t.Errorf("len(Definitions) = %d, want 1", len(svc.Definitions()))
	}
}

func TestService_OpenCachesSnapshot(t *testing.T) {
	f := &mockFetcher{records: scenarioRecords()}
	svc := newService(t, f, 0)

	for range 3 {
		p, err := svc.Open(context.Background(), "results")
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		if p.View().Page.TotalItems != 3 {
			t.Errorf("TotalItems = %d, want 3", p.View().Page.TotalItems)
		}
	}
	if f.calls != 1 {
		t.Errorf("fetch calls = %d, want 1", f.calls)
	}
}

func TestService_OpenIndependentPipelines(t *testing.T) {
	svc := newService(t, &mockFetcher{records: scenarioRecords()}, 0)

	a, _ := svc.Open(context.Background(), "results")
	b, _ := svc.Open(context.Background(), "results")
	if err := a.SetSelected("status", "fail"); err != nil {
		t.Fatalf("SetSelected: %v", err)
	}
	if b.View().Page.TotalItems != 3 {
		t.Error("filtering one pipeline affected another")
	}
	if a.View().Page.TotalItems != 1 {
		t.Errorf("TotalItems = %d, want 1", a.View().Page.TotalItems)
	}
}

func TestService_OpenUnknownPage(t *testing.T) {
	svc := newService(t, &mockFetcher{}, 0)
	if _, err := svc.Open(context.Background(), "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestService_OpenFetchFailure(t *testing.T) {
	f := &mockFetcher{err: fmt.Errorf("%w: boom", domain.ErrFetch)}
	svc := newService(t, f, 0)

	p, err := svc.Open(context.Background(), "results")
	if err != nil {
		t.Fatalf("Open should not fail on fetch errors, got %v", err)
	}
	if !errors.Is(p.View().Err, domain.ErrFetch) {
		t.Errorf("View().Err = %v, want ErrFetch", p.View().Err)
	}

	// failures are not cached
	f.err = nil
	f.records = scenarioRecords()
	p, _ = svc.Open(context.Background(), "results")
	if p.View().Err != nil || p.View().Page.TotalItems != 3 {
		t.Errorf("expected recovery after failed fetch, got err=%v items=%d",
			p.View().Err, p.View().Page.TotalItems)
	}
	if f.calls != 2 {
		t.Errorf("fetch calls = %d, want 2", f.calls)
	}
}

func TestService_SnapshotTTL(t *testing.T) {
	f := &mockFetcher{records: scenarioRecords()}
	svc := newService(t, f, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	_, _ = svc.Open(context.Background(), "results")
	now = now.Add(30 * time.Second)
	_, _ = svc.Open(context.Background(), "results")
	if f.calls != 1 {
		t.Fatalf("fetch calls = %d before expiry, want 1", f.calls)
	}
	now = now.Add(time.Minute)
	_, _ = svc.Open(context.Background(), "results")
	if f.calls != 2 {
		t.Errorf("fetch calls = %d after expiry, want 2", f.calls)
	}
}

func TestService_Refresh(t *testing.T) {
	f := &mockFetcher{records: scenarioRecords()}
	svc := newService(t, f, 0)
	_, _ = svc.Open(context.Background(), "results")

	f.records = scenarioRecords()[:1]
	if err := svc.Refresh(context.Background(), "results"); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	p, _ := svc.Open(context.Background(), "results")
	if p.View().Page.TotalItems != 1 {
		t.Errorf("TotalItems = %d after refresh, want 1", p.View().Page.TotalItems)
	}

	f.err = fmt.Errorf("%w: down", domain.ErrFetch)
	if err := svc.Refresh(context.Background(), "results"); !errors.Is(err, domain.ErrFetch) {
		t.Errorf("expected ErrFetch, got %v", err)
	}
	// the previous snapshot survives a failed refresh
	f.err = nil
	p, _ = svc.Open(context.Background(), "results")
	if p.View().Page.TotalItems != 1 {
		t.Errorf("TotalItems = %d, want the last good snapshot", p.View().Page.TotalItems)
	}

	if err := svc.Refresh(context.Background(), "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestService_PipelineRefreshGoesThroughService(t *testing.T) {
	f := &mockFetcher{records: scenarioRecords()}
	svc := newService(t, f, 0)
	p, _ := svc.Open(context.Background(), "results")

	f.records = scenarioRecords()[:2]
	if err := p.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if p.View().Page.TotalItems != 2 {
		t.Errorf("TotalItems = %d, want 2", p.View().Page.TotalItems)
	}
	q, _ := svc.Open(context.Background(), "results")
	if q.View().Page.TotalItems != 2 {
		t.Error("pipeline refresh should replace the shared snapshot")
	}
}

func TestService_Facets(t *testing.T) {
	svc := newService(t, &mockFetcher{records: scenarioRecords()}, 0)
	groups, err := svc.Facets(context.Background(), "results")
	if err != nil {
		t.Fatalf("Facets: %v", err)
	}
	if len(groups) != 1 || groups[0].Name != "status" || groups[0].Label != "Status" {
		t.Fatalf("unexpected groups: %+v", groups)
	}
	if len(groups[0].Options) != 2 {
		t.Errorf("len(Options) = %d, want 2", len(groups[0].Options))
	}

	svc = newService(t, &mockFetcher{err: domain.ErrFetch}, 0)
	if _, err := svc.Facets(context.Background(), "results"); !errors.Is(err, domain.ErrFetch) {
		t.Errorf("expected ErrFetch, got %v", err)
	}
}

type blockingFetcher struct {
	calls   atomic.Int32
	release chan struct{}
}

func (b *blockingFetcher) Fetch(_ context.Context, _ domlisting.Definition) ([]record.Record, error) {
	b.calls.Add(1)
	<-b.release
	return scenarioRecords(), nil
}

func TestService_ConcurrentOpenSharesFetch(t *testing.T) {
	f := &blockingFetcher{release: make(chan struct{})}
	svc := newService(t, f, 0)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := svc.Open(context.Background(), "results")
			if err != nil {
				t.Errorf("Open: %v", err)
				return
			}
			if p.View().Page.TotalItems != 3 {
				t.Errorf("TotalItems = %d, want 3", p.View().Page.TotalItems)
			}
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(f.release)
	wg.Wait()

	if got := f.calls.Load(); got < 1 || got > 8 {
		t.Errorf("fetch calls = %d", got)
	}
}
