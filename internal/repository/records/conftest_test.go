package records

import (
	"context"
	"testing"

	"github.com/kailas-cloud/unidash/internal/db"
	domlisting "github.com/kailas-cloud/unidash/internal/domain/listing"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	getFn  func(ctx context.Context, key string) ([]byte, error)
	setFn  func(ctx context.Context, key string, value []byte) error
	delFn  func(ctx context.Context, key string) error
	scanFn func(ctx context.Context, pattern string) ([]string, error)
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockStore) Set(ctx context.Context, key string, value []byte) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value)
	}
	return nil
}

func (m *mockStore) Del(ctx context.Context, key string) error {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return nil
}

func (m *mockStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, pattern)
	}
	return nil, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, ""), ms
}

func testDefinition(t *testing.T) domlisting.Definition {
	t.Helper()
	d, err := domlisting.NewDefinition("results").
		Source("assessment_results").
		Map("student", "student.name").
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return d
}
