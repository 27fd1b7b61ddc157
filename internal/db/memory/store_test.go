package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/kailas-cloud/unidash/internal/db"
)

func TestGetSet(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	if _, err := s.Get(ctx, "k"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}

	in := []byte("value")
	if err := s.Set(ctx, "k", in); err != nil {
		t.Fatalf("Set: %v", err)
	}
	in[0] = 'X'

	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "value" {
		t.Errorf("Get = %q, want stored copy %q", got, "value")
	}
	got[0] = 'Y'
	again, _ := s.Get(ctx, "k")
	if string(again) != "value" {
		t.Error("Get must return a copy")
	}
}

func TestSetWithTTL(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	if err := s.SetWithTTL(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("SetWithTTL: %v", err)
	}
	if ok, _ := s.Exists(ctx, "k"); !ok {
		t.Fatal("key should exist before expiry")
	}

	now = now.Add(time.Minute)
	if _, err := s.Get(ctx, "k"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Errorf("expected expired key to be missing, got %v", err)
	}
	if keys, _ := s.Scan(ctx, "*"); len(keys) != 0 {
		t.Errorf("Scan returned expired keys: %v", keys)
	}

	if err := s.SetWithTTL(ctx, "k", []byte("v"), 0); err == nil {
		t.Error("expected error for non-positive ttl")
	}
}

func TestDelAndExists(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	_ = s.Set(ctx, "k", []byte("v"))

	if err := s.Del(ctx, "k"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	if ok, _ := s.Exists(ctx, "k"); ok {
		t.Error("key should be gone")
	}
	if err := s.Del(ctx, "k"); err != nil {
		t.Errorf("deleting a missing key: %v", err)
	}
}

func TestScan(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	for _, k := range []string{"unidash:records:b", "unidash:records:a", "unidash:other", "records:c"} {
		_ = s.Set(ctx, k, []byte("x"))
	}

	keys, err := s.Scan(ctx, "unidash:records:*")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if diff := cmp.Diff([]string{"unidash:records:a", "unidash:records:b"}, keys); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}

	if _, err := s.Scan(ctx, "[bad"); err == nil {
		t.Error("expected error for malformed pattern")
	}
}

func TestPingCloseReady(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	_ = s.Set(ctx, "k", []byte("v"))

	if err := s.Ping(ctx); err != nil {
		t.Errorf("Ping: %v", err)
	}
	if err := s.WaitForReady(ctx, time.Millisecond); err != nil {
		t.Errorf("WaitForReady: %v", err)
	}
	s.Close()
	if ok, _ := s.Exists(ctx, "k"); ok {
		t.Error("Close should drop every key")
	}
}
