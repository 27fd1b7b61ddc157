package unidash

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNew_NoStorage(t *testing.T) {
	_, err := New(context.Background(), WithPages(PageSpec{Name: "results"}))
	if err == nil {
		t.Fatal("expected error when no storage option provided")
	}
}

func TestNew_NoPages(t *testing.T) {
	_, err := New(context.Background(), WithMemory())
	if !errors.Is(err, ErrInvalidSchema) {
		t.Fatalf("expected ErrInvalidSchema, got %v", err)
	}
}

func TestNew_InvalidPage(t *testing.T) {
	_, err := New(context.Background(), WithMemory(), WithPages(PageSpec{
		Name:     "results",
		SortKeys: []SortKeySpec{{Name: "score", Kind: "decimal"}},
	}))
	if !errors.Is(err, ErrInvalidSchema) {
		t.Fatalf("expected ErrInvalidSchema, got %v", err)
	}
}

func TestNew_UnknownDriver(t *testing.T) {
	cfg := &clientConfig{driver: "unknown", addrs: []string{"localhost:1234"}}
	if _, err := createStore(cfg); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestClientOptions(t *testing.T) {
	cfg := &clientConfig{}

	WithValkey("localhost:6379", "secret").apply(cfg)
	if cfg.driver != "valkey" || cfg.addrs[0] != "localhost:6379" || cfg.password != "secret" {
		t.Errorf("valkey: got driver=%q addrs=%v password=%q", cfg.driver, cfg.addrs, cfg.password)
	}

	WithRedis("localhost:6380", "pass").apply(cfg)
	if cfg.driver != "redis" || cfg.addrs[0] != "localhost:6380" {
		t.Errorf("redis: got driver=%q addrs=%v", cfg.driver, cfg.addrs)
	}

	WithMemory().apply(cfg)
	if cfg.driver != "memory" || cfg.addrs != nil {
		t.Errorf("memory: got driver=%q addrs=%v", cfg.driver, cfg.addrs)
	}

	WithPages(PageSpec{Name: "a"}).apply(cfg)
	WithPages(PageSpec{Name: "b"}, PageSpec{Name: "c"}).apply(cfg)
	if len(cfg.pages) != 3 {
		t.Errorf("pages = %d, want 3", len(cfg.pages))
	}

	WithKeyPrefix("test:").apply(cfg)
	WithSnapshotTTL(time.Minute).apply(cfg)
	if cfg.keyPrefix != "test:" || cfg.snapshotTTL != time.Minute {
		t.Errorf("got prefix=%q ttl=%v", cfg.keyPrefix, cfg.snapshotTTL)
	}

	logger := slog.Default()
	WithLogger(logger).apply(cfg)
	if cfg.logger != logger {
		t.Error("expected logger to be set")
	}

	reg := prometheus.NewRegistry()
	WithMetrics(reg).apply(cfg)
	if cfg.metricsReg != reg {
		t.Error("expected metricsReg to be set")
	}
}

func TestClient_Close_NilStore(t *testing.T) {
	c := &Client{store: nil}
	c.Close()
}

func TestObserver_NilSafe(t *testing.T) {
	var obs *observer
	obs.observe("ping", "", time.Now(), nil)
	obs.observe("refresh", "results", time.Now(), errors.New("err"))
	obs.observeQuery("results", time.Now(), View{Err: ErrFetch}, nil)
}

func TestObserver_WithMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}

	obs.observeQuery("results", time.Now().Add(-10*time.Millisecond), View{TotalItems: 3}, nil)
	obs.observeQuery("results", time.Now(), View{TotalItems: 40}, nil)
	obs.observeQuery("results", time.Now(), View{}, errors.New("bad sort"))
	obs.observeQuery("results", time.Now(), View{Err: ErrFetch}, nil)
	obs.observe("refresh", "colleges", time.Now(), nil)

	counts := []struct {
		op, page, status string
		want             float64
	}{
		{"query", "results", statusOK, 2},
		{"query", "results", statusError, 1},
		{"query", "results", statusFetchFailed, 1},
		{"refresh", "colleges", statusOK, 1},
		{"refresh", "results", statusOK, 0},
	}
	for _, c := range counts {
		got := testutil.ToFloat64(obs.metrics.operations.WithLabelValues(c.op, c.page, c.status))
		if got != c.want {
			t.Errorf("%s/%s/%s = %v, want %v", c.op, c.page, c.status, got, c.want)
		}
	}

	n, err := testutil.GatherAndCount(reg, "unidash_sdk_operation_duration_seconds")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if n != 2 {
		t.Errorf("duration series = %d, want 2", n)
	}
	// only successful queries observe their match count
	if got := testutil.CollectAndCount(obs.metrics.matches); got != 1 {
		t.Errorf("matches series = %d, want 1", got)
	}
}

func TestObserver_ReusesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("first observer: %v", err)
	}
	second, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("second observer: %v", err)
	}

	first.observe("ping", "", time.Now(), nil)
	second.observe("ping", "", time.Now(), nil)

	if got := testutil.ToFloat64(first.metrics.operations.WithLabelValues("ping", "", statusOK)); got != 2 {
		t.Errorf("shared counter = %v, want 2", got)
	}
}

func TestObserver_WithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	obs, err := newObserver(logger, nil)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}
	obs.observe("refresh", "results", time.Now(), nil)
	obs.observeQuery("results", time.Now(), View{Err: ErrFetch}, nil)

	out := buf.String()
	if !strings.Contains(out, "unidash operation completed") || !strings.Contains(out, "op=refresh") || !strings.Contains(out, "page=results") {
		t.Errorf("missing debug line in %q", out)
	}
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "status=fetch_failed") {
		t.Errorf("missing warn line in %q", out)
	}
}
