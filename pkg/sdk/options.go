package unidash

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver   string // "valkey", "redis" or "memory"
	addrs    []string
	password string

	pages       []PageSpec
	keyPrefix   string
	snapshotTTL time.Duration

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithValkey configures the client to connect to a Valkey instance.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "valkey"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedis configures the client to connect to a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithMemory keeps collections in process memory. Load them with Client.Put.
func WithMemory() Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "memory"
		c.addrs = nil
	})
}

// WithPages adds listing pages. Can be passed more than once.
func WithPages(pages ...PageSpec) Option {
	return optionFunc(func(c *clientConfig) {
		c.pages = append(c.pages, pages...)
	})
}

// WithKeyPrefix sets the storage key prefix. Default: "unidash:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithSnapshotTTL makes cached collections expire after ttl.
// Default 0 keeps them until Refresh or Put.
func WithSnapshotTTL(ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.snapshotTTL = ttl
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithMetrics registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithMetrics(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
