// unidash-seed loads record collections from JSON fixtures into the store.
//
// Every configured page reads one source; the seeder stores
// <fixtures-dir>/<source>.json for each of them.
//
// Usage:
//
//	unidash-seed -env docker -fixtures /app/fixtures -prune
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/unidash/internal/config"
	"github.com/kailas-cloud/unidash/internal/db/connect"
	logpkg "github.com/kailas-cloud/unidash/internal/logger"
	"github.com/kailas-cloud/unidash/internal/repository/records"
)

type options struct {
	env         string
	configPath  string
	fixturesDir string
	workers     int
	prune       bool
}

func parseFlags() options {
	opts := options{}
	flag.StringVar(&opts.env, "env", config.GetEnv(), "config environment (config/<env>.yaml)")
	flag.StringVar(&opts.configPath, "config", "", "explicit config file path (overrides -env)")
	flag.StringVar(&opts.fixturesDir, "fixtures", "", "fixture directory (default: storage.fixtures_dir)")
	flag.IntVar(&opts.workers, "workers", records.DefaultSeedWorkers, "concurrent fixture loads")
	flag.BoolVar(&opts.prune, "prune", false, "delete stored sources no page reads")
	flag.Parse()
	return opts
}

func main() {
	opts := parseFlags()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	if err := run(ctx, opts); err != nil {
		cancel()
		fmt.Fprintln(os.Stderr, "unidash-seed:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logger, err := logpkg.NewLogger(opts.env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Database.Driver == config.DriverMemory {
		return fmt.Errorf("the memory driver loads fixtures at server start; nothing to seed")
	}

	dir := opts.fixturesDir
	if dir == "" {
		dir = cfg.Storage.FixturesDir
	}
	if dir == "" {
		return fmt.Errorf("no fixture directory: set -fixtures or storage.fixtures_dir")
	}

	store, err := connect.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		return fmt.Errorf("database not ready: %w", err)
	}

	repo := records.New(store, cfg.Storage.KeyPrefix)
	start := time.Now()

	res, err := repo.Seed(ctx, os.DirFS(dir), cfg.Sources(), opts.workers)
	if err != nil {
		return err
	}
	logger.Info("Fixtures loaded",
		zap.String("dir", dir),
		zap.Strings("loaded", res.Loaded),
		zap.Strings("missing", res.Missing),
		zap.Duration("elapsed", time.Since(start)),
	)

	if opts.prune {
		pruned, err := prune(ctx, repo, cfg.Sources())
		if err != nil {
			return err
		}
		logger.Info("Stale sources deleted", zap.Strings("sources", pruned))
	}
	return nil
}

func loadConfig(opts options) (config.Config, error) {
	if opts.configPath != "" {
		return config.LoadFile(opts.configPath)
	}
	return config.Load(opts.env)
}

// prune deletes stored sources that no configured page reads.
func prune(ctx context.Context, repo *records.Repo, keep []string) ([]string, error) {
	stored, err := repo.Sources(ctx)
	if err != nil {
		return nil, err
	}
	var pruned []string
	for _, src := range stored {
		if slices.Contains(keep, src) {
			continue
		}
		if err := repo.Delete(ctx, src); err != nil {
			return pruned, err
		}
		pruned = append(pruned, src)
	}
	return pruned, nil
}
