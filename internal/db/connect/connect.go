// Package connect opens the configured db.Store driver.
package connect

import (
	"fmt"

	"github.com/kailas-cloud/unidash/internal/config"
	"github.com/kailas-cloud/unidash/internal/db"
	"github.com/kailas-cloud/unidash/internal/db/memory"
	dbRedis "github.com/kailas-cloud/unidash/internal/db/redis"
)

// Open creates a store for the configured driver. Valkey and Redis share the
// rueidis implementation; memory starts empty.
func Open(cfg config.DatabaseConfig) (db.Store, error) {
	switch cfg.Driver {
	case config.DriverValkey, config.DriverRedis:
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Username: cfg.Username,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("%s store: %w", cfg.Driver, err)
		}
		return s, nil
	case config.DriverMemory:
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
