package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mcstatusbot/statusbot/internal/config"
)

// New creates a Store based on the configured storage type.
//
// For file storage it opens the YAML file named by the configuration. For
// database storage the pool must not be nil.
func New(cfg *config.Config, pool *pgxpool.Pool) (Store, error) {
	switch cfg.GetStorageType() {
	case config.StorageTypeDatabase:
		if pool == nil {
			return nil, errors.New("database pool is required when storage type is database")
		}
		return NewDBStore(pool), nil
	default:
		return NewFileStore(cfg.GetFileStorePath())
	}
}
