package storage

import (
	"context"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/atupatu/pccoe/internal/config"
)

// Open constructs the store selected by cfg and initializes it.
// The caller owns the returned store and must Close it.
func Open(ctx context.Context, cfg config.StoreConfig, logger *zap.SugaredLogger) (Storage, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	var store Storage
	switch cfg.Driver {
	case config.StoreSQLite, "":
		store = NewSQLiteStorage(cfg.Path, logger)
	case config.StorePostgres:
		pg, err := OpenPostgres(cfg.DSN, logger)
		if err != nil {
			return nil, err
		}
		store = pg
	case config.StoreMongo:
		m, err := OpenMongo(ctx, cfg.DSN, cfg.Database, cfg.Collection)
		if err != nil {
			return nil, err
		}
		store = m
	case config.StoreMemory:
		store = NewMemoryStorage()
	default:
		return nil, errors.Newf("unsupported store driver: %s", cfg.Driver)
	}

	if err := store.Init(ctx); err != nil {
		store.Close()
		return nil, errors.Wrapf(err, "init %s store", cfg.Driver)
	}

	logger.Debugw("Event store ready", "driver", cfg.Driver)
	return store, nil
}
