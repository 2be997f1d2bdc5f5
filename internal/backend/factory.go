// Package backend wires a concrete store implementation (memory, sqlite
// or mongo) into the port bundle the statement builder consumes.
package backend

import (
	"context"
	"fmt"
	"os"

	"hoaledger/internal/log"
	"hoaledger/internal/storage"
	"hoaledger/internal/stores"
	"hoaledger/internal/stores/memory"
	"hoaledger/internal/stores/mongo"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.Config{Component: log.ComponentBackend})
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case MemoryBackend:
		return f.createMemoryBackend(config)
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case MongoBackend:
		return f.createMongoBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	var (
		store *memory.Store
		err   error
	)
	if config.FixturesPath != "" {
		if _, statErr := os.Stat(config.FixturesPath); statErr == nil {
			store, err = memory.NewFromFile(config.FixturesPath)
			if err != nil {
				return nil, fmt.Errorf("load fixtures: %w", err)
			}
			f.logger.Info("Loaded memory backend fixtures", "path", config.FixturesPath)
		}
	}
	if store == nil {
		store = memory.New()
		f.logger.Info("Initialized empty memory backend")
	}

	return &BackendResult{
		Stores:  f.bundle(store, store, store, store, config),
		Cleanup: nil,
	}, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &BackendResult{
		Stores:  f.bundle(repo, repo, repo, repo, config),
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createMongoBackend(ctx context.Context, config Config) (*BackendResult, error) {
	store, err := mongo.Connect(ctx, config.MongoURI, config.MongoDatabase)
	if err != nil {
		return nil, fmt.Errorf("initialize Mongo store: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close(ctx)
		return nil, fmt.Errorf("migrate Mongo indexes: %w", err)
	}

	f.logger.Info("Initialized Mongo backend", "database", config.MongoDatabase)

	return &BackendResult{
		Stores: f.bundle(store, store, store, store, config),
		Cleanup: func() error {
			return store.Close(context.Background())
		},
	}, nil
}

// bundle assembles the port set, wrapping the config store in the LRU
// cache when caching is enabled.
func (f *DefaultFactory) bundle(cfg stores.ConfigStore, dues stores.DuesStore, bills stores.BillStore, ledger stores.LedgerStore, config Config) stores.Stores {
	if config.ConfigCacheSize > 0 && config.ConfigCacheTTL > 0 {
		cfg = stores.NewCachedConfigStore(cfg, config.ConfigCacheSize, config.ConfigCacheTTL)
	}
	return stores.Stores{Config: cfg, Dues: dues, Bills: bills, Ledger: ledger}
}
