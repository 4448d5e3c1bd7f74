package taskgraph

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/colonyops/taskgraph/internal/core/config"
	"github.com/colonyops/taskgraph/internal/core/eventbus"
	"github.com/colonyops/taskgraph/internal/core/kv"
	"github.com/colonyops/taskgraph/internal/data/db"
	"github.com/colonyops/taskgraph/internal/data/stores"
	"github.com/colonyops/taskgraph/internal/store/jsonfile"
	"github.com/colonyops/taskgraph/internal/store/memory"
)

// App is the central entry point for all taskgraph operations.
// Commands consume App instead of cherry-picking raw dependencies.
type App struct {
	Graph  *Graph
	Bus    *eventbus.EventBus
	Config *config.Config
	Store  kv.KV
	DB     *db.DB // nil unless the sqlite backend is selected
}

// NewApp opens the configured storage backend, builds the planner and loads
// the graph.
func NewApp(ctx context.Context, cfg *config.Config, bus *eventbus.EventBus, log zerolog.Logger, opts ...Option) (*App, error) {
	p, err := cfg.NewPlanner()
	if err != nil {
		return nil, fmt.Errorf("build planner: %w", err)
	}

	store, database, err := OpenStore(cfg, log)
	if err != nil {
		return nil, err
	}

	opts = append([]Option{WithStorageKey(cfg.Storage.Key)}, opts...)
	g := New(store, bus, p, log, opts...)
	g.Init(ctx)

	return &App{
		Graph:  g,
		Bus:    bus,
		Config: cfg,
		Store:  store,
		DB:     database,
	}, nil
}

// Close releases the storage backend.
func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

// OpenStore returns the storage gateway selected by cfg.Storage.Backend. For
// the sqlite backend a corrupt database file is moved aside and recreated.
func OpenStore(cfg *config.Config, log zerolog.Logger) (kv.KV, *db.DB, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return memory.NewKVStore(), nil, nil
	case config.BackendJSON:
		return jsonfile.NewKVStore(cfg.Storage.Path), nil, nil
	case config.BackendSQLite:
		opts := db.OpenOptions{
			MaxOpenConns: cfg.Database.MaxOpenConns,
			MaxIdleConns: cfg.Database.MaxIdleConns,
			BusyTimeout:  cfg.Database.BusyTimeout,
		}

		database, err := db.Open(cfg.DataDir, opts)
		if err != nil && stores.IsCorruptionError(err) {
			log.Warn().Err(err).Str("data_dir", cfg.DataDir).Msg("database is corrupt, moving it aside")
			backup, rerr := stores.RecoverFromCorruption(cfg.DataDir)
			if rerr != nil {
				return nil, nil, errors.Join(err, rerr)
			}
			log.Warn().Str("backup", backup).Msg("started a new database")
			database, err = db.Open(cfg.DataDir, opts)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("open database: %w", err)
		}
		return stores.NewKVStore(database), database, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
