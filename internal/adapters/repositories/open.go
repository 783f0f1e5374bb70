package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"waste-route-service/internal/config"
	"waste-route-service/internal/platform/db"
	"waste-route-service/internal/ports"
)

// Stores bundles the repositories selected by configuration.
type Stores struct {
	Bins   ports.BinRepository
	Trucks ports.TruckRepository

	// InitSchema prepares tables or indexes; nil when nothing is needed.
	InitSchema func(ctx context.Context) error
	Close      func() error
}

// Open connects the storage backend named by cfg.Driver.
func Open(ctx context.Context, cfg config.DatabaseConfig, mongoCfg config.MongoConfig) (*Stores, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		mem := NewMemoryStore()
		return &Stores{
			Bins:   mem.Bins(),
			Trucks: mem.Trucks(),
			Close:  func() error { return nil },
		}, nil

	case config.DriverSQLite:
		conn, err := db.OpenSQLite(ctx, cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open stores: %w", err)
		}
		return NewSQLStores(conn, DialectSQLite), nil

	case config.DriverPostgres:
		conn, err := db.Open(ctx, cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("open stores: %w", err)
		}
		return NewSQLStores(conn, DialectPostgres), nil

	case config.DriverMongo:
		store, err := OpenMongo(ctx, mongoCfg.URI, mongoCfg.Database)
		if err != nil {
			return nil, fmt.Errorf("open stores: %w", err)
		}
		return &Stores{
			Bins:       store.Bins(),
			Trucks:     store.Trucks(),
			InitSchema: store.EnsureIndexes,
			Close:      func() error { return store.Close(context.Background()) },
		}, nil

	default:
		return nil, fmt.Errorf("open stores: unsupported driver %q", cfg.Driver)
	}
}

// NewSQLStores wraps an open *sql.DB. Close closes conn.
func NewSQLStores(conn *sql.DB, d Dialect) *Stores {
	return &Stores{
		Bins:   NewSQLBinRepository(conn, d),
		Trucks: NewSQLTruckRepository(conn, d),
		InitSchema: func(ctx context.Context) error {
			return InitSchema(ctx, conn, d)
		},
		Close: conn.Close,
	}
}
