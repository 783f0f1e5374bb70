package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// InitSchema creates the bins and trucks tables for the given dialect.
// It is idempotent.
func InitSchema(ctx context.Context, db *sql.DB, d Dialect) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createBinsQuery := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS bins (
		id %s,
		bin_id TEXT NOT NULL UNIQUE,
		location TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL,
		zone TEXT NOT NULL,
		fill_level INTEGER NOT NULL CHECK (fill_level BETWEEN 0 AND 100),
		priority TEXT NOT NULL,
		status TEXT NOT NULL,
		truck_assigned TEXT,
		capacity INTEGER NOT NULL DEFAULT 100,
		last_collected BIGINT,
		updated_at BIGINT NOT NULL
	);
	`, d.idColumn())

	createTrucksQuery := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS trucks (
		id %s,
		truck_number INTEGER NOT NULL,
		name TEXT NOT NULL,
		city TEXT NOT NULL,
		zone TEXT NOT NULL,
		capacity INTEGER NOT NULL DEFAULT 5000,
		current_load INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		driver TEXT,
		color TEXT NOT NULL,
		base_distance_km %s NOT NULL,
		base_time_minutes INTEGER NOT NULL,
		UNIQUE (city, truck_number)
	);
	`, d.idColumn(), d.floatType())

	createBinsCityIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_bins_city
	ON bins(city, id);
	`

	statements := []string{
		createBinsQuery,
		createTrucksQuery,
		createBinsCityIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
