package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"
	"waste-route-service/internal/domain"
	"waste-route-service/internal/ports"
)

// SQL-backed implementation of the BinRepository port (SQLite or Postgres).
type SQLBinRepository struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewSQLBinRepository(db *sql.DB, d Dialect) *SQLBinRepository {
	return &SQLBinRepository{DB: db, Dialect: d}
}

const selectBinsQuery = `
	SELECT
		id,
		bin_id,
		location,
		city,
		zone,
		fill_level,
		priority,
		status,
		truck_assigned,
		capacity,
		last_collected,
		updated_at
	FROM bins
	`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBin(row rowScanner) (domain.Bin, error) {
	var (
		b             domain.Bin
		id            int64
		city          string
		priority      string
		status        string
		truckAssigned sql.NullString
		lastCollected sql.NullInt64
		updatedAt     int64
	)

	err := row.Scan(
		&id,
		&b.BinID,
		&b.Location,
		&city,
		&b.Zone,
		&b.FillLevel,
		&priority,
		&status,
		&truckAssigned,
		&b.Capacity,
		&lastCollected,
		&updatedAt,
	)
	if err != nil {
		return domain.Bin{}, err
	}

	b.ID = strconv.FormatInt(id, 10)
	b.City = domain.City(city)
	b.Priority = domain.Priority(priority)
	b.Status = domain.BinStatus(status)
	b.TruckAssigned = stringPtr(truckAssigned)
	b.LastCollected = timePtr(lastCollected)
	b.UpdatedAt = fromMillis(updatedAt)
	return b, nil
}

func (s *SQLBinRepository) query(ctx context.Context, op string, where string, args ...any) ([]domain.Bin, error) {
	if s.DB == nil {
		return nil, errors.New("sql bin repository: DB is nil")
	}

	rows, err := s.DB.QueryContext(ctx, s.Dialect.rebind(selectBinsQuery+where), args...)
	if err != nil {
		return nil, fmt.Errorf("%s: query bins table: %w", op, err)
	}
	defer rows.Close()

	bins := make([]domain.Bin, 0, 64)
	for rows.Next() {
		b, err := scanBin(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan row: %w", op, err)
		}
		bins = append(bins, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: row iteration: %w", op, err)
	}

	return bins, nil
}

// Return all bins in insertion order.
func (s *SQLBinRepository) List(ctx context.Context) ([]domain.Bin, error) {
	return s.query(ctx, "list bins", "ORDER BY id;")
}

func (s *SQLBinRepository) FindByCity(ctx context.Context, city domain.City) ([]domain.Bin, error) {
	return s.query(ctx, "find bins by city", "WHERE city = ? ORDER BY id;", string(city))
}

func (s *SQLBinRepository) FindByBinID(ctx context.Context, binID string) (*domain.Bin, error) {
	if s.DB == nil {
		return nil, errors.New("sql bin repository: DB is nil")
	}

	row := s.DB.QueryRowContext(ctx, s.Dialect.rebind(selectBinsQuery+"WHERE bin_id = ?;"), binID)
	b, err := scanBin(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find bin %q: %w", binID, ports.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find bin %q: %w", binID, err)
	}
	return &b, nil
}

// Save upserts the bin by bin_id after recomputing its priority.
func (s *SQLBinRepository) Save(ctx context.Context, bin *domain.Bin) error {
	if s.DB == nil {
		return errors.New("sql bin repository: DB is nil")
	}

	bin.ApplyDefaults()
	bin.Reclassify()
	if err := bin.Validate(); err != nil {
		return fmt.Errorf("save bin: %w", err)
	}
	if bin.UpdatedAt.IsZero() {
		bin.UpdatedAt = time.Now().UTC()
	}

	query := `
	INSERT INTO bins (
		bin_id,
		location,
		city,
		zone,
		fill_level,
		priority,
		status,
		truck_assigned,
		capacity,
		last_collected,
		updated_at
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (bin_id) DO UPDATE SET
		location = excluded.location,
		city = excluded.city,
		zone = excluded.zone,
		fill_level = excluded.fill_level,
		priority = excluded.priority,
		status = excluded.status,
		truck_assigned = excluded.truck_assigned,
		capacity = excluded.capacity,
		last_collected = excluded.last_collected,
		updated_at = excluded.updated_at
	RETURNING id;
	`

	var id int64
	err := s.DB.QueryRowContext(ctx, s.Dialect.rebind(query),
		bin.BinID,
		bin.Location,
		string(bin.City),
		bin.Zone,
		bin.FillLevel,
		string(bin.Priority),
		string(bin.Status),
		nullString(bin.TruckAssigned),
		bin.Capacity,
		nullMillis(bin.LastCollected),
		toMillis(bin.UpdatedAt),
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("save bin %s: upsert: %w", bin.BinID, err)
	}

	bin.ID = strconv.FormatInt(id, 10)
	return nil
}
