package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"waste-route-service/internal/domain"
)

// SQL-backed implementation of the TruckRepository port (SQLite or Postgres).
type SQLTruckRepository struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewSQLTruckRepository(db *sql.DB, d Dialect) *SQLTruckRepository {
	return &SQLTruckRepository{DB: db, Dialect: d}
}

const selectTrucksQuery = `
	SELECT
		id,
		truck_number,
		name,
		city,
		zone,
		capacity,
		current_load,
		status,
		driver,
		color,
		base_distance_km,
		base_time_minutes
	FROM trucks
	`

func (s *SQLTruckRepository) query(ctx context.Context, op string, where string, args ...any) ([]domain.Truck, error) {
	if s.DB == nil {
		return nil, errors.New("sql truck repository: DB is nil")
	}

	rows, err := s.DB.QueryContext(ctx, s.Dialect.rebind(selectTrucksQuery+where), args...)
	if err != nil {
		return nil, fmt.Errorf("%s: query trucks table: %w", op, err)
	}
	defer rows.Close()

	trucks := make([]domain.Truck, 0, 8)
	for rows.Next() {
		var (
			t      domain.Truck
			id     int64
			city   string
			status string
			driver sql.NullString
		)
		err := rows.Scan(
			&id,
			&t.TruckNumber,
			&t.Name,
			&city,
			&t.Zone,
			&t.Capacity,
			&t.CurrentLoad,
			&status,
			&driver,
			&t.Color,
			&t.BaseDistanceKm,
			&t.BaseTimeMinutes,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: scan row: %w", op, err)
		}
		t.ID = strconv.FormatInt(id, 10)
		t.City = domain.City(city)
		t.Status = domain.TruckStatus(status)
		t.Driver = stringPtr(driver)
		trucks = append(trucks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: row iteration: %w", op, err)
	}

	return trucks, nil
}

func (s *SQLTruckRepository) List(ctx context.Context) ([]domain.Truck, error) {
	return s.query(ctx, "list trucks", "ORDER BY city, truck_number;")
}

func (s *SQLTruckRepository) FindByCity(ctx context.Context, city domain.City) ([]domain.Truck, error) {
	return s.query(ctx, "find trucks by city", "WHERE city = ? ORDER BY truck_number;", string(city))
}

const insertTruckQuery = `
	INSERT INTO trucks (
		truck_number,
		name,
		city,
		zone,
		capacity,
		current_load,
		status,
		driver,
		color,
		base_distance_km,
		base_time_minutes
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

func truckArgs(t *domain.Truck) []any {
	return []any{
		t.TruckNumber,
		t.Name,
		string(t.City),
		t.Zone,
		t.Capacity,
		t.CurrentLoad,
		string(t.Status),
		nullString(t.Driver),
		t.Color,
		t.BaseDistanceKm,
		t.BaseTimeMinutes,
	}
}

// Save upserts the truck keyed by (city, truck_number).
func (s *SQLTruckRepository) Save(ctx context.Context, truck *domain.Truck) error {
	if s.DB == nil {
		return errors.New("sql truck repository: DB is nil")
	}

	truck.ApplyDefaults()
	if err := truck.Validate(); err != nil {
		return fmt.Errorf("save truck: %w", err)
	}

	query := insertTruckQuery + `
	ON CONFLICT (city, truck_number) DO UPDATE SET
		name = excluded.name,
		zone = excluded.zone,
		capacity = excluded.capacity,
		current_load = excluded.current_load,
		status = excluded.status,
		driver = excluded.driver,
		color = excluded.color,
		base_distance_km = excluded.base_distance_km,
		base_time_minutes = excluded.base_time_minutes
	RETURNING id;
	`

	var id int64
	if err := s.DB.QueryRowContext(ctx, s.Dialect.rebind(query), truckArgs(truck)...).Scan(&id); err != nil {
		return fmt.Errorf("save truck %s/%d: upsert: %w", truck.City, truck.TruckNumber, err)
	}

	truck.ID = strconv.FormatInt(id, 10)
	return nil
}

// InsertDefaults inserts the city's default fleet. Existing (city, truck_number)
// rows are left untouched, so concurrent callers cannot duplicate a fleet.
func (s *SQLTruckRepository) InsertDefaults(ctx context.Context, city domain.City) ([]domain.Truck, error) {
	if s.DB == nil {
		return nil, errors.New("sql truck repository: DB is nil")
	}

	defaults, err := domain.DefaultFleet(city)
	if err != nil {
		return nil, fmt.Errorf("insert default trucks: %w", err)
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("insert default trucks: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, s.Dialect.rebind(insertTruckQuery+"ON CONFLICT (city, truck_number) DO NOTHING;"))
	if err != nil {
		return nil, fmt.Errorf("insert default trucks: prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range defaults {
		if _, err := stmt.ExecContext(ctx, truckArgs(&defaults[i])...); err != nil {
			return nil, fmt.Errorf("insert default trucks: truck %d: %w", defaults[i].TruckNumber, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("insert default trucks: commit tx: %w", err)
	}

	return s.FindByCity(ctx, city)
}
