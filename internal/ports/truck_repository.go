package ports

import (
	"context"
	"waste-route-service/internal/domain"
)

// Port: a boundary for reading and provisioning Truck entities.
type TruckRepository interface {
	List(ctx context.Context) ([]domain.Truck, error)
	// Retrieve a city's trucks ordered by truck number.
	FindByCity(ctx context.Context, city domain.City) ([]domain.Truck, error)
	// Insert or update a truck keyed by (city, truck number).
	Save(ctx context.Context, truck *domain.Truck) error
	// Insert the city's default fleet, skipping trucks that already exist,
	// and return the city's trucks afterwards.
	InsertDefaults(ctx context.Context, city domain.City) ([]domain.Truck, error)
}
