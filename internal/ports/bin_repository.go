package ports

import (
	"context"
	"errors"
	"waste-route-service/internal/domain"
)

// ErrNotFound is returned by stores when a lookup matches nothing.
var ErrNotFound = errors.New("not found")

// Port: a boundary for reading and writing Bin entities.
// Save must reclassify the bin's priority before persisting.
type BinRepository interface {
	// Retrieve every bin in insertion order.
	List(ctx context.Context) ([]domain.Bin, error)
	// Retrieve the bins of one city in insertion order.
	FindByCity(ctx context.Context, city domain.City) ([]domain.Bin, error)
	// Retrieve a bin by its public identifier.
	FindByBinID(ctx context.Context, binID string) (*domain.Bin, error)
	// Insert or update a bin keyed by BinID.
	Save(ctx context.Context, bin *domain.Bin) error
}
