package repositories

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"waste-route-service/internal/domain"
	"waste-route-service/internal/ports"
)

// MemoryStore is an in-process implementation of the bin and truck ports.
// It backs the "memory" driver and tests. Safe for concurrent use.
type MemoryStore struct {
	mu     sync.Mutex
	nextID int
	bins   []domain.Bin
	trucks []domain.Truck
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// MemoryBinRepository and MemoryTruckRepository share one MemoryStore.
type MemoryBinRepository struct{ store *MemoryStore }
type MemoryTruckRepository struct{ store *MemoryStore }

func (s *MemoryStore) Bins() *MemoryBinRepository     { return &MemoryBinRepository{store: s} }
func (s *MemoryStore) Trucks() *MemoryTruckRepository { return &MemoryTruckRepository{store: s} }

func (s *MemoryStore) newID() string {
	s.nextID++
	return strconv.Itoa(s.nextID)
}

func (r *MemoryBinRepository) List(ctx context.Context) ([]domain.Bin, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return slices.Clone(r.store.bins), nil
}

func (r *MemoryBinRepository) FindByCity(ctx context.Context, city domain.City) ([]domain.Bin, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	out := make([]domain.Bin, 0, len(r.store.bins))
	for _, b := range r.store.bins {
		if b.City == city {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *MemoryBinRepository) FindByBinID(ctx context.Context, binID string) (*domain.Bin, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, b := range r.store.bins {
		if b.BinID == binID {
			found := b
			return &found, nil
		}
	}
	return nil, fmt.Errorf("find bin %q: %w", binID, ports.ErrNotFound)
}

func (r *MemoryBinRepository) Save(ctx context.Context, bin *domain.Bin) error {
	bin.ApplyDefaults()
	bin.Reclassify()
	if err := bin.Validate(); err != nil {
		return fmt.Errorf("save bin: %w", err)
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for i, b := range r.store.bins {
		if b.BinID == bin.BinID {
			bin.ID = b.ID
			r.store.bins[i] = *bin
			return nil
		}
	}

	bin.ID = r.store.newID()
	r.store.bins = append(r.store.bins, *bin)
	return nil
}

func (r *MemoryTruckRepository) List(ctx context.Context) ([]domain.Truck, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return slices.Clone(r.store.trucks), nil
}

func (r *MemoryTruckRepository) FindByCity(ctx context.Context, city domain.City) ([]domain.Truck, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.findByCityLocked(city), nil
}

func (r *MemoryTruckRepository) findByCityLocked(city domain.City) []domain.Truck {
	out := make([]domain.Truck, 0, 2)
	for _, t := range r.store.trucks {
		if t.City == city {
			out = append(out, t)
		}
	}
	slices.SortStableFunc(out, func(a, b domain.Truck) int {
		return cmp.Compare(a.TruckNumber, b.TruckNumber)
	})
	return out
}

func (r *MemoryTruckRepository) Save(ctx context.Context, truck *domain.Truck) error {
	truck.ApplyDefaults()
	if err := truck.Validate(); err != nil {
		return fmt.Errorf("save truck: %w", err)
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.upsertLocked(truck, true)
	return nil
}

// upsertLocked inserts truck or, when replace is set, overwrites the truck
// with the same (city, truck number). It reports whether a row was written.
func (r *MemoryTruckRepository) upsertLocked(truck *domain.Truck, replace bool) bool {
	for i, t := range r.store.trucks {
		if t.City == truck.City && t.TruckNumber == truck.TruckNumber {
			if !replace {
				return false
			}
			truck.ID = t.ID
			r.store.trucks[i] = *truck
			return true
		}
	}
	truck.ID = r.store.newID()
	r.store.trucks = append(r.store.trucks, *truck)
	return true
}

func (r *MemoryTruckRepository) InsertDefaults(ctx context.Context, city domain.City) ([]domain.Truck, error) {
	defaults, err := domain.DefaultFleet(city)
	if err != nil {
		return nil, fmt.Errorf("insert default trucks: %w", err)
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for i := range defaults {
		r.upsertLocked(&defaults[i], false)
	}
	return r.findByCityLocked(city), nil
}
