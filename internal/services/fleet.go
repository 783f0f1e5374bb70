package services

import (
	"context"
	"fmt"
	"slices"
	"time"
	"waste-route-service/internal/domain"
	"waste-route-service/internal/platform/logger"
	"waste-route-service/internal/platform/metrics"
	"waste-route-service/internal/ports"

	"golang.org/x/sync/singleflight"
)

const provisionTimeout = 30 * time.Second

// Fleet loads a city's trucks and provisions the default fleet on first use.
//
// Concurrent first requests for the same city share one provisioning call,
// and stores insert defaults only when absent, so racing processes still end
// up with a single fleet. The shared call is detached from the caller that
// started it; a caller whose context ends stops waiting without failing the
// others.
type Fleet struct {
	trucks ports.TruckRepository
	group  singleflight.Group
	log    logger.Logger
}

func NewFleet(trucks ports.TruckRepository, log logger.Logger) *Fleet {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Fleet{trucks: trucks, log: log}
}

// EnsureFleet returns the city's trucks, inserting the defaults if it has none.
func (f *Fleet) EnsureFleet(ctx context.Context, city domain.City) ([]domain.Truck, error) {
	trucks, err := f.trucks.FindByCity(ctx, city)
	if err != nil {
		return nil, fmt.Errorf("ensure fleet: find trucks for %s: %w", city, err)
	}
	if len(trucks) > 0 {
		return trucks, nil
	}

	ch := f.group.DoChan(string(city), func() (any, error) {
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), provisionTimeout)
		defer cancel()

		provisioned, err := f.trucks.InsertDefaults(pctx, city)
		if err != nil {
			return nil, err
		}
		metrics.FleetProvisioned.WithLabelValues(string(city)).Inc()
		f.log.Infof("provisioned default fleet city=%s trucks=%d", city, len(provisioned))
		return provisioned, nil
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("ensure fleet: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("ensure fleet: insert defaults for %s: %w", city, res.Err)
		}
		// Callers sharing a singleflight result each get their own slice.
		return slices.Clone(res.Val.([]domain.Truck)), nil
	}
}

// Trucks exposes the underlying store for read-only use cases.
func (f *Fleet) Trucks() ports.TruckRepository {
	return f.trucks
}
