package services

import (
	"context"
	"fmt"
	"strconv"
	"waste-route-service/internal/domain"
	"waste-route-service/internal/platform/metrics"
	"waste-route-service/internal/platform/obs"
	"waste-route-service/internal/ports"
)

type PlanRoutesRequest struct {
	City         domain.City
	FestivalMode bool
}

// RoutePlan is the response of a route computation for one city.
type RoutePlan struct {
	City         domain.City
	CityName     string
	Trucks       []domain.Itinerary
	Explanation  string
	FestivalMode bool
}

// PlanRoutes loads a city's bins and fleet and assigns the bins to trucks.
// The default fleet is provisioned when the city has no trucks yet.
func PlanRoutes(
	ctx context.Context,
	req PlanRoutesRequest,
	bins ports.BinRepository,
	fleet *Fleet,
) (_ *RoutePlan, err error) {
	defer obs.Time(ctx, "plan_routes")(&err)

	profile, err := req.City.Profile()
	if err != nil {
		return nil, fmt.Errorf("plan routes: %w", err)
	}

	trucks, err := fleet.EnsureFleet(ctx, req.City)
	if err != nil {
		return nil, fmt.Errorf("plan routes: %w", err)
	}

	cityBins, err := bins.FindByCity(ctx, req.City)
	if err != nil {
		return nil, fmt.Errorf("plan routes: list bins for %s: %w", req.City, err)
	}

	itineraries, err := AssignBinsToTrucks(cityBins, trucks, req.FestivalMode)
	if err != nil {
		return nil, fmt.Errorf("plan routes: %w", err)
	}

	metrics.RoutePlans.WithLabelValues(string(req.City), strconv.FormatBool(req.FestivalMode)).Inc()

	return &RoutePlan{
		City:         req.City,
		CityName:     profile.Name,
		Trucks:       itineraries,
		Explanation:  profile.Explanation,
		FestivalMode: req.FestivalMode,
	}, nil
}
