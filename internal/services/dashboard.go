package services

import (
	"context"
	"fmt"
	"math"
	"waste-route-service/internal/domain"
	"waste-route-service/internal/platform/obs"
	"waste-route-service/internal/ports"
)

// SummarizeBins reduces a bin set to dashboard statistics.
// Efficiency is the rounded share of bins below the critical threshold,
// and 0 for an empty set.
func SummarizeBins(bins []domain.Bin) domain.DashboardStats {
	stats := domain.DashboardStats{TotalBins: len(bins)}

	for _, b := range bins {
		if b.Priority.AtRisk() {
			stats.BinsAtRisk++
		}
		if b.FillLevel < domain.CriticalThreshold {
			stats.BinsNotCritical++
		}
	}

	stats.TrucksRequired = (stats.TotalBins + domain.BinsPerTruck - 1) / domain.BinsPerTruck
	if stats.TotalBins > 0 {
		stats.Efficiency = int(math.Round(float64(stats.BinsNotCritical) / float64(stats.TotalBins) * 100))
	}

	return stats
}

// Dashboard is the per-city overview.
type Dashboard struct {
	City           domain.City
	CityName       string
	Zones          []string
	FestivalImpact float64
	Stats          domain.DashboardStats
	Bins           []domain.Bin
}

func BuildDashboard(ctx context.Context, city domain.City, bins ports.BinRepository) (_ *Dashboard, err error) {
	defer obs.Time(ctx, "build_dashboard")(&err)

	profile, err := city.Profile()
	if err != nil {
		return nil, fmt.Errorf("build dashboard: %w", err)
	}

	cityBins, err := bins.FindByCity(ctx, city)
	if err != nil {
		return nil, fmt.Errorf("build dashboard: list bins for %s: %w", city, err)
	}

	return &Dashboard{
		City:           city,
		CityName:       profile.Name,
		Zones:          profile.Zones,
		FestivalImpact: profile.FestivalImpact,
		Stats:          SummarizeBins(cityBins),
		Bins:           cityBins,
	}, nil
}
