package services

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"waste-route-service/internal/domain"
)

var ErrNoTrucks = errors.New("no trucks available: provision the fleet first")

// Festival mode adjustments.
const (
	festivalDistanceFactor = 1.3
	festivalTimeFactor     = 1.25

	festivalTruckZone     = "Festival Support"
	festivalTruckColor    = "from-pink-400 to-pink-600"
	festivalTruckBins     = 2
	festivalTruckDistance = 6.5
	festivalTruckMinutes  = 25
)

// SortBinsByPriority returns a copy of bins ordered critical first.
// Bins of equal priority keep their input order.
func SortBinsByPriority(bins []domain.Bin) []domain.Bin {
	sorted := slices.Clone(bins)
	slices.SortStableFunc(sorted, func(a, b domain.Bin) int {
		return a.Priority.Rank() - b.Priority.Rank()
	})
	return sorted
}

// AssignBinsToTrucks splits bins across trucks in priority order.
//
// Sorted bins are chunked with ceiling division so each truck receives a
// contiguous band; trailing trucks may receive nothing. This is a planning
// shortcut, not a vehicle routing solution. Inputs are never mutated.
func AssignBinsToTrucks(bins []domain.Bin, trucks []domain.Truck, festivalMode bool) ([]domain.Itinerary, error) {
	if len(trucks) == 0 {
		return nil, fmt.Errorf("assign bins: %w", ErrNoTrucks)
	}

	sorted := SortBinsByPriority(bins)

	nTrucks := len(trucks)
	nBins := len(sorted)

	// Ceiling division: distribute bins as evenly as possible across trucks.
	chunkSize := (nBins + nTrucks - 1) / nTrucks

	itineraries := make([]domain.Itinerary, 0, nTrucks+1)
	for ti, truck := range trucks {
		start := min(ti*chunkSize, nBins)
		end := min(start+chunkSize, nBins)

		distance := truck.BaseDistanceKm
		minutes := truck.BaseTimeMinutes
		if festivalMode {
			distance = truck.BaseDistanceKm * festivalDistanceFactor
			minutes = int(math.Ceil(float64(truck.BaseTimeMinutes) * festivalTimeFactor))
		}

		itineraries = append(itineraries, domain.Itinerary{
			TruckID:          truck.ID,
			TruckNumber:      truck.TruckNumber,
			Name:             truck.DisplayName(),
			Zone:             truck.Zone,
			Color:            truck.Color,
			Stops:            toStops(sorted[start:end]),
			DistanceKm:       roundTenth(distance),
			EstimatedMinutes: minutes,
		})
	}

	if festivalMode {
		itineraries = append(itineraries, festivalItinerary(sorted, nTrucks+1))
	}

	return itineraries, nil
}

// festivalItinerary builds the extra support truck from the first critical
// bins in sorted order. Those bins also stay on their regular truck.
func festivalItinerary(sorted []domain.Bin, number int) domain.Itinerary {
	critical := make([]domain.Bin, 0, festivalTruckBins)
	for _, b := range sorted {
		if len(critical) == festivalTruckBins {
			break
		}
		if b.Priority == domain.PriorityCritical {
			critical = append(critical, b)
		}
	}

	return domain.Itinerary{
		TruckNumber:      number,
		Name:             fmt.Sprintf("Truck %d (Festival)", number),
		Zone:             festivalTruckZone,
		Color:            festivalTruckColor,
		Festival:         true,
		Stops:            toStops(critical),
		DistanceKm:       festivalTruckDistance,
		EstimatedMinutes: festivalTruckMinutes,
	}
}

func toStops(bins []domain.Bin) []domain.RouteStop {
	stops := make([]domain.RouteStop, 0, len(bins))
	for i, b := range bins {
		stops = append(stops, domain.RouteStop{
			BinRef:    b.ID,
			BinID:     b.BinID,
			Location:  b.Location,
			Zone:      b.Zone,
			FillLevel: b.FillLevel,
			Priority:  b.Priority,
			StopOrder: i + 1,
		})
	}
	return stops
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
