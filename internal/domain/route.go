package domain

import "fmt"

// Represents a single stop in a collection route.
// StopOrder is 1-based within the owning itinerary.
type RouteStop struct {
	BinRef    string
	BinID     string
	Location  string
	Zone      string
	FillLevel int
	Priority  Priority
	StopOrder int
}

// Represents the collection route assigned to a single truck.
// An Itinerary is the output of the route assigner and is never persisted.
// TruckID is empty for the synthetic festival support truck.
type Itinerary struct {
	TruckID          string
	TruckNumber      int
	Name             string
	Zone             string
	Color            string
	Festival         bool
	Stops            []RouteStop
	DistanceKm       float64
	EstimatedMinutes int
}

// Distance renders the route length with one decimal, e.g. "16.3 km".
func (it Itinerary) Distance() string {
	return fmt.Sprintf("%.1f km", it.DistanceKm)
}

// EstimatedTime renders the route duration, e.g. "57 mins".
func (it Itinerary) EstimatedTime() string {
	return fmt.Sprintf("%d mins", it.EstimatedMinutes)
}

func (it Itinerary) StopCount() int {
	return len(it.Stops)
}
