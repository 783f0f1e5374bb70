package domain

import "fmt"

// Bins one truck is expected to cover per shift.
const BinsPerTruck = 150

// DashboardStats is the reduction of a city's bins shown on the dashboard.
type DashboardStats struct {
	TotalBins       int
	BinsAtRisk      int
	TrucksRequired  int
	BinsNotCritical int
	Efficiency      int
}

// AssistantContext summarizes live state for the operations assistant.
// Available is false when the stores could not be read and the zero
// fallback was used instead.
type AssistantContext struct {
	City                  string
	TotalBins             int
	BinsNeedingCollection int
	AverageFillLevel      int
	ActiveTrucks          int
	Available             bool
}

func (c AssistantContext) Summary() string {
	if !c.Available {
		return "Unable to fetch real-time context"
	}
	return fmt.Sprintf(
		"Current Status: %d bins total, %d requiring attention, %d active trucks",
		c.TotalBins, c.BinsNeedingCollection, c.ActiveTrucks,
	)
}
