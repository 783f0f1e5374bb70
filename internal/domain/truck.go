package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

type TruckStatus string

const (
	TruckActive      TruckStatus = "active"
	TruckMaintenance TruckStatus = "maintenance"
	TruckInactive    TruckStatus = "inactive"
)

// Capacity in kilograms.
const DefaultTruckCapacity = 5000

// Collection truck belonging to one city's fleet. Bins are never stored on the
// truck; assignments are returned as Itinerary values.
type Truck struct {
	ID              string
	TruckNumber     int
	Name            string
	City            City
	Zone            string
	Capacity        int
	CurrentLoad     int
	Status          TruckStatus
	Driver          *string
	Color           string
	BaseDistanceKm  float64
	BaseTimeMinutes int
}

// DisplayName falls back to "Truck N" when no name was stored.
func (t Truck) DisplayName() string {
	if strings.TrimSpace(t.Name) != "" {
		return t.Name
	}
	return fmt.Sprintf("Truck %d", t.TruckNumber)
}

func (t Truck) Active() bool {
	return t.Status == TruckActive
}

func (t *Truck) Validate() error {
	if t.TruckNumber <= 0 {
		return fmt.Errorf("validate truck: invalid truck number %d", t.TruckNumber)
	}
	if _, err := ParseCity(string(t.City)); err != nil {
		return fmt.Errorf("validate truck %d: %w", t.TruckNumber, err)
	}
	if t.BaseDistanceKm < 0 || t.BaseTimeMinutes < 0 {
		return errors.New("validate truck: base distance and time must not be negative")
	}
	if tenths := t.BaseDistanceKm * 10; math.Abs(tenths-math.Round(tenths)) > 1e-6 {
		return fmt.Errorf("validate truck %d: base distance %v has more than one decimal place", t.TruckNumber, t.BaseDistanceKm)
	}
	switch t.Status {
	case TruckActive, TruckMaintenance, TruckInactive:
	default:
		return fmt.Errorf("validate truck %d: unknown status %q", t.TruckNumber, t.Status)
	}
	return nil
}

func (t *Truck) ApplyDefaults() {
	if t.Status == "" {
		t.Status = TruckActive
	}
	if t.Capacity == 0 {
		t.Capacity = DefaultTruckCapacity
	}
	if t.Color == "" {
		t.Color = "from-blue-400 to-blue-600"
	}
	if t.Name == "" {
		t.Name = fmt.Sprintf("Truck %d", t.TruckNumber)
	}
}
