package domain

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnsupportedCity = errors.New("unsupported city")

// City is one of the municipalities the service operates in.
type City string

const (
	CityNaviMumbai City = "navimumbai"
	CityIndore     City = "indore"
	CitySurat      City = "surat"
)

// Cities lists the supported cities in display order.
var Cities = []City{CityNaviMumbai, CityIndore, CitySurat}

// ParseCity validates a raw city identifier. Matching ignores case and
// surrounding whitespace.
func ParseCity(raw string) (City, error) {
	c := City(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := cityProfiles[c]; !ok {
		return "", fmt.Errorf("parse city %q: %w", raw, ErrUnsupportedCity)
	}
	return c, nil
}

// FleetTemplate describes one truck of a city's default fleet.
type FleetTemplate struct {
	TruckNumber     int
	Name            string
	Zone            string
	Color           string
	BaseDistanceKm  float64
	BaseTimeMinutes int
}

// CityProfile is the static configuration attached to a city.
type CityProfile struct {
	City           City
	Name           string
	Zones          []string
	FestivalImpact float64
	Explanation    string
	Fleet          []FleetTemplate
}

var cityProfiles = map[City]CityProfile{
	CityNaviMumbai: {
		City:           CityNaviMumbai,
		Name:           "Navi Mumbai",
		Zones:          []string{"Market", "Residential"},
		FestivalImpact: 1.6,
		Explanation: "Route optimization prioritizes Market Zone bins which have higher fill levels due to increased commercial activity. " +
			"Residential areas with lower accumulation are scheduled for lower priority to maximize collection efficiency.",
		Fleet: []FleetTemplate{
			{TruckNumber: 1, Name: "Truck 1", Zone: "Market Zone", Color: "from-blue-400 to-blue-600", BaseDistanceKm: 12.5, BaseTimeMinutes: 45},
			{TruckNumber: 2, Name: "Truck 2", Zone: "Residential Zone", Color: "from-emerald-400 to-emerald-600", BaseDistanceKm: 8.3, BaseTimeMinutes: 35},
		},
	},
	CityIndore: {
		City:           CityIndore,
		Name:           "Indore",
		Zones:          []string{"Commercial", "Industrial"},
		FestivalImpact: 1.4,
		Explanation: "Industrial zone receives priority due to consistent high waste generation. " +
			"Commercial areas are scheduled for peak efficiency. Route planning avoids congested areas during business hours.",
		Fleet: []FleetTemplate{
			{TruckNumber: 1, Name: "Truck 1", Zone: "Commercial Zone", Color: "from-purple-400 to-purple-600", BaseDistanceKm: 10.2, BaseTimeMinutes: 40},
			{TruckNumber: 2, Name: "Truck 2", Zone: "Industrial Zone", Color: "from-amber-400 to-amber-600", BaseDistanceKm: 14.7, BaseTimeMinutes: 50},
		},
	},
	CitySurat: {
		City:           CitySurat,
		Name:           "Surat",
		Zones:          []string{"Textile", "Residential"},
		FestivalImpact: 1.8,
		Explanation: "Textile industry generates significant waste requiring priority scheduling. " +
			"Coastal residential areas have moderate accumulation. Route timing avoids peak traffic in mill districts.",
		Fleet: []FleetTemplate{
			{TruckNumber: 1, Name: "Truck 1", Zone: "Textile District", Color: "from-red-400 to-red-600", BaseDistanceKm: 11.8, BaseTimeMinutes: 42},
			{TruckNumber: 2, Name: "Truck 2", Zone: "Residential Zone", Color: "from-cyan-400 to-cyan-600", BaseDistanceKm: 9.4, BaseTimeMinutes: 38},
		},
	},
}

// Profile returns the static configuration for c.
func (c City) Profile() (CityProfile, error) {
	p, ok := cityProfiles[c]
	if !ok {
		return CityProfile{}, fmt.Errorf("city profile %q: %w", string(c), ErrUnsupportedCity)
	}
	return p, nil
}

// DisplayName falls back to the raw identifier for unknown cities.
func (c City) DisplayName() string {
	if p, ok := cityProfiles[c]; ok {
		return p.Name
	}
	return string(c)
}

// DefaultFleet builds the trucks provisioned for a city that has none yet.
func DefaultFleet(c City) ([]Truck, error) {
	p, err := c.Profile()
	if err != nil {
		return nil, fmt.Errorf("default fleet: %w", err)
	}

	trucks := make([]Truck, 0, len(p.Fleet))
	for _, tpl := range p.Fleet {
		trucks = append(trucks, Truck{
			TruckNumber:     tpl.TruckNumber,
			Name:            tpl.Name,
			City:            c,
			Zone:            tpl.Zone,
			Capacity:        DefaultTruckCapacity,
			Status:          TruckActive,
			Color:           tpl.Color,
			BaseDistanceKm:  tpl.BaseDistanceKm,
			BaseTimeMinutes: tpl.BaseTimeMinutes,
		})
	}
	return trucks, nil
}
