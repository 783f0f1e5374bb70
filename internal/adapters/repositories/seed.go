package repositories

import (
	"context"
	"fmt"
	"os"
	"strings"
	"waste-route-service/internal/domain"
	"waste-route-service/internal/ports"

	"gopkg.in/yaml.v3"
)

type BinSeed struct {
	BinID     string `yaml:"bin_id"`
	Location  string `yaml:"location"`
	City      string `yaml:"city"`
	Zone      string `yaml:"zone"`
	FillLevel int    `yaml:"fill_level"`
	Status    string `yaml:"status"`
	Capacity  int    `yaml:"capacity"`
}

type TruckSeed struct {
	TruckNumber     int     `yaml:"truck_number"`
	Name            string  `yaml:"name"`
	City            string  `yaml:"city"`
	Zone            string  `yaml:"zone"`
	Color           string  `yaml:"color"`
	Driver          string  `yaml:"driver"`
	Status          string  `yaml:"status"`
	BaseDistanceKm  float64 `yaml:"base_distance_km"`
	BaseTimeMinutes int     `yaml:"base_time_minutes"`
}

type SeedFile struct {
	Bins   []BinSeed   `yaml:"bins"`
	Trucks []TruckSeed `yaml:"trucks"`
}

// ParseSeed decodes and validates seed data. Every entry is checked before
// anything is written.
func ParseSeed(data []byte) ([]domain.Bin, []domain.Truck, error) {
	var file SeedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, nil, fmt.Errorf("parse seed: decode yaml: %w", err)
	}

	bins := make([]domain.Bin, 0, len(file.Bins))
	for i, item := range file.Bins {
		city, err := domain.ParseCity(item.City)
		if err != nil {
			return nil, nil, fmt.Errorf("parse seed: bin at index %d: %w", i+1, err)
		}

		b := domain.Bin{
			BinID:    strings.TrimSpace(item.BinID),
			Location: strings.TrimSpace(item.Location),
			City:     city,
			Zone:     strings.TrimSpace(item.Zone),
			Status:   domain.BinStatus(item.Status),
			Capacity: item.Capacity,
		}
		if err := b.SetFillLevel(item.FillLevel); err != nil {
			return nil, nil, fmt.Errorf("parse seed: bin at index %d: %w", i+1, err)
		}
		b.ApplyDefaults()
		if err := b.Validate(); err != nil {
			return nil, nil, fmt.Errorf("parse seed: bin at index %d: %w", i+1, err)
		}
		bins = append(bins, b)
	}

	trucks := make([]domain.Truck, 0, len(file.Trucks))
	for i, item := range file.Trucks {
		city, err := domain.ParseCity(item.City)
		if err != nil {
			return nil, nil, fmt.Errorf("parse seed: truck at index %d: %w", i+1, err)
		}

		t := domain.Truck{
			TruckNumber:     item.TruckNumber,
			Name:            strings.TrimSpace(item.Name),
			City:            city,
			Zone:            strings.TrimSpace(item.Zone),
			Color:           item.Color,
			Status:          domain.TruckStatus(item.Status),
			BaseDistanceKm:  item.BaseDistanceKm,
			BaseTimeMinutes: item.BaseTimeMinutes,
		}
		if d := strings.TrimSpace(item.Driver); d != "" {
			t.Driver = &d
		}
		t.ApplyDefaults()
		if err := t.Validate(); err != nil {
			return nil, nil, fmt.Errorf("parse seed: truck at index %d: %w", i+1, err)
		}
		trucks = append(trucks, t)
	}

	return bins, trucks, nil
}

// SeedFromFile populates the stores with bins and trucks from a YAML file.
// Existing records with the same keys are updated.
func SeedFromFile(ctx context.Context, path string, bins ports.BinRepository, trucks ports.TruckRepository) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("seed: read %q: %w", path, err)
	}

	seedBins, seedTrucks, err := ParseSeed(data)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	for i := range seedBins {
		if err := bins.Save(ctx, &seedBins[i]); err != nil {
			return fmt.Errorf("seed: bin %s: %w", seedBins[i].BinID, err)
		}
	}

	for i := range seedTrucks {
		if err := trucks.Save(ctx, &seedTrucks[i]); err != nil {
			return fmt.Errorf("seed: truck %s/%d: %w", seedTrucks[i].City, seedTrucks[i].TruckNumber, err)
		}
	}

	return nil
}
