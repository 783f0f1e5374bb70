package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidFillLevel = errors.New("fill level must be between 0 and 100")

type BinStatus string

const (
	BinActive      BinStatus = "active"
	BinMaintenance BinStatus = "maintenance"
	BinFull        BinStatus = "full"
)

const DefaultBinCapacity = 100

// Bin is a physical waste container. Priority is always derived from
// FillLevel; use SetFillLevel or ApplyFillDelta instead of assigning directly.
type Bin struct {
	ID            string
	BinID         string
	Location      string
	City          City
	Zone          string
	FillLevel     int
	Priority      Priority
	Status        BinStatus
	TruckAssigned *string
	Capacity      int
	LastCollected *time.Time
	UpdatedAt     time.Time
}

// SetFillLevel records an absolute reading and reclassifies the bin.
func (b *Bin) SetFillLevel(level int) error {
	if level < 0 || level > 100 {
		return fmt.Errorf("set fill level for bin %s to %d: %w", b.BinID, level, ErrInvalidFillLevel)
	}
	b.FillLevel = level
	b.Priority = Classify(level)
	return nil
}

// ApplyFillDelta shifts the fill level by delta, clamped to 0..100.
func (b *Bin) ApplyFillDelta(delta int) {
	delta = max(-100, min(100, delta))
	level := max(0, min(100, b.FillLevel+delta))
	b.FillLevel = level
	b.Priority = Classify(level)
}

// Reclassify recomputes Priority from FillLevel. Stores call it before every write.
func (b *Bin) Reclassify() {
	b.Priority = Classify(b.FillLevel)
}

// Validate checks the fields a store requires before persisting.
func (b *Bin) Validate() error {
	if strings.TrimSpace(b.BinID) == "" {
		return errors.New("validate bin: bin id is required")
	}
	if _, err := ParseCity(string(b.City)); err != nil {
		return fmt.Errorf("validate bin %s: %w", b.BinID, err)
	}
	if strings.TrimSpace(b.Zone) == "" {
		return fmt.Errorf("validate bin %s: zone is required", b.BinID)
	}
	if b.FillLevel < 0 || b.FillLevel > 100 {
		return fmt.Errorf("validate bin %s: %w", b.BinID, ErrInvalidFillLevel)
	}
	switch b.Status {
	case BinActive, BinMaintenance, BinFull:
	default:
		return fmt.Errorf("validate bin %s: unknown status %q", b.BinID, b.Status)
	}
	return nil
}

// ApplyDefaults fills optional fields left at their zero value.
func (b *Bin) ApplyDefaults() {
	if b.Status == "" {
		b.Status = BinActive
	}
	if b.Capacity == 0 {
		b.Capacity = DefaultBinCapacity
	}
}
