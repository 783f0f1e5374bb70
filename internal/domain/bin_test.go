package domain

import (
	"errors"
	"math"
	"testing"
)

func TestBinSetFillLevel(t *testing.T) {
	b := &Bin{BinID: "INDORE-CZ-001", City: CityIndore, Zone: "Commercial", FillLevel: 40, Priority: PriorityLow}

	if err := b.SetFillLevel(91); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.FillLevel != 91 || b.Priority != PriorityCritical {
		t.Fatalf("got fill=%d priority=%q, want 91/critical", b.FillLevel, b.Priority)
	}

	for _, level := range []int{-1, 101} {
		err := b.SetFillLevel(level)
		if !errors.Is(err, ErrInvalidFillLevel) {
			t.Errorf("SetFillLevel(%d) err = %v, want ErrInvalidFillLevel", level, err)
		}
	}
	if b.FillLevel != 91 {
		t.Errorf("rejected write changed fill level to %d", b.FillLevel)
	}
}

func TestBinApplyFillDeltaClamps(t *testing.T) {
	tests := []struct {
		start, delta, want int
		priority           Priority
	}{
		{70, 5, 75, PriorityHigh},
		{95, 20, 100, PriorityCritical},
		{10, -30, 0, PriorityLow},
		{92, -30, 62, PriorityMedium},
		{50, math.MaxInt, 100, PriorityCritical},
		{50, math.MinInt, 0, PriorityLow},
		{100, math.MaxInt, 100, PriorityCritical},
		{0, math.MinInt, 0, PriorityLow},
	}

	for _, tt := range tests {
		b := &Bin{FillLevel: tt.start, Priority: Classify(tt.start)}
		b.ApplyFillDelta(tt.delta)
		if b.FillLevel != tt.want || b.Priority != tt.priority {
			t.Errorf("start=%d delta=%d: got %d/%q, want %d/%q",
				tt.start, tt.delta, b.FillLevel, b.Priority, tt.want, tt.priority)
		}
	}
}

func TestBinValidate(t *testing.T) {
	b := Bin{BinID: "SURAT-TD-001", City: CitySurat, Zone: "Textile", FillLevel: 93}
	b.ApplyDefaults()
	if err := b.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Capacity != DefaultBinCapacity || b.Status != BinActive {
		t.Fatalf("defaults not applied: %+v", b)
	}

	b.City = "pune"
	if err := b.Validate(); !errors.Is(err, ErrUnsupportedCity) {
		t.Fatalf("err = %v, want ErrUnsupportedCity", err)
	}
}

func TestParseCity(t *testing.T) {
	c, err := ParseCity("  Indore ")
	if err != nil || c != CityIndore {
		t.Fatalf("ParseCity = %q, %v", c, err)
	}

	if _, err := ParseCity("atlantis"); !errors.Is(err, ErrUnsupportedCity) {
		t.Fatalf("err = %v, want ErrUnsupportedCity", err)
	}

	if CityNaviMumbai.DisplayName() != "Navi Mumbai" {
		t.Errorf("DisplayName = %q", CityNaviMumbai.DisplayName())
	}
}
