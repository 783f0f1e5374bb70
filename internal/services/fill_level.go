package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"waste-route-service/internal/domain"
	"waste-route-service/internal/platform/logger"
	"waste-route-service/internal/platform/metrics"
	"waste-route-service/internal/platform/obs"
	"waste-route-service/internal/ports"

	"github.com/google/uuid"
)

// Sources recorded on fill level events.
const (
	SourceAPI       = "api"
	SourceMQTT      = "mqtt"
	SourceSimulator = "simulator"
)

// FillLevelUpdate changes a bin's fill level either by Delta or, when Level
// is set, to an absolute reading.
type FillLevelUpdate struct {
	BinID  string
	Delta  int
	Level  *int
	Source string
}

// FillLevelService applies fill level updates and notifies listeners.
type FillLevelService struct {
	Bins    ports.BinRepository
	Events  ports.BinEventBroker
	History ports.FillLevelRecorder
	Log     logger.Logger
	Now     func() time.Time
}

// UpdateFillLevel writes a new fill level, reclassifies the bin and emits a
// state-changed event. A history failure is logged and counted but does not
// fail the update.
func (s *FillLevelService) UpdateFillLevel(ctx context.Context, upd FillLevelUpdate) (_ *domain.Bin, err error) {
	defer obs.Time(ctx, "update_fill_level")(&err)

	binID := strings.TrimSpace(upd.BinID)
	if binID == "" {
		return nil, errors.New("update fill level: bin id is required")
	}

	bin, err := s.Bins.FindByBinID(ctx, binID)
	if err != nil {
		return nil, fmt.Errorf("update fill level: find bin %s: %w", binID, err)
	}

	prevLevel, prevPriority := bin.FillLevel, bin.Priority

	if upd.Level != nil {
		if err := bin.SetFillLevel(*upd.Level); err != nil {
			return nil, fmt.Errorf("update fill level: %w", err)
		}
	} else {
		bin.ApplyFillDelta(upd.Delta)
	}
	bin.UpdatedAt = s.now()

	if err := s.Bins.Save(ctx, bin); err != nil {
		return nil, fmt.Errorf("update fill level: save bin %s: %w", binID, err)
	}

	source := upd.Source
	if source == "" {
		source = SourceAPI
	}
	metrics.FillLevelUpdates.WithLabelValues(string(bin.City), source).Inc()

	evt := domain.BinEvent{
		ID:                uuid.NewString(),
		Type:              domain.EventFillLevelUpdated,
		BinID:             bin.BinID,
		City:              bin.City,
		Zone:              bin.Zone,
		FillLevel:         bin.FillLevel,
		PreviousFillLevel: prevLevel,
		Priority:          bin.Priority,
		PreviousPriority:  prevPriority,
		Source:            source,
		OccurredAt:        bin.UpdatedAt,
	}

	if s.History != nil {
		if err := s.History.Record(ctx, evt); err != nil {
			metrics.FillLevelHistoryFailures.Inc()
			s.log().Warnf("record fill level failed bin=%s: %v", bin.BinID, err)
		}
	}

	if s.Events != nil {
		if err := s.Events.Publish(ctx, evt); err != nil {
			return bin, fmt.Errorf("update fill level: publish event for %s: %w", binID, err)
		}
	}

	if evt.PriorityChanged() {
		s.log().Infof("bin priority changed bin=%s city=%s %s -> %s", bin.BinID, bin.City, prevPriority, bin.Priority)
	}

	return bin, nil
}

func (s *FillLevelService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *FillLevelService) log() logger.Logger {
	if s.Log == nil {
		return logger.NopLogger{}
	}
	return s.Log
}
