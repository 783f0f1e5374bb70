package domain

import "time"

const EventFillLevelUpdated = "bin.fill_level.updated"

// BinEvent is emitted after a bin's fill level was written.
type BinEvent struct {
	ID                string    `json:"id"`
	Type              string    `json:"type"`
	BinID             string    `json:"binId"`
	City              City      `json:"city"`
	Zone              string    `json:"zone"`
	FillLevel         int       `json:"fillLevel"`
	PreviousFillLevel int       `json:"previousFillLevel"`
	Priority          Priority  `json:"priority"`
	PreviousPriority  Priority  `json:"previousPriority"`
	Source            string    `json:"source"`
	OccurredAt        time.Time `json:"occurredAt"`
}

// PriorityChanged reports whether the write moved the bin to another tier.
func (e BinEvent) PriorityChanged() bool {
	return e.Priority != e.PreviousPriority
}
