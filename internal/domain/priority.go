package domain

// Priority is the collection urgency tier derived from a bin's fill level.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Fill level thresholds. A level equal to a threshold belongs to the higher tier.
const (
	CriticalThreshold = 90
	HighThreshold     = 75
	MediumThreshold   = 60
)

// Classify maps a fill level (0..100) to its priority tier.
func Classify(fillLevel int) Priority {
	switch {
	case fillLevel >= CriticalThreshold:
		return PriorityCritical
	case fillLevel >= HighThreshold:
		return PriorityHigh
	case fillLevel >= MediumThreshold:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// Rank orders tiers for collection: critical 0, high 1, medium 2, low 3.
// Unknown values sort after low.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

// AtRisk reports whether the tier counts toward the dashboard's at-risk total.
func (p Priority) AtRisk() bool {
	return p == PriorityCritical || p == PriorityHigh
}
