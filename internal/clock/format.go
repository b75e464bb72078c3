package clock

import "fmt"

// Urgency classifies the remaining time for display.
type Urgency string

const (
	UrgencyNormal   Urgency = "normal"
	UrgencyWarning  Urgency = "warning"
	UrgencyCritical Urgency = "critical"
)

const (
	warningThreshold  = 300
	criticalThreshold = 60
)

// FormatRemaining renders seconds as m:ss.
func FormatRemaining(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// UrgencyOf returns the urgency level for the given remaining seconds.
func UrgencyOf(seconds int) Urgency {
	switch {
	case seconds < criticalThreshold:
		return UrgencyCritical
	case seconds < warningThreshold:
		return UrgencyWarning
	default:
		return UrgencyNormal
	}
}
