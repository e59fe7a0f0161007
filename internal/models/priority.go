package models

import "strings"

const (
	PriorityNone   = "NONE"
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
	PriorityUrgent = "URGENT"
)

// NormalizePriority maps any input to one of the five priority
// constants. Unknown or empty values become PriorityNone.
func NormalizePriority(priority string) string {
	switch strings.ToUpper(strings.TrimSpace(priority)) {
	case PriorityLow:
		return PriorityLow
	case PriorityMedium:
		return PriorityMedium
	case PriorityHigh:
		return PriorityHigh
	case PriorityUrgent:
		return PriorityUrgent
	default:
		return PriorityNone
	}
}

// PriorityFromFreeText maps free-text priority cells from CSV imports
// by substring match, e.g. "Urgent!!" or "hi-pri" or "Med". The bare
// "hi" shorthand only counts as a prefix so words that merely contain
// it ("chill", "this week") stay unprioritized.
func PriorityFromFreeText(priority string) string {
	p := strings.ToLower(strings.TrimSpace(priority))
	switch {
	case strings.Contains(p, "urgent"):
		return PriorityUrgent
	case strings.Contains(p, "high"), strings.HasPrefix(p, "hi"):
		return PriorityHigh
	case strings.Contains(p, "medium"), strings.Contains(p, "med"):
		return PriorityMedium
	case strings.Contains(p, "low"):
		return PriorityLow
	default:
		return PriorityNone
	}
}
