package injury

import (
	"errors"
	"fmt"

	"github.com/claude/repcoach/internal/models"
)

var (
	// ErrInvalidSeverity is returned for a severity outside 1-3.
	ErrInvalidSeverity = errors.New("injury severity must be between 1 and 3")
	// ErrUnknownArea is returned for a body area with no rules.
	ErrUnknownArea = errors.New("unknown injury area")
)

// Validate checks every injury. Callers get an error wrapping one of the
// sentinels above rather than a silently clamped value.
func Validate(injuries []models.InjuryContext) error {
	for i, inj := range injuries {
		if inj.Severity < models.SeverityMild || inj.Severity > models.SeveritySevere {
			return fmt.Errorf("injury %d (%s): %w: got %d", i, inj.Area, ErrInvalidSeverity, inj.Severity)
		}
		if !inj.Normalized().Known() {
			return fmt.Errorf("injury %d: %w: %q", i, ErrUnknownArea, inj.Area)
		}
	}
	return nil
}

func hasSevere(injuries []models.InjuryContext) bool {
	for _, inj := range injuries {
		if inj.Severity >= models.SeveritySevere {
			return true
		}
	}
	return false
}

func maxSeverity(injuries []models.InjuryContext) models.Severity {
	var m models.Severity
	for _, inj := range injuries {
		m = max(m, inj.Severity)
	}
	return m
}
