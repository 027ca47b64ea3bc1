package readiness

import (
	"fmt"
	"time"
)

// Urgency ranks how soon a deload should happen.
type Urgency string

const (
	UrgencyNone   Urgency = "none"
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// TriggerKind names a deload trigger.
type TriggerKind string

const (
	TriggerFatigue       TriggerKind = "fatigue"
	TriggerMissedTargets TriggerKind = "missed_targets"
	TriggerScheduled     TriggerKind = "scheduled"
	TriggerRPECreep      TriggerKind = "rpe_creep"
)

// DeloadPolicy holds the trigger thresholds.
type DeloadPolicy struct {
	FatigueThreshold    float64 `yaml:"fatigue_threshold" json:"fatigue_threshold"`
	CompletionThreshold float64 `yaml:"completion_threshold" json:"completion_threshold"`
	MissedSessions      int     `yaml:"missed_sessions" json:"missed_sessions"`
	RPECreepWindow      int     `yaml:"rpe_creep_window" json:"rpe_creep_window"`
	RPECreepMinIncrease float64 `yaml:"rpe_creep_min_increase" json:"rpe_creep_min_increase"`
}

// DefaultDeloadPolicy: fatigue 75, completion 80% over 2 sessions, RPE creep
// of at least 1 point across 4 sessions.
func DefaultDeloadPolicy() DeloadPolicy {
	return DeloadPolicy{
		FatigueThreshold:    75,
		CompletionThreshold: 80,
		MissedSessions:      2,
		RPECreepWindow:      4,
		RPECreepMinIncrease: 1.0,
	}
}

func (p DeloadPolicy) orDefault() DeloadPolicy {
	d := DefaultDeloadPolicy()
	if p.FatigueThreshold <= 0 {
		p.FatigueThreshold = d.FatigueThreshold
	}
	if p.CompletionThreshold <= 0 {
		p.CompletionThreshold = d.CompletionThreshold
	}
	if p.MissedSessions <= 0 {
		p.MissedSessions = d.MissedSessions
	}
	if p.RPECreepWindow < 2 {
		p.RPECreepWindow = d.RPECreepWindow
	}
	if p.RPECreepMinIncrease <= 0 {
		p.RPECreepMinIncrease = d.RPECreepMinIncrease
	}
	return p
}

// SessionSummary is one past session as seen by the deload check.
type SessionSummary struct {
	Date          time.Time `json:"date"`
	CompletionPct float64   `json:"completion_pct"`
	AvgRPE        float64   `json:"avg_rpe"`
}

// DeloadInput is the state of the current mesocycle. Sessions are ordered
// oldest first. DeloadWeek 0 means no scheduled deload.
type DeloadInput struct {
	CurrentWeek int              `json:"current_week"`
	DeloadWeek  int              `json:"deload_week"`
	Fatigue     float64          `json:"fatigue"`
	Sessions    []SessionSummary `json:"sessions"`
}

// Trigger is one reason a deload fired.
type Trigger struct {
	Kind    TriggerKind `json:"kind"`
	Reason  string      `json:"reason"`
	Urgency Urgency     `json:"urgency"`
}

// DeloadDecision is the verdict. Reason and Urgency come from the highest
// precedence trigger; Triggers lists all that fired.
type DeloadDecision struct {
	ShouldDeload bool      `json:"should_deload"`
	Reason       string    `json:"reason"`
	Urgency      Urgency   `json:"urgency"`
	Triggers     []Trigger `json:"triggers,omitempty"`
}

// ShouldTriggerDeload checks, in precedence order, the scheduled deload week,
// accumulated fatigue, consecutive missed targets and RPE creep. The first
// trigger that fires supplies the reason.
func ShouldTriggerDeload(in DeloadInput, p DeloadPolicy) DeloadDecision {
	p = p.orDefault()
	var triggers []Trigger

	if in.DeloadWeek > 0 && in.CurrentWeek >= in.DeloadWeek {
		triggers = append(triggers, Trigger{
			Kind:    TriggerScheduled,
			Reason:  fmt.Sprintf("week %d is the scheduled deload week", in.CurrentWeek),
			Urgency: UrgencyMedium,
		})
	}
	if in.Fatigue >= p.FatigueThreshold {
		triggers = append(triggers, Trigger{
			Kind:    TriggerFatigue,
			Reason:  fmt.Sprintf("accumulated fatigue is %.0f, at or above the %.0f threshold", in.Fatigue, p.FatigueThreshold),
			Urgency: UrgencyHigh,
		})
	}
	if n := trailingMisses(in.Sessions, p.CompletionThreshold); n >= p.MissedSessions {
		triggers = append(triggers, Trigger{
			Kind:    TriggerMissedTargets,
			Reason:  fmt.Sprintf("missed targets in %d consecutive sessions (under %.0f%% completion)", n, p.CompletionThreshold),
			Urgency: UrgencyMedium,
		})
	}
	if rise, ok := rpeCreep(in.Sessions, p.RPECreepWindow, p.RPECreepMinIncrease); ok {
		triggers = append(triggers, Trigger{
			Kind:    TriggerRPECreep,
			Reason:  fmt.Sprintf("session RPE rose %.1f points over the last %d sessions", rise, p.RPECreepWindow),
			Urgency: UrgencyLow,
		})
	}

	if len(triggers) == 0 {
		return DeloadDecision{Reason: "no deload trigger fired", Urgency: UrgencyNone}
	}
	return DeloadDecision{
		ShouldDeload: true,
		Reason:       triggers[0].Reason,
		Urgency:      triggers[0].Urgency,
		Triggers:     triggers,
	}
}

// trailingMisses counts the most recent sessions in a row below threshold.
func trailingMisses(sessions []SessionSummary, threshold float64) int {
	n := 0
	for i := len(sessions) - 1; i >= 0; i-- {
		if sessions[i].CompletionPct >= threshold {
			break
		}
		n++
	}
	return n
}

// rpeCreep reports a non-decreasing RPE run across the last window sessions
// that rose by at least minRise overall. Sessions without RPE are skipped.
func rpeCreep(sessions []SessionSummary, window int, minRise float64) (float64, bool) {
	var rpes []float64
	for _, s := range sessions {
		if s.AvgRPE > 0 {
			rpes = append(rpes, s.AvgRPE)
		}
	}
	if len(rpes) < window {
		return 0, false
	}
	rpes = rpes[len(rpes)-window:]
	for i := 1; i < len(rpes); i++ {
		if rpes[i] < rpes[i-1] {
			return 0, false
		}
	}
	rise := rpes[len(rpes)-1] - rpes[0]
	return rise, rise >= minRise
}
