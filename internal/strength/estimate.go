package strength

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/claude/repcoach/internal/models"
)

// Source names which tier of evidence produced a recommendation.
type Source string

const (
	SourceKnownMax   Source = "known_max"
	SourceHistory    Source = "history"
	SourceRelated    Source = "related_exercise"
	SourceStandards  Source = "population_standards"
	SourceFindWeight Source = "find_weight"
)

// Policy holds the recency thresholds used to grade evidence.
type Policy struct {
	KnownMaxStaleAfter   time.Duration
	HistoryWindow        time.Duration
	HighConfidenceAge    time.Duration
	MediumConfidenceAge  time.Duration
	ConsistencyTolerance float64
}

// DefaultPolicy returns the standard recency thresholds.
func DefaultPolicy() Policy {
	day := 24 * time.Hour
	return Policy{
		KnownMaxStaleAfter:   28 * day,
		HistoryWindow:        90 * day,
		HighConfidenceAge:    21 * day,
		MediumConfidenceAge:  56 * day,
		ConsistencyTolerance: 0.10,
	}
}

// Request asks for a working weight.
type Request struct {
	Exercise       string                   `json:"exercise"`
	Metadata       *models.ExerciseMetadata `json:"metadata,omitempty"`
	RepRange       models.RepRange          `json:"rep_range"`
	TargetRIR      int                      `json:"target_rir"`
	Sets           int                      `json:"sets,omitempty"`
	MinIncrementKg float64                  `json:"min_increment_kg,omitempty"`
	IncludeWarmUp  bool                     `json:"include_warm_up,omitempty"`
}

// FindWeightProtocol replaces a numeric recommendation when there is no
// evidence at all.
type FindWeightProtocol struct {
	StartWeightKg float64  `json:"start_weight_kg"`
	IncrementKg   float64  `json:"increment_kg"`
	TargetReps    int      `json:"target_reps"`
	TargetRIR     int      `json:"target_rir"`
	Instructions  []string `json:"instructions"`
}

// Recommendation is the working-weight answer for one exercise.
type Recommendation struct {
	Exercise     string            `json:"exercise"`
	WeightKg     float64           `json:"weight_kg"`
	LowKg        float64           `json:"low_kg"`
	HighKg       float64           `json:"high_kg"`
	Confidence   models.Confidence `json:"confidence"`
	Source       Source            `json:"source"`
	EstimatedMax float64           `json:"estimated_max_kg,omitempty"`
	// EvidenceDate is when the underlying max was set or the session logged.
	EvidenceDate *time.Time          `json:"evidence_date,omitempty"`
	Rationale    string              `json:"rationale"`
	WarmUp       []WarmUpSet         `json:"warm_up,omitempty"`
	SetTargets   []SetTarget         `json:"set_targets,omitempty"`
	FindWeight   *FindWeightProtocol `json:"find_weight,omitempty"`
	Asymmetry    *Asymmetry          `json:"asymmetry,omitempty"`
}

// HasWeight reports whether the recommendation carries a numeric load.
func (r Recommendation) HasWeight() bool { return r.FindWeight == nil && r.WeightKg > 0 }

var defaultRepRange = models.RepRange{Min: 8, Max: 12}

// Estimator grades evidence with a Policy. The zero value uses DefaultPolicy.
type Estimator struct {
	Policy Policy
}

// Recommend is Estimator{}.Recommend.
func Recommend(req Request, profile models.StrengthProfile, now time.Time) Recommendation {
	return Estimator{}.Recommend(req, profile, now)
}

// evidence is an E1RM with the confidence and explanation that back it.
type evidence struct {
	e1rm       float64
	confidence models.Confidence
	source     Source
	rationale  string
	date       time.Time
}

// Recommend picks the strongest available evidence: a fresh high-confidence
// known max, then recent direct history, then a related lift, then population
// standards. With none it returns a find-working-weight protocol.
func (e Estimator) Recommend(req Request, profile models.StrengthProfile, now time.Time) Recommendation {
	pol := e.policy()
	rr := req.RepRange
	if !rr.Valid() {
		rr = defaultRepRange
		if req.Metadata != nil && req.Metadata.RepRange.Valid() {
			rr = req.Metadata.RepRange
		}
	}
	rir := max(0, min(5, req.TargetRIR))
	inc := req.MinIncrementKg
	if inc <= 0 {
		inc = models.DefaultMinIncrementKg
	}
	canonical := CanonicalName(req.Exercise)
	meta := metadataFor(req)

	ev, ok := pol.evidenceFor(canonical, req.Exercise, req.Metadata, profile, now)
	if !ok {
		return findWeight(req.Exercise, meta, rr, rir)
	}

	rec := Recommendation{
		Exercise:     req.Exercise,
		Confidence:   ev.confidence,
		Source:       ev.source,
		EstimatedMax: round2(ev.e1rm),
		Rationale:    ev.rationale,
	}
	if !ev.date.IsZero() {
		d := ev.date
		rec.EvidenceDate = &d
	}
	raw := WeightForReps(ev.e1rm, rr.Min, rir)
	if ev.confidence == models.ConfidenceLow {
		rec.WeightKg = models.FloorToIncrement(raw, inc)
	} else {
		rec.WeightKg = models.RoundToIncrement(raw, inc)
	}
	rec.LowKg = models.FloorToIncrement(WeightForReps(ev.e1rm, rr.Max, rir), inc)
	rec.HighKg = models.RoundToIncrement(WeightForReps(ev.e1rm, rr.Min, max(0, rir-1)), inc)
	if rec.LowKg > rec.WeightKg {
		rec.LowKg = rec.WeightKg
	}
	if rec.HighKg < rec.WeightKg {
		rec.HighKg = rec.WeightKg
	}
	if rec.WeightKg <= 0 {
		return findWeight(req.Exercise, meta, rr, rir)
	}
	rec.Rationale += fmt.Sprintf("; %.1f kg targets %d reps at %d RIR", rec.WeightKg, rr.Min, rir)

	if req.IncludeWarmUp {
		rec.WarmUp = WarmUpLadder(rec.WeightKg, meta.Mechanic, inc)
	}
	if req.Sets > 0 {
		// Sets and rep range are already validated above.
		rec.SetTargets, _ = SetTargets(req.Sets, rr, rir, CategoryFor(meta))
	}
	if adj := AsymmetryAdjustment(meta, profile.Regional, rec.WeightKg, inc); !adj.IsZero() {
		rec.Asymmetry = &adj
	}
	return rec
}

func (e Estimator) policy() Policy {
	if e.Policy == (Policy{}) {
		return DefaultPolicy()
	}
	return e.Policy
}

func (p Policy) evidenceFor(canonical, display string, meta *models.ExerciseMetadata, profile models.StrengthProfile, now time.Time) (evidence, bool) {
	km, hasKnown := knownMax(canonical, profile.KnownMaxes)
	if hasKnown && km.Confidence == models.ConfidenceHigh && now.Sub(km.UpdatedAt) <= p.KnownMaxStaleAfter {
		return evidence{
			e1rm:       km.OneRepMax,
			confidence: models.ConfidenceHigh,
			source:     SourceKnownMax,
			rationale:  fmt.Sprintf("Based on your tested max of %.1f kg from %s", km.OneRepMax, km.UpdatedAt.Format("Jan 2")),
			date:       km.UpdatedAt,
		}, true
	}

	if ev, ok := p.fromHistory(canonical, profile.History, now); ok {
		return ev, true
	}

	if hasKnown && km.OneRepMax > 0 {
		conf := km.Confidence
		if now.Sub(km.UpdatedAt) > p.KnownMaxStaleAfter || conf.Rank() == 0 {
			conf = conf.Lower()
		}
		return evidence{
			e1rm:       km.OneRepMax,
			confidence: conf,
			source:     SourceKnownMax,
			rationale:  fmt.Sprintf("Based on a stored max of %.1f kg from %s", km.OneRepMax, km.UpdatedAt.Format("Jan 2 2006")),
			date:       km.UpdatedAt,
		}, true
	}

	if parent, ratio, ok := relatedParent(canonical, meta); ok {
		if pev, ok := p.parentEvidence(parent, profile, now); ok {
			conf := pev.confidence.Lower()
			if conf.Rank() > models.ConfidenceMedium.Rank() {
				conf = models.ConfidenceMedium
			}
			return evidence{
				e1rm:       pev.e1rm * ratio,
				confidence: conf,
				source:     SourceRelated,
				rationale: fmt.Sprintf("Estimated from your %s (%s is about %.0f%% of it)",
					parent, display, ratio*100),
				date: pev.date,
			}, true
		}
	}

	if orm, ok := standardOneRepMax(canonical, profile.Composition, profile.Experience); ok {
		return evidence{
			e1rm:       orm,
			confidence: models.ConfidenceLow,
			source:     SourceStandards,
			rationale: fmt.Sprintf("No history yet; estimated from typical strength for %.0f kg lean mass at %s level",
				leanMass(profile.Composition), experienceLabel(profile.Experience)),
		}, true
	}
	return evidence{}, false
}

func (p Policy) parentEvidence(parent string, profile models.StrengthProfile, now time.Time) (evidence, bool) {
	if km, ok := knownMax(parent, profile.KnownMaxes); ok && km.OneRepMax > 0 && now.Sub(km.UpdatedAt) <= p.KnownMaxStaleAfter {
		return evidence{e1rm: km.OneRepMax, confidence: km.Confidence, date: km.UpdatedAt}, true
	}
	return p.fromHistory(parent, profile.History, now)
}

type sessionMax struct {
	date time.Time
	e1rm float64
	best models.SetEntry
}

// fromHistory uses the most recent session inside the window. Confidence is
// high only when that session is recent and another session agrees with it.
func (p Policy) fromHistory(canonical string, history []models.ExerciseHistoryEntry, now time.Time) (evidence, bool) {
	var sessions []sessionMax
	for _, h := range history {
		if CanonicalName(h.ExerciseName) != canonical {
			continue
		}
		age := now.Sub(h.Date)
		if age > p.HistoryWindow || age < -24*time.Hour {
			continue
		}
		var sm sessionMax
		for _, s := range h.CompletedSets() {
			if v := Estimate1RM(s.WeightKg, s.Reps, s.RPE); v > sm.e1rm {
				sm = sessionMax{date: h.Date, e1rm: v, best: s}
			}
		}
		if sm.e1rm > 0 {
			sessions = append(sessions, sm)
		}
	}
	if len(sessions) == 0 {
		return evidence{}, false
	}
	sort.SliceStable(sessions, func(i, j int) bool { return sessions[i].date.After(sessions[j].date) })
	latest := sessions[0]
	age := now.Sub(latest.date)

	conf := models.ConfidenceLow
	label := "older history"
	switch {
	case age <= p.HighConfidenceAge:
		conf = models.ConfidenceMedium
		label = "recent history"
		for _, s := range sessions[1:] {
			if math.Abs(s.e1rm-latest.e1rm)/latest.e1rm <= p.ConsistencyTolerance {
				conf = models.ConfidenceHigh
				break
			}
		}
	case age <= p.MediumConfidenceAge:
		conf = models.ConfidenceMedium
		label = "history from a few weeks ago"
	}

	return evidence{
		e1rm:       latest.e1rm,
		confidence: conf,
		source:     SourceHistory,
		date:       latest.date,
		rationale: fmt.Sprintf("Based on your %s: %.1f kg x %d on %s (est. 1RM %.1f kg, %d session(s) in the last %d days)",
			label, latest.best.WeightKg, latest.best.Reps, latest.date.Format("Jan 2"), latest.e1rm,
			len(sessions), int(p.HistoryWindow.Hours()/24)),
	}, true
}

func knownMax(canonical string, maxes []models.EstimatedMax) (models.EstimatedMax, bool) {
	var found models.EstimatedMax
	ok := false
	for _, m := range maxes {
		if CanonicalName(m.ExerciseName) != canonical || m.OneRepMax <= 0 {
			continue
		}
		if !ok || m.UpdatedAt.After(found.UpdatedAt) {
			found, ok = m, true
		}
	}
	return found, ok
}

// metadataFor fills in a mechanic when the caller sent no catalog record.
func metadataFor(req Request) models.ExerciseMetadata {
	if req.Metadata != nil {
		m := *req.Metadata
		if m.Name == "" {
			m.Name = req.Exercise
		}
		return m
	}
	m := models.ExerciseMetadata{Name: req.Exercise, Mechanic: models.MechanicIsolation}
	if isKnownCompound(CanonicalName(req.Exercise)) {
		m.Mechanic = models.MechanicCompound
	}
	return m
}

func findWeight(name string, meta models.ExerciseMetadata, rr models.RepRange, rir int) Recommendation {
	start, inc := startingLoad(meta)
	p := &FindWeightProtocol{
		StartWeightKg: start,
		IncrementKg:   inc,
		TargetReps:    rr.Min,
		TargetRIR:     rir,
		Instructions: []string{
			fmt.Sprintf("Do %d reps with %.1f kg and note how many more you could have done.", rr.Min, start),
			fmt.Sprintf("If you had more than %d reps left, rest 1-2 minutes, add %.1f kg and repeat.", rir+1, inc),
			fmt.Sprintf("Stop when %d reps leaves about %d in reserve; use that weight for your working sets.", rr.Min, rir),
			"Log every set so the next session can recommend a weight.",
		},
	}
	return Recommendation{
		Exercise:   name,
		Confidence: models.ConfidenceLow,
		Source:     SourceFindWeight,
		Rationale:  fmt.Sprintf("No history or reference data for %s; find your working weight with the protocol", name),
		FindWeight: p,
	}
}

// startingLoad picks a conservative first set and step by equipment.
func startingLoad(meta models.ExerciseMetadata) (start, inc float64) {
	iso := meta.Mechanic == models.MechanicIsolation
	switch meta.Equipment {
	case models.EquipmentBarbell:
		if iso {
			return 10, 2.5
		}
		return 20, 5
	case models.EquipmentDumbbell:
		if iso {
			return 4, 1
		}
		return 8, 2
	case models.EquipmentKettlebell:
		return 8, 4
	case models.EquipmentMachine, models.EquipmentCable, models.EquipmentSmith:
		if iso {
			return 5, 2.5
		}
		return 10, 5
	case models.EquipmentBodyweight, models.EquipmentBand:
		return 0, 2.5
	}
	if iso {
		return 5, 1.25
	}
	return 20, 5
}

func leanMass(c models.BodyComposition) float64 {
	if c.LeanMassKg > 0 {
		return c.LeanMassKg
	}
	return c.MassKg * 0.8
}

func experienceLabel(e models.Experience) string {
	if e == "" {
		return string(models.ExperienceBeginner)
	}
	return string(e)
}
