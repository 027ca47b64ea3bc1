package readiness

// Tier is a discrete readiness band.
type Tier string

const (
	TierExcellent Tier = "excellent"
	TierGood      Tier = "good"
	TierModerate  Tier = "moderate"
	TierLow       Tier = "low"
	TierPoor      Tier = "poor"
)

// Interpretation pairs a tier with what to do about it.
type Interpretation struct {
	Tier           Tier   `json:"tier"`
	Recommendation string `json:"recommendation"`
}

// Interpret maps a score to a tier at 85/70/55/40.
func Interpret(score float64) Interpretation {
	switch {
	case score >= 85:
		return Interpretation{TierExcellent, "Fully recovered. A good day to push for rep or weight PRs."}
	case score >= 70:
		return Interpretation{TierGood, "Well recovered. Train as planned."}
	case score >= 55:
		return Interpretation{TierModerate, "Somewhat recovered. Keep the plan but leave an extra rep in reserve."}
	case score >= 40:
		return Interpretation{TierLow, "Under-recovered. Cut a set and lighten the load."}
	default:
		return Interpretation{TierPoor, "Poorly recovered. Keep it light and focus on technique, or rest."}
	}
}
