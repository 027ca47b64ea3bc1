package models

// VarietyLevel controls how aggressively recently used exercises rotate out.
type VarietyLevel string

const (
	VarietyLow    VarietyLevel = "low"
	VarietyMedium VarietyLevel = "medium"
	VarietyHigh   VarietyLevel = "high"
)

// DefaultMinPoolSize is the smallest untouched pool before recently used
// exercises are let back in.
const DefaultMinPoolSize = 3

// VarietyPreferences are a user's exercise rotation settings.
type VarietyPreferences struct {
	Level             VarietyLevel `json:"level"`
	PrioritizeTopTier bool         `json:"prioritize_top_tier"`
	MinPoolSize       int          `json:"min_pool_size"`
}

// DefaultVarietyPreferences is used until a user saves their own.
func DefaultVarietyPreferences() VarietyPreferences {
	return VarietyPreferences{Level: VarietyMedium, PrioritizeTopTier: true, MinPoolSize: DefaultMinPoolSize}
}
