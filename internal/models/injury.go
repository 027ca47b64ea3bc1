package models

import "strings"

// BodyArea is a normalized injury location.
type BodyArea string

const (
	AreaLowerBack BodyArea = "lower_back"
	AreaUpperBack BodyArea = "upper_back"
	AreaNeck      BodyArea = "neck"
	AreaShoulder  BodyArea = "shoulder"
	AreaElbow     BodyArea = "elbow"
	AreaWrist     BodyArea = "wrist"
	AreaHip       BodyArea = "hip"
	AreaKnee      BodyArea = "knee"
	AreaAnkle     BodyArea = "ankle"
)

// KnownAreas lists every area the classifier has rules for.
var KnownAreas = []BodyArea{
	AreaLowerBack, AreaUpperBack, AreaNeck, AreaShoulder, AreaElbow,
	AreaWrist, AreaHip, AreaKnee, AreaAnkle,
}

// NormalizeArea collapses laterality so "knee_left", "left_knee", "Right Knee"
// and "knee" all map to AreaKnee. Spaces and dashes become underscores.
func NormalizeArea(raw string) BodyArea {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	for _, side := range []string{"left", "right"} {
		s = strings.TrimSuffix(s, "_"+side)
		s = strings.TrimPrefix(s, side+"_")
	}
	return BodyArea(s)
}

// Known reports whether the area has classifier rules.
func (a BodyArea) Known() bool {
	for _, k := range KnownAreas {
		if a == k {
			return true
		}
	}
	return false
}

// Severity is the injury grade. 1 is mild, 3 is severe.
type Severity int

const (
	SeverityMild     Severity = 1
	SeverityModerate Severity = 2
	SeveritySevere   Severity = 3
)

// InjuryContext is a reported injury, supplied per request and never cached.
type InjuryContext struct {
	Area     string   `json:"area"`
	Severity Severity `json:"severity"`
}

// Normalized returns the area with laterality removed.
func (i InjuryContext) Normalized() BodyArea {
	return NormalizeArea(i.Area)
}
