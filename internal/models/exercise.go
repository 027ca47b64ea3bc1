package models

import "strings"

// Mechanic distinguishes multi-joint from single-joint movements.
type Mechanic string

const (
	MechanicCompound  Mechanic = "compound"
	MechanicIsolation Mechanic = "isolation"
)

// MovementPattern is the coarse movement family of an exercise.
type MovementPattern string

const (
	PatternHorizontalPush MovementPattern = "horizontal_push"
	PatternVerticalPush   MovementPattern = "vertical_push"
	PatternHorizontalPull MovementPattern = "horizontal_pull"
	PatternVerticalPull   MovementPattern = "vertical_pull"
	PatternSquat          MovementPattern = "squat"
	PatternHinge          MovementPattern = "hinge"
	PatternLunge          MovementPattern = "lunge"
	PatternJump           MovementPattern = "jump"
	PatternCarry          MovementPattern = "carry"
	PatternCore           MovementPattern = "core"
	PatternIsolation      MovementPattern = "isolation"
)

// IsPull reports whether the pattern is a pulling movement.
func (p MovementPattern) IsPull() bool {
	return p == PatternHorizontalPull || p == PatternVerticalPull
}

// IsPush reports whether the pattern is a pressing movement.
func (p MovementPattern) IsPush() bool {
	return p == PatternHorizontalPush || p == PatternVerticalPush
}

// Equipment is the primary equipment an exercise needs.
type Equipment string

const (
	EquipmentBarbell    Equipment = "barbell"
	EquipmentDumbbell   Equipment = "dumbbell"
	EquipmentKettlebell Equipment = "kettlebell"
	EquipmentMachine    Equipment = "machine"
	EquipmentSmith      Equipment = "smith_machine"
	EquipmentCable      Equipment = "cable"
	EquipmentBodyweight Equipment = "bodyweight"
	EquipmentBand       Equipment = "band"
)

// Supported reports whether the equipment braces the trunk (machines and
// cables with a pad or seat).
func (e Equipment) Supported() bool {
	return e == EquipmentMachine || e == EquipmentCable || e == EquipmentSmith
}

// Muscle groups used by the catalog.
const (
	MuscleChest      = "chest"
	MuscleBack       = "back"
	MuscleShoulders  = "shoulders"
	MuscleBiceps     = "biceps"
	MuscleTriceps    = "triceps"
	MuscleForearms   = "forearms"
	MuscleQuads      = "quads"
	MuscleHamstrings = "hamstrings"
	MuscleGlutes     = "glutes"
	MuscleCalves     = "calves"
	MuscleCore       = "core"
	MuscleLowerBack  = "lower_back"
	MuscleTraps      = "traps"
)

var upperBodyMuscles = map[string]bool{
	MuscleChest: true, MuscleBack: true, MuscleShoulders: true, MuscleBiceps: true,
	MuscleTriceps: true, MuscleForearms: true, MuscleTraps: true,
}

// IsUpperBodyMuscle reports whether a muscle group belongs to the upper body.
func IsUpperBodyMuscle(muscle string) bool {
	return upperBodyMuscles[strings.ToLower(muscle)]
}

// Tier is the hypertrophy effectiveness ranking of an exercise.
type Tier string

const (
	TierS Tier = "S"
	TierA Tier = "A"
	TierB Tier = "B"
	TierC Tier = "C"
	TierD Tier = "D"
)

// Rank returns 0 for S and increases toward D. Unknown tiers rank after D.
func (t Tier) Rank() int {
	switch strings.ToUpper(string(t)) {
	case "S":
		return 0
	case "A":
		return 1
	case "B":
		return 2
	case "C":
		return 3
	case "D":
		return 4
	default:
		return 5
	}
}

// IsTop reports whether the tier is S or A.
func (t Tier) IsTop() bool {
	return t.Rank() <= 1
}

// RepRange is an inclusive [Min, Max] rep target.
type RepRange struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// Mid returns the midpoint of the range.
func (r RepRange) Mid() float64 {
	return float64(r.Min+r.Max) / 2
}

// Valid reports whether the range is usable.
func (r RepRange) Valid() bool {
	return r.Min > 0 && r.Max >= r.Min
}

// ExerciseMetadata is read-only catalog data for one exercise.
type ExerciseMetadata struct {
	ID               string          `json:"id" yaml:"id"`
	Name             string          `json:"name" yaml:"name"`
	PrimaryMuscle    string          `json:"primary_muscle" yaml:"primary_muscle"`
	SecondaryMuscles []string        `json:"secondary_muscles,omitempty" yaml:"secondary_muscles,omitempty"`
	Mechanic         Mechanic        `json:"mechanic" yaml:"mechanic"`
	Pattern          MovementPattern `json:"pattern" yaml:"pattern"`
	Equipment        Equipment       `json:"equipment" yaml:"equipment"`
	RepRange         RepRange        `json:"rep_range" yaml:"rep_range"`
	Tier             Tier            `json:"tier" yaml:"tier"`
	Unilateral       bool            `json:"unilateral,omitempty" yaml:"unilateral,omitempty"`
}

// Key returns the identity used for de-duplication: the ID when present,
// otherwise the lowercased name.
func (e ExerciseMetadata) Key() string {
	if e.ID != "" {
		return e.ID
	}
	return strings.ToLower(strings.TrimSpace(e.Name))
}

var unilateralMarkers = []string{
	"single-arm", "single arm", "one-arm", "one arm", "single-leg", "single leg",
	"unilateral", "split squat", "lunge", "step-up", "step up", "pistol", "bulgarian",
}

// IsUnilateral reports whether the exercise loads one limb at a time, either
// by catalog flag or by a name marker.
func (e ExerciseMetadata) IsUnilateral() bool {
	if e.Unilateral {
		return true
	}
	name := strings.ToLower(e.Name)
	for _, m := range unilateralMarkers {
		if strings.Contains(name, m) {
			return true
		}
	}
	return false
}

// ParseEquipment maps a free-text equipment label ("Dumbbells", "Smith
// machine") to an Equipment. Unknown labels return "".
func ParseEquipment(label string) Equipment {
	s := strings.ToLower(strings.TrimSpace(label))
	switch {
	case s == "":
		return ""
	case strings.Contains(s, "smith"):
		return EquipmentSmith
	case strings.Contains(s, "barbell"), strings.Contains(s, "ez bar"), strings.Contains(s, "trap bar"):
		return EquipmentBarbell
	case strings.Contains(s, "dumbbell"):
		return EquipmentDumbbell
	case strings.Contains(s, "kettlebell"):
		return EquipmentKettlebell
	case strings.Contains(s, "cable"):
		return EquipmentCable
	case strings.Contains(s, "machine"):
		return EquipmentMachine
	case strings.Contains(s, "band"):
		return EquipmentBand
	case strings.Contains(s, "bodyweight"), strings.Contains(s, "body weight"):
		return EquipmentBodyweight
	}
	return ""
}
