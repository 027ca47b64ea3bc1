package injury

import (
	"strings"

	"github.com/claude/repcoach/internal/models"
)

// Level is the risk of an exercise for one injured area.
type Level string

const (
	Safe    Level = "safe"
	Caution Level = "caution"
	Avoid   Level = "avoid"
)

func (l Level) rank() int {
	switch l {
	case Avoid:
		return 2
	case Caution:
		return 1
	default:
		return 0
	}
}

// worse returns the riskier of two levels.
func worse(a, b Level) Level {
	if b.rank() > a.rank() {
		return b
	}
	return a
}

// areaRules classifies exercises for one area. Name substrings are checked
// avoid first, then safe; infer handles everything else. reason explains why
// a non-avoid exercise suits the area.
type areaRules struct {
	avoid  []string
	safe   []string
	infer  func(models.ExerciseMetadata) Level
	reason func(models.ExerciseMetadata) string
}

var rules = map[models.BodyArea]areaRules{
	models.AreaLowerBack: {
		avoid: []string{
			"deadlift", "good morning", "barbell row", "bent over row", "bent-over row",
			"back squat", "t-bar row", "clean", "snatch", "sit-up", "sit up",
		},
		safe: []string{
			"lat pulldown", "machine row", "cable row", "chest supported", "chest-supported",
			"leg extension", "leg curl", "pec deck", "chest press",
		},
		infer: func(e models.ExerciseMetadata) Level {
			switch {
			case e.Pattern == models.PatternHinge:
				return Avoid
			case e.Pattern == models.PatternSquat && e.Equipment == models.EquipmentBarbell:
				return Avoid
			case e.Equipment.Supported():
				return Safe
			case e.Pattern == models.PatternSquat, e.Pattern == models.PatternCarry,
				e.Pattern == models.PatternJump, e.Pattern == models.PatternHorizontalPull:
				return Caution
			case e.Pattern == models.PatternVerticalPush && e.Equipment == models.EquipmentBarbell:
				return Caution
			case e.PrimaryMuscle == models.MuscleLowerBack:
				return Avoid
			}
			return Safe
		},
		reason: func(e models.ExerciseMetadata) string {
			switch {
			case e.Equipment.Supported():
				return "machine/cable provides back support"
			case e.Pattern == models.PatternVerticalPull:
				return "vertical pulling keeps the spine unloaded"
			}
			return "no axial load on the lower back"
		},
	},
	models.AreaUpperBack: {
		avoid: []string{"bent over row", "bent-over row", "barbell row", "t-bar row", "pendlay", "upright row", "good morning"},
		safe:  []string{"leg extension", "leg curl", "leg press", "calf raise", "chest supported", "chest-supported"},
		infer: func(e models.ExerciseMetadata) Level {
			switch {
			case (e.Pattern.IsPull() || e.Pattern == models.PatternHinge) && !e.Equipment.Supported():
				return Caution
			case e.PrimaryMuscle == models.MuscleTraps:
				return Caution
			}
			return Safe
		},
		reason: func(e models.ExerciseMetadata) string {
			if e.Equipment.Supported() {
				return "supported position spares the upper back"
			}
			return "little upper-back loading"
		},
	},
	models.AreaNeck: {
		avoid: []string{"shrug", "behind the neck", "behind-the-neck", "upright row", "neck", "headstand"},
		safe:  []string{"leg extension", "leg curl", "leg press", "machine", "cable"},
		infer: func(e models.ExerciseMetadata) Level {
			switch {
			case e.PrimaryMuscle == models.MuscleTraps:
				return Avoid
			case e.Pattern == models.PatternVerticalPush, e.Pattern == models.PatternCarry:
				return Caution
			case e.Pattern == models.PatternSquat && e.Equipment == models.EquipmentBarbell:
				return Caution
			}
			return Safe
		},
		reason: func(e models.ExerciseMetadata) string {
			if e.Equipment.Supported() {
				return "supported position keeps load off the neck"
			}
			return "no load across the neck or traps"
		},
	},
	models.AreaShoulder: {
		avoid: []string{
			"overhead press", "military press", "behind the neck", "behind-the-neck", "upright row",
			"push press", "arnold press", "dip", "snatch", "jerk",
		},
		safe: []string{"row", "pulldown", "face pull", "leg ", "curl", "calf", "hip thrust"},
		infer: func(e models.ExerciseMetadata) Level {
			switch {
			case e.Pattern == models.PatternVerticalPush:
				return Avoid
			case e.Pattern.IsPull():
				return Safe
			case e.Pattern == models.PatternHorizontalPush:
				return Caution
			case e.PrimaryMuscle == models.MuscleShoulders, e.PrimaryMuscle == models.MuscleChest:
				return Caution
			}
			return Safe
		},
		reason: func(e models.ExerciseMetadata) string {
			if e.Pattern.IsPull() {
				return "pulling is shoulder-friendly"
			}
			return "no overhead pressing"
		},
	},
	models.AreaElbow: {
		avoid: []string{"skull crusher", "skullcrusher", "lying triceps extension", "french press", "dip", "close grip", "close-grip"},
		safe:  []string{"leg ", "squat", "lunge", "calf", "hip thrust", "glute"},
		infer: func(e models.ExerciseMetadata) Level {
			switch e.PrimaryMuscle {
			case models.MuscleBiceps, models.MuscleTriceps, models.MuscleForearms:
				return Caution
			}
			if (e.Pattern.IsPush() || e.Pattern.IsPull()) && e.Mechanic == models.MechanicCompound {
				return Caution
			}
			return Safe
		},
		reason: func(models.ExerciseMetadata) string { return "little elbow flexion or extension under load" },
	},
	models.AreaWrist: {
		avoid: []string{"front squat", "clean", "snatch", "push-up", "push up", "pushup", "wrist curl", "handstand"},
		safe:  []string{"leg extension", "leg curl", "leg press", "calf raise", "hip thrust", "machine"},
		infer: func(e models.ExerciseMetadata) Level {
			switch {
			case e.PrimaryMuscle == models.MuscleForearms:
				return Avoid
			case e.Equipment.Supported():
				return Safe
			case e.Pattern.IsPush() || e.Pattern.IsPull() || e.Pattern == models.PatternCarry:
				return Caution
			}
			return Safe
		},
		reason: func(e models.ExerciseMetadata) string {
			if e.Equipment.Supported() {
				return "machine handles keep the wrist neutral"
			}
			return "no loaded grip or wrist extension"
		},
	},
	models.AreaHip: {
		avoid: []string{"sumo", "pistol", "cossack", "deep squat", "lateral lunge", "side lunge", "hip adduct"},
		safe: []string{
			"bench press", "chest press", "pulldown", "pull-up", "pull up", "curl", "triceps",
			"lateral raise", "fly", "cable row", "machine row", "chest supported",
		},
		infer: func(e models.ExerciseMetadata) Level {
			switch e.Pattern {
			case models.PatternSquat, models.PatternLunge, models.PatternHinge, models.PatternJump:
				return Caution
			}
			if e.PrimaryMuscle == models.MuscleGlutes {
				return Caution
			}
			return Safe
		},
		reason: func(e models.ExerciseMetadata) string {
			if models.IsUpperBodyMuscle(e.PrimaryMuscle) {
				return "upper-body work leaves the hip unloaded"
			}
			return "limited hip flexion under load"
		},
	},
	models.AreaKnee: {
		avoid: []string{"squat", "lunge", "jump", "step-up", "step up", "pistol", "leg extension"},
		safe: []string{
			"romanian deadlift", "leg curl", "hip thrust", "glute bridge", "good morning",
			"stiff leg", "stiff-leg", "back extension", "hyperextension",
		},
		infer: func(e models.ExerciseMetadata) Level {
			switch {
			case e.Pattern == models.PatternSquat, e.Pattern == models.PatternLunge, e.Pattern == models.PatternJump:
				return Avoid
			case e.Pattern == models.PatternHinge:
				return Safe
			case e.PrimaryMuscle == models.MuscleQuads:
				return Caution
			}
			return Safe
		},
		reason: func(e models.ExerciseMetadata) string {
			if e.Pattern == models.PatternHinge {
				return "hip hinge keeps the knee angle fixed"
			}
			return "no loaded knee flexion"
		},
	},
	models.AreaAnkle: {
		avoid: []string{"jump", "calf raise", "sprint", "running", "lunge", "step-up", "step up", "skipping"},
		safe:  []string{"seated", "lying", "bench press", "pulldown", "leg curl", "leg extension", "machine"},
		infer: func(e models.ExerciseMetadata) Level {
			switch {
			case e.Pattern == models.PatternJump, e.Pattern == models.PatternLunge:
				return Avoid
			case e.PrimaryMuscle == models.MuscleCalves:
				return Avoid
			case e.Pattern == models.PatternSquat, e.Pattern == models.PatternCarry, e.Pattern == models.PatternHinge:
				return Caution
			}
			return Safe
		},
		reason: func(models.ExerciseMetadata) string { return "no standing load through the ankle" },
	},
}

// Risk classifies an exercise for one injured area. Laterality is ignored;
// unknown areas are treated as safe (Validate rejects them up front).
func Risk(ex models.ExerciseMetadata, area string) Level {
	r, ok := rules[models.NormalizeArea(area)]
	if !ok {
		return Safe
	}
	name := strings.ToLower(ex.Name)
	for _, s := range r.avoid {
		if strings.Contains(name, s) {
			return Avoid
		}
	}
	for _, s := range r.safe {
		if strings.Contains(name, s) {
			return Safe
		}
	}
	return r.infer(ex)
}

// Assess returns the worst level across all injuries.
func Assess(ex models.ExerciseMetadata, injuries []models.InjuryContext) Level {
	lvl := Safe
	for _, inj := range injuries {
		lvl = worse(lvl, Risk(ex, inj.Area))
	}
	return lvl
}

func reasonFor(ex models.ExerciseMetadata, area models.BodyArea) string {
	r, ok := rules[area]
	if !ok || r.reason == nil {
		return ""
	}
	return r.reason(ex)
}
