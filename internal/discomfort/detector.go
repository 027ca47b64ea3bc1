package discomfort

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/claude/repcoach/internal/models"
	"github.com/google/uuid"
)

// DefaultWindow is the trailing window patterns are detected over.
const DefaultWindow = 14 * 24 * time.Hour

// PromptThreshold is the occurrence count that suggests a tracked injury.
const PromptThreshold = 3

// Pattern is the discomfort history for one body part inside the window.
type Pattern struct {
	BodyPart       string                 `json:"body_part"`
	Occurrences    int                    `json:"occurrences"`
	MaxLevel       models.DiscomfortLevel `json:"max_level"`
	FirstSeen      time.Time              `json:"first_seen"`
	LastSeen       time.Time              `json:"last_seen"`
	Exercises      []string               `json:"exercises,omitempty"`
	SuggestsInjury bool                   `json:"suggests_injury"`
}

// DetectPatterns groups events by body part over the trailing window ending
// at now. A pattern suggests an injury at three or more occurrences or when
// any occurrence was pain. Patterns are sorted by occurrences, then name.
func DetectPatterns(events []models.DiscomfortEvent, now time.Time, window time.Duration) []Pattern {
	if window <= 0 {
		window = DefaultWindow
	}
	since := now.Add(-window)
	byPart := map[string]*Pattern{}
	exercises := map[string]map[string]bool{}

	for _, e := range events {
		if e.LoggedAt.Before(since) || e.LoggedAt.After(now) {
			continue
		}
		key := models.BodyPartKey(e.BodyPart)
		if key == "" {
			continue
		}
		p, ok := byPart[key]
		if !ok {
			p = &Pattern{BodyPart: key, FirstSeen: e.LoggedAt, LastSeen: e.LoggedAt}
			byPart[key] = p
			exercises[key] = map[string]bool{}
		}
		p.Occurrences++
		if e.Level.Rank() > p.MaxLevel.Rank() {
			p.MaxLevel = e.Level
		}
		if e.LoggedAt.Before(p.FirstSeen) {
			p.FirstSeen = e.LoggedAt
		}
		if e.LoggedAt.After(p.LastSeen) {
			p.LastSeen = e.LoggedAt
		}
		if name := strings.TrimSpace(e.ExerciseName); name != "" && !exercises[key][name] {
			exercises[key][name] = true
			p.Exercises = append(p.Exercises, name)
		}
	}

	out := make([]Pattern, 0, len(byPart))
	for _, p := range byPart {
		p.SuggestsInjury = p.Occurrences >= PromptThreshold || p.MaxLevel == models.DiscomfortPain
		sort.Strings(p.Exercises)
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Occurrences != out[j].Occurrences {
			return out[i].Occurrences > out[j].Occurrences
		}
		return out[i].BodyPart < out[j].BodyPart
	})
	return out
}

// Action is a recommended response to pain mid-session.
type Action string

const (
	ActionSkipRemainingSets Action = "skip_remaining_sets"
	ActionContinueCarefully Action = "continue_carefully"
	ActionEndSession        Action = "end_session"
)

// PainWarning is returned immediately when pain is logged.
type PainWarning struct {
	BodyPart string   `json:"body_part"`
	Message  string   `json:"message"`
	Actions  []Action `json:"actions"`
}

// InjuryPrompt suggests formalizing recurring discomfort as an injury.
type InjuryPrompt struct {
	BodyPart            string          `json:"body_part"`
	Occurrences         int             `json:"occurrences"`
	SuggestedArea       models.BodyArea `json:"suggested_area,omitempty"`
	SuggestedInjuryType string          `json:"suggested_injury_type"`
	Message             string          `json:"message"`
}

// Outcome is the detector's response to a new event.
type Outcome struct {
	PainWarning  *PainWarning  `json:"pain_warning,omitempty"`
	InjuryPrompt *InjuryPrompt `json:"injury_prompt,omitempty"`
	Pattern      *Pattern      `json:"pattern,omitempty"`
}

// Message candidates. %[1]s is the body part, %[2]d the occurrence count.
var (
	PainMessages = []string{
		"Pain in your %[1]s is a signal to stop, not push through.",
		"Sharp pain in your %[1]s? Stop the set and reassess before going on.",
		"Pain logged for your %[1]s. Protect it for the rest of the session.",
	}
	PromptMessages = []string{
		"Your %[1]s has bothered you %[2]d times in the last two weeks. Track it as an injury so workouts adapt?",
		"That's %[2]d reports for your %[1]s recently. Want to log it as an injury?",
		"Your %[1]s keeps coming up (%[2]d times). Logging it as an injury will steer exercise choices around it.",
	}
)

var injuryTypes = map[models.BodyArea]string{
	models.AreaLowerBack: "lower back strain",
	models.AreaUpperBack: "upper back strain",
	models.AreaNeck:      "neck strain",
	models.AreaShoulder:  "shoulder impingement",
	models.AreaElbow:     "elbow tendinopathy",
	models.AreaWrist:     "wrist sprain",
	models.AreaHip:       "hip flexor strain",
	models.AreaKnee:      "knee tendinopathy",
	models.AreaAnkle:     "ankle sprain",
}

// SuggestInjuryType maps a body part to a tracked-injury area and type.
func SuggestInjuryType(bodyPart string) (models.BodyArea, string) {
	area := models.NormalizeArea(bodyPart)
	if name, ok := injuryTypes[area]; ok {
		return area, name
	}
	return "", "general strain"
}

// Detector evaluates new discomfort reports. Message choice uses the
// injected generator so tests can fix it.
type Detector struct {
	Window time.Duration

	mu  sync.Mutex // guards rng
	rng *rand.Rand
}

// NewDetector creates a Detector. A nil rng uses the global source.
func NewDetector(rng *rand.Rand) *Detector {
	return &Detector{Window: DefaultWindow, rng: rng}
}

// Evaluate responds to a newly logged event given the user's prior events.
// Pain gets an immediate warning; the third or later occurrence for the body
// part inside the window gets an injury prompt.
func (d *Detector) Evaluate(ev models.DiscomfortEvent, history []models.DiscomfortEvent, now time.Time) Outcome {
	key := models.BodyPartKey(ev.BodyPart)
	all := make([]models.DiscomfortEvent, 0, len(history)+1)
	for _, h := range history {
		if ev.ID != uuid.Nil && h.ID == ev.ID {
			continue
		}
		all = append(all, h)
	}
	all = append(all, ev)

	var out Outcome
	for _, p := range DetectPatterns(all, now, d.Window) {
		if p.BodyPart == key {
			out.Pattern = &p
			break
		}
	}
	label := strings.ReplaceAll(key, "_", " ")

	if ev.Level == models.DiscomfortPain {
		out.PainWarning = &PainWarning{
			BodyPart: key,
			Message:  fmt.Sprintf(d.pick(PainMessages), label),
			Actions:  []Action{ActionSkipRemainingSets, ActionContinueCarefully, ActionEndSession},
		}
	}
	if out.Pattern != nil && out.Pattern.Occurrences >= PromptThreshold {
		area, typ := SuggestInjuryType(key)
		out.InjuryPrompt = &InjuryPrompt{
			BodyPart:            key,
			Occurrences:         out.Pattern.Occurrences,
			SuggestedArea:       area,
			SuggestedInjuryType: typ,
			Message:             fmt.Sprintf(d.pick(PromptMessages), label, out.Pattern.Occurrences),
		}
	}
	return out
}

func (d *Detector) pick(candidates []string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.rng == nil {
		return candidates[rand.IntN(len(candidates))]
	}
	return candidates[d.rng.IntN(len(candidates))]
}
