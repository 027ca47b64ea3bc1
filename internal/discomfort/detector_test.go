package discomfort

import (
	"math/rand/v2"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/claude/repcoach/internal/models"
	"github.com/google/uuid"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func event(part string, level models.DiscomfortLevel, daysAgo int) models.DiscomfortEvent {
	return models.DiscomfortEvent{
		ID:           uuid.New(),
		UserID:       1,
		BodyPart:     part,
		Level:        level,
		ExerciseName: "Back Squat",
		LoggedAt:     now.AddDate(0, 0, -daysAgo),
	}
}

// TestDetectPatterns verifies grouping by body part, the trailing window and
// the suggests-injury rule.
func TestDetectPatterns(t *testing.T) {
	events := []models.DiscomfortEvent{
		event("Left Knee", models.DiscomfortTwinge, 1),
		event("left knee", models.DiscomfortMild, 5),
		event("left-knee", models.DiscomfortTwinge, 9),
		event("left knee", models.DiscomfortPain, 30), // outside window
		event("Shoulder", models.DiscomfortPain, 2),
		event("Elbow", models.DiscomfortTwinge, 3),
		event("right knee", models.DiscomfortTwinge, 3),
	}
	patterns := DetectPatterns(events, now, 0)
	if len(patterns) != 4 {
		t.Fatalf("patterns = %d, want 4: %+v", len(patterns), patterns)
	}

	byPart := map[string]Pattern{}
	for _, p := range patterns {
		byPart[p.BodyPart] = p
	}
	knee := byPart["left_knee"]
	if knee.Occurrences != 3 || !knee.SuggestsInjury || knee.MaxLevel != models.DiscomfortMild {
		t.Errorf("left knee = %+v, want 3 occurrences suggesting injury", knee)
	}
	if patterns[0].BodyPart != "left_knee" {
		t.Errorf("first pattern = %s, want most frequent", patterns[0].BodyPart)
	}
	if s := byPart["shoulder"]; !s.SuggestsInjury {
		t.Error("single pain occurrence should suggest injury")
	}
	if e := byPart["elbow"]; e.SuggestsInjury {
		t.Error("single twinge should not suggest injury")
	}
	if r := byPart["right_knee"]; r.Occurrences != 1 {
		t.Errorf("right knee = %d occurrences, want 1 (kept apart from left)", r.Occurrences)
	}
}

// TestEvaluatePainWarning verifies pain gets a warning with all three actions
// and a message from the candidate set.
func TestEvaluatePainWarning(t *testing.T) {
	d := NewDetector(rand.New(rand.NewPCG(1, 1)))
	out := d.Evaluate(event("shoulder", models.DiscomfortPain, 0), nil, now)
	if out.PainWarning == nil {
		t.Fatal("PainWarning = nil")
	}
	want := []Action{ActionSkipRemainingSets, ActionContinueCarefully, ActionEndSession}
	if !slices.Equal(out.PainWarning.Actions, want) {
		t.Errorf("Actions = %v, want %v", out.PainWarning.Actions, want)
	}
	var ok bool
	for _, m := range PainMessages {
		if out.PainWarning.Message == strings.ReplaceAll(m, "%[1]s", "shoulder") {
			ok = true
		}
	}
	if !ok {
		t.Errorf("Message %q not from candidate set", out.PainWarning.Message)
	}
	if out.InjuryPrompt != nil {
		t.Error("first occurrence should not prompt")
	}

	if out := d.Evaluate(event("shoulder", models.DiscomfortTwinge, 0), nil, now); out.PainWarning != nil {
		t.Error("twinge should not warn")
	}
}

// TestEvaluateInjuryPrompt verifies the third occurrence in the window
// prompts with a suggested injury type, and that re-submitting a stored event
// does not double count it.
func TestEvaluateInjuryPrompt(t *testing.T) {
	d := NewDetector(rand.New(rand.NewPCG(2, 2)))
	history := []models.DiscomfortEvent{
		event("Lower Back", models.DiscomfortTwinge, 6),
		event("lower back", models.DiscomfortTwinge, 20),
	}
	second := d.Evaluate(event("lower back", models.DiscomfortMild, 0), history, now)
	if second.InjuryPrompt != nil {
		t.Fatalf("second in-window occurrence prompted: %+v", second.InjuryPrompt)
	}

	history = append(history, event("lower back", models.DiscomfortMild, 3))
	newEv := event("lower_back", models.DiscomfortTwinge, 0)
	out := d.Evaluate(newEv, append(history, newEv), now)
	if out.InjuryPrompt == nil {
		t.Fatal("InjuryPrompt = nil on third occurrence")
	}
	p := out.InjuryPrompt
	if p.Occurrences != 3 {
		t.Errorf("Occurrences = %d, want 3", p.Occurrences)
	}
	if p.SuggestedArea != models.AreaLowerBack || p.SuggestedInjuryType != "lower back strain" {
		t.Errorf("suggestion = %s/%s", p.SuggestedArea, p.SuggestedInjuryType)
	}
	if !strings.Contains(p.Message, "lower back") || !strings.Contains(p.Message, "3") {
		t.Errorf("Message = %q", p.Message)
	}
}

// TestSuggestInjuryType verifies laterality collapses for the lookup and
// unknown parts fall back to a generic type.
func TestSuggestInjuryType(t *testing.T) {
	tests := []struct {
		part string
		area models.BodyArea
		typ  string
	}{
		{"Right Knee", models.AreaKnee, "knee tendinopathy"},
		{"shoulder_left", models.AreaShoulder, "shoulder impingement"},
		{"ankle", models.AreaAnkle, "ankle sprain"},
		{"forearm", "", "general strain"},
	}
	for _, tt := range tests {
		area, typ := SuggestInjuryType(tt.part)
		if area != tt.area || typ != tt.typ {
			t.Errorf("SuggestInjuryType(%q) = %s/%s, want %s/%s", tt.part, area, typ, tt.area, tt.typ)
		}
	}
}

// TestMessagesCoverCandidates verifies every candidate is reachable across
// seeds and formats cleanly.
func TestMessagesCoverCandidates(t *testing.T) {
	seen := map[string]bool{}
	for seed := range uint64(50) {
		d := NewDetector(rand.New(rand.NewPCG(seed, 9)))
		out := d.Evaluate(event("hip", models.DiscomfortPain, 0), nil, now)
		if strings.Contains(out.PainWarning.Message, "%!") {
			t.Fatalf("bad format: %q", out.PainWarning.Message)
		}
		seen[out.PainWarning.Message] = true
	}
	if len(seen) != len(PainMessages) {
		t.Errorf("saw %d distinct messages, want %d", len(seen), len(PainMessages))
	}
}
