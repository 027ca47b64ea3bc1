package coach

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/claude/repcoach/internal/discomfort"
	"github.com/claude/repcoach/internal/models"
	"github.com/claude/repcoach/internal/variety"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func daysAgo(d int) time.Time { return testNow.AddDate(0, 0, -d) }

func f64(v float64) *float64 { return &v }

// fakeData is an in-memory DataSource and variety.Store.
type fakeData struct {
	mu sync.Mutex

	user       *models.UserRow
	comp       *models.BodyCompositionRow
	history    []models.ExerciseHistoryEntry
	maxes      []models.EstimatedMax
	upserted   []models.EstimatedMax
	catalog    []models.ExerciseMetadata
	sleep      *models.SleepSessionRow
	stats      []models.SessionStats
	meso       *models.MesocycleState
	discomfort []models.DiscomfortEvent
	usage      []models.UsageRecord
	prefs      map[int]models.VarietyPreferences

	maxesErr error
	sleepErr error
}

var errBoom = errors.New("boom")

func (f *fakeData) GetUser(context.Context, int) (*models.UserRow, error) { return f.user, nil }

func (f *fakeData) LatestBodyComposition(context.Context, int) (*models.BodyCompositionRow, error) {
	return f.comp, nil
}

func (f *fakeData) ExerciseHistory(_ context.Context, _ int, since, _ time.Time) ([]models.ExerciseHistoryEntry, error) {
	var out []models.ExerciseHistoryEntry
	for _, h := range f.history {
		if !h.Date.Before(since) {
			out = append(out, h)
		}
	}
	return out, nil
}

func (f *fakeData) EstimatedMaxes(context.Context, int) ([]models.EstimatedMax, error) {
	return f.maxes, f.maxesErr
}

func (f *fakeData) UpsertEstimatedMaxes(_ context.Context, _ int, maxes []models.EstimatedMax) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserted = append(f.upserted, maxes...)
	return int64(len(maxes)), nil
}

func (f *fakeData) Exercises(context.Context) ([]models.ExerciseMetadata, error) {
	return f.catalog, nil
}

func (f *fakeData) ExercisesForMuscle(_ context.Context, muscle string) ([]models.ExerciseMetadata, error) {
	var out []models.ExerciseMetadata
	for _, e := range f.catalog {
		if strings.EqualFold(e.PrimaryMuscle, muscle) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeData) ExerciseByName(_ context.Context, name string) (*models.ExerciseMetadata, error) {
	for _, e := range f.catalog {
		if e.ID == name || strings.EqualFold(e.Name, name) {
			return &e, nil
		}
	}
	return nil, nil
}

func (f *fakeData) LastSleepSession(context.Context, int, time.Time) (*models.SleepSessionRow, error) {
	return f.sleep, f.sleepErr
}

func (f *fakeData) SessionStats(context.Context, int, time.Time) ([]models.SessionStats, error) {
	return f.stats, nil
}

func (f *fakeData) Mesocycle(context.Context, int) (*models.MesocycleState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.meso == nil {
		return nil, nil
	}
	m := *f.meso
	return &m, nil
}

func (f *fakeData) SaveMesocycle(_ context.Context, m models.MesocycleState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.meso = &m
	return nil
}

func (f *fakeData) InsertDiscomfort(_ context.Context, ev models.DiscomfortEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.discomfort = append(f.discomfort, ev)
	return nil
}

func (f *fakeData) DiscomfortSince(_ context.Context, _ int, since time.Time) ([]models.DiscomfortEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.DiscomfortEvent
	for _, ev := range f.discomfort {
		if !ev.LoggedAt.Before(since) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (f *fakeData) RecentUsage(_ context.Context, userID int, muscle string, since time.Time) ([]models.UsageRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.UsageRecord
	for _, u := range f.usage {
		if u.UserID == userID && strings.EqualFold(u.MuscleGroup, muscle) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeData) RecordUsage(_ context.Context, records []models.UsageRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.usage = append(f.usage, records...)
	return nil
}

func (f *fakeData) VarietyPreferences(_ context.Context, userID int) (models.VarietyPreferences, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.prefs[userID]; ok {
		return p, nil
	}
	return models.DefaultVarietyPreferences(), nil
}

func (f *fakeData) SaveVarietyPreferences(_ context.Context, userID int, p models.VarietyPreferences) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.prefs == nil {
		f.prefs = map[int]models.VarietyPreferences{}
	}
	f.prefs[userID] = p
	return nil
}

var _ DataSource = (*fakeData)(nil)
var _ variety.Store = (*fakeData)(nil)

func newTestService(data *fakeData) *Service {
	rng := rand.New(rand.NewPCG(1, 2))
	sel := variety.NewSelector(data, nil, 0, rng)
	det := discomfort.NewDetector(rand.New(rand.NewPCG(3, 4)))
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := New(data, sel, det, DefaultPolicy(), log)
	s.now = func() time.Time { return testNow }
	return s
}

func exercise(id, name, muscle string, pattern models.MovementPattern, mech models.Mechanic, eq models.Equipment, tier models.Tier) models.ExerciseMetadata {
	return models.ExerciseMetadata{
		ID: id, Name: name, PrimaryMuscle: muscle, Pattern: pattern, Mechanic: mech, Equipment: eq,
		RepRange: models.RepRange{Min: 8, Max: 12}, Tier: tier,
	}
}

var (
	benchPress   = exercise("bench", "Bench Press", models.MuscleChest, models.PatternHorizontalPush, models.MechanicCompound, models.EquipmentBarbell, models.TierA)
	inclineBench = exercise("incline", "Incline Bench Press", models.MuscleChest, models.PatternHorizontalPush, models.MechanicCompound, models.EquipmentBarbell, models.TierA)
	ohp          = exercise("ohp", "Overhead Press", models.MuscleShoulders, models.PatternVerticalPush, models.MechanicCompound, models.EquipmentBarbell, models.TierA)
	lateralRaise = exercise("lat-raise", "Dumbbell Lateral Raise", models.MuscleShoulders, models.PatternIsolation, models.MechanicIsolation, models.EquipmentDumbbell, models.TierS)
	facePull     = exercise("face-pull", "Cable Face Pull", models.MuscleShoulders, models.PatternHorizontalPull, models.MechanicCompound, models.EquipmentCable, models.TierB)
	backSquat    = exercise("back-squat", "Back Squat", models.MuscleQuads, models.PatternSquat, models.MechanicCompound, models.EquipmentBarbell, models.TierS)
	legPress     = exercise("leg-press", "Leg Press", models.MuscleQuads, models.PatternSquat, models.MechanicCompound, models.EquipmentMachine, models.TierA)
	quadMachine  = exercise("quad-sweep", "Quad Sweep Machine", models.MuscleQuads, models.PatternIsolation, models.MechanicIsolation, models.EquipmentMachine, models.TierB)
	rdl          = exercise("rdl", "Romanian Deadlift", models.MuscleHamstrings, models.PatternHinge, models.MechanicCompound, models.EquipmentBarbell, models.TierA)
	legCurl      = exercise("leg-curl", "Lying Leg Curl", models.MuscleHamstrings, models.PatternIsolation, models.MechanicIsolation, models.EquipmentMachine, models.TierA)
	nordicCurl   = exercise("nordic", "Nordic Curl", models.MuscleHamstrings, models.PatternIsolation, models.MechanicIsolation, models.EquipmentBodyweight, models.TierB)
	seatedCurl   = exercise("seated-curl", "Seated Leg Curl", models.MuscleHamstrings, models.PatternIsolation, models.MechanicIsolation, models.EquipmentMachine, models.TierS)

	testCatalog = []models.ExerciseMetadata{
		benchPress, inclineBench, ohp, lateralRaise, facePull, backSquat, legPress, quadMachine,
		rdl, legCurl, nordicCurl, seatedCurl,
	}
)

func benchSession(d int, weight float64, reps int, rpe float64) models.ExerciseHistoryEntry {
	sets := make([]models.SetEntry, 3)
	for i := range sets {
		sets[i] = models.SetEntry{WeightKg: weight, Reps: reps, RPE: f64(rpe), Completed: true}
	}
	return models.ExerciseHistoryEntry{ExerciseName: "Bench Press", Date: daysAgo(d), Sets: sets}
}
