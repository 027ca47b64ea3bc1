package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/claude/repcoach/internal/coach"
	"github.com/claude/repcoach/internal/ingest"
	"github.com/claude/repcoach/internal/models"
	"github.com/claude/repcoach/internal/storage"
	"github.com/claude/repcoach/internal/variety"
)

// memStore is an in-memory Store, coach.DataSource and variety.Store.
type memStore struct {
	mu sync.Mutex

	users      map[string]int
	catalog    []models.ExerciseMetadata
	maxes      []models.EstimatedMax
	sleep      []models.SleepSessionRow
	comps      []models.BodyCompositionRow
	meso       *models.MesocycleState
	discomfort []models.DiscomfortEvent
	usage      []models.UsageRecord
	prefs      map[int]models.VarietyPreferences
	imports    []storage.ImportLog
	training   map[int]models.Experience
}

func newMemStore(catalog ...models.ExerciseMetadata) *memStore {
	return &memStore{users: map[string]int{}, catalog: catalog, prefs: map[int]models.VarietyPreferences{}, training: map[int]models.Experience{}}
}

func (m *memStore) GetOrCreateUser(_ context.Context, login, _ string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.users[login]; ok {
		return id, nil
	}
	id := len(m.users) + 2
	m.users[login] = id
	return id, nil
}

func (m *memStore) GetUser(_ context.Context, id int) (*models.UserRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &models.UserRow{ID: id, Experience: m.training[id]}, nil
}

func (m *memStore) UpdateTrainingProfile(_ context.Context, id int, exp models.Experience, _ int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.training[id] = exp
	return nil
}

func (m *memStore) LatestBodyComposition(context.Context, int) (*models.BodyCompositionRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.comps) == 0 {
		return nil, nil
	}
	c := m.comps[len(m.comps)-1]
	return &c, nil
}

func (m *memStore) InsertBodyComposition(_ context.Context, row models.BodyCompositionRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.comps = append(m.comps, row)
	return nil
}

func (m *memStore) ExerciseHistory(context.Context, int, time.Time, time.Time) ([]models.ExerciseHistoryEntry, error) {
	return nil, nil
}

func (m *memStore) EstimatedMaxes(context.Context, int) ([]models.EstimatedMax, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.EstimatedMax(nil), m.maxes...), nil
}

func (m *memStore) UpsertEstimatedMaxes(_ context.Context, _ int, maxes []models.EstimatedMax) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maxes = append(m.maxes, maxes...)
	return int64(len(maxes)), nil
}

func (m *memStore) Exercises(context.Context) ([]models.ExerciseMetadata, error) {
	return m.catalog, nil
}

func (m *memStore) ExercisesForMuscle(_ context.Context, muscle string) ([]models.ExerciseMetadata, error) {
	return byMuscle(m.catalog, muscle), nil
}

func (m *memStore) ExerciseByName(_ context.Context, name string) (*models.ExerciseMetadata, error) {
	for _, e := range m.catalog {
		if e.ID == name || strings.EqualFold(e.Name, name) {
			return &e, nil
		}
	}
	return nil, nil
}

func (m *memStore) InsertSleepSession(_ context.Context, row models.SleepSessionRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sleep = append(m.sleep, row)
	return nil
}

func (m *memStore) LastSleepSession(context.Context, int, time.Time) (*models.SleepSessionRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sleep) == 0 {
		return nil, nil
	}
	s := m.sleep[len(m.sleep)-1]
	return &s, nil
}

func (m *memStore) SessionStats(context.Context, int, time.Time) ([]models.SessionStats, error) {
	return nil, nil
}

func (m *memStore) Mesocycle(context.Context, int) (*models.MesocycleState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.meso == nil {
		return nil, nil
	}
	c := *m.meso
	return &c, nil
}

func (m *memStore) SaveMesocycle(_ context.Context, s models.MesocycleState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.meso = &s
	return nil
}

func (m *memStore) InsertDiscomfort(_ context.Context, ev models.DiscomfortEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.discomfort = append(m.discomfort, ev)
	return nil
}

func (m *memStore) DiscomfortSince(_ context.Context, userID int, since time.Time) ([]models.DiscomfortEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.DiscomfortEvent
	for _, ev := range m.discomfort {
		if ev.UserID == userID && !ev.LoggedAt.Before(since) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (m *memStore) RecentUsage(_ context.Context, userID int, muscle string, _ time.Time) ([]models.UsageRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.UsageRecord
	for _, u := range m.usage {
		if u.UserID == userID && strings.EqualFold(u.MuscleGroup, muscle) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *memStore) RecordUsage(_ context.Context, records []models.UsageRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.usage = append(m.usage, records...)
	return nil
}

func (m *memStore) VarietyPreferences(_ context.Context, userID int) (models.VarietyPreferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.prefs[userID]; ok {
		return p, nil
	}
	return models.DefaultVarietyPreferences(), nil
}

func (m *memStore) SaveVarietyPreferences(_ context.Context, userID int, p models.VarietyPreferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefs[userID] = p
	return nil
}

func (m *memStore) GetDataStats(context.Context, int) (*storage.DataStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &storage.DataStats{EstimatedMaxes: int64(len(m.maxes)), DiscomfortLogs: int64(len(m.discomfort))}, nil
}

func (m *memStore) InsertImportLog(_ context.Context, l storage.ImportLog) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.imports = append(m.imports, l)
	return int64(len(m.imports)), nil
}

func (m *memStore) QueryImportLogs(_ context.Context, userID, _ int) ([]storage.ImportLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []storage.ImportLog
	for _, l := range m.imports {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	return out, nil
}

var (
	_ Store            = (*memStore)(nil)
	_ coach.DataSource = (*memStore)(nil)
	_ variety.Store    = (*memStore)(nil)
	_ UserResolver     = (*memStore)(nil)
)

type fakeIngester struct {
	result *ingest.Result
	err    error
}

func (f fakeIngester) Ingest(context.Context, io.Reader, int) (*ingest.Result, error) {
	return f.result, f.err
}

var errIngest = errors.New("bad export")

func discardLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func exercise(id, name, muscle string, pattern models.MovementPattern, mech models.Mechanic, eq models.Equipment, tier models.Tier) models.ExerciseMetadata {
	return models.ExerciseMetadata{
		ID: id, Name: name, PrimaryMuscle: muscle, Pattern: pattern, Mechanic: mech, Equipment: eq,
		RepRange: models.RepRange{Min: 8, Max: 12}, Tier: tier,
	}
}

var testCatalog = []models.ExerciseMetadata{
	exercise("bench", "Bench Press", models.MuscleChest, models.PatternHorizontalPush, models.MechanicCompound, models.EquipmentBarbell, models.TierA),
	exercise("incline", "Incline Bench Press", models.MuscleChest, models.PatternHorizontalPush, models.MechanicCompound, models.EquipmentBarbell, models.TierA),
	exercise("ohp", "Overhead Press", models.MuscleShoulders, models.PatternVerticalPush, models.MechanicCompound, models.EquipmentBarbell, models.TierA),
	exercise("lat-raise", "Dumbbell Lateral Raise", models.MuscleShoulders, models.PatternIsolation, models.MechanicIsolation, models.EquipmentDumbbell, models.TierS),
	exercise("face-pull", "Cable Face Pull", models.MuscleShoulders, models.PatternHorizontalPull, models.MechanicCompound, models.EquipmentCable, models.TierB),
	exercise("leg-press", "Leg Press", models.MuscleQuads, models.PatternSquat, models.MechanicCompound, models.EquipmentMachine, models.TierA),
}
