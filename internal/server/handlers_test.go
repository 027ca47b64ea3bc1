package server

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/claude/repcoach/internal/coach"
	"github.com/claude/repcoach/internal/discomfort"
	"github.com/claude/repcoach/internal/ingest"
	"github.com/claude/repcoach/internal/injury"
	"github.com/claude/repcoach/internal/models"
	"github.com/claude/repcoach/internal/readiness"
	"github.com/claude/repcoach/internal/storage"
	"github.com/claude/repcoach/internal/strength"
	"github.com/claude/repcoach/internal/variety"
	"github.com/google/uuid"
)

// TestHandleMeDefault returns the dev identity stored in context.
func TestHandleMeDefault(t *testing.T) {
	s := &Server{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	ctx := context.WithValue(req.Context(), userInfoKey, UserInfo{Login: "local", DisplayName: "Local Dev User"})
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()

	s.handleMe(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var info UserInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if info.Login != "local" {
		t.Errorf("login = %q, want %q", info.Login, "local")
	}
	if info.DisplayName != "Local Dev User" {
		t.Errorf("display_name = %q, want %q", info.DisplayName, "Local Dev User")
	}
}

// TestHandleMeTailscaleUser returns a tailnet identity stored in context.
func TestHandleMeTailscaleUser(t *testing.T) {
	s := &Server{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	ctx := context.WithValue(req.Context(), userInfoKey, UserInfo{Login: "alice@example.com", DisplayName: "Alice"})
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()

	s.handleMe(rec, req)

	var info UserInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if info.Login != "alice@example.com" {
		t.Errorf("login = %q, want %q", info.Login, "alice@example.com")
	}
	if info.DisplayName != "Alice" {
		t.Errorf("display_name = %q, want %q", info.DisplayName, "Alice")
	}
}

func newTestServer(store *memStore, ing Ingester) *Server {
	sel := variety.NewSelector(store, nil, 0, rand.New(rand.NewPCG(1, 2)))
	det := discomfort.NewDetector(rand.New(rand.NewPCG(3, 4)))
	svc := coach.New(store, sel, det, coach.DefaultPolicy(), discardLog())
	return New(store, svc, ing, "secret", discardLog())
}

func do(t *testing.T, h http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v (body %q)", err, rec.Body.String())
	}
	return v
}

// TestRecommendWeightFindWeight answers a lift with no history with the
// find-weight protocol.
func TestRecommendWeightFindWeight(t *testing.T) {
	s := newTestServer(newMemStore(testCatalog...), nil)
	rec := do(t, s, http.MethodPost, "/api/v1/recommendations/weight",
		`{"exercise":"Bench Press","rep_range":{"min":6,"max":10},"target_rir":2,"sets":3}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	plan := decode[coach.Plan](t, rec)
	if plan.Recommendation == nil || plan.Recommendation.Source != strength.SourceFindWeight {
		t.Fatalf("plan = %+v, want find-weight", plan)
	}
	if plan.Recommendation.FindWeight == nil {
		t.Error("find-weight protocol missing")
	}
}

// TestRecommendWeightUsesTestedMax prefers a max recorded through /maxes.
func TestRecommendWeightUsesTestedMax(t *testing.T) {
	s := newTestServer(newMemStore(testCatalog...), nil)
	rec := do(t, s, http.MethodPost, "/api/v1/maxes", `{"exercise":"Bench Press","one_rep_max_kg":100}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("record max status = %d, body %s", rec.Code, rec.Body)
	}
	rec = do(t, s, http.MethodPost, "/api/v1/recommendations/weight", `{"exercise":"Bench Press","rep_range":{"min":8,"max":8},"target_rir":2}`)
	plan := decode[coach.Plan](t, rec)
	if plan.Recommendation == nil || !plan.Recommendation.HasWeight() {
		t.Fatalf("plan = %+v, want a weight", plan)
	}
	if w := plan.Recommendation.WeightKg; w <= 0 || w >= 100 {
		t.Errorf("weight = %v, want below the 100 kg max", w)
	}
	if plan.Recommendation.Confidence != models.ConfidenceHigh {
		t.Errorf("confidence = %s, want high", plan.Recommendation.Confidence)
	}
}

// TestRequestErrorsMapTo400 turns contract violations into 400 responses.
func TestRequestErrorsMapTo400(t *testing.T) {
	s := newTestServer(newMemStore(testCatalog...), nil)
	tests := []struct {
		name, method, path, body string
	}{
		{"missing exercise", http.MethodPost, "/api/v1/recommendations/weight", `{}`},
		{"severity out of range", http.MethodPost, "/api/v1/recommendations/weight", `{"exercise":"Bench Press","injuries":[{"area":"knee","severity":5}]}`},
		{"unknown area", http.MethodPost, "/api/v1/injury/risk", `{"exercise":"Bench Press","injuries":[{"area":"spleen","severity":1}]}`},
		{"bad json", http.MethodPost, "/api/v1/readiness", `{`},
		{"session rpe", http.MethodPost, "/api/v1/fatigue/update", `{"session_rpe":11}`},
		{"variety level", http.MethodPut, "/api/v1/variety/preferences", `{"level":"extreme"}`},
		{"discomfort level", http.MethodPost, "/api/v1/discomfort", `{"body_part":"knee","level":"agony"}`},
		{"sleep date", http.MethodPost, "/api/v1/sleep", `{"date":"yesterday","total_sleep_hours":7}`},
		{"experience", http.MethodPut, "/api/v1/profile/training", `{"experience":"wizard"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, tt.method, tt.path, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400 (body %s)", rec.Code, rec.Body)
			}
		})
	}
}

// TestInjuryEndpoints checks risk, swap and filter answers for a shoulder injury.
func TestInjuryEndpoints(t *testing.T) {
	s := newTestServer(newMemStore(testCatalog...), nil)
	injuries := `"injuries":[{"area":"left_shoulder","severity":2}]`

	rec := do(t, s, http.MethodPost, "/api/v1/injury/risk", `{"exercise":"Overhead Press",`+injuries+`}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("risk status = %d", rec.Code)
	}
	risk := decode[riskResponse](t, rec)
	if !risk.Swap || risk.Level == injury.Safe || len(risk.Areas) != 1 {
		t.Errorf("risk = %+v, want a swap", risk)
	}

	rec = do(t, s, http.MethodPost, "/api/v1/injury/autoswap", `{"exercises":["Overhead Press","Leg Press"],`+injuries+`}`)
	swap := decode[autoSwapResponse](t, rec)
	if len(swap.Results) != 1 || swap.Results[0].Action != injury.ActionSwapped {
		t.Fatalf("results = %+v, want one swap", swap.Results)
	}
	if len(swap.Workout) != 2 || swap.Workout[0].Name != "Cable Face Pull" || swap.Workout[1].Name != "Leg Press" {
		t.Errorf("workout = %+v", swap.Workout)
	}

	rec = do(t, s, http.MethodPost, "/api/v1/injury/filter", `{"muscle":"shoulders",`+injuries+`}`)
	filtered := decode[filterResponse](t, rec)
	if len(filtered.Safe)+len(filtered.Removed) != 3 {
		t.Errorf("filter = %+v, want the 3 shoulder exercises split", filtered)
	}
	for _, ex := range filtered.Safe {
		if ex.Name == "Overhead Press" {
			t.Error("overhead press kept for an injured shoulder")
		}
	}
}

// TestVarietyFlow saves preferences, records usage and selects a pool.
func TestVarietyFlow(t *testing.T) {
	store := newMemStore(testCatalog...)
	s := newTestServer(store, nil)

	rec := do(t, s, http.MethodPut, "/api/v1/variety/preferences", `{"level":"high","prioritize_top_tier":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("put prefs status = %d", rec.Code)
	}
	prefs := decode[models.VarietyPreferences](t, do(t, s, http.MethodGet, "/api/v1/variety/preferences", ""))
	if prefs.Level != models.VarietyHigh || prefs.MinPoolSize != models.DefaultMinPoolSize {
		t.Errorf("prefs = %+v", prefs)
	}

	rec = do(t, s, http.MethodPost, "/api/v1/variety/usage", `{"records":[{"muscle_group":"shoulders","exercise_id":"ohp","exercise_name":"Overhead Press"}]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("usage status = %d, body %s", rec.Code, rec.Body)
	}
	if len(store.usage) != 1 || store.usage[0].UserID != 1 || store.usage[0].SessionID == uuid.Nil {
		t.Errorf("usage = %+v", store.usage)
	}

	rec = do(t, s, http.MethodPost, "/api/v1/variety/select", `{"muscle":"shoulders"}`)
	ranking := decode[variety.Ranking](t, rec)
	if len(ranking.Ordered) != 3 {
		t.Fatalf("ordered = %d, want 3", len(ranking.Ordered))
	}
	if ranking.Ordered[0].ID == "ohp" && !ranking.Fallback {
		t.Error("recently used exercise ranked first without fallback")
	}
}

// TestDiscomfortFlow warns on pain and reports the pattern.
func TestDiscomfortFlow(t *testing.T) {
	s := newTestServer(newMemStore(testCatalog...), nil)
	rec := do(t, s, http.MethodPost, "/api/v1/discomfort", `{"body_part":"left knee","level":"pain","exercise_name":"Leg Press"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	out := decode[discomfort.Outcome](t, rec)
	if out.PainWarning == nil || len(out.PainWarning.Actions) == 0 {
		t.Errorf("outcome = %+v, want pain warning", out)
	}
	do(t, s, http.MethodPost, "/api/v1/discomfort", `{"body_part":"left knee","level":"twinge"}`)

	patterns := decode[[]discomfort.Pattern](t, do(t, s, http.MethodGet, "/api/v1/discomfort/patterns", ""))
	if len(patterns) != 1 || patterns[0].Occurrences != 2 {
		t.Errorf("patterns = %+v, want one with 2 occurrences", patterns)
	}
}

// TestFatigueFlow starts a block, records a session and checks the forecast.
func TestFatigueFlow(t *testing.T) {
	s := newTestServer(newMemStore(), nil)
	if rec := do(t, s, http.MethodPost, "/api/v1/mesocycle", `{"deload_week":6}`); rec.Code != http.StatusCreated {
		t.Fatalf("mesocycle status = %d", rec.Code)
	}
	rec := do(t, s, http.MethodPost, "/api/v1/fatigue/update", `{"session_rpe":8}`)
	m := decode[models.MesocycleState](t, rec)
	if m.Fatigue != 20 || m.DeloadWeek != 6 {
		t.Errorf("mesocycle = %+v, want fatigue 20 deload week 6", m)
	}
	f := decode[map[string]float64](t, do(t, s, http.MethodGet, "/api/v1/fatigue", ""))
	if f["fatigue"] != 20 {
		t.Errorf("fatigue = %v, want 20", f["fatigue"])
	}
	rec = do(t, s, http.MethodPost, "/api/v1/fatigue/forecast", `{"planned_sessions":3,"avg_rpe":8}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("forecast status = %d", rec.Code)
	}
	rec = do(t, s, http.MethodPost, "/api/v1/deload/check", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("deload status = %d", rec.Code)
	}
	if d := decode[readiness.DeloadDecision](t, rec); d.ShouldDeload {
		t.Errorf("decision = %+v, want no deload in week 1", d)
	}
}

// TestAdjustTargets scales caller targets by an explicit readiness score.
func TestAdjustTargets(t *testing.T) {
	s := newTestServer(newMemStore(), nil)
	rec := do(t, s, http.MethodPost, "/api/v1/targets/adjust",
		`{"targets":{"weight_kg":100,"rep_range":{"min":8,"max":10},"target_rir":2,"sets":4,"rest_seconds":120},"readiness_score":50}`)
	resp := decode[adjustResponse](t, rec)
	if resp.Targets.WeightKg != 90 || resp.Targets.Sets != 3 || resp.Targets.TargetRIR != 3 {
		t.Errorf("targets = %+v, want 90 kg, 3 sets, RIR 3", resp.Targets)
	}
	if rec := do(t, s, http.MethodPost, "/api/v1/targets/adjust", `{"readiness_score":140}`); rec.Code != http.StatusBadRequest {
		t.Errorf("score 140 status = %d, want 400", rec.Code)
	}
}

// TestAlphaIngestLogsImport runs the import behind the API key and records
// each attempt.
func TestAlphaIngestLogsImport(t *testing.T) {
	store := newMemStore()
	s := newTestServer(store, fakeIngester{result: &ingest.Result{SessionsReceived: 2, SetsInserted: 20}})

	if rec := do(t, s, http.MethodPost, "/api/v1/ingest/alpha", "x"); rec.Code != http.StatusUnauthorized {
		t.Errorf("no key status = %d, want 401", rec.Code)
	}
	if rec := do(t, s, http.MethodPost, "/api/v1/ingest/alpha", "x", "X-API-Key", "wrong"); rec.Code != http.StatusForbidden {
		t.Errorf("wrong key status = %d, want 403", rec.Code)
	}
	rec := do(t, s, http.MethodPost, "/api/v1/ingest/alpha", "x", "X-API-Key", "secret")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	logs := decode[[]storage.ImportLog](t, do(t, s, http.MethodGet, "/api/v1/imports", ""))
	if len(logs) != 1 || logs[0].Status != "success" || logs[0].SetsInserted != 20 {
		t.Errorf("logs = %+v", logs)
	}

	failing := newTestServer(store, fakeIngester{err: errIngest})
	if rec := do(t, failing, http.MethodPost, "/api/v1/ingest/alpha", "x", "X-API-Key", "secret"); rec.Code != http.StatusBadRequest {
		t.Errorf("failed import status = %d, want 400", rec.Code)
	}
	if len(store.imports) != 2 || store.imports[1].Status != "error" {
		t.Errorf("imports = %+v, want an error entry", store.imports)
	}
}

// TestUserScoping keeps data for different X-User-ID callers apart.
func TestUserScoping(t *testing.T) {
	s := newTestServer(newMemStore(), nil)
	do(t, s, http.MethodPost, "/api/v1/discomfort", `{"body_part":"elbow","level":"twinge"}`, "X-User-ID", "7")

	mine := decode[[]discomfort.Pattern](t, do(t, s, http.MethodGet, "/api/v1/discomfort/patterns", "", "X-User-ID", "7"))
	theirs := decode[[]discomfort.Pattern](t, do(t, s, http.MethodGet, "/api/v1/discomfort/patterns", ""))
	if len(mine) != 1 || len(theirs) != 0 {
		t.Errorf("user 7 patterns = %d, user 1 patterns = %d; want 1 and 0", len(mine), len(theirs))
	}
}
