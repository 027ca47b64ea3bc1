package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/claude/repcoach/internal/coach"
	"github.com/claude/repcoach/internal/injury"
	"github.com/claude/repcoach/internal/models"
	"github.com/claude/repcoach/internal/readiness"
	"github.com/google/uuid"
)

func byMuscle(exercises []models.ExerciseMetadata, muscle string) []models.ExerciseMetadata {
	muscle = strings.ToLower(strings.TrimSpace(muscle))
	var out []models.ExerciseMetadata
	for _, ex := range exercises {
		if ex.PrimaryMuscle == muscle {
			out = append(out, ex)
		}
	}
	return out
}

func (s *Server) handleRecommendWeight(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	var req coach.PlanRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	plan, err := s.coach.PlanExercise(r.Context(), uid, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	var in readiness.Input
	if !decodeJSON(w, r, &in) {
		return
	}
	writeJSON(w, http.StatusOK, s.coach.Readiness(r.Context(), uid, in))
}

type mesocycleRequest struct {
	DeloadWeek int `json:"deload_week"`
}

func (s *Server) handleStartMesocycle(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	var req mesocycleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.DeloadWeek < 0 {
		badRequest(w, "deload_week must not be negative")
		return
	}
	m, err := s.coach.StartMesocycle(r.Context(), uid, req.DeloadWeek)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) handleFatigue(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	f, err := s.coach.CurrentFatigue(r.Context(), uid)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"fatigue": f})
}

type fatigueUpdateRequest struct {
	SessionRPE float64    `json:"session_rpe"`
	At         *time.Time `json:"at,omitempty"`
}

func (s *Server) handleFatigueUpdate(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	var req fatigueUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	var at time.Time
	if req.At != nil {
		at = *req.At
	}
	m, err := s.coach.RecordSession(r.Context(), uid, req.SessionRPE, at)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

type forecastRequest struct {
	PlannedSessions int     `json:"planned_sessions"`
	AvgRPE          float64 `json:"avg_rpe"`
}

func (s *Server) handleFatigueForecast(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	var req forecastRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.PlannedSessions < 0 || req.AvgRPE < 0 || req.AvgRPE > 10 {
		badRequest(w, "planned_sessions must be >= 0 and avg_rpe within 0-10")
		return
	}
	f, err := s.coach.ForecastWeek(r.Context(), uid, req.PlannedSessions, req.AvgRPE)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) handleDeloadCheck(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	d, err := s.coach.CheckDeload(r.Context(), uid)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

type adjustRequest struct {
	Targets        models.ProgressionTargets `json:"targets"`
	ReadinessScore *float64                  `json:"readiness_score,omitempty"`
	Readiness      *readiness.Input          `json:"readiness,omitempty"`
	MinIncrementKg float64                   `json:"min_increment_kg,omitempty"`
}

type adjustResponse struct {
	ReadinessScore float64                   `json:"readiness_score"`
	Targets        models.ProgressionTargets `json:"targets"`
}

// handleAdjustTargets scales caller-supplied targets by an explicit score or,
// failing that, by a scored check-in.
func (s *Server) handleAdjustTargets(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	var req adjustRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	var score float64
	switch {
	case req.ReadinessScore != nil:
		score = *req.ReadinessScore
		if score < 0 || score > 100 {
			badRequest(w, "readiness_score must be within 0-100")
			return
		}
	case req.Readiness != nil:
		score = s.coach.Readiness(r.Context(), uid, *req.Readiness).Score
	default:
		score = s.coach.Readiness(r.Context(), uid, readiness.Input{}).Score
	}
	writeJSON(w, http.StatusOK, adjustResponse{
		ReadinessScore: score,
		Targets:        readiness.AdjustTargets(req.Targets, score, req.MinIncrementKg),
	})
}

type injuryRequest struct {
	Exercise  string                 `json:"exercise,omitempty"`
	Exercises []string               `json:"exercises,omitempty"`
	Muscle    string                 `json:"muscle,omitempty"`
	Injuries  []models.InjuryContext `json:"injuries"`
}

type areaRisk struct {
	Area     string          `json:"area"`
	Severity models.Severity `json:"severity"`
	Level    injury.Level    `json:"level"`
}

type riskResponse struct {
	Exercise string       `json:"exercise"`
	Level    injury.Level `json:"level"`
	Swap     bool         `json:"swap"`
	Areas    []areaRisk   `json:"areas"`
}

func (s *Server) handleInjuryRisk(w http.ResponseWriter, r *http.Request) {
	var req injuryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Exercise) == "" {
		badRequest(w, "exercise is required")
		return
	}
	if err := injury.Validate(req.Injuries); err != nil {
		s.writeError(w, r, err)
		return
	}
	ex := s.coach.ResolveWorkout(r.Context(), []string{req.Exercise})[0]
	_, swap := injury.NeedsSwap(ex, req.Injuries)
	resp := riskResponse{Exercise: ex.Name, Level: injury.Assess(ex, req.Injuries), Swap: swap}
	for _, inj := range req.Injuries {
		resp.Areas = append(resp.Areas, areaRisk{Area: inj.Area, Severity: inj.Severity, Level: injury.Risk(ex, inj.Area)})
	}
	writeJSON(w, http.StatusOK, resp)
}

type filterResponse struct {
	Safe    []models.ExerciseMetadata `json:"safe"`
	Removed []string                  `json:"removed"`
}

// handleInjuryFilter filters either the named exercises or a muscle group's
// catalog pool.
func (s *Server) handleInjuryFilter(w http.ResponseWriter, r *http.Request) {
	var req injuryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	var pool []models.ExerciseMetadata
	switch {
	case len(req.Exercises) > 0:
		pool = s.coach.ResolveWorkout(r.Context(), req.Exercises)
	case req.Muscle != "":
		all, err := s.db.Exercises(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		pool = byMuscle(all, req.Muscle)
	default:
		badRequest(w, "exercises or muscle is required")
		return
	}
	safe, err := injury.Filter(pool, req.Injuries)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	kept := make(map[string]bool, len(safe))
	for _, ex := range safe {
		kept[ex.Key()] = true
	}
	resp := filterResponse{Safe: safe, Removed: []string{}}
	for _, ex := range pool {
		if !kept[ex.Key()] {
			resp.Removed = append(resp.Removed, ex.Name)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleInjuryAlternatives(w http.ResponseWriter, r *http.Request) {
	var req injuryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	alts, err := s.coach.Alternatives(r.Context(), req.Exercise, req.Injuries)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, alts)
}

type autoSwapResponse struct {
	Results []injury.SwapResult       `json:"results"`
	Workout []models.ExerciseMetadata `json:"workout"`
}

func (s *Server) handleAutoSwap(w http.ResponseWriter, r *http.Request) {
	var req injuryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Exercises) == 0 {
		badRequest(w, "exercises is required")
		return
	}
	workout := s.coach.ResolveWorkout(r.Context(), req.Exercises)
	results, repaired, err := s.coach.AutoSwap(r.Context(), workout, req.Injuries)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if results == nil {
		results = []injury.SwapResult{}
	}
	writeJSON(w, http.StatusOK, autoSwapResponse{Results: results, Workout: repaired})
}

func (s *Server) handleVarietySelect(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	var req injuryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ranking, err := s.coach.SelectExercises(r.Context(), uid, req.Muscle, req.Injuries)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ranking)
}

type usageRequest struct {
	SessionID *uuid.UUID           `json:"session_id,omitempty"`
	UsedAt    *time.Time           `json:"used_at,omitempty"`
	Records   []models.UsageRecord `json:"records"`
}

func (s *Server) handleVarietyUsage(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	var req usageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Records) == 0 {
		badRequest(w, "records is required")
		return
	}
	sid := uuid.New()
	if req.SessionID != nil {
		sid = *req.SessionID
	}
	for i := range req.Records {
		if req.Records[i].SessionID == uuid.Nil {
			req.Records[i].SessionID = sid
		}
		if req.Records[i].UsedAt.IsZero() && req.UsedAt != nil {
			req.Records[i].UsedAt = *req.UsedAt
		}
	}
	if err := s.coach.RecordUsage(r.Context(), uid, req.Records); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"session_id": sid, "recorded": len(req.Records)})
}

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	p, err := s.coach.VarietyPreferences(r.Context(), uid)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handlePutPreferences(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	var req models.VarietyPreferences
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := s.coach.SaveVarietyPreferences(r.Context(), uid, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleLogDiscomfort(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	var ev models.DiscomfortEvent
	if !decodeJSON(w, r, &ev) {
		return
	}
	out, err := s.coach.LogDiscomfort(r.Context(), uid, ev)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) handleDiscomfortPatterns(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	patterns, err := s.coach.DiscomfortPatterns(r.Context(), uid)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, patterns)
}
