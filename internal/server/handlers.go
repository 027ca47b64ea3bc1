package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/claude/repcoach/internal/coach"
	"github.com/claude/repcoach/internal/ingest"
	"github.com/claude/repcoach/internal/injury"
	"github.com/claude/repcoach/internal/models"
	"github.com/claude/repcoach/internal/storage"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// decodeJSON reads the body into v and answers 400 on failure. An empty
// body leaves v untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return false
	}
	return true
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

// writeError maps caller mistakes to 400 and everything else to 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, coach.ErrInvalidRequest),
		errors.Is(err, injury.ErrInvalidSeverity),
		errors.Is(err, injury.ErrUnknownArea):
		badRequest(w, err.Error())
	default:
		s.log.Error("request failed", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	profile, err := s.coach.Profile(r.Context(), uid)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

type trainingRequest struct {
	Experience        models.Experience `json:"experience"`
	TrainingAgeMonths int               `json:"training_age_months"`
}

func (s *Server) handleUpdateTraining(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	var req trainingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	switch req.Experience {
	case models.ExperienceBeginner, models.ExperienceNovice, models.ExperienceIntermediate, models.ExperienceAdvanced:
	default:
		badRequest(w, "experience must be beginner, novice, intermediate or advanced")
		return
	}
	if req.TrainingAgeMonths < 0 {
		badRequest(w, "training_age_months must not be negative")
		return
	}
	if err := s.db.UpdateTrainingProfile(r.Context(), uid, req.Experience, req.TrainingAgeMonths); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	stats, err := s.db.GetDataStats(r.Context(), uid)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleImportLogs(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	logs, err := s.db.QueryImportLogs(r.Context(), uid, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func (s *Server) handleExercises(w http.ResponseWriter, r *http.Request) {
	exercises, err := s.db.Exercises(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if muscle := r.URL.Query().Get("muscle"); muscle != "" {
		exercises = byMuscle(exercises, muscle)
	}
	writeJSON(w, http.StatusOK, exercises)
}

func (s *Server) handleMaxes(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	maxes, err := s.db.EstimatedMaxes(r.Context(), uid)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, maxes)
}

type recordMaxRequest struct {
	Exercise    string     `json:"exercise"`
	OneRepMaxKg float64    `json:"one_rep_max_kg"`
	TestedAt    *time.Time `json:"tested_at,omitempty"`
}

func (s *Server) handleRecordMax(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	var req recordMaxRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	var at time.Time
	if req.TestedAt != nil {
		at = *req.TestedAt
	}
	m, err := s.coach.RecordTestedMax(r.Context(), uid, req.Exercise, req.OneRepMaxKg, at)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

type bodyCompositionRequest struct {
	MeasuredAt     *time.Time `json:"measured_at,omitempty"`
	MassKg         float64    `json:"mass_kg"`
	BodyFatPct     float64    `json:"body_fat_pct"`
	HeightCm       float64    `json:"height_cm"`
	LeftArmLeanKg  *float64   `json:"left_arm_lean_kg,omitempty"`
	RightArmLeanKg *float64   `json:"right_arm_lean_kg,omitempty"`
	LeftLegLeanKg  *float64   `json:"left_leg_lean_kg,omitempty"`
	RightLegLeanKg *float64   `json:"right_leg_lean_kg,omitempty"`
}

func (s *Server) handleBodyComposition(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	var req bodyCompositionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.MassKg <= 0 || req.HeightCm <= 0 {
		badRequest(w, "mass_kg and height_cm must be positive")
		return
	}
	if req.BodyFatPct < 0 || req.BodyFatPct > 60 {
		badRequest(w, "body_fat_pct must be between 0 and 60")
		return
	}
	row := models.BodyCompositionRow{
		UserID:         uid,
		MeasuredAt:     time.Now(),
		MassKg:         req.MassKg,
		BodyFatPct:     req.BodyFatPct,
		HeightCm:       req.HeightCm,
		LeftArmLeanKg:  req.LeftArmLeanKg,
		RightArmLeanKg: req.RightArmLeanKg,
		LeftLegLeanKg:  req.LeftLegLeanKg,
		RightLegLeanKg: req.RightLegLeanKg,
	}
	if req.MeasuredAt != nil {
		row.MeasuredAt = *req.MeasuredAt
	}
	if err := s.db.InsertBodyComposition(r.Context(), row); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, models.NewBodyComposition(row.MassKg, row.BodyFatPct, row.HeightCm))
}

type sleepRequest struct {
	Date       string  `json:"date"`
	TotalSleep float64 `json:"total_sleep_hours"`
	Deep       float64 `json:"deep_hours"`
	REM        float64 `json:"rem_hours"`
	InBed      float64 `json:"in_bed_hours"`
}

func (s *Server) handleSleep(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	var req sleepRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	date, err := time.Parse(time.DateOnly, req.Date)
	if err != nil {
		badRequest(w, "date must be YYYY-MM-DD")
		return
	}
	if req.TotalSleep <= 0 || req.TotalSleep > 24 {
		badRequest(w, "total_sleep_hours must be in (0, 24]")
		return
	}
	row := models.SleepSessionRow{
		UserID:     uid,
		Date:       date,
		TotalSleep: req.TotalSleep,
		Deep:       req.Deep,
		REM:        req.REM,
		InBed:      req.InBed,
	}
	if err := s.db.InsertSleepSession(r.Context(), row); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

func (s *Server) handleAlphaIngest(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	start := time.Now()
	result, err := s.alpha.Ingest(r.Context(), r.Body, uid)
	s.logImport(r, uid, "alpha", result, err, time.Since(start))
	s.metrics.ObserveIngest(result)
	if err != nil {
		s.log.Error("alpha ingest error", "error", err)
		badRequest(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// logImport records an import's outcome. Failures to log are not surfaced.
func (s *Server) logImport(r *http.Request, uid int, source string, result *ingest.Result, importErr error, took time.Duration) {
	ms := int(took.Milliseconds())
	entry := storage.ImportLog{UserID: uid, Source: source, Status: "success", DurationMs: &ms}
	if result != nil {
		entry.SessionsReceived = result.SessionsReceived
		entry.SetsInserted = result.SetsInserted
		entry.SetsSkipped = result.SetsSkipped
	}
	if importErr != nil {
		msg := importErr.Error()
		entry.Status = "error"
		entry.ErrorMessage = &msg
	}
	if _, err := s.db.InsertImportLog(r.Context(), entry); err != nil {
		s.log.Error("failed to log import", "source", source, "error", err)
	}
}
