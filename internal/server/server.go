package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/claude/repcoach/internal/coach"
	"github.com/claude/repcoach/internal/ingest"
	"github.com/claude/repcoach/internal/models"
	"github.com/claude/repcoach/internal/storage"
	"github.com/go-chi/chi/v5"
)

// Store is the persistence the handlers use directly, outside the coach
// service. *storage.DB satisfies it.
type Store interface {
	UserResolver
	GetUser(ctx context.Context, userID int) (*models.UserRow, error)
	UpdateTrainingProfile(ctx context.Context, userID int, exp models.Experience, trainingAgeMonths int) error
	EstimatedMaxes(ctx context.Context, userID int) ([]models.EstimatedMax, error)
	Exercises(ctx context.Context) ([]models.ExerciseMetadata, error)
	InsertSleepSession(ctx context.Context, row models.SleepSessionRow) error
	InsertBodyComposition(ctx context.Context, row models.BodyCompositionRow) error
	GetDataStats(ctx context.Context, userID int) (*storage.DataStats, error)
	InsertImportLog(ctx context.Context, log storage.ImportLog) (int64, error)
	QueryImportLogs(ctx context.Context, userID, limit int) ([]storage.ImportLog, error)
}

// Ingester imports a history export. *alpha.Provider satisfies it.
type Ingester interface {
	Ingest(ctx context.Context, r io.Reader, userID int) (*ingest.Result, error)
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	db     Store
	coach  *coach.Service
	alpha  Ingester
	log    *slog.Logger
	apiKey string
	whois  WhoIser
	mcp    http.Handler
	router chi.Router

	metrics         *Metrics
	ingestPerMinute int
}

// New creates a new Server with all routes configured.
func New(db Store, svc *coach.Service, alphaProvider Ingester, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		db:     db,
		coach:  svc,
		alpha:  alphaProvider,
		log:    log,
		apiKey: apiKey,

		metrics: NewMetrics(),
	}
	s.routes()
	return s
}

// SetTailscale switches identity from the dev user to tailnet WhoIs lookups.
// Call before serving.
func (s *Server) SetTailscale(lc WhoIser) {
	s.whois = lc
	s.routes()
}

// SetMCP mounts an MCP handler at /mcp behind the same identity middleware.
// Call before serving.
func (s *Server) SetMCP(h http.Handler) {
	s.mcp = h
	s.routes()
}

// SetIngestLimit caps export uploads per user per minute. Zero disables the
// limit. Call before serving.
func (s *Server) SetIngestLimit(perMinute int) {
	s.ingestPerMinute = perMinute
	s.routes()
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// UserID returns the caller resolved by the identity middleware.
func UserID(r *http.Request) int {
	return userIDFromContext(r)
}

func (s *Server) identity() func(http.Handler) http.Handler {
	if s.whois != nil {
		return TailscaleIdentity(s.whois, s.db, s.log)
	}
	return DevIdentity
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(RequestLogging(s.log))
	r.Use(s.metrics.Middleware)
	r.Use(CORS)

	r.Handle("/metrics", s.metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.identity())

		r.Route("/ingest", func(r chi.Router) {
			r.Use(APIKeyAuth(s.apiKey))
			r.Use(RateLimit(s.ingestPerMinute))
			r.Post("/alpha", s.handleAlphaIngest)
		})

		r.Get("/me", s.handleMe)
		r.Get("/profile", s.handleProfile)
		r.Put("/profile/training", s.handleUpdateTraining)
		r.Get("/stats", s.handleStats)
		r.Get("/imports", s.handleImportLogs)
		r.Get("/exercises", s.handleExercises)

		r.Get("/maxes", s.handleMaxes)
		r.Post("/maxes", s.handleRecordMax)
		r.Post("/body-composition", s.handleBodyComposition)
		r.Post("/sleep", s.handleSleep)

		r.Post("/recommendations/weight", s.handleRecommendWeight)
		r.Post("/readiness", s.handleReadiness)
		r.Post("/mesocycle", s.handleStartMesocycle)
		r.Get("/fatigue", s.handleFatigue)
		r.Post("/fatigue/update", s.handleFatigueUpdate)
		r.Post("/fatigue/forecast", s.handleFatigueForecast)
		r.Post("/deload/check", s.handleDeloadCheck)
		r.Post("/targets/adjust", s.handleAdjustTargets)

		r.Post("/injury/risk", s.handleInjuryRisk)
		r.Post("/injury/filter", s.handleInjuryFilter)
		r.Post("/injury/alternatives", s.handleInjuryAlternatives)
		r.Post("/injury/autoswap", s.handleAutoSwap)

		r.Post("/variety/select", s.handleVarietySelect)
		r.Post("/variety/usage", s.handleVarietyUsage)
		r.Get("/variety/preferences", s.handleGetPreferences)
		r.Put("/variety/preferences", s.handlePutPreferences)

		r.Post("/discomfort", s.handleLogDiscomfort)
		r.Get("/discomfort/patterns", s.handleDiscomfortPatterns)
	})

	if s.mcp != nil {
		r.With(s.identity()).Handle("/mcp", s.mcp)
	}
	s.router = r
}
