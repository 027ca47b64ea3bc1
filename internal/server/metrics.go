package server

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/claude/repcoach/internal/ingest"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// Metrics collects request and ingest counters on a private registry so
// several servers can live in one process.
type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	ingested *prometheus.CounterVec
}

// NewMetrics registers the RepCoach collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "repcoach_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "repcoach_http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"method", "route"},
		),
		ingested: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "repcoach_ingest_sets_total",
				Help: "Sets received through export ingest, by outcome",
			},
			[]string{"outcome"},
		),
	}
	m.registry.MustRegister(m.requests, m.duration, m.ingested)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware counts requests by chi route pattern, keeping label
// cardinality bounded for parameterized paths.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(sw.status)).Inc()
		m.duration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// ObserveIngest records the set counts of one import.
func (m *Metrics) ObserveIngest(res *ingest.Result) {
	if res == nil {
		return
	}
	m.ingested.WithLabelValues("inserted").Add(float64(res.SetsInserted))
	m.ingested.WithLabelValues("skipped").Add(float64(res.SetsSkipped))
}

// userLimiter hands out one token bucket per user.
type userLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters map[int]*rate.Limiter
}

func newUserLimiter(perMinute int) *userLimiter {
	l := &userLimiter{limit: rate.Inf, burst: 1, limiters: make(map[int]*rate.Limiter)}
	if perMinute > 0 {
		l.limit = rate.Every(time.Minute / time.Duration(perMinute))
		l.burst = max(1, perMinute/6)
	}
	return l
}

func (l *userLimiter) allow(userID int) bool {
	l.mu.Lock()
	lim, ok := l.limiters[userID]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[userID] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}

// RateLimit returns middleware that answers 429 once a user exhausts their
// bucket. It must run after the identity middleware.
func RateLimit(perMinute int) func(http.Handler) http.Handler {
	l := newUserLimiter(perMinute)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.allow(userIDFromContext(r)) {
				w.Header().Set("Retry-After", "60")
				writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "too many requests"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
