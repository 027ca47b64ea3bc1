package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/claude/repcoach/internal/coach"
	"github.com/claude/repcoach/internal/discomfort"
	"github.com/claude/repcoach/internal/models"
	"github.com/claude/repcoach/internal/readiness"
	"github.com/claude/repcoach/internal/variety"
)

// HTTPClient implements DataSource by calling the RepCoach REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// do sends one request and decodes a 2xx JSON response into out. The user ID
// travels as X-User-ID, which the server honors only without Tailscale.
func (c *HTTPClient) do(ctx context.Context, method, path string, userID int, params url.Values, body, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("httpclient: encode %s: %w", path, err)
		}
		rd = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return fmt.Errorf("httpclient: create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID > 0 {
		req.Header.Set("X-User-ID", strconv.Itoa(userID))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, bytes.TrimSpace(data))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

type injuryBody struct {
	Exercises []string               `json:"exercises,omitempty"`
	Muscle    string                 `json:"muscle,omitempty"`
	Injuries  []models.InjuryContext `json:"injuries"`
}

func (c *HTTPClient) Profile(ctx context.Context, userID int) (models.StrengthProfile, error) {
	var p models.StrengthProfile
	err := c.do(ctx, http.MethodGet, "/api/v1/profile", userID, nil, nil, &p)
	return p, err
}

func (c *HTTPClient) Exercises(ctx context.Context, muscle string) ([]models.ExerciseMetadata, error) {
	var params url.Values
	if muscle != "" {
		params = url.Values{}
		params.Set("muscle", muscle)
	}
	var out []models.ExerciseMetadata
	if err := c.do(ctx, http.MethodGet, "/api/v1/exercises", 0, params, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) PlanExercise(ctx context.Context, userID int, req coach.PlanRequest) (coach.Plan, error) {
	var p coach.Plan
	err := c.do(ctx, http.MethodPost, "/api/v1/recommendations/weight", userID, nil, req, &p)
	return p, err
}

func (c *HTTPClient) Readiness(ctx context.Context, userID int, in readiness.Input) (readiness.Score, error) {
	var s readiness.Score
	err := c.do(ctx, http.MethodPost, "/api/v1/readiness", userID, nil, in, &s)
	return s, err
}

func (c *HTTPClient) CheckDeload(ctx context.Context, userID int) (readiness.DeloadDecision, error) {
	var d readiness.DeloadDecision
	err := c.do(ctx, http.MethodPost, "/api/v1/deload/check", userID, nil, struct{}{}, &d)
	return d, err
}

func (c *HTTPClient) ForecastWeek(ctx context.Context, userID, plannedSessions int, avgRPE float64) (readiness.Forecast, error) {
	body := map[string]any{"planned_sessions": plannedSessions, "avg_rpe": avgRPE}
	var f readiness.Forecast
	err := c.do(ctx, http.MethodPost, "/api/v1/fatigue/forecast", userID, nil, body, &f)
	return f, err
}

func (c *HTTPClient) AutoSwap(ctx context.Context, exercises []string, injuries []models.InjuryContext) (SwapOutcome, error) {
	var out SwapOutcome
	err := c.do(ctx, http.MethodPost, "/api/v1/injury/autoswap", 0, nil, injuryBody{Exercises: exercises, Injuries: injuries}, &out)
	return out, err
}

func (c *HTTPClient) SelectExercises(ctx context.Context, userID int, muscle string, injuries []models.InjuryContext) (variety.Ranking, error) {
	var r variety.Ranking
	err := c.do(ctx, http.MethodPost, "/api/v1/variety/select", userID, nil, injuryBody{Muscle: muscle, Injuries: injuries}, &r)
	return r, err
}

func (c *HTTPClient) LogDiscomfort(ctx context.Context, userID int, ev models.DiscomfortEvent) (discomfort.Outcome, error) {
	var out discomfort.Outcome
	err := c.do(ctx, http.MethodPost, "/api/v1/discomfort", userID, nil, ev, &out)
	return out, err
}

func (c *HTTPClient) DiscomfortPatterns(ctx context.Context, userID int) ([]discomfort.Pattern, error) {
	var out []discomfort.Pattern
	if err := c.do(ctx, http.MethodGet, "/api/v1/discomfort/patterns", userID, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
