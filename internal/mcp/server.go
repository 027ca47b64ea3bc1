package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) int {
	if id, ok := ctx.Value(userIDKey).(int); ok {
		return id
	}
	return 1
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("RepCoach", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("RepCoach strength-training coach. Recommend working weights, score readiness, check deloads and fatigue, swap exercises around injuries, pick varied exercises and track recurring discomfort. All data is scoped to the authenticated user."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolRecommendWeight, Handler: h.recommendWeight},
		server.ServerTool{Tool: toolScoreReadiness, Handler: h.scoreReadiness},
		server.ServerTool{Tool: toolCheckDeload, Handler: h.checkDeload},
		server.ServerTool{Tool: toolForecastFatigue, Handler: h.forecastFatigue},
		server.ServerTool{Tool: toolAutoSwap, Handler: h.autoSwap},
		server.ServerTool{Tool: toolSelectExercises, Handler: h.selectExercises},
		server.ServerTool{Tool: toolListExercises, Handler: h.listExercises},
		server.ServerTool{Tool: toolLogDiscomfort, Handler: h.logDiscomfort},
		server.ServerTool{Tool: toolDiscomfortPatterns, Handler: h.discomfortPatterns},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resStrengthProfile, Handler: h.strengthProfile},
		server.ServerResource{Resource: resExerciseCatalog, Handler: h.exerciseCatalog},
		server.ServerResource{Resource: resBodyAreas, Handler: h.bodyAreas},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resStrengthProfile = mcp.NewResource(
	"repcoach://strength_profile",
	"Strength Profile",
	mcp.WithResourceDescription("Body composition, experience, known maxes and recent lifting history"),
	mcp.WithMIMEType("application/json"),
)

var resExerciseCatalog = mcp.NewResource(
	"repcoach://exercise_catalog",
	"Exercise Catalog",
	mcp.WithResourceDescription("Every exercise with its primary muscle, movement pattern, equipment, rep range and tier"),
	mcp.WithMIMEType("application/json"),
)

var resBodyAreas = mcp.NewResource(
	"repcoach://body_areas",
	"Injury Body Areas",
	mcp.WithResourceDescription("Body areas the injury classifier understands and the severity scale"),
	mcp.WithMIMEType("application/json"),
)
