package mcp

import (
	"context"
	"encoding/json"

	"github.com/claude/repcoach/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) strengthProfile(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uid := UserIDFromContext(ctx)
	profile, err := h.ds.Profile(ctx, uid)
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, profile)
}

func (h *handlers) exerciseCatalog(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	exercises, err := h.ds.Exercises(ctx, "")
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, exercises)
}

type severityInfo struct {
	Level       models.Severity `json:"level"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
}

var severityScale = []severityInfo{
	{models.SeverityMild, "mild", "Exercises the area must avoid are removed or swapped"},
	{models.SeverityModerate, "moderate", "Caution exercises are swapped out of workouts as well"},
	{models.SeveritySevere, "severe", "Caution exercises are also dropped from selection pools"},
}

func (h *handlers) bodyAreas(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonResource(req.Params.URI, map[string]any{
		"areas":    models.KnownAreas,
		"severity": severityScale,
	})
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
