package mcp

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/claude/repcoach/internal/coach"
	"github.com/claude/repcoach/internal/models"
	"github.com/claude/repcoach/internal/readiness"
	"github.com/mark3labs/mcp-go/mcp"
)

// parseFlexTime parses RFC3339 or date-only (2006-01-02) strings.
func parseFlexTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// parseInjuries reads "area:severity" pairs separated by commas, e.g.
// "knee_left:2, lower_back:1". A missing severity means mild.
func parseInjuries(s string) ([]models.InjuryContext, error) {
	var out []models.InjuryContext
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		area, sev, found := strings.Cut(part, ":")
		inj := models.InjuryContext{Area: strings.TrimSpace(area), Severity: models.SeverityMild}
		if found {
			n, err := strconv.Atoi(strings.TrimSpace(sev))
			if err != nil {
				return nil, fmt.Errorf("injury %q: severity must be 1-3", part)
			}
			inj.Severity = models.Severity(n)
		}
		out = append(out, inj)
	}
	return out, nil
}

// readinessInput collects the optional check-in arguments. ok is false when
// none were given.
func readinessInput(req mcp.CallToolRequest) (in readiness.Input, ok bool) {
	args := req.GetArguments()
	if _, has := args["sleep_hours"]; has {
		v := req.GetFloat("sleep_hours", 0)
		in.SleepHours, ok = &v, true
	}
	if _, has := args["previous_session_rpe"]; has {
		v := req.GetFloat("previous_session_rpe", 0)
		in.PreviousSessionRPE, ok = &v, true
	}
	for name, dst := range map[string]**int{
		"sleep_quality":           &in.SleepQuality,
		"stress_level":            &in.StressLevel,
		"nutrition_rating":        &in.NutritionRating,
		"days_since_last_session": &in.DaysSinceLastSession,
	} {
		if _, has := args[name]; has {
			v := req.GetInt(name, 0)
			*dst, ok = &v, true
		}
	}
	return in, ok
}

var checkInArgs = []mcp.ToolOption{
	mcp.WithNumber("sleep_hours", mcp.Description("Hours slept last night")),
	mcp.WithNumber("sleep_quality", mcp.Description("Sleep quality 1-5")),
	mcp.WithNumber("stress_level", mcp.Description("Stress 1-5, 5 is most stressed")),
	mcp.WithNumber("nutrition_rating", mcp.Description("Nutrition 1-5")),
	mcp.WithNumber("previous_session_rpe", mcp.Description("RPE of the previous session, 1-10")),
	mcp.WithNumber("days_since_last_session", mcp.Description("Rest days since the previous session")),
}

const injuriesHelp = `Active injuries as "area:severity" pairs separated by commas, e.g. "knee_left:2, lower_back:1". Severity 1 mild, 2 moderate, 3 severe`

// --- Tool definitions ---

var toolRecommendWeight = mcp.NewTool("recommend_weight", append([]mcp.ToolOption{
	mcp.WithDescription("Recommend a working weight for one exercise from the user's history, known maxes and body composition. Injured lifts are swapped first; a check-in scales the targets."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name or catalog ID")),
	mcp.WithNumber("rep_min", mcp.Description("Low end of the rep range (default: catalog range)")),
	mcp.WithNumber("rep_max", mcp.Description("High end of the rep range")),
	mcp.WithNumber("target_rir", mcp.Description("Reps in reserve to leave (default 2)")),
	mcp.WithNumber("sets", mcp.Description("Working sets")),
	mcp.WithNumber("min_increment_kg", mcp.Description("Smallest load jump available (default 2.5)")),
	mcp.WithBoolean("include_warm_up", mcp.Description("Include a warm-up ramp")),
	mcp.WithString("injuries", mcp.Description(injuriesHelp)),
}, checkInArgs...)...)

var toolScoreReadiness = mcp.NewTool("score_readiness", append([]mcp.ToolOption{
	mcp.WithDescription("Score today's readiness 0-100 from a check-in. Missing sleep and rest days are filled from stored data, anything else uses neutral defaults."),
}, checkInArgs...)...)

var toolCheckDeload = mcp.NewTool("check_deload",
	mcp.WithDescription("Check whether the current training block calls for a deload: accumulated fatigue, missed targets, the scheduled deload week or RPE creep."),
)

var toolForecastFatigue = mcp.NewTool("forecast_fatigue",
	mcp.WithDescription("Project end-of-week fatigue for a planned week of training."),
	mcp.WithNumber("planned_sessions", mcp.Required(), mcp.Description("Sessions planned this week")),
	mcp.WithNumber("avg_rpe", mcp.Required(), mcp.Description("Expected average session RPE, 0-10")),
)

var toolAutoSwap = mcp.NewTool("auto_swap",
	mcp.WithDescription("Repair a workout around injuries: unsafe exercises are replaced with safe catalog alternatives for the same muscle, or removed when none exist."),
	mcp.WithArray("exercises", mcp.Required(), mcp.WithStringItems(), mcp.Description("Exercise names or catalog IDs in workout order")),
	mcp.WithString("injuries", mcp.Required(), mcp.Description(injuriesHelp)),
)

var toolSelectExercises = mcp.NewTool("select_exercises",
	mcp.WithDescription("Order a muscle group's exercises for today, skipping injury risks and rotating away from recently used ones."),
	mcp.WithString("muscle", mcp.Required(), mcp.Description("Muscle group, e.g. chest, quads, hamstrings")),
	mcp.WithString("injuries", mcp.Description(injuriesHelp)),
)

var toolListExercises = mcp.NewTool("list_exercises",
	mcp.WithDescription("List catalog exercises, optionally for one primary muscle."),
	mcp.WithString("muscle", mcp.Description("Primary muscle filter")),
)

var toolLogDiscomfort = mcp.NewTool("log_discomfort",
	mcp.WithDescription("Log a discomfort report. Pain returns an immediate warning; reports recurring at one body part suggest tracking an injury."),
	mcp.WithString("body_part", mcp.Required(), mcp.Description("Where it hurts, e.g. left knee")),
	mcp.WithString("level", mcp.Required(), mcp.Enum("twinge", "discomfort", "pain"), mcp.Description("How bad it is")),
	mcp.WithString("exercise", mcp.Description("Exercise being performed")),
	mcp.WithNumber("set_number", mcp.Description("Set number within the exercise")),
	mcp.WithString("notes", mcp.Description("Free-text notes")),
	mcp.WithString("at", mcp.Description("When it happened (YYYY-MM-DD or RFC3339, default now)")),
)

var toolDiscomfortPatterns = mcp.NewTool("discomfort_patterns",
	mcp.WithDescription("Summarize recurring discomfort by body part over the recent window."),
)

// --- Tool handlers ---

func (h *handlers) recommendWeight(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercise, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}
	injuries, err := parseInjuries(req.GetString("injuries", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	plan := coach.PlanRequest{
		Exercise:       exercise,
		RepRange:       models.RepRange{Min: req.GetInt("rep_min", 0), Max: req.GetInt("rep_max", 0)},
		TargetRIR:      req.GetInt("target_rir", 0),
		Sets:           req.GetInt("sets", 0),
		MinIncrementKg: req.GetFloat("min_increment_kg", 0),
		IncludeWarmUp:  req.GetBool("include_warm_up", false),
		Injuries:       injuries,
	}
	if in, ok := readinessInput(req); ok {
		plan.Readiness = &in
	}

	uid := UserIDFromContext(ctx)
	out, err := h.ds.PlanExercise(ctx, uid, plan)
	if err != nil {
		h.log.Error("mcp recommend_weight", "error", err)
		return mcp.NewToolResultError("recommendation failed: " + err.Error()), nil
	}
	return jsonResult(out)
}

func (h *handlers) scoreReadiness(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	in, _ := readinessInput(req)
	uid := UserIDFromContext(ctx)
	score, err := h.ds.Readiness(ctx, uid, in)
	if err != nil {
		h.log.Error("mcp score_readiness", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(score)
}

func (h *handlers) checkDeload(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)
	d, err := h.ds.CheckDeload(ctx, uid)
	if err != nil {
		h.log.Error("mcp check_deload", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(d)
}

func (h *handlers) forecastFatigue(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessions := req.GetInt("planned_sessions", -1)
	rpe := req.GetFloat("avg_rpe", -1)
	if sessions < 0 || rpe < 0 || rpe > 10 {
		return mcp.NewToolResultError("planned_sessions must be >= 0 and avg_rpe within 0-10"), nil
	}
	uid := UserIDFromContext(ctx)
	f, err := h.ds.ForecastWeek(ctx, uid, sessions, rpe)
	if err != nil {
		h.log.Error("mcp forecast_fatigue", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(f)
}

func (h *handlers) autoSwap(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercises := req.GetStringSlice("exercises", nil)
	if len(exercises) == 0 {
		return mcp.NewToolResultError("exercises parameter is required"), nil
	}
	injuries, err := parseInjuries(req.GetString("injuries", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, err := h.ds.AutoSwap(ctx, exercises, injuries)
	if err != nil {
		h.log.Error("mcp auto_swap", "error", err)
		return mcp.NewToolResultError("swap failed: " + err.Error()), nil
	}
	return jsonResult(out)
}

func (h *handlers) selectExercises(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	muscle, err := req.RequireString("muscle")
	if err != nil {
		return mcp.NewToolResultError("muscle parameter is required"), nil
	}
	injuries, err := parseInjuries(req.GetString("injuries", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	uid := UserIDFromContext(ctx)
	ranking, err := h.ds.SelectExercises(ctx, uid, muscle, injuries)
	if err != nil {
		h.log.Error("mcp select_exercises", "error", err)
		return mcp.NewToolResultError("selection failed: " + err.Error()), nil
	}
	return jsonResult(ranking)
}

func (h *handlers) listExercises(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercises, err := h.ds.Exercises(ctx, req.GetString("muscle", ""))
	if err != nil {
		h.log.Error("mcp list_exercises", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(exercises)
}

func (h *handlers) logDiscomfort(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	part, err := req.RequireString("body_part")
	if err != nil {
		return mcp.NewToolResultError("body_part parameter is required"), nil
	}
	level, err := req.RequireString("level")
	if err != nil {
		return mcp.NewToolResultError("level parameter is required"), nil
	}
	ev := models.DiscomfortEvent{
		BodyPart:     part,
		Level:        models.DiscomfortLevel(level),
		ExerciseName: req.GetString("exercise", ""),
		SetNumber:    req.GetInt("set_number", 0),
		Notes:        req.GetString("notes", ""),
	}
	if at := req.GetString("at", ""); at != "" {
		ev.LoggedAt, err = parseFlexTime(at)
		if err != nil {
			return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
		}
	}

	uid := UserIDFromContext(ctx)
	out, err := h.ds.LogDiscomfort(ctx, uid, ev)
	if err != nil {
		h.log.Error("mcp log_discomfort", "error", err)
		return mcp.NewToolResultError("logging failed: " + err.Error()), nil
	}
	return jsonResult(out)
}

func (h *handlers) discomfortPatterns(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)
	patterns, err := h.ds.DiscomfortPatterns(ctx, uid)
	if err != nil {
		h.log.Error("mcp discomfort_patterns", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(patterns)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
