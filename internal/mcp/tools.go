package mcp

import (
	"context"

	"github.com/claude/gymbro/internal/models"
	"github.com/claude/gymbro/internal/session"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// --- Tool definitions ---

var toolListWorkouts = mcp.NewTool("list_workouts",
	mcp.WithDescription("List all workouts, newest first, with their IDs and finished status."),
)

var toolStartSession = mcp.NewTool("start_session",
	mcp.WithDescription("Open a training session for a workout. Returns the session ID and the initial state; exercises arrive shortly after, so call get_session if the list is empty."),
	mcp.WithNumber("workout_id", mcp.Required(), mcp.Description("Workout ID from list_workouts")),
)

var toolGetSession = mcp.NewTool("get_session",
	mcp.WithDescription("Get the current state of a session: exercises with their checked sets, load and target reps, and whether the workout can still be finished."),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID returned by start_session")),
)

var toolToggleSet = mcp.NewTool("toggle_set",
	mcp.WithDescription("Check or uncheck one set of an exercise. Checking the last open set of the workout finishes it."),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
	mcp.WithNumber("exercise_id", mcp.Required(), mcp.Description("Exercise ID")),
	mcp.WithNumber("set", mcp.Required(), mcp.Description("Zero-based set index")),
)

var toolAdjustLoad = mcp.NewTool("adjust_load",
	mcp.WithDescription("Raise or lower the load of an exercise by one step. Checked sets are kept."),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
	mcp.WithNumber("exercise_id", mcp.Required(), mcp.Description("Exercise ID")),
	mcp.WithString("direction", mcp.Required(), mcp.Description("Which way to move the load"), mcp.Enum("increase", "decrease")),
)

var toolFinishWorkout = mcp.NewTool("finish_workout",
	mcp.WithDescription("Check every set of every exercise and mark the workout finished."),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
)

var toolCloseSession = mcp.NewTool("close_session",
	mcp.WithDescription("Close a session. Progress that was not finished is discarded."),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
)

// --- Results ---

type exerciseSummary struct {
	ID        models.ExerciseID `json:"id"`
	Name      string            `json:"name"`
	Reps      string            `json:"reps"`
	Load      float64           `json:"load"`
	SetsState []bool            `json:"sets_state"`
	Finished  bool              `json:"finished"`
}

type sessionSummary struct {
	SessionID        string            `json:"session_id"`
	WorkoutID        int64             `json:"workout_id"`
	WorkoutName      string            `json:"workout_name"`
	WorkoutFinished  bool              `json:"workout_finished"`
	Phase            session.Phase     `json:"phase"`
	CanFinishWorkout bool              `json:"can_finish_workout"`
	Exercises        []exerciseSummary `json:"exercises"`
}

func summarize(id uuid.UUID, st session.State) sessionSummary {
	out := sessionSummary{
		SessionID:        id.String(),
		WorkoutID:        st.Workout.ID,
		WorkoutName:      st.Workout.Name,
		WorkoutFinished:  st.Workout.Finished,
		Phase:            st.Phase,
		CanFinishWorkout: st.CanFinishWorkout,
		Exercises:        make([]exerciseSummary, 0, len(st.Exercises)),
	}
	for _, e := range st.Exercises {
		out.Exercises = append(out.Exercises, exerciseSummary{
			ID:        e.Original.ID,
			Name:      e.Original.Name,
			Reps:      e.Original.RepsLabel(),
			Load:      e.Original.Load,
			SetsState: e.SetsState,
			Finished:  e.Finished(),
		})
	}
	return out
}

func jsonResult(v any) *mcp.CallToolResult {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed")
	}
	return result
}

// --- Handlers ---

func (h *handlers) listWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	workouts, err := h.catalog.ListWorkouts(ctx)
	if err != nil {
		h.log.Error("mcp list_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if workouts == nil {
		workouts = []models.Workout{}
	}
	return jsonResult(workouts), nil
}

func (h *handlers) startSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	workoutID, err := req.RequireInt("workout_id")
	if err != nil || workoutID <= 0 {
		return mcp.NewToolResultError("workout_id parameter is required"), nil
	}

	id, c := h.sessions.Open(int64(workoutID))
	return jsonResult(summarize(id, c.State())), nil
}

// session resolves the session_id argument.
func (h *handlers) session(req mcp.CallToolRequest) (uuid.UUID, *session.Controller, *mcp.CallToolResult) {
	raw, err := req.RequireString("session_id")
	if err != nil {
		return uuid.Nil, nil, mcp.NewToolResultError("session_id parameter is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, nil, mcp.NewToolResultError("invalid session_id: " + err.Error())
	}
	c, err := h.sessions.Get(id)
	if err != nil {
		return uuid.Nil, nil, mcp.NewToolResultError(err.Error())
	}
	return id, c, nil
}

func (h *handlers) getSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, c, errResult := h.session(req)
	if errResult != nil {
		return errResult, nil
	}
	return jsonResult(summarize(id, c.State())), nil
}

func (h *handlers) toggleSet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, c, errResult := h.session(req)
	if errResult != nil {
		return errResult, nil
	}
	exerciseID, err := req.RequireInt("exercise_id")
	if err != nil {
		return mcp.NewToolResultError("exercise_id parameter is required"), nil
	}
	set, err := req.RequireInt("set")
	if err != nil {
		return mcp.NewToolResultError("set parameter is required"), nil
	}

	c.ToggleSet(models.NewExerciseID(int64(exerciseID)), set)
	return jsonResult(summarize(id, c.State())), nil
}

func (h *handlers) adjustLoad(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	_, c, errResult := h.session(req)
	if errResult != nil {
		return errResult, nil
	}
	exerciseID, err := req.RequireInt("exercise_id")
	if err != nil {
		return mcp.NewToolResultError("exercise_id parameter is required"), nil
	}
	direction, err := req.RequireString("direction")
	if err != nil {
		return mcp.NewToolResultError("direction parameter is required"), nil
	}

	target := models.NewExerciseID(int64(exerciseID))
	var exercise *models.Exercise
	for _, e := range c.State().Exercises {
		if e.Original.ID.Matches(target) {
			exercise = &e.Original
			break
		}
	}
	if exercise == nil {
		return mcp.NewToolResultError("exercise not in session"), nil
	}

	switch direction {
	case "increase":
		c.IncreaseLoad(*exercise)
	case "decrease":
		c.DecreaseLoad(*exercise)
	default:
		return mcp.NewToolResultError("direction must be increase or decrease"), nil
	}
	return mcp.NewToolResultText("load change requested; call get_session to see the new load"), nil
}

func (h *handlers) finishWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, c, errResult := h.session(req)
	if errResult != nil {
		return errResult, nil
	}
	c.FinishWorkout()
	return jsonResult(summarize(id, c.State())), nil
}

func (h *handlers) closeSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, _, errResult := h.session(req)
	if errResult != nil {
		return errResult, nil
	}
	if err := h.sessions.Close(id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("session closed"), nil
}
