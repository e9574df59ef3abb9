package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/claude/gymbro/internal/models"
	"github.com/claude/gymbro/internal/session"
)

// Client calls the Gymbro REST API. Used by gymbroctl, which runs on a
// workstation while the server lives on the tailnet.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a Client targeting the given base URL. Every write needs the
// API key; reads work without one.
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// ExerciseState is one exercise of a session as the server renders it.
type ExerciseState struct {
	models.Exercise
	RepsLabel string `json:"reps_label"`
	SetsState []bool `json:"sets_state"`
	Finished  bool   `json:"finished"`
}

// SessionState is a session snapshot as the server renders it.
type SessionState struct {
	Workout                   models.Workout  `json:"workout"`
	Exercises                 []ExerciseState `json:"exercises"`
	CanFinishWorkout          bool            `json:"can_finish_workout"`
	IsMenuExpanded            bool            `json:"is_menu_expanded"`
	ShouldDisplayEmptyMessage bool            `json:"should_display_empty_message"`
	Phase                     session.Phase   `json:"phase"`
}

// Session pairs a session ID with its latest state.
type Session struct {
	SessionID string       `json:"session_id"`
	State     SessionState `json:"state"`
}

func (c *Client) do(ctx context.Context, method, path string, in any, wantStatus int, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("client: encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("client: create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("client: read body: %w", err)
	}

	if resp.StatusCode != wantStatus {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("client: %s %s returned %d: %s", method, path, resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("client: %s %s returned %d: %s", method, path, resp.StatusCode, data)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("client: decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) ListWorkouts(ctx context.Context) ([]models.Workout, error) {
	var workouts []models.Workout
	if err := c.do(ctx, http.MethodGet, "/api/v1/workouts", nil, http.StatusOK, &workouts); err != nil {
		return nil, err
	}
	return workouts, nil
}

func (c *Client) CreateWorkout(ctx context.Context, name string) (models.Workout, error) {
	var w models.Workout
	err := c.do(ctx, http.MethodPost, "/api/v1/workouts", map[string]string{"name": name}, http.StatusCreated, &w)
	return w, err
}

func (c *Client) RenameWorkout(ctx context.Context, id int64, name string) (models.Workout, error) {
	var w models.Workout
	path := "/api/v1/workouts/" + strconv.FormatInt(id, 10)
	err := c.do(ctx, http.MethodPut, path, map[string]string{"name": name}, http.StatusOK, &w)
	return w, err
}

func (c *Client) AddExercise(ctx context.Context, e models.Exercise) (models.Exercise, error) {
	var out models.Exercise
	path := "/api/v1/workouts/" + strconv.FormatInt(e.WorkoutID, 10) + "/exercises"
	err := c.do(ctx, http.MethodPost, path, exerciseBody(e), http.StatusCreated, &out)
	return out, err
}

// UpdateExercise replaces the definition of the persisted exercise e.ID.
func (c *Client) UpdateExercise(ctx context.Context, e models.Exercise) (models.Exercise, error) {
	var out models.Exercise
	path := fmt.Sprintf("/api/v1/workouts/%d/exercises/%s", e.WorkoutID, e.ID)
	err := c.do(ctx, http.MethodPut, path, exerciseBody(e), http.StatusOK, &out)
	return out, err
}

func exerciseBody(e models.Exercise) map[string]any {
	return map[string]any{
		"name":     e.Name,
		"sets":     e.Sets,
		"min_reps": e.MinReps,
		"max_reps": e.MaxReps,
		"load":     e.Load,
	}
}

func (c *Client) OpenSession(ctx context.Context, workoutID int64) (*Session, error) {
	var s Session
	if err := c.do(ctx, http.MethodPost, "/api/v1/sessions", map[string]int64{"workout_id": workoutID}, http.StatusCreated, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	return c.sessionCall(ctx, http.MethodGet, sessionID, "", nil)
}

func (c *Client) ToggleSet(ctx context.Context, sessionID string, exerciseID int64, set int) (*Session, error) {
	path := fmt.Sprintf("/exercises/%d/sets/%d/toggle", exerciseID, set)
	return c.sessionCall(ctx, http.MethodPost, sessionID, path, nil)
}

func (c *Client) FinishWorkout(ctx context.Context, sessionID string) (*Session, error) {
	return c.sessionCall(ctx, http.MethodPost, sessionID, "/finish", nil)
}

func (c *Client) SetMenu(ctx context.Context, sessionID string, expanded bool) (*Session, error) {
	return c.sessionCall(ctx, http.MethodPut, sessionID, "/menu", map[string]bool{"expanded": expanded})
}

// AdjustLoad requests a load change. direction is "increase" or "decrease".
func (c *Client) AdjustLoad(ctx context.Context, sessionID string, exerciseID int64, direction string) error {
	path := fmt.Sprintf("/api/v1/sessions/%s/exercises/%d/load/%s", sessionID, exerciseID, direction)
	return c.do(ctx, http.MethodPost, path, nil, http.StatusAccepted, nil)
}

func (c *Client) DeleteWorkout(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/sessions/"+sessionID+"/workout", nil, http.StatusAccepted, nil)
}

func (c *Client) CloseSession(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/sessions/"+sessionID, nil, http.StatusNoContent, nil)
}

func (c *Client) sessionCall(ctx context.Context, method, sessionID, suffix string, in any) (*Session, error) {
	var s Session
	if err := c.do(ctx, method, "/api/v1/sessions/"+sessionID+suffix, in, http.StatusOK, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
