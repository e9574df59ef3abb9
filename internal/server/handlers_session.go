package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/claude/gymbro/internal/models"
	"github.com/claude/gymbro/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// exerciseView is one exercise as rendered by clients.
type exerciseView struct {
	models.Exercise
	RepsLabel string `json:"reps_label"`
	SetsState []bool `json:"sets_state"`
	Finished  bool   `json:"finished"`
}

// stateView is a session snapshot plus its derived flags.
type stateView struct {
	Workout                   models.Workout `json:"workout"`
	Exercises                 []exerciseView `json:"exercises"`
	CanFinishWorkout          bool           `json:"can_finish_workout"`
	IsMenuExpanded            bool           `json:"is_menu_expanded"`
	ShouldDisplayEmptyMessage bool           `json:"should_display_empty_message"`
	Phase                     session.Phase  `json:"phase"`
}

func newStateView(st session.State) stateView {
	v := stateView{
		Workout:                   st.Workout,
		Exercises:                 make([]exerciseView, 0, len(st.Exercises)),
		CanFinishWorkout:          st.CanFinishWorkout,
		IsMenuExpanded:            st.IsMenuExpanded,
		ShouldDisplayEmptyMessage: st.ShouldDisplayEmptyMessage(),
		Phase:                     st.Phase,
	}
	for _, e := range st.Exercises {
		v.Exercises = append(v.Exercises, exerciseView{
			Exercise:  e.Original,
			RepsLabel: e.Original.RepsLabel(),
			SetsState: e.SetsState,
			Finished:  e.Finished(),
		})
	}
	return v
}

type sessionResponse struct {
	SessionID uuid.UUID `json:"session_id"`
	State     stateView `json:"state"`
}

type openSessionRequest struct {
	WorkoutID int64 `json:"workout_id"`
}

func (s *Server) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	var req openSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.WorkoutID <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "workout_id is required"})
		return
	}

	id, c := s.sessions.Open(req.WorkoutID)
	writeJSON(w, http.StatusCreated, sessionResponse{SessionID: id, State: newStateView(c.State())})
}

// sessionFromRequest resolves the {sessionID} URL param, writing the error response itself.
func (s *Server) sessionFromRequest(w http.ResponseWriter, r *http.Request) (uuid.UUID, *session.Controller, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session ID"})
		return uuid.Nil, nil, false
	}
	c, err := s.sessions.Get(id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return uuid.Nil, nil, false
	}
	return id, c, true
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, c, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{SessionID: id, State: newStateView(c.State())})
}

func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	id, _, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}
	if err := s.sessions.Close(id); err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func exerciseIDParam(r *http.Request) (models.ExerciseID, bool) {
	v, err := strconv.ParseInt(chi.URLParam(r, "exerciseID"), 10, 64)
	if err != nil || v <= 0 {
		return models.ExerciseID{}, false
	}
	return models.NewExerciseID(v), true
}

func (s *Server) handleToggleSet(w http.ResponseWriter, r *http.Request) {
	id, c, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}
	exerciseID, ok := exerciseIDParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid exercise ID"})
		return
	}
	set, err := strconv.Atoi(chi.URLParam(r, "set"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid set index"})
		return
	}

	c.ToggleSet(exerciseID, set)
	writeJSON(w, http.StatusOK, sessionResponse{SessionID: id, State: newStateView(c.State())})
}

func (s *Server) handleAdjustLoad(w http.ResponseWriter, r *http.Request) {
	_, c, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}
	exerciseID, ok := exerciseIDParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid exercise ID"})
		return
	}

	exercise, found := findExercise(c.State(), exerciseID)
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "exercise not in session"})
		return
	}

	switch chi.URLParam(r, "direction") {
	case "increase":
		c.IncreaseLoad(exercise)
	case "decrease":
		c.DecreaseLoad(exercise)
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "direction must be increase or decrease"})
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (s *Server) handleFinishWorkout(w http.ResponseWriter, r *http.Request) {
	id, c, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}
	c.FinishWorkout()
	writeJSON(w, http.StatusOK, sessionResponse{SessionID: id, State: newStateView(c.State())})
}

func (s *Server) handleDeleteWorkout(w http.ResponseWriter, r *http.Request) {
	_, c, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}
	c.DeleteWorkout()
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

type menuRequest struct {
	Expanded bool `json:"expanded"`
}

func (s *Server) handleSetMenu(w http.ResponseWriter, r *http.Request) {
	id, c, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}
	var req menuRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	c.SetMenuState(req.Expanded)
	writeJSON(w, http.StatusOK, sessionResponse{SessionID: id, State: newStateView(c.State())})
}

func findExercise(st session.State, id models.ExerciseID) (models.Exercise, bool) {
	for _, e := range st.Exercises {
		if e.Original.ID.Matches(id) {
			return e.Original, true
		}
	}
	return models.Exercise{}, false
}
