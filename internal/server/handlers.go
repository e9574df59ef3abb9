package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/claude/gymbro/internal/models"
	"github.com/claude/gymbro/internal/workout"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
	workouts, err := s.catalog.ListWorkouts(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if workouts == nil {
		workouts = []models.Workout{}
	}
	writeJSON(w, http.StatusOK, workouts)
}

type createWorkoutRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleCreateWorkout(w http.ResponseWriter, r *http.Request) {
	var req createWorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	created, err := s.catalog.CreateWorkout(r.Context(), req.Name)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleRenameWorkout(w http.ResponseWriter, r *http.Request) {
	workoutID, err := strconv.ParseInt(chi.URLParam(r, "workoutID"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid workout ID"})
		return
	}

	var req createWorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	renamed, err := s.catalog.RenameWorkout(r.Context(), workoutID, req.Name)
	switch {
	case errors.Is(err, workout.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case err != nil:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusOK, renamed)
	}
}

type addExerciseRequest struct {
	Name    string  `json:"name"`
	Sets    int     `json:"sets"`
	MinReps int     `json:"min_reps"`
	MaxReps int     `json:"max_reps"`
	Load    float64 `json:"load"`
}

func (s *Server) handleAddExercise(w http.ResponseWriter, r *http.Request) {
	e, ok := decodeExercise(w, r)
	if !ok {
		return
	}
	created, err := s.catalog.AddExercise(r.Context(), e)
	s.writeExerciseResult(w, http.StatusCreated, e, created, err)
}

func (s *Server) handleUpdateExercise(w http.ResponseWriter, r *http.Request) {
	e, ok := decodeExercise(w, r)
	if !ok {
		return
	}
	exerciseID, err := strconv.ParseInt(chi.URLParam(r, "exerciseID"), 10, 64)
	if err != nil || exerciseID <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid exercise ID"})
		return
	}
	e.ID = models.NewExerciseID(exerciseID)

	updated, err := s.catalog.UpdateExercise(r.Context(), e)
	s.writeExerciseResult(w, http.StatusOK, e, updated, err)
}

// decodeExercise reads the {workoutID} URL param and the exercise body,
// writing the error response itself.
func decodeExercise(w http.ResponseWriter, r *http.Request) (models.Exercise, bool) {
	workoutID, err := strconv.ParseInt(chi.URLParam(r, "workoutID"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid workout ID"})
		return models.Exercise{}, false
	}

	var req addExerciseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return models.Exercise{}, false
	}

	return models.Exercise{
		WorkoutID: workoutID,
		Name:      req.Name,
		Sets:      req.Sets,
		MinReps:   req.MinReps,
		MaxReps:   req.MaxReps,
		Load:      req.Load,
	}, true
}

func (s *Server) writeExerciseResult(w http.ResponseWriter, status int, in, out models.Exercise, err error) {
	switch {
	case errors.Is(err, workout.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, models.ErrInvalidExercise):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case err != nil:
		s.log.Error("exercise write failed", "workout_id", in.WorkoutID, "exercise_id", in.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, status, out)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
