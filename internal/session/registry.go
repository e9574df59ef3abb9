package session

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned for unknown or closed session IDs.
var ErrSessionNotFound = errors.New("session not found")

// Registry tracks the open sessions, one per workout screen.
type Registry struct {
	exercises ExerciseUseCase
	workouts  WorkoutUseCase
	log       *slog.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*Controller
}

// NewRegistry creates an empty Registry.
func NewRegistry(exercises ExerciseUseCase, workouts WorkoutUseCase, log *slog.Logger) *Registry {
	return &Registry{
		exercises: exercises,
		workouts:  workouts,
		log:       log,
		sessions:  make(map[uuid.UUID]*Controller),
	}
}

// Open starts a session for the workout and begins loading its content.
func (r *Registry) Open(workoutID int64) (uuid.UUID, *Controller) {
	id := uuid.New()
	c := NewController(r.exercises, r.workouts, r.log.With("session", id, "workout_id", workoutID))

	r.mu.Lock()
	r.sessions[id] = c
	r.mu.Unlock()

	c.LoadContent(workoutID)
	r.log.Info("session opened", "session", id, "workout_id", workoutID)
	return id, c
}

// Get returns the controller for an open session.
func (r *Registry) Get(id uuid.UUID) (*Controller, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return c, nil
}

// Close tears a session down.
func (r *Registry) Close(id uuid.UUID) error {
	r.mu.Lock()
	c, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	c.Close()
	r.log.Info("session closed", "session", id)
	return nil
}

// CloseAll tears down every open session.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[uuid.UUID]*Controller)
	r.mu.Unlock()

	for _, c := range sessions {
		c.Close()
	}
}
