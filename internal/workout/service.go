package workout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/claude/gymbro/internal/live"
	"github.com/claude/gymbro/internal/models"
	"github.com/claude/gymbro/internal/session"
)

// ErrNotFound is returned when a workout or exercise does not exist.
var ErrNotFound = errors.New("not found")

// DefaultLoadStep is the load change applied by IncreaseLoad and DecreaseLoad
// when no step is configured.
const DefaultLoadStep = 1.0

// Service implements the workout and exercise use cases on top of a
// Repository. Every write publishes a change on the bus so open Watch
// streams re-read their data.
type Service struct {
	repo     Repository
	bus      *live.Bus
	loadStep float64
	log      *slog.Logger
}

// Compile-time checks: Service is the data layer for sessions.
var (
	_ session.ExerciseUseCase = (*Service)(nil)
	_ session.WorkoutUseCase  = (*Service)(nil)
)

// NewService creates a Service. A non-positive loadStep falls back to DefaultLoadStep.
func NewService(repo Repository, bus *live.Bus, loadStep float64, log *slog.Logger) *Service {
	if loadStep <= 0 {
		loadStep = DefaultLoadStep
	}
	return &Service{repo: repo, bus: bus, loadStep: loadStep, log: log}
}

// ListWorkouts returns every workout, newest first.
func (s *Service) ListWorkouts(ctx context.Context) ([]models.Workout, error) {
	return s.repo.ListWorkouts(ctx)
}

// CreateWorkout stores a new, unfinished workout.
func (s *Service) CreateWorkout(ctx context.Context, name string) (models.Workout, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Workout{}, fmt.Errorf("workout name is required")
	}
	w, err := s.repo.CreateWorkout(ctx, name)
	if err != nil {
		return models.Workout{}, fmt.Errorf("creating workout: %w", err)
	}
	s.bus.Publish(live.WorkoutsTopic())
	return w, nil
}

// RenameWorkout gives an existing workout a new name.
func (s *Service) RenameWorkout(ctx context.Context, id int64, name string) (models.Workout, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Workout{}, fmt.Errorf("workout name is required")
	}
	found, err := s.repo.RenameWorkout(ctx, id, name)
	if err != nil {
		return models.Workout{}, fmt.Errorf("renaming workout: %w", err)
	}
	if !found {
		return models.Workout{}, fmt.Errorf("workout %d: %w", id, ErrNotFound)
	}
	s.bus.Publish(live.WorkoutTopic(id), live.WorkoutsTopic())

	w, err := s.repo.GetWorkout(ctx, id)
	if err != nil {
		return models.Workout{}, fmt.Errorf("looking up workout: %w", err)
	}
	if w == nil {
		return models.Workout{}, fmt.Errorf("workout %d: %w", id, ErrNotFound)
	}
	return *w, nil
}

// AddExercise validates and stores an exercise for an existing workout.
func (s *Service) AddExercise(ctx context.Context, e models.Exercise) (models.Exercise, error) {
	e.ID = models.ExerciseID{}
	e.Name = strings.TrimSpace(e.Name)
	if err := e.Validate(); err != nil {
		return models.Exercise{}, err
	}
	w, err := s.repo.GetWorkout(ctx, e.WorkoutID)
	if err != nil {
		return models.Exercise{}, fmt.Errorf("looking up workout: %w", err)
	}
	if w == nil {
		return models.Exercise{}, fmt.Errorf("workout %d: %w", e.WorkoutID, ErrNotFound)
	}
	created, err := s.repo.CreateExercise(ctx, e)
	if err != nil {
		return models.Exercise{}, fmt.Errorf("creating exercise: %w", err)
	}
	s.bus.Publish(live.ExercisesTopic(e.WorkoutID))
	return created, nil
}

// UpdateExercise validates and replaces an exercise's definition. Open
// sessions reconcile the new set count against their checked sets.
func (s *Service) UpdateExercise(ctx context.Context, e models.Exercise) (models.Exercise, error) {
	id, ok := e.ID.Get()
	if !ok {
		return models.Exercise{}, fmt.Errorf("updating unsaved exercise %q: %w", e.Name, ErrNotFound)
	}
	e.Name = strings.TrimSpace(e.Name)
	if err := e.Validate(); err != nil {
		return models.Exercise{}, err
	}
	found, err := s.repo.UpdateExercise(ctx, e)
	if err != nil {
		return models.Exercise{}, fmt.Errorf("updating exercise: %w", err)
	}
	if !found {
		return models.Exercise{}, fmt.Errorf("exercise %d in workout %d: %w", id, e.WorkoutID, ErrNotFound)
	}
	s.bus.Publish(live.ExercisesTopic(e.WorkoutID))
	return e, nil
}

// IncreaseLoad raises the exercise's load by one step.
func (s *Service) IncreaseLoad(ctx context.Context, e models.Exercise) error {
	return s.adjustLoad(ctx, e, s.loadStep)
}

// DecreaseLoad lowers the exercise's load by one step, stopping at zero.
func (s *Service) DecreaseLoad(ctx context.Context, e models.Exercise) error {
	return s.adjustLoad(ctx, e, -s.loadStep)
}

func (s *Service) adjustLoad(ctx context.Context, e models.Exercise, delta float64) error {
	id, ok := e.ID.Get()
	if !ok {
		return fmt.Errorf("adjusting load of unsaved exercise %q: %w", e.Name, ErrNotFound)
	}
	found, err := s.repo.AdjustExerciseLoad(ctx, id, delta)
	if err != nil {
		return fmt.Errorf("adjusting load: %w", err)
	}
	if !found {
		return fmt.Errorf("exercise %d: %w", id, ErrNotFound)
	}
	s.bus.Publish(live.ExercisesTopic(e.WorkoutID))
	return nil
}

// FinishWorkout marks the workout finished. Finishing twice keeps the first time.
func (s *Service) FinishWorkout(ctx context.Context, id int64) error {
	found, err := s.repo.FinishWorkout(ctx, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("finishing workout: %w", err)
	}
	if !found {
		return fmt.Errorf("workout %d: %w", id, ErrNotFound)
	}
	s.bus.Publish(live.WorkoutTopic(id), live.WorkoutsTopic())
	return nil
}

// DeleteWorkout removes the workout and its exercises.
func (s *Service) DeleteWorkout(ctx context.Context, id int64) error {
	found, err := s.repo.DeleteWorkout(ctx, id)
	if err != nil {
		return fmt.Errorf("deleting workout: %w", err)
	}
	if !found {
		return fmt.Errorf("workout %d: %w", id, ErrNotFound)
	}
	s.bus.Publish(live.WorkoutTopic(id), live.ExercisesTopic(id), live.WorkoutsTopic())
	return nil
}

// WatchWorkouts streams the workout list on every change.
func (s *Service) WatchWorkouts(ctx context.Context) <-chan []models.Workout {
	return watch(ctx, s, live.WorkoutsTopic(), s.repo.ListWorkouts)
}

// WatchWorkout streams the workout on every change; nil while it does not exist.
func (s *Service) WatchWorkout(ctx context.Context, id int64) <-chan *models.Workout {
	return watch(ctx, s, live.WorkoutTopic(id), func(ctx context.Context) (*models.Workout, error) {
		return s.repo.GetWorkout(ctx, id)
	})
}

// WatchExercises streams the workout's exercises, in insertion order, on every change.
func (s *Service) WatchExercises(ctx context.Context, workoutID int64) <-chan []models.Exercise {
	return watch(ctx, s, live.ExercisesTopic(workoutID), func(ctx context.Context) ([]models.Exercise, error) {
		return s.repo.ListExercises(ctx, workoutID)
	})
}

// watch emits load's result now and after every change on topic until ctx
// is done, then closes the channel. Failed reads are logged and skipped.
func watch[T any](ctx context.Context, s *Service, topic live.Topic, load func(context.Context) (T, error)) <-chan T {
	out := make(chan T)
	signals, cancel := s.bus.Subscribe(topic)

	go func() {
		defer close(out)
		defer cancel()
		for {
			v, err := load(ctx)
			switch {
			case err != nil && ctx.Err() != nil:
				return
			case err != nil:
				s.log.Error("live query failed", "kind", topic.Kind, "id", topic.ID, "error", err)
			default:
				select {
				case out <- v:
				case <-ctx.Done():
					return
				}
			}

			select {
			case <-signals:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
