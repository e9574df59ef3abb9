package session

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/claude/gymbro/internal/models"
)

// ExerciseUseCase is the exercise side of the data layer a session drives.
// Watch streams must close once ctx is done.
type ExerciseUseCase interface {
	WatchExercises(ctx context.Context, workoutID int64) <-chan []models.Exercise
	IncreaseLoad(ctx context.Context, exercise models.Exercise) error
	DecreaseLoad(ctx context.Context, exercise models.Exercise) error
}

// WorkoutUseCase is the workout side of the data layer. WatchWorkout emits
// nil while the workout cannot be found.
type WorkoutUseCase interface {
	WatchWorkout(ctx context.Context, workoutID int64) <-chan *models.Workout
	FinishWorkout(ctx context.Context, workoutID int64) error
	DeleteWorkout(ctx context.Context, workoutID int64) error
}

// finishReason names the transition that marked a workout finished.
type finishReason string

const (
	finishAuto     finishReason = "auto"
	finishExplicit finishReason = "explicit"
)

// Controller owns the state of one workout session and turns user intents
// into state transforms or use-case calls. Calls into the data layer run
// in the background and are never awaited by the caller.
type Controller struct {
	exercises ExerciseUseCase
	workouts  WorkoutUseCase
	log       *slog.Logger
	store     *Store

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	wg         sync.WaitGroup
	closed     bool
	stopLoader context.CancelFunc
	// loadGen identifies the current LoadContent call. Emissions from an
	// earlier call are dropped even if they were already received.
	loadGen atomic.Int64
}

// NewController creates a Controller with an empty, loading state.
func NewController(exercises ExerciseUseCase, workouts WorkoutUseCase, log *slog.Logger) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		exercises: exercises,
		workouts:  workouts,
		log:       log,
		store:     NewStore(initialState()),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// State returns the current snapshot.
func (c *Controller) State() State {
	return c.store.Snapshot()
}

// Subscribe streams snapshots; see Store.Subscribe.
func (c *Controller) Subscribe() (<-chan State, func()) {
	return c.store.Subscribe()
}

// LoadContent subscribes to the exercises and the workout with the given
// ID. A second call replaces the previous subscriptions.
func (c *Controller) LoadContent(workoutID int64) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if c.stopLoader != nil {
		c.stopLoader()
	}
	ctx, stop := context.WithCancel(c.ctx)
	c.stopLoader = stop
	gen := c.loadGen.Add(1)
	c.wg.Add(2)
	c.mu.Unlock()

	exercises := c.exercises.WatchExercises(ctx, workoutID)
	workouts := c.workouts.WatchWorkout(ctx, workoutID)

	go func() {
		defer c.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case list, ok := <-exercises:
				if !ok {
					return
				}
				c.applyExercises(gen, list)
			}
		}
	}()

	go func() {
		defer c.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case w, ok := <-workouts:
				if !ok {
					return
				}
				c.applyWorkout(gen, workoutID, w)
			}
		}
	}()
}

func (c *Controller) applyExercises(gen int64, list []models.Exercise) {
	c.store.Update(func(s State) State {
		if c.loadGen.Load() != gen {
			return s
		}
		s.Exercises = Reconcile(s.Exercises, list)
		s.CanFinishWorkout = !s.AllFinished()
		switch {
		case s.Phase == PhaseLoading:
			s.Phase = PhaseActive
		case s.Phase == PhaseFinished && s.CanFinishWorkout:
			s.Phase = PhaseActive
		}
		return s
	})
}

func (c *Controller) applyWorkout(gen, workoutID int64, w *models.Workout) {
	if w == nil {
		c.log.Debug("workout not found, keeping previous state", "workout_id", workoutID)
		return
	}
	c.store.Update(func(s State) State {
		if c.loadGen.Load() != gen {
			return s
		}
		s.Workout = *w
		return s
	})
}

// IncreaseLoad asks the data layer to raise the exercise's load. The new
// value arrives with the next exercise list.
func (c *Controller) IncreaseLoad(exercise models.Exercise) {
	c.launch("increase load", func(ctx context.Context) error {
		return c.exercises.IncreaseLoad(ctx, exercise)
	})
}

// DecreaseLoad asks the data layer to lower the exercise's load.
func (c *Controller) DecreaseLoad(exercise models.Exercise) {
	c.launch("decrease load", func(ctx context.Context) error {
		return c.exercises.DecreaseLoad(ctx, exercise)
	})
}

// ToggleSet flips one set of the exercise with the given ID and
// recomputes whether the workout can still be finished. Checking the last
// open set of the workout takes the auto-finish transition. A toggle that
// changes nothing (unknown exercise, set out of range) never finishes the
// workout, and neither does one made while the session is already finished.
func (c *Controller) ToggleSet(exerciseID models.ExerciseID, set int) {
	var autoFinish bool
	c.store.Update(func(s State) State {
		changed := false
		for i := range s.Exercises {
			e := &s.Exercises[i]
			if !e.Original.ID.Matches(exerciseID) || set < 0 || set >= len(e.SetsState) {
				continue
			}
			e.SetsState[set] = !e.SetsState[set]
			changed = true
		}

		allFinished := s.AllFinished()
		s.CanFinishWorkout = !allFinished
		switch {
		case changed && allFinished && s.Phase != PhaseFinished:
			s.Phase = PhaseFinished
			autoFinish = true
		case !allFinished && s.Phase == PhaseFinished:
			// The remote workout stays finished; only the session reopens.
			s.Phase = PhaseActive
		}
		return s
	})

	if autoFinish {
		c.markWorkoutFinished(finishAuto)
	}
}

// FinishWorkout checks every set of every exercise and marks the workout finished.
func (c *Controller) FinishWorkout() {
	c.store.Update(func(s State) State {
		for i := range s.Exercises {
			e := &s.Exercises[i]
			e.SetsState = make([]bool, max(e.Original.Sets, 0))
			for j := range e.SetsState {
				e.SetsState[j] = true
			}
		}
		s.CanFinishWorkout = false
		s.Phase = PhaseFinished
		return s
	})
	c.markWorkoutFinished(finishExplicit)
}

// DeleteWorkout asks the data layer to delete the loaded workout. Reacting
// to the deletion, e.g. leaving the screen, is up to the caller.
func (c *Controller) DeleteWorkout() {
	id := c.store.Snapshot().Workout.ID
	if id == 0 {
		c.log.Warn("delete requested before workout loaded")
		return
	}
	c.launch("delete workout", func(ctx context.Context) error {
		return c.workouts.DeleteWorkout(ctx, id)
	})
}

// SetMenuState records whether the session menu is expanded.
func (c *Controller) SetMenuState(expanded bool) {
	c.store.Update(func(s State) State {
		s.IsMenuExpanded = expanded
		return s
	})
}

// Close cancels the subscriptions and any in-flight calls, waits for
// them to return and then ends every state subscription. The controller
// ignores intents that need the data layer afterwards.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.cancel()
	c.wg.Wait()
	c.store.Close()
}

func (c *Controller) markWorkoutFinished(reason finishReason) {
	id := c.store.Snapshot().Workout.ID
	if id == 0 {
		c.log.Warn("finish requested before workout loaded", "reason", reason)
		return
	}
	c.log.Info("finishing workout", "workout_id", id, "reason", reason)
	c.launch("finish workout", func(ctx context.Context) error {
		return c.workouts.FinishWorkout(ctx, id)
	})
}

// launch runs fn in the background under the controller's lifetime.
// Failures are logged and otherwise dropped.
func (c *Controller) launch(op string, fn func(ctx context.Context) error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.log.Debug("session closed, dropping call", "op", op)
		return
	}
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()
		if err := fn(c.ctx); err != nil {
			c.log.Error("session call failed", "op", op, "error", err)
		}
	}()
}
