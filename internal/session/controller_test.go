package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/claude/gymbro/internal/models"
)

// fakeData stands in for the data layer. Streams are plain channels fed by
// the test; calls are recorded in order.
type fakeData struct {
	exercises chan []models.Exercise
	workouts  chan *models.Workout

	mu    sync.Mutex
	calls []string
}

func newFakeData() *fakeData {
	return &fakeData{
		exercises: make(chan []models.Exercise, 8),
		workouts:  make(chan *models.Workout, 8),
	}
}

func (f *fakeData) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return nil
}

func (f *fakeData) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeData) WatchExercises(context.Context, int64) <-chan []models.Exercise {
	return f.exercises
}

func (f *fakeData) WatchWorkout(context.Context, int64) <-chan *models.Workout {
	return f.workouts
}

func (f *fakeData) IncreaseLoad(_ context.Context, e models.Exercise) error {
	return f.record("increase:" + e.ID.String())
}

func (f *fakeData) DecreaseLoad(_ context.Context, e models.Exercise) error {
	return f.record("decrease:" + e.ID.String())
}

func (f *fakeData) FinishWorkout(_ context.Context, id int64) error {
	return f.record(fmt.Sprintf("finish:%d", id))
}

func (f *fakeData) DeleteWorkout(_ context.Context, id int64) error {
	return f.record(fmt.Sprintf("delete:%d", id))
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// loadedController returns a controller already holding workout 5 and the
// given exercises, without going through the streams.
func loadedController(t *testing.T, exercises ...models.Exercise) (*Controller, *fakeData) {
	t.Helper()
	data := newFakeData()
	c := NewController(data, data, testLogger())
	t.Cleanup(c.Close)
	c.applyWorkout(0, 5, &models.Workout{ID: 5, Name: "Push"})
	c.applyExercises(0, exercises)
	return c, data
}

// TestToggleSetFlipsOnlyTarget verifies one set of one exercise changes.
func TestToggleSetFlipsOnlyTarget(t *testing.T) {
	c, _ := loadedController(t, exercise(1, 2), exercise(2, 2))

	c.ToggleSet(models.NewExerciseID(2), 1)

	want := [][]bool{{false, false}, {false, true}}
	if got := setsOf(c.State().Exercises); !reflect.DeepEqual(got, want) {
		t.Errorf("sets = %v, want %v", got, want)
	}
	if !c.State().CanFinishWorkout {
		t.Error("canFinishWorkout = false with open sets")
	}

	c.ToggleSet(models.NewExerciseID(2), 1)
	if got := c.State().Exercises[1].SetsState[1]; got {
		t.Error("second toggle did not uncheck the set")
	}
}

// TestToggleSetIgnoresUnknownTargets verifies unknown IDs and out-of-range
// indices leave the checklist alone.
func TestToggleSetIgnoresUnknownTargets(t *testing.T) {
	c, data := loadedController(t, exercise(1, 1))

	c.ToggleSet(models.NewExerciseID(9), 0)
	c.ToggleSet(models.NewExerciseID(1), 1)
	c.ToggleSet(models.NewExerciseID(1), -1)
	c.ToggleSet(models.ExerciseID{}, 0)

	if got := c.State().Exercises[0].SetsState; !reflect.DeepEqual(got, []bool{false}) {
		t.Errorf("sets = %v, want [false]", got)
	}
	c.Close()
	if calls := data.recorded(); len(calls) != 0 {
		t.Errorf("calls = %v, want none", calls)
	}
}

// TestToggleLastSetAutoFinishes verifies checking the final open set marks
// the workout finished exactly once.
func TestToggleLastSetAutoFinishes(t *testing.T) {
	c, data := loadedController(t, exercise(1, 2), exercise(2, 1))

	c.ToggleSet(models.NewExerciseID(1), 0)
	c.ToggleSet(models.NewExerciseID(1), 1)
	if !c.State().CanFinishWorkout {
		t.Fatal("canFinishWorkout = false before the last set")
	}

	c.ToggleSet(models.NewExerciseID(2), 0)

	s := c.State()
	if s.CanFinishWorkout {
		t.Error("canFinishWorkout = true after every set was checked")
	}
	if s.Phase != PhaseFinished {
		t.Errorf("phase = %q, want %q", s.Phase, PhaseFinished)
	}

	c.Close()
	if calls := data.recorded(); !reflect.DeepEqual(calls, []string{"finish:5"}) {
		t.Errorf("calls = %v, want [finish:5]", calls)
	}
}

// TestToggleAfterFinishReopens verifies unchecking a set after the
// auto-finish re-enables finishing without another backend call.
func TestToggleAfterFinishReopens(t *testing.T) {
	c, data := loadedController(t, exercise(1, 1))

	c.ToggleSet(models.NewExerciseID(1), 0)
	c.ToggleSet(models.NewExerciseID(1), 0)

	s := c.State()
	if !s.CanFinishWorkout {
		t.Error("canFinishWorkout = false after unchecking a set")
	}
	if s.Phase != PhaseActive {
		t.Errorf("phase = %q, want %q", s.Phase, PhaseActive)
	}

	c.Close()
	if calls := data.recorded(); !reflect.DeepEqual(calls, []string{"finish:5"}) {
		t.Errorf("calls = %v, want [finish:5]", calls)
	}
}

// TestFinishWorkoutChecksEverything verifies the bulk finish fills every
// checklist and marks the workout finished.
func TestFinishWorkoutChecksEverything(t *testing.T) {
	c, data := loadedController(t, exercise(1, 2), exercise(2, 3))
	c.ToggleSet(models.NewExerciseID(1), 0)
	c.ToggleSet(models.NewExerciseID(2), 2)

	c.FinishWorkout()

	s := c.State()
	want := [][]bool{{true, true}, {true, true, true}}
	if got := setsOf(s.Exercises); !reflect.DeepEqual(got, want) {
		t.Errorf("sets = %v, want %v", got, want)
	}
	if s.CanFinishWorkout {
		t.Error("canFinishWorkout = true after finishing")
	}

	c.Close()
	if calls := data.recorded(); !reflect.DeepEqual(calls, []string{"finish:5"}) {
		t.Errorf("calls = %v, want [finish:5]", calls)
	}
}

// TestLoadChangesAreForwarded verifies load intents reach the data layer
// without touching local state.
func TestLoadChangesAreForwarded(t *testing.T) {
	ex := exercise(1, 1)
	ex.Load = 40
	c, data := loadedController(t, ex)

	c.IncreaseLoad(ex)
	c.DecreaseLoad(ex)

	if got := c.State().Exercises[0].Original.Load; got != 40 {
		t.Errorf("load = %g, want 40 until the next reload", got)
	}

	c.Close()
	calls := data.recorded()
	if len(calls) != 2 {
		t.Fatalf("calls = %v, want two", calls)
	}
	seen := map[string]bool{calls[0]: true, calls[1]: true}
	if !seen["increase:1"] || !seen["decrease:1"] {
		t.Errorf("calls = %v, want increase:1 and decrease:1", calls)
	}
}

// TestDeleteWorkout verifies the loaded workout's ID is forwarded and that
// nothing is sent before a workout arrives.
func TestDeleteWorkout(t *testing.T) {
	data := newFakeData()
	c := NewController(data, data, testLogger())
	c.DeleteWorkout()
	c.applyWorkout(0, 5, &models.Workout{ID: 5})
	c.DeleteWorkout()
	c.Close()

	if calls := data.recorded(); !reflect.DeepEqual(calls, []string{"delete:5"}) {
		t.Errorf("calls = %v, want [delete:5]", calls)
	}
}

// TestMissingWorkoutIsIgnored verifies a not-found emission keeps the previous workout.
func TestMissingWorkoutIsIgnored(t *testing.T) {
	c, _ := loadedController(t)
	c.applyWorkout(0, 5, nil)
	if got := c.State().Workout.ID; got != 5 {
		t.Errorf("workout id = %d, want 5", got)
	}
}

// TestSetMenuState verifies the menu flag changes nothing else.
func TestSetMenuState(t *testing.T) {
	c, _ := loadedController(t, exercise(1, 1))
	before := c.State()

	c.SetMenuState(true)

	after := c.State()
	if !after.IsMenuExpanded {
		t.Error("menu not expanded")
	}
	after.IsMenuExpanded = false
	if !reflect.DeepEqual(before, after) {
		t.Errorf("state changed beyond the menu flag: %+v vs %+v", before, after)
	}
}

// TestReloadKeepsProgress verifies a background reload with a changed set
// count keeps toggled sets and recomputes canFinishWorkout.
func TestReloadKeepsProgress(t *testing.T) {
	c, _ := loadedController(t, exercise(1, 2))
	c.ToggleSet(models.NewExerciseID(1), 0)
	c.ToggleSet(models.NewExerciseID(1), 1)
	if c.State().CanFinishWorkout {
		t.Fatal("expected every set checked")
	}

	c.applyExercises(0, []models.Exercise{exercise(1, 3)})

	s := c.State()
	if got := s.Exercises[0].SetsState; !reflect.DeepEqual(got, []bool{true, true, false}) {
		t.Errorf("sets = %v, want [true true false]", got)
	}
	if !s.CanFinishWorkout {
		t.Error("canFinishWorkout = false after a set was added")
	}
	if s.Phase != PhaseActive {
		t.Errorf("phase = %q, want %q", s.Phase, PhaseActive)
	}
}

// TestNoOpToggleNeverFinishes verifies a toggle that changes nothing does
// not auto-finish, even when every set is already checked.
func TestNoOpToggleNeverFinishes(t *testing.T) {
	tests := []struct {
		name string
		id   models.ExerciseID
		set  int
	}{
		{"unknown exercise", models.NewExerciseID(9), 0},
		{"unpersisted exercise", models.ExerciseID{}, 0},
		{"set out of range", models.NewExerciseID(1), 1},
		{"negative set", models.NewExerciseID(1), -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, data := loadedController(t, exercise(1, 2))
			c.ToggleSet(models.NewExerciseID(1), 0)
			// Shrinking to one set leaves everything checked without a toggle.
			c.applyExercises(0, []models.Exercise{exercise(1, 1)})
			if !c.State().AllFinished() || c.State().Phase == PhaseFinished {
				t.Fatalf("setup state = %+v", c.State())
			}

			c.ToggleSet(tt.id, tt.set)

			if got := c.State().Phase; got == PhaseFinished {
				t.Errorf("phase = %q after a no-op toggle", got)
			}
			c.Close()
			if calls := data.recorded(); len(calls) != 0 {
				t.Errorf("calls = %v, want none", calls)
			}
		})
	}
}

// TestLoadContentStreams verifies emissions from both streams land in the
// state and that Close stops the subscriptions.
func TestLoadContentStreams(t *testing.T) {
	data := newFakeData()
	c := NewController(data, data, testLogger())
	if got := c.State().Phase; got != PhaseLoading {
		t.Fatalf("phase = %q, want %q", got, PhaseLoading)
	}

	updates, cancel := c.Subscribe()
	defer cancel()

	c.LoadContent(5)
	data.workouts <- &models.Workout{ID: 5, Name: "Legs"}
	data.exercises <- []models.Exercise{exercise(1, 2)}

	deadline := time.After(2 * time.Second)
	for {
		var s State
		select {
		case s = <-updates:
		case <-deadline:
			t.Fatalf("timed out; last state %+v", c.State())
		}
		if s.Workout.ID == 5 && len(s.Exercises) == 1 {
			if s.Phase != PhaseActive {
				t.Errorf("phase = %q, want %q", s.Phase, PhaseActive)
			}
			break
		}
	}

	c.Close()
	data.exercises <- []models.Exercise{exercise(1, 2), exercise(2, 2)}
	time.Sleep(20 * time.Millisecond)
	if got := len(c.State().Exercises); got != 1 {
		t.Errorf("exercises = %d after close, want 1", got)
	}
}

// TestClosedControllerDropsCalls verifies no data-layer call starts after Close.
func TestClosedControllerDropsCalls(t *testing.T) {
	c, data := loadedController(t, exercise(1, 1))
	c.Close()

	c.IncreaseLoad(exercise(1, 1))
	c.FinishWorkout()

	if calls := data.recorded(); len(calls) != 0 {
		t.Errorf("calls = %v, want none", calls)
	}
}

// routedData serves a separate pair of streams per workout ID so a test
// can tell which LoadContent call an emission belongs to.
type routedData struct {
	*fakeData
	mu              sync.Mutex
	exerciseStreams map[int64]chan []models.Exercise
	workoutStreams  map[int64]chan *models.Workout
}

func newRoutedData() *routedData {
	return &routedData{
		fakeData:        newFakeData(),
		exerciseStreams: make(map[int64]chan []models.Exercise),
		workoutStreams:  make(map[int64]chan *models.Workout),
	}
}

func (r *routedData) exercisesOf(id int64) chan []models.Exercise {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.exerciseStreams[id] == nil {
		r.exerciseStreams[id] = make(chan []models.Exercise, 8)
	}
	return r.exerciseStreams[id]
}

func (r *routedData) workoutOf(id int64) chan *models.Workout {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.workoutStreams[id] == nil {
		r.workoutStreams[id] = make(chan *models.Workout, 8)
	}
	return r.workoutStreams[id]
}

func (r *routedData) WatchExercises(_ context.Context, id int64) <-chan []models.Exercise {
	return r.exercisesOf(id)
}

func (r *routedData) WatchWorkout(_ context.Context, id int64) <-chan *models.Workout {
	return r.workoutOf(id)
}

// TestLoadContentReplacesPrevious verifies that after a second LoadContent
// emissions for the first workout never reach the state.
func TestLoadContentReplacesPrevious(t *testing.T) {
	data := newRoutedData()
	c := NewController(data, data, testLogger())
	defer c.Close()

	c.LoadContent(1)
	data.workoutOf(1) <- &models.Workout{ID: 1, Name: "Old"}
	data.exercisesOf(1) <- []models.Exercise{exercise(10, 1)}
	waitState(t, c, func(s State) bool { return s.Workout.ID == 1 && len(s.Exercises) == 1 })

	c.LoadContent(2)
	data.workoutOf(2) <- &models.Workout{ID: 2, Name: "New"}
	data.exercisesOf(2) <- []models.Exercise{exercise(20, 2), exercise(21, 2)}
	waitState(t, c, func(s State) bool { return s.Workout.ID == 2 && len(s.Exercises) == 2 })

	data.workoutOf(1) <- &models.Workout{ID: 1, Name: "Stale"}
	data.exercisesOf(1) <- []models.Exercise{exercise(10, 1)}
	time.Sleep(50 * time.Millisecond)

	s := c.State()
	if s.Workout.ID != 2 {
		t.Errorf("workout = %+v, want workout 2", s.Workout)
	}
	if len(s.Exercises) != 2 || !s.Exercises[0].Original.ID.Matches(models.NewExerciseID(20)) {
		t.Errorf("exercises = %+v, want workout 2's exercises", s.Exercises)
	}
}

// TestCloseEndsSubscriptions verifies Close closes open state streams.
func TestCloseEndsSubscriptions(t *testing.T) {
	c, _ := loadedController(t, exercise(1, 1))
	updates, cancel := c.Subscribe()
	defer cancel()
	<-updates

	c.Close()
	select {
	case _, ok := <-updates:
		if ok {
			t.Error("received a state after Close")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("subscription still open after Close")
	}
}

func waitState(t *testing.T, c *Controller, pred func(State) bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !pred(c.State()) {
		if time.Now().After(deadline) {
			t.Fatalf("timed out; last state %+v", c.State())
		}
		time.Sleep(5 * time.Millisecond)
	}
}
