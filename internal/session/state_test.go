package session

import (
	"testing"
	"time"

	"github.com/claude/gymbro/internal/models"
)

// TestStateDerivedFlags verifies the empty message and all-finished flags.
func TestStateDerivedFlags(t *testing.T) {
	empty := State{}
	if !empty.ShouldDisplayEmptyMessage() {
		t.Error("empty state should display the empty message")
	}
	if !empty.AllFinished() {
		t.Error("empty state should count as all finished")
	}

	s := State{Exercises: []models.ExerciseProgress{progress(1, true), progress(2, true, false)}}
	if s.ShouldDisplayEmptyMessage() {
		t.Error("non-empty state should not display the empty message")
	}
	if s.AllFinished() {
		t.Error("state with an open set should not be all finished")
	}
}

// TestStoreUpdateIsolation verifies transforms cannot reach into published snapshots.
func TestStoreUpdateIsolation(t *testing.T) {
	st := NewStore(State{Exercises: []models.ExerciseProgress{progress(1, false)}})
	before := st.Snapshot()

	st.Update(func(s State) State {
		s.Exercises[0].SetsState[0] = true
		return s
	})

	if before.Exercises[0].SetsState[0] {
		t.Error("earlier snapshot changed after update")
	}
	if !st.Snapshot().Exercises[0].SetsState[0] {
		t.Error("update was not stored")
	}
}

// TestStoreSubscribe verifies a subscriber gets the current state first,
// then only the newest of several quick updates.
func TestStoreSubscribe(t *testing.T) {
	st := NewStore(State{})
	ch, cancel := st.Subscribe()
	defer cancel()

	if got := recv(t, ch); got.IsMenuExpanded {
		t.Fatal("initial snapshot should have the menu collapsed")
	}

	st.Update(func(s State) State { s.IsMenuExpanded = true; return s })
	st.Update(func(s State) State { s.CanFinishWorkout = true; return s })

	got := recv(t, ch)
	if !got.IsMenuExpanded || !got.CanFinishWorkout {
		t.Errorf("got %+v, want newest snapshot", got)
	}
}

// TestStoreCancel verifies cancel closes the channel and is safe to repeat.
func TestStoreCancel(t *testing.T) {
	st := NewStore(State{})
	ch, cancel := st.Subscribe()
	<-ch
	cancel()
	cancel()

	if _, ok := <-ch; ok {
		t.Error("channel still open after cancel")
	}
	st.Update(func(s State) State { return s })
}

// TestStoreClose verifies closing ends live subscriptions and that later
// subscribers get the final state on an already closed channel.
func TestStoreClose(t *testing.T) {
	st := NewStore(State{})
	ch, cancel := st.Subscribe()
	<-ch

	st.Close()
	st.Close()
	if _, ok := <-ch; ok {
		t.Error("channel still open after Close")
	}
	cancel()

	st.Update(func(s State) State {
		s.IsMenuExpanded = true
		return s
	})

	late, lateCancel := st.Subscribe()
	defer lateCancel()
	if got, ok := <-late; !ok || !got.IsMenuExpanded {
		t.Errorf("late subscriber got %+v (ok=%v), want final state", got, ok)
	}
	if _, ok := <-late; ok {
		t.Error("late subscription not closed")
	}
}

func recv(t *testing.T, ch <-chan State) State {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for state")
		return State{}
	}
}
