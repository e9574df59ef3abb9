package session

import (
	"sync"

	"github.com/claude/gymbro/internal/models"
)

// Phase is the coarse lifecycle of a workout session.
type Phase string

const (
	// PhaseLoading holds until the first exercise list arrives.
	PhaseLoading Phase = "loading"
	// PhaseActive means at least one set is still open, or nothing has finished the workout yet.
	PhaseActive Phase = "active"
	// PhaseFinished is entered by the auto-finish or explicit finish transitions.
	PhaseFinished Phase = "finished"
)

// State is the snapshot a session exposes to its presentation layer.
type State struct {
	Exercises        []models.ExerciseProgress `json:"exercises"`
	Workout          models.Workout            `json:"workout"`
	CanFinishWorkout bool                      `json:"can_finish_workout"`
	IsMenuExpanded   bool                      `json:"is_menu_expanded"`
	Phase            Phase                     `json:"phase"`
}

// ShouldDisplayEmptyMessage reports whether the workout has no exercises.
func (s State) ShouldDisplayEmptyMessage() bool {
	return len(s.Exercises) == 0
}

// AllFinished reports whether every exercise has all of its sets checked.
// It is vacuously true for an empty list.
func (s State) AllFinished() bool {
	for _, e := range s.Exercises {
		if !e.Finished() {
			return false
		}
	}
	return true
}

func (s State) clone() State {
	c := s
	if s.Exercises != nil {
		c.Exercises = make([]models.ExerciseProgress, len(s.Exercises))
		for i, e := range s.Exercises {
			c.Exercises[i] = e.Clone()
		}
	}
	return c
}

func initialState() State {
	return State{Phase: PhaseLoading}
}

// Store owns one State value. Every change is a whole-snapshot
// read-modify-write under a single lock, and subscribers see snapshots in
// the order they were written.
type Store struct {
	mu     sync.Mutex
	state  State
	subs   map[chan State]struct{}
	closed bool
}

// NewStore creates a Store holding initial.
func NewStore(initial State) *Store {
	return &Store{
		state: initial.clone(),
		subs:  make(map[chan State]struct{}),
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Update applies fn to a private copy of the current state, stores the
// result and notifies subscribers. It returns the stored state.
func (s *Store) Update(fn func(State) State) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = fn(s.state.clone())
	for ch := range s.subs {
		offer(ch, s.state.clone())
	}
	return s.state.clone()
}

// Subscribe returns a channel that immediately receives the current state
// and then every later one. Slow readers only see the newest snapshot.
// The cancel func unregisters and closes the channel. Once the store is
// closed the channel holds the final state and is already closed.
func (s *Store) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)
	s.mu.Lock()
	defer s.mu.Unlock()
	ch <- s.state.clone()
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	s.subs[ch] = struct{}{}

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subs[ch]; ok {
			delete(s.subs, ch)
			close(ch)
		}
	}
}

// Close ends every subscription. Unread snapshots stay readable before
// the channels report closed. Close is idempotent.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for ch := range s.subs {
		delete(s.subs, ch)
		close(ch)
	}
}

// offer replaces any unread snapshot with v. Callers hold the store lock,
// which makes them the only writer.
func offer(ch chan State, v State) {
	select {
	case ch <- v:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- v
}
