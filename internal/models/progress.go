package models

// ExerciseProgress layers the in-session set checklist on top of an
// Exercise. It only lives in a session's memory.
type ExerciseProgress struct {
	Original  Exercise `json:"original"`
	SetsState []bool   `json:"sets_state"`
}

// NewExerciseProgress returns a view with every set unchecked.
func NewExerciseProgress(e Exercise) ExerciseProgress {
	return ExerciseProgress{
		Original:  e,
		SetsState: make([]bool, max(e.Sets, 0)),
	}
}

// Finished reports whether every set is checked. An empty checklist is never finished.
func (p ExerciseProgress) Finished() bool {
	if len(p.SetsState) == 0 {
		return false
	}
	for _, done := range p.SetsState {
		if !done {
			return false
		}
	}
	return true
}

// SameNumberOfReps mirrors Exercise.SameNumberOfReps for the wrapped definition.
func (p ExerciseProgress) SameNumberOfReps() bool {
	return p.Original.SameNumberOfReps()
}

// Clone returns a copy whose checklist does not alias the receiver's.
func (p ExerciseProgress) Clone() ExerciseProgress {
	sets := make([]bool, len(p.SetsState))
	copy(sets, p.SetsState)
	return ExerciseProgress{Original: p.Original, SetsState: sets}
}
