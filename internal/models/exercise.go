package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidExercise is returned when an exercise definition breaks its invariants.
var ErrInvalidExercise = errors.New("invalid exercise")

// ExerciseID identifies a persisted exercise. The zero value means the
// exercise has not been stored yet and never matches another ID.
type ExerciseID struct {
	value int64
	valid bool
}

// NewExerciseID wraps a storage key. Keys <= 0 yield an unpersisted ID.
func NewExerciseID(v int64) ExerciseID {
	if v <= 0 {
		return ExerciseID{}
	}
	return ExerciseID{value: v, valid: true}
}

// Get returns the storage key and whether the exercise is persisted.
func (id ExerciseID) Get() (int64, bool) {
	return id.value, id.valid
}

// Persisted reports whether the ID refers to a stored exercise.
func (id ExerciseID) Persisted() bool {
	return id.valid
}

// Matches reports whether both IDs refer to the same stored exercise.
// Unpersisted IDs match nothing, including each other.
func (id ExerciseID) Matches(other ExerciseID) bool {
	return id.valid && other.valid && id.value == other.value
}

func (id ExerciseID) String() string {
	if !id.valid {
		return "unpersisted"
	}
	return strconv.FormatInt(id.value, 10)
}

// MarshalJSON encodes unpersisted IDs as null.
func (id ExerciseID) MarshalJSON() ([]byte, error) {
	if !id.valid {
		return []byte("null"), nil
	}
	return json.Marshal(id.value)
}

// UnmarshalJSON accepts a number or null.
func (id *ExerciseID) UnmarshalJSON(data []byte) error {
	var v *int64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("decoding exercise id: %w", err)
	}
	if v == nil {
		*id = ExerciseID{}
		return nil
	}
	*id = NewExerciseID(*v)
	return nil
}

// Exercise is the stored definition of one movement within a workout.
// It is treated as immutable; load changes produce a new value on reload.
type Exercise struct {
	ID        ExerciseID `json:"id"`
	WorkoutID int64      `json:"workout_id"`
	Name      string     `json:"name"`
	Sets      int        `json:"sets"`
	MinReps   int        `json:"min_reps"`
	MaxReps   int        `json:"max_reps"`
	Load      float64    `json:"load"`
}

// SameNumberOfReps reports whether the rep range collapses to one count.
func (e Exercise) SameNumberOfReps() bool {
	return e.MinReps == e.MaxReps
}

// RepsLabel renders the target reps, e.g. "8" or "8-12".
func (e Exercise) RepsLabel() string {
	if e.SameNumberOfReps() {
		return strconv.Itoa(e.MinReps)
	}
	return fmt.Sprintf("%d-%d", e.MinReps, e.MaxReps)
}

// Validate checks the definition before it is stored.
func (e Exercise) Validate() error {
	switch {
	case e.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidExercise)
	case e.Sets < 1:
		return fmt.Errorf("%w: sets must be at least 1, got %d", ErrInvalidExercise, e.Sets)
	case e.MinReps < 0:
		return fmt.Errorf("%w: min_reps must not be negative, got %d", ErrInvalidExercise, e.MinReps)
	case e.MinReps > e.MaxReps:
		return fmt.Errorf("%w: min_reps %d exceeds max_reps %d", ErrInvalidExercise, e.MinReps, e.MaxReps)
	case e.Load < 0:
		return fmt.Errorf("%w: load must not be negative, got %g", ErrInvalidExercise, e.Load)
	}
	return nil
}
