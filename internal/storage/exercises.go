package storage

import (
	"context"
	"fmt"

	"github.com/claude/gymbro/internal/models"
)

// ListExercises returns a workout's exercises in insertion order.
func (db *DB) ListExercises(ctx context.Context, workoutID int64) ([]models.Exercise, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, workout_id, name, sets, min_reps, max_reps, load
		 FROM exercises
		 WHERE workout_id = $1
		 ORDER BY id ASC`,
		workoutID)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	return scanExercises(rows)
}

// CreateExercise inserts an exercise and returns it with its new ID.
func (db *DB) CreateExercise(ctx context.Context, e models.Exercise) (models.Exercise, error) {
	var id int64
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO exercises (workout_id, name, sets, min_reps, max_reps, load)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		e.WorkoutID, e.Name, e.Sets, e.MinReps, e.MaxReps, e.Load).Scan(&id)
	if err != nil {
		return models.Exercise{}, fmt.Errorf("inserting exercise: %w", err)
	}
	e.ID = models.NewExerciseID(id)
	return e, nil
}

// UpdateExercise replaces the definition of an exercise within its workout.
// Returns false if no such exercise belongs to the workout.
func (db *DB) UpdateExercise(ctx context.Context, e models.Exercise) (bool, error) {
	id, _ := e.ID.Get()
	tag, err := db.Pool.Exec(ctx,
		`UPDATE exercises
		 SET name = $3, sets = $4, min_reps = $5, max_reps = $6, load = $7
		 WHERE id = $1 AND workout_id = $2`,
		id, e.WorkoutID, e.Name, e.Sets, e.MinReps, e.MaxReps, e.Load)
	if err != nil {
		return false, fmt.Errorf("updating exercise: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// AdjustExerciseLoad adds delta to an exercise's load, never going below zero.
// Returns false if the exercise does not exist.
func (db *DB) AdjustExerciseLoad(ctx context.Context, id int64, delta float64) (bool, error) {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE exercises SET load = GREATEST(load + $2, 0) WHERE id = $1`,
		id, delta)
	if err != nil {
		return false, fmt.Errorf("adjusting exercise load: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// scanExercises reads exercise rows from either backend.
func scanExercises(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]models.Exercise, error) {
	var result []models.Exercise
	for rows.Next() {
		var (
			e  models.Exercise
			id int64
		)
		if err := rows.Scan(&id, &e.WorkoutID, &e.Name, &e.Sets, &e.MinReps, &e.MaxReps, &e.Load); err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		e.ID = models.NewExerciseID(id)
		result = append(result, e)
	}
	return result, rows.Err()
}
