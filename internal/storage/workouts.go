package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/claude/gymbro/internal/models"
	"github.com/jackc/pgx/v5"
)

// ListWorkouts returns every workout, newest first.
func (db *DB) ListWorkouts(ctx context.Context) ([]models.Workout, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, name, finished, finished_at, created_at
		 FROM workouts
		 ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	var result []models.Workout
	for rows.Next() {
		var w models.Workout
		if err := rows.Scan(&w.ID, &w.Name, &w.Finished, &w.FinishedAt, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		result = append(result, w)
	}
	return result, rows.Err()
}

// GetWorkout returns the workout with the given ID, or nil if there is none.
func (db *DB) GetWorkout(ctx context.Context, id int64) (*models.Workout, error) {
	var w models.Workout
	err := db.Pool.QueryRow(ctx,
		`SELECT id, name, finished, finished_at, created_at FROM workouts WHERE id = $1`,
		id).Scan(&w.ID, &w.Name, &w.Finished, &w.FinishedAt, &w.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying workout: %w", err)
	}
	return &w, nil
}

// CreateWorkout inserts an unfinished workout.
func (db *DB) CreateWorkout(ctx context.Context, name string) (models.Workout, error) {
	var w models.Workout
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO workouts (name) VALUES ($1)
		 RETURNING id, name, finished, finished_at, created_at`,
		name).Scan(&w.ID, &w.Name, &w.Finished, &w.FinishedAt, &w.CreatedAt)
	if err != nil {
		return models.Workout{}, fmt.Errorf("inserting workout: %w", err)
	}
	return w, nil
}

// RenameWorkout changes a workout's name. Returns false if it does not exist.
func (db *DB) RenameWorkout(ctx context.Context, id int64, name string) (bool, error) {
	tag, err := db.Pool.Exec(ctx, `UPDATE workouts SET name = $2 WHERE id = $1`, id, name)
	if err != nil {
		return false, fmt.Errorf("renaming workout: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// FinishWorkout marks a workout finished, keeping an earlier finish time.
// Returns false if the workout does not exist.
func (db *DB) FinishWorkout(ctx context.Context, id int64, at time.Time) (bool, error) {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE workouts SET finished = TRUE, finished_at = COALESCE(finished_at, $2) WHERE id = $1`,
		id, at)
	if err != nil {
		return false, fmt.Errorf("finishing workout: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteWorkout deletes a workout; its exercises go with it via ON DELETE CASCADE.
func (db *DB) DeleteWorkout(ctx context.Context, id int64) (bool, error) {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM workouts WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("deleting workout: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
