package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/claude/gymbro/internal/models"
	_ "modernc.org/sqlite"
)

const localSchema = `
CREATE TABLE IF NOT EXISTS workouts (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	name        TEXT NOT NULL,
	finished    INTEGER NOT NULL DEFAULT 0,
	finished_at INTEGER,
	created_at  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS exercises (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	workout_id INTEGER NOT NULL REFERENCES workouts (id) ON DELETE CASCADE,
	name       TEXT NOT NULL,
	sets       INTEGER NOT NULL CHECK (sets >= 1),
	min_reps   INTEGER NOT NULL CHECK (min_reps >= 0),
	max_reps   INTEGER NOT NULL,
	load       REAL NOT NULL DEFAULT 0 CHECK (load >= 0),
	CHECK (min_reps <= max_reps)
);

CREATE INDEX IF NOT EXISTS exercises_workout_idx ON exercises (workout_id, id);
`

// LocalDB is a single-file SQLite repository for running without PostgreSQL.
// Times are stored as Unix milliseconds.
type LocalDB struct {
	db *sql.DB
}

// OpenLocal opens (or creates) the SQLite database at path and applies the schema.
func OpenLocal(path string) (*LocalDB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir for %s: %w", path, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// One connection keeps the pragmas in effect and serializes writers.
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{"PRAGMA foreign_keys = ON", "PRAGMA busy_timeout = 5000", localSchema} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("initializing sqlite db: %w", err)
		}
	}

	return &LocalDB{db: db}, nil
}

// Close closes the database.
func (l *LocalDB) Close() error {
	return l.db.Close()
}

// ListWorkouts returns every workout, newest first.
func (l *LocalDB) ListWorkouts(ctx context.Context) ([]models.Workout, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, name, finished, finished_at, created_at
		 FROM workouts
		 ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	var result []models.Workout
	for rows.Next() {
		w, err := scanLocalWorkout(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, w)
	}
	return result, rows.Err()
}

// GetWorkout returns the workout with the given ID, or nil if there is none.
func (l *LocalDB) GetWorkout(ctx context.Context, id int64) (*models.Workout, error) {
	row := l.db.QueryRowContext(ctx,
		`SELECT id, name, finished, finished_at, created_at FROM workouts WHERE id = ?`, id)
	w, err := scanLocalWorkout(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// CreateWorkout inserts an unfinished workout.
func (l *LocalDB) CreateWorkout(ctx context.Context, name string) (models.Workout, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	res, err := l.db.ExecContext(ctx,
		`INSERT INTO workouts (name, created_at) VALUES (?, ?)`, name, now.UnixMilli())
	if err != nil {
		return models.Workout{}, fmt.Errorf("inserting workout: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Workout{}, fmt.Errorf("reading workout id: %w", err)
	}
	return models.Workout{ID: id, Name: name, CreatedAt: now}, nil
}

// RenameWorkout changes a workout's name.
func (l *LocalDB) RenameWorkout(ctx context.Context, id int64, name string) (bool, error) {
	res, err := l.db.ExecContext(ctx, `UPDATE workouts SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return false, fmt.Errorf("renaming workout: %w", err)
	}
	return affected(res)
}

// FinishWorkout marks a workout finished, keeping an earlier finish time.
func (l *LocalDB) FinishWorkout(ctx context.Context, id int64, at time.Time) (bool, error) {
	res, err := l.db.ExecContext(ctx,
		`UPDATE workouts SET finished = 1, finished_at = COALESCE(finished_at, ?) WHERE id = ?`,
		at.UnixMilli(), id)
	if err != nil {
		return false, fmt.Errorf("finishing workout: %w", err)
	}
	return affected(res)
}

// DeleteWorkout deletes a workout and its exercises.
func (l *LocalDB) DeleteWorkout(ctx context.Context, id int64) (bool, error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning delete: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM exercises WHERE workout_id = ?`, id); err != nil {
		return false, fmt.Errorf("deleting exercises: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM workouts WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting workout: %w", err)
	}
	found, err := affected(res)
	if err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing delete: %w", err)
	}
	return found, nil
}

// ListExercises returns a workout's exercises in insertion order.
func (l *LocalDB) ListExercises(ctx context.Context, workoutID int64) ([]models.Exercise, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, workout_id, name, sets, min_reps, max_reps, load
		 FROM exercises
		 WHERE workout_id = ?
		 ORDER BY id ASC`, workoutID)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	return scanExercises(rows)
}

// CreateExercise inserts an exercise and returns it with its new ID.
func (l *LocalDB) CreateExercise(ctx context.Context, e models.Exercise) (models.Exercise, error) {
	res, err := l.db.ExecContext(ctx,
		`INSERT INTO exercises (workout_id, name, sets, min_reps, max_reps, load)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.WorkoutID, e.Name, e.Sets, e.MinReps, e.MaxReps, e.Load)
	if err != nil {
		return models.Exercise{}, fmt.Errorf("inserting exercise: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Exercise{}, fmt.Errorf("reading exercise id: %w", err)
	}
	e.ID = models.NewExerciseID(id)
	return e, nil
}

// UpdateExercise replaces the definition of an exercise within its workout.
func (l *LocalDB) UpdateExercise(ctx context.Context, e models.Exercise) (bool, error) {
	id, _ := e.ID.Get()
	res, err := l.db.ExecContext(ctx,
		`UPDATE exercises
		 SET name = ?, sets = ?, min_reps = ?, max_reps = ?, load = ?
		 WHERE id = ? AND workout_id = ?`,
		e.Name, e.Sets, e.MinReps, e.MaxReps, e.Load, id, e.WorkoutID)
	if err != nil {
		return false, fmt.Errorf("updating exercise: %w", err)
	}
	return affected(res)
}

// AdjustExerciseLoad adds delta to an exercise's load, never going below zero.
func (l *LocalDB) AdjustExerciseLoad(ctx context.Context, id int64, delta float64) (bool, error) {
	res, err := l.db.ExecContext(ctx,
		`UPDATE exercises SET load = MAX(load + ?, 0) WHERE id = ?`, delta, id)
	if err != nil {
		return false, fmt.Errorf("adjusting exercise load: %w", err)
	}
	return affected(res)
}

func scanLocalWorkout(row interface{ Scan(dest ...any) error }) (models.Workout, error) {
	var (
		w          models.Workout
		finishedAt sql.NullInt64
		createdAt  int64
	)
	if err := row.Scan(&w.ID, &w.Name, &w.Finished, &finishedAt, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return w, err
		}
		return w, fmt.Errorf("scanning workout: %w", err)
	}
	w.CreatedAt = time.UnixMilli(createdAt).UTC()
	if finishedAt.Valid {
		t := time.UnixMilli(finishedAt.Int64).UTC()
		w.FinishedAt = &t
	}
	return w, nil
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading affected rows: %w", err)
	}
	return n > 0, nil
}
