package workout

import (
	"context"
	"time"

	"github.com/claude/gymbro/internal/models"
	"github.com/claude/gymbro/internal/storage"
)

// Repository is the persistence the use cases need. Lookups return nil
// without an error when the row does not exist; writes report whether a
// row was affected. Both *storage.DB (PostgreSQL) and *storage.LocalDB
// (SQLite) satisfy it.
type Repository interface {
	ListWorkouts(ctx context.Context) ([]models.Workout, error)
	GetWorkout(ctx context.Context, id int64) (*models.Workout, error)
	CreateWorkout(ctx context.Context, name string) (models.Workout, error)
	RenameWorkout(ctx context.Context, id int64, name string) (bool, error)
	FinishWorkout(ctx context.Context, id int64, at time.Time) (bool, error)
	DeleteWorkout(ctx context.Context, id int64) (bool, error)

	ListExercises(ctx context.Context, workoutID int64) ([]models.Exercise, error)
	CreateExercise(ctx context.Context, e models.Exercise) (models.Exercise, error)
	UpdateExercise(ctx context.Context, e models.Exercise) (bool, error)
	AdjustExerciseLoad(ctx context.Context, id int64, delta float64) (bool, error)
}

// Compile-time checks: both storage backends satisfy Repository.
var (
	_ Repository = (*storage.DB)(nil)
	_ Repository = (*storage.LocalDB)(nil)
)
