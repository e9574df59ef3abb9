package commands

import (
	"fmt"
	"strconv"

	"github.com/claude/gymbro/internal/models"
	"github.com/spf13/cobra"
)

// NewWorkoutsCommand creates the workouts command group
func NewWorkoutsCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workouts",
		Short: "List, create and edit workouts",
	}
	cmd.AddCommand(newWorkoutsListCommand(opts))
	cmd.AddCommand(newWorkoutsCreateCommand(opts))
	cmd.AddCommand(newWorkoutsRenameCommand(opts))
	cmd.AddCommand(newExerciseAddCommand(opts))
	cmd.AddCommand(newExerciseEditCommand(opts))
	return cmd
}

func newWorkoutsListCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all workouts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			workouts, err := opts.client().ListWorkouts(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list workouts: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(workouts) == 0 {
				fmt.Fprintln(out, "No workouts found")
				return nil
			}
			for _, w := range workouts {
				status := "open"
				if w.Finished {
					status = "finished"
				}
				fmt.Fprintf(out, "%d\t%s\t%s\n", w.ID, w.Name, status)
			}
			return nil
		},
	}
}

func newWorkoutsCreateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a workout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := opts.client().CreateWorkout(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to create workout: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created workout %d (%s)\n", w.ID, w.Name)
			return nil
		},
	}
}

func newWorkoutsRenameCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <workout-id> <name>",
		Short: "Rename a workout",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			workoutID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid workout id %q", args[0])
			}
			w, err := opts.client().RenameWorkout(cmd.Context(), workoutID, args[1])
			if err != nil {
				return fmt.Errorf("failed to rename workout: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed workout %d to %s\n", w.ID, w.Name)
			return nil
		},
	}
}

func newExerciseAddCommand(opts *rootOptions) *cobra.Command {
	var e models.Exercise
	cmd := &cobra.Command{
		Use:   "add-exercise <workout-id> <name>",
		Short: "Add an exercise to a workout",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			workoutID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid workout id %q", args[0])
			}
			e.WorkoutID = workoutID
			e.Name = args[1]
			if e.MaxReps == 0 {
				e.MaxReps = e.MinReps
			}

			created, err := opts.client().AddExercise(cmd.Context(), e)
			if err != nil {
				return fmt.Errorf("failed to add exercise: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added exercise %s: %s %dx%s @ %g\n",
				created.ID, created.Name, created.Sets, created.RepsLabel(), created.Load)
			return nil
		},
	}
	cmd.Flags().IntVar(&e.Sets, "sets", 3, "number of sets")
	cmd.Flags().IntVar(&e.MinReps, "min-reps", 8, "lower bound of the rep range")
	cmd.Flags().IntVar(&e.MaxReps, "max-reps", 0, "upper bound of the rep range (defaults to min-reps)")
	cmd.Flags().Float64Var(&e.Load, "load", 0, "starting load")
	return cmd
}

func newExerciseEditCommand(opts *rootOptions) *cobra.Command {
	var e models.Exercise
	cmd := &cobra.Command{
		Use:   "edit-exercise <workout-id> <exercise-id> <name>",
		Short: "Replace an exercise's definition",
		Long: `Replace an exercise's name, sets, rep range and load.
Open sessions keep the sets already checked off that still exist.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			workoutID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid workout id %q", args[0])
			}
			exerciseID, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil || exerciseID <= 0 {
				return fmt.Errorf("invalid exercise id %q", args[1])
			}
			e.WorkoutID = workoutID
			e.ID = models.NewExerciseID(exerciseID)
			e.Name = args[2]
			if e.MaxReps == 0 {
				e.MaxReps = e.MinReps
			}

			updated, err := opts.client().UpdateExercise(cmd.Context(), e)
			if err != nil {
				return fmt.Errorf("failed to update exercise: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated exercise %s: %s %dx%s @ %g\n",
				updated.ID, updated.Name, updated.Sets, updated.RepsLabel(), updated.Load)
			return nil
		},
	}
	cmd.Flags().IntVar(&e.Sets, "sets", 3, "number of sets")
	cmd.Flags().IntVar(&e.MinReps, "min-reps", 8, "lower bound of the rep range")
	cmd.Flags().IntVar(&e.MaxReps, "max-reps", 0, "upper bound of the rep range (defaults to min-reps)")
	cmd.Flags().Float64Var(&e.Load, "load", 0, "new load")
	return cmd
}
