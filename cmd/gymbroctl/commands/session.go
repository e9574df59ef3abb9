package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/claude/gymbro/internal/client"
	"github.com/spf13/cobra"
)

// NewSessionCommand creates the session command group
func NewSessionCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Run a training session",
		Long: `Run a training session against the server.
Open a session for a workout, then use the returned session ID to check off
sets, adjust loads and finish the workout.`,
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "open <workout-id>",
			Short: "Open a session for a workout",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				workoutID, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid workout id %q", args[0])
				}
				s, err := opts.client().OpenSession(cmd.Context(), workoutID)
				if err != nil {
					return fmt.Errorf("failed to open session: %w", err)
				}
				printSession(cmd.OutOrStdout(), s)
				return nil
			},
		},
		&cobra.Command{
			Use:   "show <session-id>",
			Short: "Show the current session state",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := opts.client().GetSession(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("failed to get session: %w", err)
				}
				printSession(cmd.OutOrStdout(), s)
				return nil
			},
		},
		&cobra.Command{
			Use:   "toggle <session-id> <exercise-id> <set>",
			Short: "Check or uncheck one set (sets count from 1)",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				exerciseID, err := strconv.ParseInt(args[1], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid exercise id %q", args[1])
				}
				set, err := strconv.Atoi(args[2])
				if err != nil || set < 1 {
					return fmt.Errorf("invalid set %q", args[2])
				}
				s, err := opts.client().ToggleSet(cmd.Context(), args[0], exerciseID, set-1)
				if err != nil {
					return fmt.Errorf("failed to toggle set: %w", err)
				}
				printSession(cmd.OutOrStdout(), s)
				return nil
			},
		},
		&cobra.Command{
			Use:       "load <session-id> <exercise-id> <increase|decrease>",
			Short:     "Raise or lower an exercise's load by one step",
			Args:      cobra.ExactArgs(3),
			ValidArgs: []string{"increase", "decrease"},
			RunE: func(cmd *cobra.Command, args []string) error {
				exerciseID, err := strconv.ParseInt(args[1], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid exercise id %q", args[1])
				}
				if err := opts.client().AdjustLoad(cmd.Context(), args[0], exerciseID, args[2]); err != nil {
					return fmt.Errorf("failed to adjust load: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Load change requested")
				return nil
			},
		},
		&cobra.Command{
			Use:   "finish <session-id>",
			Short: "Check every set and finish the workout",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := opts.client().FinishWorkout(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("failed to finish workout: %w", err)
				}
				printSession(cmd.OutOrStdout(), s)
				return nil
			},
		},
		&cobra.Command{
			Use:       "menu <session-id> <open|closed>",
			Short:     "Expand or collapse the session menu",
			Args:      cobra.ExactArgs(2),
			ValidArgs: []string{"open", "closed"},
			RunE: func(cmd *cobra.Command, args []string) error {
				var expanded bool
				switch args[1] {
				case "open":
					expanded = true
				case "closed":
				default:
					return fmt.Errorf("invalid menu state %q (want open or closed)", args[1])
				}
				s, err := opts.client().SetMenu(cmd.Context(), args[0], expanded)
				if err != nil {
					return fmt.Errorf("failed to set menu: %w", err)
				}
				printSession(cmd.OutOrStdout(), s)
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete-workout <session-id>",
			Short: "Delete the session's workout",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := opts.client().DeleteWorkout(cmd.Context(), args[0]); err != nil {
					return fmt.Errorf("failed to delete workout: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Workout deletion requested")
				return nil
			},
		},
		&cobra.Command{
			Use:   "close <session-id>",
			Short: "Close a session",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := opts.client().CloseSession(cmd.Context(), args[0]); err != nil {
					return fmt.Errorf("failed to close session: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Session closed")
				return nil
			},
		},
	)
	return cmd
}

func printSession(w io.Writer, s *client.Session) {
	st := s.State
	fmt.Fprintf(w, "Session %s [%s]\n", s.SessionID, st.Phase)
	if st.Workout.ID != 0 {
		fmt.Fprintf(w, "Workout %d: %s", st.Workout.ID, st.Workout.Name)
		if st.Workout.Finished {
			fmt.Fprint(w, " (finished)")
		}
		fmt.Fprintln(w)
	}
	if st.ShouldDisplayEmptyMessage {
		fmt.Fprintln(w, "No exercises yet")
		return
	}
	for _, e := range st.Exercises {
		marks := make([]string, len(e.SetsState))
		for i, done := range e.SetsState {
			marks[i] = "[ ]"
			if done {
				marks[i] = "[x]"
			}
		}
		fmt.Fprintf(w, "  %s\t%s\t%dx%s @ %g\t%s\n",
			e.ID, e.Name, e.Sets, e.RepsLabel, e.Load, strings.Join(marks, " "))
	}
	if st.CanFinishWorkout {
		fmt.Fprintln(w, "Workout can be finished")
	}
	if st.IsMenuExpanded {
		fmt.Fprintln(w, "Menu open")
	}
}
