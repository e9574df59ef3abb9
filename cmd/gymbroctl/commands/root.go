package commands

import (
	"fmt"
	"os"

	"github.com/claude/gymbro/internal/client"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	serverURL string
	apiKey    string
}

func (o *rootOptions) client() *client.Client {
	return client.New(o.serverURL, o.apiKey)
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:           "gymbroctl",
		Short:         "Drive a Gymbro server from the terminal",
		Long:          `gymbroctl manages workouts and runs training sessions against a Gymbro server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.serverURL, "server", envOr("GYMBRO_URL", "http://localhost:8080"), "Gymbro server base URL")
	rootCmd.PersistentFlags().StringVar(&opts.apiKey, "api-key", os.Getenv("GYMBRO_API_KEY"), "API key for catalog writes")
	rootCmd.AddCommand(NewWorkoutsCommand(opts))
	rootCmd.AddCommand(NewSessionCommand(opts))

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
