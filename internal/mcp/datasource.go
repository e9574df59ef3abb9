package mcp

import (
	"context"

	"github.com/claude/gymbro/internal/models"
	"github.com/claude/gymbro/internal/workout"
)

// Catalog is the read side of the workout data the MCP tools need.
type Catalog interface {
	ListWorkouts(ctx context.Context) ([]models.Workout, error)
}

// Compile-time check: *workout.Service satisfies Catalog.
var _ Catalog = (*workout.Service)(nil)
