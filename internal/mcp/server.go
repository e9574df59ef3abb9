package mcp

import (
	"log/slog"

	"github.com/claude/gymbro/internal/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(catalog Catalog, sessions *session.Registry, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("Gymbro", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("Gymbro workout tracker. List workouts, start a session for one, check off sets as they are done, adjust loads and finish the workout. Sessions stay open until closed."),
	)

	h := &handlers{catalog: catalog, sessions: sessions, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolListWorkouts, Handler: h.listWorkouts},
		server.ServerTool{Tool: toolStartSession, Handler: h.startSession},
		server.ServerTool{Tool: toolGetSession, Handler: h.getSession},
		server.ServerTool{Tool: toolToggleSet, Handler: h.toggleSet},
		server.ServerTool{Tool: toolAdjustLoad, Handler: h.adjustLoad},
		server.ServerTool{Tool: toolFinishWorkout, Handler: h.finishWorkout},
		server.ServerTool{Tool: toolCloseSession, Handler: h.closeSession},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resWorkouts, Handler: h.workouts},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	catalog  Catalog
	sessions *session.Registry
	log      *slog.Logger
}

// --- Resource definitions ---

var resWorkouts = mcp.NewResource(
	"gymbro://workouts",
	"Workouts",
	mcp.WithResourceDescription("All workouts with their finished status"),
	mcp.WithMIMEType("application/json"),
)
