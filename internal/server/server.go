package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/claude/gymbro/internal/models"
	"github.com/claude/gymbro/internal/session"
	"github.com/go-chi/chi/v5"
)

// Catalog is the workout and exercise management the API exposes.
type Catalog interface {
	ListWorkouts(ctx context.Context) ([]models.Workout, error)
	WatchWorkouts(ctx context.Context) <-chan []models.Workout
	CreateWorkout(ctx context.Context, name string) (models.Workout, error)
	RenameWorkout(ctx context.Context, id int64, name string) (models.Workout, error)
	AddExercise(ctx context.Context, e models.Exercise) (models.Exercise, error)
	UpdateExercise(ctx context.Context, e models.Exercise) (models.Exercise, error)
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	catalog  Catalog
	sessions *session.Registry
	log      *slog.Logger
	apiKey   string
	router   chi.Router
}

// New creates a new Server with all routes configured.
func New(catalog Catalog, sessions *session.Registry, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		catalog:  catalog,
		sessions: sessions,
		log:      log,
		apiKey:   apiKey,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	// Reads (no auth, tsnet handles access)
	s.router.Get("/api/v1/workouts", s.handleListWorkouts)
	s.router.Get("/api/v1/workouts/events", s.handleWorkoutEvents)
	s.router.Get("/api/v1/sessions/{sessionID}", s.handleGetSession)
	s.router.Get("/api/v1/sessions/{sessionID}/events", s.handleSessionEvents)

	// Writes (API key required)
	s.router.Group(func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/api/v1/workouts", s.handleCreateWorkout)
		r.Put("/api/v1/workouts/{workoutID}", s.handleRenameWorkout)
		r.Post("/api/v1/workouts/{workoutID}/exercises", s.handleAddExercise)
		r.Put("/api/v1/workouts/{workoutID}/exercises/{exerciseID}", s.handleUpdateExercise)

		r.Post("/api/v1/sessions", s.handleOpenSession)
		r.Delete("/api/v1/sessions/{sessionID}", s.handleCloseSession)
		r.Post("/api/v1/sessions/{sessionID}/exercises/{exerciseID}/sets/{set}/toggle", s.handleToggleSet)
		r.Post("/api/v1/sessions/{sessionID}/exercises/{exerciseID}/load/{direction}", s.handleAdjustLoad)
		r.Post("/api/v1/sessions/{sessionID}/finish", s.handleFinishWorkout)
		r.Delete("/api/v1/sessions/{sessionID}/workout", s.handleDeleteWorkout)
		r.Put("/api/v1/sessions/{sessionID}/menu", s.handleSetMenu)
	})
}

// SetMCP mounts the MCP streamable HTTP endpoint at /mcp.
func (s *Server) SetMCP(h http.Handler) {
	s.router.Handle("/mcp", h)
}
