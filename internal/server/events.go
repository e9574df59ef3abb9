package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/claude/gymbro/internal/models"
)

// handleSessionEvents streams every session snapshot as a "state" event
// until the client disconnects or the session closes.
func (s *Server) handleSessionEvents(w http.ResponseWriter, r *http.Request) {
	_, c, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}

	updates, cancel := c.Subscribe()
	defer cancel()
	streamEvents(w, r, "state", updates, newStateView)
}

// handleWorkoutEvents streams the workout list as a "workouts" event on
// every change.
func (s *Server) handleWorkoutEvents(w http.ResponseWriter, r *http.Request) {
	updates := s.catalog.WatchWorkouts(r.Context())
	streamEvents(w, r, "workouts", updates, func(list []models.Workout) []models.Workout {
		if list == nil {
			return []models.Workout{}
		}
		return list
	})
}

// streamEvents writes each value from updates as an SSE event until the
// channel closes or the client goes away.
func streamEvents[T, V any](w http.ResponseWriter, r *http.Request, event string, updates <-chan T, render func(T) V) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "streaming not supported"})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case v, ok := <-updates:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, mustJSON(render(v)))
			flusher.Flush()
		}
	}
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return `{}`
	}
	return string(b)
}
