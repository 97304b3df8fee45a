package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"lookate/internal/manager"
	"lookate/internal/realtime"
)

func NewRouter(tm *manager.TaskManager, hub *realtime.Hub) *chi.Mux {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logging)
	r.Use(Metrics)
	r.Use(middleware.Recoverer)

	r.Get("/tasks", listTasksHandler(tm))
	r.Post("/tasks", addTaskHandler(tm))
	r.Put("/tasks/{id}/toggle", toggleTaskHandler(tm))
	r.Get("/progress", progressHandler(tm))

	if hub != nil {
		r.Get("/ws", hub.Handler(tm.Snapshot))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", MetricsHandler())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Endpoint not found")
	})
	return r
}
