/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Wires the availability engine handlers into a chi router with the
  standard middleware stack (request ids, logging, panic recovery) and
  permissive CORS for browser clients.

SEE ALSO:
  - handlers.go: The handlers mounted here
  - cmd/server: Binds the router to a listener with graceful shutdown
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter builds the full route tree for the availability API.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Org-ID"},
		MaxAge:         300,
	}))

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"service": "availability-engine",
			"status":  "ok",
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/resources", func(r chi.Router) {
			r.Get("/", h.ListResources)
			r.Post("/", h.CreateResource)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetResource)

				r.Get("/pattern", h.GetPattern)
				r.Put("/pattern", h.PutPattern)
				r.Post("/pattern/reset", h.ResetPattern)

				r.Get("/exceptions", h.ListExceptions)
				r.Post("/exceptions", h.CreateException)

				r.Get("/timeline", h.GetTimeline)
			})
		})

		r.Route("/patterns", func(r chi.Router) {
			r.Get("/default", h.GetDefaultPattern)
			r.Post("/validate", h.ValidatePattern)
		})

		r.Delete("/exceptions/{id}", h.DeleteException)

		r.Post("/timeline/batch", h.BatchTimeline)

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Post("/load", h.LoadScenario)
		})
	})

	return r
}
