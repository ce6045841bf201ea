package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Init builds the chi router with all routes and middleware attached.
func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withLogger)
	router.Use(h.withLogging)

	// routes without authorization
	router.Group(func(r chi.Router) {
		r.Get("/api/health", h.health)
		r.Get("/api/version", h.version)
		r.Post("/api/auth/token", h.issueToken)
	})

	// owner-scoped routes behind JWT auth
	router.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Route("/api/gate", func(r chi.Router) {
			r.Get("/status", h.gateStatus)
			r.Post("/setup", h.gateSetup)
			r.Post("/verify", h.gateVerify)
			r.Post("/rekey", h.gateRekey)
		})

		r.Route("/api/records", func(r chi.Router) {
			r.Post("/", h.createRecord)
			r.Get("/", h.listRecords)
			r.Get("/{id}", h.getRecord)
			r.Put("/{id}", h.updateRecord)
			r.Delete("/{id}", h.deleteRecord)
		})
	})

	return router
}
