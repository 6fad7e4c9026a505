// internal/app/features/payments/routes.go
package payments

import (
	"github.com/dalemusser/crewhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts payment routes. Recording is admin-only; listing needs
// a session.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Get("/", h.HandleList)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Use(auth.RequireRole("admin"))
		pr.Post("/", h.HandleCreate)
	})

	return r
}
