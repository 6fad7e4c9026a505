// internal/app/features/registrations/routes.go
package registrations

import (
	"github.com/dalemusser/crewhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts registration routes. Submission is open; listing and
// decisions are admin-only.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.HandleSubmit)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Use(auth.RequireRole("admin"))

		pr.Get("/", h.HandleList)
		pr.Get("/{id}", h.HandleGet)
		pr.Post("/{id}/decision", h.HandleDecision)
	})

	return r
}
