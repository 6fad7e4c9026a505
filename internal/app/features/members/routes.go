// internal/app/features/members/routes.go
package members

import (
	"github.com/dalemusser/crewhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts member routes. Reads require a signed-in user;
// assignment and relieving are admin-only.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)

		pr.Get("/", h.HandleList)
		pr.Get("/{id}", h.HandleGet)
		pr.Get("/{id}/history", h.HandleHistory)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Use(auth.RequireRole("admin"))

		pr.Post("/{id}/assign", h.HandleAssign)
		pr.Post("/{id}/unassign", h.HandleUnassign)
		pr.Post("/{id}/relieve", h.HandleRelieve)
	})

	return r
}
