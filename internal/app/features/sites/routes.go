// internal/app/features/sites/routes.go
package sites

import (
	"github.com/dalemusser/crewhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts site routes. Listing needs a session; create and
// delete are admin-only.
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
		pr.Post("/{id}/delete", h.HandleDelete)
	})

	return r
}
