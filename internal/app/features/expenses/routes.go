// internal/app/features/expenses/routes.go
package expenses

import (
	"github.com/dalemusser/crewhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts expense routes. Submission and listing need a session;
// decisions, the rejected list, and import are admin-only.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)

		pr.Post("/", h.HandleCreate)
		pr.Get("/", h.HandleList)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Use(auth.RequireRole("admin"))

		pr.Post("/decisions", h.HandleDecisions)
		pr.Get("/rejected", h.HandleListRejected)
		pr.Post("/import", h.HandleImport)
	})

	return r
}

// AdminRoutes mounts the maintenance endpoints under /admin/expenses.
func AdminRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)
	r.Use(auth.RequireRole("admin"))
	r.Post("/purge", h.HandlePurge)
	return r
}
