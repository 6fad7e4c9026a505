// internal/app/features/attendance/routes.go
package attendance

import (
	"github.com/dalemusser/crewhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts attendance routes. Punch-in and listing need a
// session; bulk decisions are admin-only.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Post("/", h.HandleMark)
		pr.Get("/", h.HandleList)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Use(auth.RequireRole("admin"))
		pr.Post("/decisions", h.HandleDecisions)
	})

	return r
}
