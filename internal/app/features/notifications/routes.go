// internal/app/features/notifications/routes.go
package notifications

import (
	"github.com/dalemusser/crewhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts notification routes for the signed-in user.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/", h.HandleList)
	r.Post("/{id}/read", h.HandleMarkRead)

	return r
}
