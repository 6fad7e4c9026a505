// internal/app/features/login/routes.go
package login

import "github.com/go-chi/chi/v5"

// Routes mounts login and logout at the caller's path.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/login", h.HandleLogin)
	r.Post("/logout", h.HandleLogout)
	return r
}
