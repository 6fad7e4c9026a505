// internal/app/features/reports/routes.go
package reports

import (
	"github.com/dalemusser/crewhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts report downloads for signed-in users.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/vouchers", h.HandleMasterVouchers)
	r.Get("/vouchers/{person}", h.HandlePersonVouchers)
	r.Get("/ledger/{person}", h.HandleLedger)

	return r
}
