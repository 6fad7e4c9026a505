// internal/app/features/sites/handler.go
package sites

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/crewhub/internal/app/store/audit"
	sitestore "github.com/dalemusser/crewhub/internal/app/store/sites"
	"github.com/dalemusser/crewhub/internal/app/system/auditlog"
	"github.com/dalemusser/crewhub/internal/app/system/auth"
	"github.com/dalemusser/crewhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/crewhub/internal/app/system/jsonio"
	"github.com/dalemusser/crewhub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves site administration.
type Handler struct {
	Log      *zap.Logger
	AuditLog *auditlog.Logger
	Sites    *sitestore.Store
}

func NewHandler(db *mongo.Database, auditLog *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:      logger,
		AuditLog: auditLog,
		Sites:    sitestore.New(db),
	}
}

// HandleList handles GET /sites.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	sites, err := h.Sites.List(ctx)
	if err != nil {
		h.Log.Error("sites: list failed", zap.Error(err))
		jsonio.Error(w, http.StatusInternalServerError, "could not list sites")
		return
	}
	jsonio.Respond(w, http.StatusOK, sites)
}

type createRequest struct {
	Name string `json:"name"`
}

// HandleCreate handles POST /sites. Names are unique case-insensitively.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.CurrentUser(r)
	if !ok {
		jsonio.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createRequest
	if err := jsonio.Decode(r, &req); err != nil {
		jsonio.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	name := htmlsanitize.Text(req.Name)
	if name == "" {
		jsonio.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	site, err := h.Sites.Create(ctx, name, actor.Name)
	if err != nil {
		if errors.Is(err, sitestore.ErrDuplicateName) {
			jsonio.Error(w, http.StatusConflict, err.Error())
			return
		}
		h.Log.Error("sites: create failed", zap.Error(err))
		jsonio.Error(w, http.StatusInternalServerError, "could not create site")
		return
	}

	actorID, _ := primitive.ObjectIDFromHex(actor.ID)
	h.AuditLog.AdminAction(ctx, r, audit.EventSiteCreated, actorID, site.Name, nil)

	jsonio.Respond(w, http.StatusCreated, site)
}

// HandleDelete handles POST /sites/{id}/delete. Member histories keep
// their intervals; the site just leaves the pick list.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.CurrentUser(r)
	if !ok {
		jsonio.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		jsonio.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	site, err := h.Sites.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sitestore.ErrNotFound) {
			jsonio.Error(w, http.StatusNotFound, "site not found")
			return
		}
		h.Log.Error("sites: lookup failed", zap.Error(err))
		jsonio.Error(w, http.StatusInternalServerError, "could not delete site")
		return
	}

	if err := h.Sites.Delete(ctx, id); err != nil {
		if errors.Is(err, sitestore.ErrNotFound) {
			jsonio.Error(w, http.StatusNotFound, "site not found")
			return
		}
		h.Log.Error("sites: delete failed", zap.Error(err))
		jsonio.Error(w, http.StatusInternalServerError, "could not delete site")
		return
	}

	actorID, _ := primitive.ObjectIDFromHex(actor.ID)
	h.AuditLog.AdminAction(ctx, r, audit.EventSiteDeleted, actorID, site.Name, nil)

	jsonio.Respond(w, http.StatusOK, map[string]string{"status": "deleted"})
}
