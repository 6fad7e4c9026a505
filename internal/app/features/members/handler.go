// internal/app/features/members/handler.go
package members

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/crewhub/internal/app/store/audit"
	memberstore "github.com/dalemusser/crewhub/internal/app/store/members"
	sitestore "github.com/dalemusser/crewhub/internal/app/store/sites"
	userstore "github.com/dalemusser/crewhub/internal/app/store/users"
	"github.com/dalemusser/crewhub/internal/app/system/auditlog"
	"github.com/dalemusser/crewhub/internal/app/system/auth"
	"github.com/dalemusser/crewhub/internal/app/system/jsonio"
	"github.com/dalemusser/crewhub/internal/app/system/timeouts"
	"github.com/dalemusser/crewhub/internal/domain/assignment"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves member listing, site assignment, and relieving.
type Handler struct {
	Log      *zap.Logger
	AuditLog *auditlog.Logger
	Members  *memberstore.Store
	Sites    *sitestore.Store
	Users    *userstore.Store
}

func NewHandler(db *mongo.Database, auditLog *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:      logger,
		AuditLog: auditLog,
		Members:  memberstore.New(db),
		Sites:    sitestore.New(db),
		Users:    userstore.New(db),
	}
}

// HandleList handles GET /members?status=&category=&site=&name=.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	q := r.URL.Query()
	members, err := h.Members.List(ctx, memberstore.ListFilter{
		Status:       q.Get("status"),
		Category:     q.Get("category"),
		Site:         q.Get("site"),
		NameContains: q.Get("name"),
	})
	if err != nil {
		h.Log.Error("members: list failed", zap.Error(err))
		jsonio.Error(w, http.StatusInternalServerError, "could not list members")
		return
	}
	jsonio.Respond(w, http.StatusOK, members)
}

// HandleGet handles GET /members/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		jsonio.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	m, err := h.Members.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, memberstore.ErrNotFound) {
			jsonio.Error(w, http.StatusNotFound, "member not found")
			return
		}
		h.Log.Error("members: get failed", zap.Error(err))
		jsonio.Error(w, http.StatusInternalServerError, "could not load member")
		return
	}
	jsonio.Respond(w, http.StatusOK, m)
}

// HandleHistory handles GET /members/{id}/history.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		jsonio.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	history, err := h.Members.SiteHistory(ctx, id)
	if err != nil {
		if errors.Is(err, memberstore.ErrNotFound) {
			jsonio.Error(w, http.StatusNotFound, "member not found")
			return
		}
		h.Log.Error("members: history failed", zap.Error(err))
		jsonio.Error(w, http.StatusInternalServerError, "could not load history")
		return
	}
	jsonio.Respond(w, http.StatusOK, history)
}

type assignRequest struct {
	Site         string   `json:"site"`
	Teams        []string `json:"teams"`
	AutoUnassign bool     `json:"auto_unassign"`
}

// HandleAssign handles POST /members/{id}/assign.
//
// Moving a member who already has an open interval at another site
// requires auto_unassign; without it the request fails with 409 and
// nothing changes.
func (h *Handler) HandleAssign(w http.ResponseWriter, r *http.Request) {
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

	var req assignRequest
	if err := jsonio.Decode(r, &req); err != nil {
		jsonio.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Site == "" {
		jsonio.Error(w, http.StatusBadRequest, "site is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	// The site must exist in the pick list.
	site, err := h.Sites.GetByName(ctx, req.Site)
	if err != nil {
		if errors.Is(err, sitestore.ErrNotFound) {
			jsonio.Error(w, http.StatusBadRequest, "unknown site")
			return
		}
		h.Log.Error("members: site lookup failed", zap.Error(err))
		jsonio.Error(w, http.StatusInternalServerError, "could not assign member")
		return
	}

	m, change, err := h.Members.Assign(ctx, id, site.Name, req.Teams, actor.Name, req.AutoUnassign)
	if err != nil {
		switch {
		case errors.Is(err, memberstore.ErrNotFound):
			jsonio.Error(w, http.StatusNotFound, "member not found")
		case errors.Is(err, memberstore.ErrNotApproved):
			jsonio.Error(w, http.StatusConflict, err.Error())
		case errors.Is(err, assignment.ErrStillAssigned):
			jsonio.Error(w, http.StatusConflict, err.Error())
		default:
			h.Log.Error("members: assign failed", zap.Error(err))
			jsonio.Error(w, http.StatusInternalServerError, "could not assign member")
		}
		return
	}

	actorID, _ := primitive.ObjectIDFromHex(actor.ID)
	h.AuditLog.AdminAction(ctx, r, audit.EventMemberAssigned, actorID, m.PersonName,
		map[string]string{"site": site.Name})

	jsonio.Respond(w, http.StatusOK, map[string]any{
		"member": m,
		"change": change,
	})
}

// HandleUnassign handles POST /members/{id}/unassign. A member with no
// assignments comes back unchanged with empty arrays.
func (h *Handler) HandleUnassign(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	m, change, err := h.Members.Unassign(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, memberstore.ErrNotFound):
			jsonio.Error(w, http.StatusNotFound, "member not found")
		case errors.Is(err, memberstore.ErrNotApproved):
			jsonio.Error(w, http.StatusConflict, err.Error())
		default:
			h.Log.Error("members: unassign failed", zap.Error(err))
			jsonio.Error(w, http.StatusInternalServerError, "could not unassign member")
		}
		return
	}

	actorID, _ := primitive.ObjectIDFromHex(actor.ID)
	h.AuditLog.AdminAction(ctx, r, audit.EventMemberUnassigned, actorID, m.PersonName,
		map[string]string{"closed": strings.Join(change.Closed, ", ")})

	jsonio.Respond(w, http.StatusOK, map[string]any{
		"member": m,
		"change": change,
	})
}

// HandleRelieve handles POST /members/{id}/relieve. Relieving closes
// open site intervals, marks the member relieved, and removes any
// provisioned login account.
func (h *Handler) HandleRelieve(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	m, _, err := h.Members.Relieve(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, memberstore.ErrNotFound):
			jsonio.Error(w, http.StatusNotFound, "member not found")
		case errors.Is(err, memberstore.ErrNotApproved):
			jsonio.Error(w, http.StatusConflict, err.Error())
		default:
			h.Log.Error("members: relieve failed", zap.Error(err))
			jsonio.Error(w, http.StatusInternalServerError, "could not relieve member")
		}
		return
	}

	if n, err := h.Users.DeleteByMemberID(ctx, id); err != nil {
		h.Log.Warn("members: account removal failed after relieve",
			zap.String("person", m.PersonName), zap.Error(err))
	} else if n > 0 {
		h.Log.Info("members: login account removed",
			zap.String("person", m.PersonName))
	}

	actorID, _ := primitive.ObjectIDFromHex(actor.ID)
	h.AuditLog.AdminAction(ctx, r, audit.EventMemberRelieved, actorID, m.PersonName, nil)

	jsonio.Respond(w, http.StatusOK, m)
}

// HandleTeams handles GET /teams: the distinct team names in use.
func (h *Handler) HandleTeams(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	teams, err := h.Members.DistinctTeams(ctx)
	if err != nil {
		h.Log.Error("members: distinct teams failed", zap.Error(err))
		jsonio.Error(w, http.StatusInternalServerError, "could not list teams")
		return
	}
	jsonio.Respond(w, http.StatusOK, teams)
}
