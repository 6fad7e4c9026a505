// internal/app/features/notifications/handler.go
package notifications

import (
	"context"
	"errors"
	"net/http"

	notificationstore "github.com/dalemusser/crewhub/internal/app/store/notifications"
	"github.com/dalemusser/crewhub/internal/app/system/auth"
	"github.com/dalemusser/crewhub/internal/app/system/jsonio"
	"github.com/dalemusser/crewhub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the current user's notifications.
type Handler struct {
	Log           *zap.Logger
	Notifications *notificationstore.Store
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Log:           logger,
		Notifications: notificationstore.New(db),
	}
}

// HandleList handles GET /notifications?unread=true.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.CurrentUser(r)
	if !ok {
		jsonio.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	unreadOnly := r.URL.Query().Get("unread") == "true"
	out, err := h.Notifications.ListByUser(ctx, actor.Name, unreadOnly)
	if err != nil {
		h.Log.Error("notifications: list failed", zap.Error(err))
		jsonio.Error(w, http.StatusInternalServerError, "could not list notifications")
		return
	}
	jsonio.Respond(w, http.StatusOK, out)
}

// HandleMarkRead handles POST /notifications/{id}/read. Users can only
// mark their own.
func (h *Handler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Notifications.MarkRead(ctx, id, actor.Name); err != nil {
		if errors.Is(err, notificationstore.ErrNotFound) {
			jsonio.Error(w, http.StatusNotFound, "notification not found")
			return
		}
		h.Log.Error("notifications: mark read failed", zap.Error(err))
		jsonio.Error(w, http.StatusInternalServerError, "could not update notification")
		return
	}
	jsonio.Respond(w, http.StatusOK, map[string]string{"status": "read"})
}
