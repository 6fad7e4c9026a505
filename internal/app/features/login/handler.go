// internal/app/features/login/handler.go
package login

import (
	"context"
	"net/http"

	userstore "github.com/dalemusser/crewhub/internal/app/store/users"
	"github.com/dalemusser/crewhub/internal/app/system/auditlog"
	"github.com/dalemusser/crewhub/internal/app/system/auth"
	"github.com/dalemusser/crewhub/internal/app/system/jsonio"
	"github.com/dalemusser/crewhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Handler serves login and logout.
type Handler struct {
	Log      *zap.Logger
	AuditLog *auditlog.Logger
	Users    *userstore.Store
}

func NewHandler(db *mongo.Database, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:      logger,
		AuditLog: audit,
		Users:    userstore.New(db),
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// HandleLogin handles POST /login. Unknown email and wrong password
// return the same 401 so callers cannot enumerate accounts; the audit
// trail records which it was.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := jsonio.Decode(r, &req); err != nil {
		jsonio.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Email == "" || req.Password == "" {
		jsonio.Error(w, http.StatusBadRequest, "email and password are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			h.AuditLog.LoginFailed(ctx, r, req.Email, "user not found")
			jsonio.Error(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		h.Log.Error("login: lookup failed", zap.Error(err))
		jsonio.Error(w, http.StatusInternalServerError, "login failed")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		h.AuditLog.LoginFailed(ctx, r, req.Email, "wrong password")
		jsonio.Error(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	// Accounts not flagged for login (mid-provisioning or disabled)
	// get the same answer as a bad credential.
	if !u.RequiresLogin {
		h.AuditLog.LoginFailed(ctx, r, req.Email, "login not enabled")
		jsonio.Error(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	sessionUser := &auth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.FullName,
		Email: u.Email,
		Role:  u.Role,
	}
	if err := auth.SignIn(w, r, sessionUser); err != nil {
		h.Log.Error("login: session write failed", zap.Error(err))
		jsonio.Error(w, http.StatusInternalServerError, "login failed")
		return
	}

	h.AuditLog.LoginSuccess(ctx, r, u.ID, u.Email)
	jsonio.Respond(w, http.StatusOK, loginResponse{
		ID:       u.ID.Hex(),
		FullName: u.FullName,
		Email:    u.Email,
		Role:     u.Role,
	})
}

// HandleLogout handles POST /logout.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if u, ok := auth.CurrentUser(r); ok {
		if id, err := primitive.ObjectIDFromHex(u.ID); err == nil {
			h.AuditLog.Logout(r.Context(), r, id)
		}
	}
	if err := auth.SignOut(w, r); err != nil {
		h.Log.Error("logout: session clear failed", zap.Error(err))
	}
	jsonio.Respond(w, http.StatusOK, map[string]string{"status": "signed_out"})
}
