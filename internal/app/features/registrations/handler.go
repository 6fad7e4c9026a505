// internal/app/features/registrations/handler.go
package registrations

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/crewhub/internal/app/store/audit"
	counterstore "github.com/dalemusser/crewhub/internal/app/store/counters"
	memberstore "github.com/dalemusser/crewhub/internal/app/store/members"
	userstore "github.com/dalemusser/crewhub/internal/app/store/users"
	"github.com/dalemusser/crewhub/internal/app/system/auditlog"
	"github.com/dalemusser/crewhub/internal/app/system/auth"
	"github.com/dalemusser/crewhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/crewhub/internal/app/system/jsonio"
	"github.com/dalemusser/crewhub/internal/app/system/timeouts"
	"github.com/dalemusser/crewhub/internal/app/system/uploads"
	"github.com/dalemusser/crewhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// maxFormMemory bounds the in-memory portion of multipart parsing;
// larger file parts spill to disk.
const maxFormMemory = 10 << 20 // 10 MiB

// documentFields are the file inputs a registration may carry. Each
// present file is uploaded and recorded under its field name.
var documentFields = []string{"photo", "id_proof", "address_proof", "resume"}

// Handler serves registration submission, listing, and decisions.
type Handler struct {
	Log      *zap.Logger
	AuditLog *auditlog.Logger
	Storage  storage.Store
	Members  *memberstore.Store
	Users    *userstore.Store
	Counters *counterstore.Store
}

func NewHandler(db *mongo.Database, store storage.Store, auditLog *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:      logger,
		AuditLog: auditLog,
		Storage:  store,
		Members:  memberstore.New(db),
		Users:    userstore.New(db),
		Counters: counterstore.New(db),
	}
}

// HandleSubmit handles POST /registrations (multipart form).
//
// Required fields: person_name, category. Head Office registrations
// additionally require email and password, which become the login
// account at approval time. Validation happens before any upload or
// insert.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		jsonio.Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	personName := htmlsanitize.Text(r.FormValue("person_name"))
	category := r.FormValue("category")
	email := r.FormValue("email")
	phone := r.FormValue("phone")
	password := r.FormValue("password")

	if personName == "" {
		jsonio.Error(w, http.StatusBadRequest, "person_name is required")
		return
	}
	switch category {
	case models.CategoryHeadOffice, models.CategorySite:
	default:
		jsonio.Error(w, http.StatusBadRequest, `category must be "Head Office" or "Site"`)
		return
	}
	if category == models.CategoryHeadOffice {
		if email == "" {
			jsonio.Error(w, http.StatusBadRequest, "email is required for Head Office registrations")
			return
		}
		if password == "" {
			jsonio.Error(w, http.StatusBadRequest, "password is required for Head Office registrations")
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	// The password never persists in clear; it is hashed at capture
	// and used only when approval provisions the account.
	var passwordHash string
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			h.Log.Error("registration: hash password", zap.Error(err))
			jsonio.Error(w, http.StatusInternalServerError, "could not process registration")
			return
		}
		passwordHash = string(hash)
	}

	documents := map[string]string{}
	for _, field := range documentFields {
		file, header, err := r.FormFile(field)
		if err != nil {
			continue // field absent
		}
		info, err := uploads.File(ctx, h.Storage, "members", personName, field,
			header.Filename, file, header.Size, header.Header.Get("Content-Type"))
		file.Close()
		if err != nil {
			h.Log.Error("registration: document upload failed",
				zap.String("field", field), zap.Error(err))
			jsonio.Error(w, http.StatusBadGateway, "document upload failed")
			return
		}
		documents[field] = info.Path
	}

	m := models.Member{
		PersonName:   personName,
		Category:     category,
		Email:        email,
		Phone:        phone,
		PasswordHash: passwordHash,
		Documents:    documents,
	}

	if category == models.CategoryHeadOffice {
		employeeID, err := h.Counters.NextEmployeeID(ctx)
		if err != nil {
			h.Log.Error("registration: employee id allocation failed", zap.Error(err))
			jsonio.Error(w, http.StatusInternalServerError, "could not process registration")
			return
		}
		m.EmployeeID = employeeID
	}

	created, err := h.Members.Create(ctx, m)
	if err != nil {
		h.Log.Error("registration: insert failed", zap.Error(err))
		jsonio.Error(w, http.StatusInternalServerError, "could not process registration")
		return
	}

	h.Log.Info("registration submitted",
		zap.String("person", created.PersonName),
		zap.String("category", created.Category))
	jsonio.Respond(w, http.StatusCreated, created)
}

// HandleList handles GET /registrations?status=&category=&site=.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	members, err := h.Members.List(ctx, memberstore.ListFilter{
		Status:   r.URL.Query().Get("status"),
		Category: r.URL.Query().Get("category"),
		Site:     r.URL.Query().Get("site"),
	})
	if err != nil {
		h.Log.Error("registrations: list failed", zap.Error(err))
		jsonio.Error(w, http.StatusInternalServerError, "could not list registrations")
		return
	}
	jsonio.Respond(w, http.StatusOK, members)
}

// HandleGet handles GET /registrations/{id}.
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
			jsonio.Error(w, http.StatusNotFound, "registration not found")
			return
		}
		h.Log.Error("registrations: get failed", zap.Error(err))
		jsonio.Error(w, http.StatusInternalServerError, "could not load registration")
		return
	}
	jsonio.Respond(w, http.StatusOK, m)
}

type decisionRequest struct {
	Action string `json:"action"` // approve | reject
	Remark string `json:"remark"`
}

type decisionResponse struct {
	Member *models.Member `json:"member"`
	// ProvisioningError reports an account-creation failure after the
	// decision was already persisted. The status change stands.
	ProvisioningError string `json:"provisioning_error,omitempty"`
}

// HandleDecision handles POST /registrations/{id}/decision.
//
// The status change persists first. For an approved Head Office record
// the login account is then provisioned from the captured email and
// password hash; a duplicate email at that point is reported to the
// caller but does not roll back the approval.
func (h *Handler) HandleDecision(w http.ResponseWriter, r *http.Request) {
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

	var req decisionRequest
	if err := jsonio.Decode(r, &req); err != nil {
		jsonio.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Action != "approve" && req.Action != "reject" {
		jsonio.Error(w, http.StatusBadRequest, `action must be "approve" or "reject"`)
		return
	}
	remark := htmlsanitize.Sanitize(req.Remark)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	m, err := h.Members.Decide(ctx, id, req.Action == "approve", actor.Name, remark)
	if err != nil {
		switch {
		case errors.Is(err, memberstore.ErrNotFound):
			jsonio.Error(w, http.StatusNotFound, "registration not found")
		case errors.Is(err, memberstore.ErrAlreadyDecided):
			jsonio.Error(w, http.StatusConflict, err.Error())
		default:
			h.Log.Error("registrations: decide failed", zap.Error(err))
			jsonio.Error(w, http.StatusInternalServerError, "could not record decision")
		}
		return
	}

	eventType := audit.EventRegistrationRejected
	if req.Action == "approve" {
		eventType = audit.EventRegistrationApproved
	}
	actorID, _ := primitive.ObjectIDFromHex(actor.ID)
	h.AuditLog.AdminAction(ctx, r, eventType, actorID, m.PersonName,
		map[string]string{"category": m.Category, "remark": remark})

	resp := decisionResponse{Member: m}

	if req.Action == "approve" && m.Category == models.CategoryHeadOffice {
		if err := h.provisionAccount(ctx, m); err != nil {
			h.Log.Warn("registrations: provisioning failed after approval",
				zap.String("person", m.PersonName), zap.Error(err))
			resp.ProvisioningError = err.Error()
		}
	}

	jsonio.Respond(w, http.StatusOK, resp)
}

// provisionAccount creates the login user for an approved Head Office
// member and clears the captured hash from the member record.
func (h *Handler) provisionAccount(ctx context.Context, m *models.Member) error {
	memberID := m.ID
	_, err := h.Users.Create(ctx, models.User{
		Email:         m.Email,
		PasswordHash:  m.PasswordHash,
		FullName:      m.PersonName,
		Role:          models.RoleMember,
		MemberID:      &memberID,
		Documents:     m.Documents,
		RequiresLogin: true,
	})
	if err != nil {
		return err
	}
	if err := h.Members.ClearPasswordHash(ctx, m.ID); err != nil {
		// The account exists; losing the cleanup only leaves a stale
		// hash on the member record.
		h.Log.Warn("registrations: clear captured hash failed",
			zap.String("person", m.PersonName), zap.Error(err))
	}
	return nil
}
