// internal/app/features/payments/handler.go
package payments

import (
	"context"
	"net/http"

	"github.com/dalemusser/crewhub/internal/app/store/audit"
	paymentstore "github.com/dalemusser/crewhub/internal/app/store/payments"
	"github.com/dalemusser/crewhub/internal/app/system/auditlog"
	"github.com/dalemusser/crewhub/internal/app/system/auth"
	"github.com/dalemusser/crewhub/internal/app/system/dates"
	"github.com/dalemusser/crewhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/crewhub/internal/app/system/jsonio"
	"github.com/dalemusser/crewhub/internal/app/system/money"
	"github.com/dalemusser/crewhub/internal/app/system/timeouts"
	"github.com/dalemusser/crewhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves payment recording and listing.
type Handler struct {
	Log      *zap.Logger
	AuditLog *auditlog.Logger
	Payments *paymentstore.Store
}

func NewHandler(db *mongo.Database, auditLog *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:      logger,
		AuditLog: auditLog,
		Payments: paymentstore.New(db),
	}
}

type createRequest struct {
	Person  string `json:"person"`
	Date    string `json:"date"`
	Amount  string `json:"amount"`
	Remarks string `json:"remarks"`
}

// HandleCreate handles POST /payments.
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
	if req.Person == "" {
		jsonio.Error(w, http.StatusBadRequest, "person is required")
		return
	}
	date, err := dates.Parse(req.Date)
	if err != nil {
		jsonio.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	amt, err := money.Parse(req.Amount)
	if err != nil {
		jsonio.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, err := h.Payments.Create(ctx, models.Payment{
		Person:  req.Person,
		Date:    date,
		Amount:  money.Format(amt),
		Remarks: htmlsanitize.Sanitize(req.Remarks),
	})
	if err != nil {
		h.Log.Error("payments: insert failed", zap.Error(err))
		jsonio.Error(w, http.StatusInternalServerError, "could not record payment")
		return
	}

	actorID, _ := primitive.ObjectIDFromHex(actor.ID)
	h.AuditLog.AdminAction(ctx, r, audit.EventPaymentRecorded, actorID, p.Person,
		map[string]string{"date": p.Date, "amount": p.Amount})

	jsonio.Respond(w, http.StatusCreated, p)
}

// HandleList handles GET /payments?person=&from=&to=.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	person := q.Get("person")

	var from, to string
	var err error
	if v := q.Get("from"); v != "" {
		if from, err = dates.Parse(v); err != nil {
			jsonio.Error(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if v := q.Get("to"); v != "" {
		if to, err = dates.Parse(v); err != nil {
			jsonio.Error(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var out []models.Payment
	if person != "" {
		out, err = h.Payments.ListByPerson(ctx, person, from, to)
	} else {
		out, err = h.Payments.List(ctx)
	}
	if err != nil {
		h.Log.Error("payments: list failed", zap.Error(err))
		jsonio.Error(w, http.StatusInternalServerError, "could not list payments")
		return
	}
	jsonio.Respond(w, http.StatusOK, out)
}
