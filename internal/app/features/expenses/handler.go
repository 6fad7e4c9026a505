// internal/app/features/expenses/handler.go
package expenses

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/dalemusser/crewhub/internal/app/store/audit"
	expensestore "github.com/dalemusser/crewhub/internal/app/store/expenses"
	notificationstore "github.com/dalemusser/crewhub/internal/app/store/notifications"
	sitestore "github.com/dalemusser/crewhub/internal/app/store/sites"
	"github.com/dalemusser/crewhub/internal/app/system/auditlog"
	"github.com/dalemusser/crewhub/internal/app/system/auth"
	"github.com/dalemusser/crewhub/internal/app/system/dates"
	"github.com/dalemusser/crewhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/crewhub/internal/app/system/jsonio"
	"github.com/dalemusser/crewhub/internal/app/system/money"
	"github.com/dalemusser/crewhub/internal/app/system/timeouts"
	"github.com/dalemusser/crewhub/internal/app/system/uploads"
	"github.com/dalemusser/crewhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const maxFormMemory = 10 << 20 // 10 MiB

// Handler serves expense submission, listing, decisions, and purge.
type Handler struct {
	Log           *zap.Logger
	AuditLog      *auditlog.Logger
	Storage       storage.Store
	Expenses      *expensestore.Store
	Sites         *sitestore.Store
	Notifications *notificationstore.Store
}

func NewHandler(db *mongo.Database, store storage.Store, auditLog *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:           logger,
		AuditLog:      auditLog,
		Storage:       store,
		Expenses:      expensestore.New(db),
		Sites:         sitestore.New(db),
		Notifications: notificationstore.New(db),
	}
}

// HandleCreate handles POST /expenses (multipart form, optional bill
// file).
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.CurrentUser(r)
	if !ok {
		jsonio.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		jsonio.Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	date, err := dates.Parse(r.FormValue("date"))
	if err != nil {
		jsonio.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	siteName := r.FormValue("site_name")
	category := htmlsanitize.Text(r.FormValue("category"))
	paidTo := htmlsanitize.Text(r.FormValue("paid_to"))
	amount := r.FormValue("amount")
	remarks := htmlsanitize.Sanitize(r.FormValue("remarks"))

	if siteName == "" || category == "" || paidTo == "" {
		jsonio.Error(w, http.StatusBadRequest, "site_name, category, and paid_to are required")
		return
	}
	amt, err := money.Parse(amount)
	if err != nil {
		jsonio.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	var billURL string
	if file, header, err := r.FormFile("bill"); err == nil {
		info, upErr := uploads.File(ctx, h.Storage, "expenses", actor.Name, "bill",
			header.Filename, file, header.Size, header.Header.Get("Content-Type"))
		file.Close()
		if upErr != nil {
			h.Log.Error("expenses: bill upload failed", zap.Error(upErr))
			jsonio.Error(w, http.StatusBadGateway, "bill upload failed")
			return
		}
		billURL = info.Path
	}

	e, err := h.Expenses.Create(ctx, models.Expense{
		Date:      date,
		Person:    actor.Name,
		SiteName:  siteName,
		Category:  category,
		PaidTo:    paidTo,
		Amount:    money.Format(amt),
		Remarks:   remarks,
		BillURL:   billURL,
		CreatedBy: actor.Name,
	})
	if err != nil {
		h.Log.Error("expenses: insert failed", zap.Error(err))
		jsonio.Error(w, http.StatusInternalServerError, "could not record expense")
		return
	}
	jsonio.Respond(w, http.StatusCreated, e)
}

// HandleList handles GET /expenses?person=&site=&status=&from=&to=.
// Results come back ascending by date.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r)
	if err != nil {
		jsonio.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	out, err := h.Expenses.List(ctx, f)
	if err != nil {
		h.Log.Error("expenses: list failed", zap.Error(err))
		jsonio.Error(w, http.StatusInternalServerError, "could not list expenses")
		return
	}
	jsonio.Respond(w, http.StatusOK, out)
}

// HandleListRejected handles GET /expenses/rejected.
func (h *Handler) HandleListRejected(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r)
	if err != nil {
		jsonio.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	out, err := h.Expenses.ListRejected(ctx, f)
	if err != nil {
		h.Log.Error("expenses: rejected list failed", zap.Error(err))
		jsonio.Error(w, http.StatusInternalServerError, "could not list rejected expenses")
		return
	}
	jsonio.Respond(w, http.StatusOK, out)
}

func filterFromQuery(r *http.Request) (expensestore.ListFilter, error) {
	q := r.URL.Query()
	f := expensestore.ListFilter{
		Person: q.Get("person"),
		Site:   q.Get("site"),
		Status: q.Get("status"),
	}
	var err error
	if v := q.Get("from"); v != "" {
		if f.From, err = dates.Parse(v); err != nil {
			return f, err
		}
	}
	if v := q.Get("to"); v != "" {
		if f.To, err = dates.Parse(v); err != nil {
			return f, err
		}
	}
	return f, nil
}

type decisionsRequest struct {
	IDs    []string `json:"ids"`
	Action string   `json:"action"` // approve | reject
	Remark string   `json:"remark"`
}

type decisionsResponse struct {
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors,omitempty"`
}

// HandleDecisions handles POST /expenses/decisions.
//
// IDs are processed sequentially with no batch atomicity: a failure
// partway leaves earlier decisions in place and is only counted.
// Every decided expense notifies its submitter.
func (h *Handler) HandleDecisions(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.CurrentUser(r)
	if !ok {
		jsonio.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req decisionsRequest
	if err := jsonio.Decode(r, &req); err != nil {
		jsonio.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Action != "approve" && req.Action != "reject" {
		jsonio.Error(w, http.StatusBadRequest, `action must be "approve" or "reject"`)
		return
	}
	if len(req.IDs) == 0 {
		jsonio.Error(w, http.StatusBadRequest, "ids is empty")
		return
	}
	remark := htmlsanitize.Sanitize(req.Remark)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	var resp decisionsResponse
	for _, hex := range req.IDs {
		id, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			resp.Failed++
			resp.Errors = append(resp.Errors, hex+": invalid id")
			continue
		}

		var e *models.Expense
		if req.Action == "approve" {
			e, err = h.Expenses.Approve(ctx, id, remark)
		} else {
			e, err = h.Expenses.Reject(ctx, id, remark)
		}
		if err != nil {
			resp.Failed++
			if errors.Is(err, expensestore.ErrNotFound) {
				resp.Errors = append(resp.Errors, hex+": not found")
			} else {
				h.Log.Error("expenses: decision failed",
					zap.String("id", hex), zap.Error(err))
				resp.Errors = append(resp.Errors, hex+": internal error")
			}
			continue
		}
		resp.Succeeded++

		if _, err := h.Notifications.Create(ctx, models.Notification{
			User:      e.CreatedBy,
			Status:    e.Status,
			ExpenseID: e.ID,
			Remark:    remark,
		}); err != nil {
			h.Log.Warn("expenses: notification insert failed",
				zap.String("id", hex), zap.Error(err))
		}
	}

	actorID, _ := primitive.ObjectIDFromHex(actor.ID)
	h.AuditLog.AdminAction(ctx, r, audit.EventExpenseDecided, actorID, req.Action,
		map[string]string{
			"succeeded": strconv.Itoa(resp.Succeeded),
			"failed":    strconv.Itoa(resp.Failed),
		})

	jsonio.Respond(w, http.StatusOK, resp)
}

type purgeRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
	Site string `json:"site"`
}

// HandlePurge handles POST /admin/expenses/purge: bulk-deletes live
// expenses inside a date range, optionally for one site.
func (h *Handler) HandlePurge(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.CurrentUser(r)
	if !ok {
		jsonio.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req purgeRequest
	if err := jsonio.Decode(r, &req); err != nil {
		jsonio.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	from, err := dates.Parse(req.From)
	if err != nil {
		jsonio.Error(w, http.StatusBadRequest, "from: "+err.Error())
		return
	}
	to, err := dates.Parse(req.To)
	if err != nil {
		jsonio.Error(w, http.StatusBadRequest, "to: "+err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	deleted, err := h.Expenses.Purge(ctx, from, to, req.Site)
	if err != nil {
		h.Log.Error("expenses: purge failed", zap.Error(err))
		jsonio.Error(w, http.StatusInternalServerError, "could not purge expenses")
		return
	}

	actorID, _ := primitive.ObjectIDFromHex(actor.ID)
	h.AuditLog.AdminAction(ctx, r, audit.EventExpensesPurged, actorID, req.Site,
		map[string]string{"from": from, "to": to, "deleted": strconv.Itoa(int(deleted))})

	jsonio.Respond(w, http.StatusOK, map[string]int64{"deleted": deleted})
}
