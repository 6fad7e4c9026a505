// internal/app/features/reports/handler.go
package reports

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	expensestore "github.com/dalemusser/crewhub/internal/app/store/expenses"
	paymentstore "github.com/dalemusser/crewhub/internal/app/store/payments"
	"github.com/dalemusser/crewhub/internal/app/system/dates"
	"github.com/dalemusser/crewhub/internal/app/system/jsonio"
	"github.com/dalemusser/crewhub/internal/app/system/normalize"
	"github.com/dalemusser/crewhub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler serves the spreadsheet reports.
type Handler struct {
	Log      *zap.Logger
	Expenses *expensestore.Store
	Payments *paymentstore.Store
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Log:      logger,
		Expenses: expensestore.New(db),
		Payments: paymentstore.New(db),
	}
}

// HandleMasterVouchers handles GET /reports/vouchers?from=&to=&site=&person=.
func (h *Handler) HandleMasterVouchers(w http.ResponseWriter, r *http.Request) {
	f, err := rangeFilter(r)
	if err != nil {
		jsonio.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	f.Site = r.URL.Query().Get("site")
	f.Person = r.URL.Query().Get("person")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	expenses, err := h.Expenses.List(ctx, f)
	if err != nil {
		h.Log.Error("reports: voucher query failed", zap.Error(err))
		jsonio.Error(w, http.StatusInternalServerError, "could not build report")
		return
	}

	data, err := BuildMasterWorkbook(expenses)
	if err != nil {
		h.Log.Error("reports: master workbook failed", zap.Error(err))
		jsonio.Error(w, http.StatusInternalServerError, "could not build report")
		return
	}

	filename := fmt.Sprintf("%s_Voucher_Report_Master.xlsx", time.Now().UTC().Format("20060102"))
	serveWorkbook(w, filename, data)
}

// HandlePersonVouchers handles GET /reports/vouchers/{person}?from=&to=.
func (h *Handler) HandlePersonVouchers(w http.ResponseWriter, r *http.Request) {
	person := chi.URLParam(r, "person")
	if person == "" {
		jsonio.Error(w, http.StatusBadRequest, "person is required")
		return
	}

	f, err := rangeFilter(r)
	if err != nil {
		jsonio.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	f.Person = person

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	expenses, err := h.Expenses.List(ctx, f)
	if err != nil {
		h.Log.Error("reports: voucher query failed", zap.Error(err))
		jsonio.Error(w, http.StatusInternalServerError, "could not build report")
		return
	}

	data, err := BuildPersonWorkbook(person, expenses)
	if err != nil {
		h.Log.Error("reports: person workbook failed", zap.Error(err))
		jsonio.Error(w, http.StatusInternalServerError, "could not build report")
		return
	}

	filename := fmt.Sprintf("%s_Voucher_Report_%s.xlsx",
		time.Now().UTC().Format("20060102"), filenameSegment(person))
	serveWorkbook(w, filename, data)
}

// HandleLedger handles GET /reports/ledger/{person}?from=&to=.
func (h *Handler) HandleLedger(w http.ResponseWriter, r *http.Request) {
	person := chi.URLParam(r, "person")
	if person == "" {
		jsonio.Error(w, http.StatusBadRequest, "person is required")
		return
	}

	f, err := rangeFilter(r)
	if err != nil {
		jsonio.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	f.Person = person

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	expenses, err := h.Expenses.List(ctx, f)
	if err != nil {
		h.Log.Error("reports: ledger expense query failed", zap.Error(err))
		jsonio.Error(w, http.StatusInternalServerError, "could not build report")
		return
	}
	payments, err := h.Payments.ListByPerson(ctx, person, f.From, f.To)
	if err != nil {
		h.Log.Error("reports: ledger payment query failed", zap.Error(err))
		jsonio.Error(w, http.StatusInternalServerError, "could not build report")
		return
	}

	data, err := BuildLedgerWorkbook(person, expenses, payments)
	if err != nil {
		h.Log.Error("reports: ledger workbook failed", zap.Error(err))
		jsonio.Error(w, http.StatusInternalServerError, "could not build report")
		return
	}

	from, to := f.From, f.To
	if from == "" {
		from = "start"
	}
	if to == "" {
		to = "today"
	}
	filename := fmt.Sprintf("Ledger_%s_%s_to_%s.xlsx", filenameSegment(person), from, to)
	serveWorkbook(w, filename, data)
}

func rangeFilter(r *http.Request) (expensestore.ListFilter, error) {
	var f expensestore.ListFilter
	var err error
	if v := r.URL.Query().Get("from"); v != "" {
		if f.From, err = dates.Parse(v); err != nil {
			return f, err
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if f.To, err = dates.Parse(v); err != nil {
			return f, err
		}
	}
	return f, nil
}

func serveWorkbook(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// filenameSegment Title-cases the person and joins the words with
// underscores for a clean download name.
func filenameSegment(person string) string {
	return strings.ReplaceAll(normalize.Title(person), " ", "_")
}
