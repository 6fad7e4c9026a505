// internal/app/features/expenses/import.go
package expenses

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dalemusser/crewhub/internal/app/system/auth"
	"github.com/dalemusser/crewhub/internal/app/system/dates"
	"github.com/dalemusser/crewhub/internal/app/system/jsonio"
	"github.com/dalemusser/crewhub/internal/app/system/money"
	"github.com/dalemusser/crewhub/internal/app/system/timeouts"
	"github.com/dalemusser/crewhub/internal/app/system/xlsx"
	"github.com/dalemusser/crewhub/internal/domain/models"
	"go.uber.org/zap"
)

// requiredColumns are the headers an import sheet must carry, matched
// case-insensitively in any order, and must be non-empty on every row.
// Location and Remarks columns are optional.
var requiredColumns = []string{"Date", "Site", "Category", "PaidTo", "Amount"}

type importResponse struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

// HandleImport handles POST /expenses/import: an .xlsx upload whose
// rows become pending expenses attributed to the uploader. Bad rows
// are skipped and counted; good rows are inserted in one batch.
func (h *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.CurrentUser(r)
	if !ok {
		jsonio.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		jsonio.Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		jsonio.Error(w, http.StatusBadRequest, `missing "file" part`)
		return
	}
	defer file.Close()

	rows, parseErrs, err := ParseImport(file, actor.Name)
	if err != nil {
		jsonio.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	if err := h.Expenses.CreateMany(ctx, rows, actor.Name); err != nil {
		h.Log.Error("expenses: import insert failed", zap.Error(err))
		jsonio.Error(w, http.StatusInternalServerError, "could not save imported expenses")
		return
	}

	h.Log.Info("expenses imported",
		zap.Int("success", len(rows)),
		zap.Int("failed", len(parseErrs)),
		zap.String("by", actor.Name))

	jsonio.Respond(w, http.StatusOK, importResponse{
		Success: len(rows),
		Failed:  len(parseErrs),
		Errors:  parseErrs,
	})
}

// ParseImport reads an import workbook into pending expenses. Row
// problems come back as messages, one per skipped row; only a missing
// or unreadable header sheet is an outright error.
func ParseImport(f io.Reader, person string) ([]models.Expense, []string, error) {
	rows, err := xlsx.ReadRows(f)
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("sheet is empty")
	}

	// Header row → column index, case-insensitive.
	col := map[string]int{}
	for i, name := range rows[0] {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, want := range requiredColumns {
		if _, ok := col[strings.ToLower(want)]; !ok {
			return nil, nil, fmt.Errorf("missing column %q", want)
		}
	}

	cell := func(row []string, name string) string {
		i, ok := col[strings.ToLower(name)]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var out []models.Expense
	var problems []string
	for n, row := range rows[1:] {
		rowNum := n + 2 // 1-based, after header

		if len(row) == 0 {
			continue // blank row, not a failure
		}

		missing := ""
		for _, req := range requiredColumns {
			if cell(row, req) == "" {
				missing = req
				break
			}
		}
		if missing != "" {
			problems = append(problems, fmt.Sprintf("row %d: missing %s", rowNum, missing))
			continue
		}

		date, err := dates.Parse(cell(row, "Date"))
		if err != nil {
			problems = append(problems, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}
		amt, err := money.Parse(cell(row, "Amount"))
		if err != nil {
			problems = append(problems, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}

		out = append(out, models.Expense{
			Date:     date,
			Person:   person,
			SiteName: cell(row, "Site"),
			Category: cell(row, "Category"),
			PaidTo:   cell(row, "PaidTo"),
			Amount:   money.Format(amt),
			Remarks:  joinRemarks(cell(row, "Location"), cell(row, "Remarks")),
		})
	}
	return out, problems, nil
}

// joinRemarks folds the import sheet's Location column into remarks,
// since stored expenses carry no separate location field.
func joinRemarks(location, remarks string) string {
	switch {
	case location == "":
		return remarks
	case remarks == "":
		return location
	default:
		return location + "; " + remarks
	}
}
