// internal/app/features/reports/ledger.go
package reports

import (
	"sort"

	"github.com/dalemusser/crewhub/internal/app/system/dates"
	"github.com/dalemusser/crewhub/internal/app/system/money"
	"github.com/dalemusser/crewhub/internal/app/system/normalize"
	"github.com/dalemusser/crewhub/internal/app/system/xlsx"
	"github.com/dalemusser/crewhub/internal/domain/models"
)

// ledgerEntry is one merged row: a payment credits the person, an
// expense debits them.
type ledgerEntry struct {
	Date   string // ISO, for sorting
	Kind   string // "Payment" | "Expense"
	Detail string
	Credit float64
	Debit  float64
}

// BuildLedgerWorkbook renders a person's ledger: expenses and payments
// merged by date with a running balance (payments minus expenses).
func BuildLedgerWorkbook(person string, expenses []models.Expense, payments []models.Payment) ([]byte, error) {
	entries := make([]ledgerEntry, 0, len(expenses)+len(payments))
	for _, p := range payments {
		amt, _ := money.Parse(p.Amount)
		entries = append(entries, ledgerEntry{
			Date:   p.Date,
			Kind:   "Payment",
			Detail: p.Remarks,
			Credit: amt,
		})
	}
	for _, e := range expenses {
		amt, _ := money.Parse(e.Amount)
		entries = append(entries, ledgerEntry{
			Date:   e.Date,
			Kind:   "Expense",
			Detail: e.Category + " / " + e.PaidTo,
			Debit:  amt,
		})
	}

	// Stable so same-day payments precede same-day expenses, which
	// keeps the running balance from dipping spuriously.
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Date != entries[j].Date {
			return entries[i].Date < entries[j].Date
		}
		return entries[i].Kind == "Payment" && entries[j].Kind == "Expense"
	})

	wb, err := xlsx.NewWorkbook()
	if err != nil {
		return nil, err
	}
	sheet, err := wb.AddSheet("Ledger")
	if err != nil {
		return nil, err
	}

	if err := sheet.Header([]string{"Date", "Type", "Detail", "Credit", "Debit", "Balance"}); err != nil {
		return nil, err
	}

	var balance, credits, debits float64
	for _, entry := range entries {
		balance += entry.Credit - entry.Debit
		credits += entry.Credit
		debits += entry.Debit

		credit, debit := "", ""
		if entry.Credit > 0 {
			credit = money.Format(entry.Credit)
		}
		if entry.Debit > 0 {
			debit = money.Format(entry.Debit)
		}
		if err := sheet.Row(
			dates.ToDisplay(entry.Date),
			entry.Kind,
			entry.Detail,
			credit,
			debit,
			money.Format(balance),
		); err != nil {
			return nil, err
		}
	}

	if err := sheet.Total(
		"Total",
		"",
		normalize.Title(person),
		money.Format(credits),
		money.Format(debits),
		money.Format(balance),
	); err != nil {
		return nil, err
	}

	return wb.Bytes(sheet)
}
