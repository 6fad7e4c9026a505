package expenses_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dalemusser/crewhub/internal/app/features/expenses"
	"github.com/dalemusser/crewhub/internal/app/system/xlsx"
)

func buildImportWorkbook(t *testing.T, rows [][]any) []byte {
	t.Helper()

	wb, err := xlsx.NewWorkbook()
	if err != nil {
		t.Fatalf("new workbook: %v", err)
	}
	sheet, err := wb.AddSheet("Expenses")
	if err != nil {
		t.Fatalf("add sheet: %v", err)
	}
	if err := sheet.Header([]string{"Date", "Site", "Location", "Category", "PaidTo", "Amount", "Remarks"}); err != nil {
		t.Fatalf("header: %v", err)
	}
	for _, row := range rows {
		if err := sheet.Row(row...); err != nil {
			t.Fatalf("row: %v", err)
		}
	}
	data, err := wb.Bytes(sheet)
	if err != nil {
		t.Fatalf("bytes: %v", err)
	}
	return data
}

func TestParseImport(t *testing.T) {
	data := buildImportWorkbook(t, [][]any{
		{"2025-03-01", "Riverside", "Gate 2", "Fuel", "HP Pump", "350.50", "generator"},
		{"2025-03-02", "Riverside", "", "Meals", "Canteen", "", ""},
		{"2025-03-03", "Hilltop", "", "Transport", "Auto Stand", "120", ""},
	})

	got, rowErrs, err := expenses.ParseImport(bytes.NewReader(data), "Ravi Kumar")
	if err != nil {
		t.Fatalf("ParseImport failed: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 parsed expenses, got %d", len(got))
	}
	if len(rowErrs) != 1 {
		t.Fatalf("expected 1 row error, got %v", rowErrs)
	}
	if !strings.Contains(rowErrs[0], "row 3") {
		t.Errorf("row error should name the failing row, got %q", rowErrs[0])
	}

	first := got[0]
	if first.Date != "2025-03-01" {
		t.Errorf("Date: got %q, want %q", first.Date, "2025-03-01")
	}
	if first.Person != "Ravi Kumar" {
		t.Errorf("Person: got %q, want %q", first.Person, "Ravi Kumar")
	}
	if first.Amount != "350.50" {
		t.Errorf("Amount: got %q, want %q", first.Amount, "350.50")
	}
	// Location folds into remarks since vouchers have no separate field.
	if !strings.Contains(first.Remarks, "Gate 2") {
		t.Errorf("Remarks should carry the location, got %q", first.Remarks)
	}

	if got[1].SiteName != "Hilltop" {
		t.Errorf("SiteName: got %q, want %q", got[1].SiteName, "Hilltop")
	}
}

func TestParseImport_HeaderAnyOrder(t *testing.T) {
	wb, err := xlsx.NewWorkbook()
	if err != nil {
		t.Fatalf("new workbook: %v", err)
	}
	sheet, err := wb.AddSheet("Sheet1")
	if err != nil {
		t.Fatalf("add sheet: %v", err)
	}
	if err := sheet.Header([]string{"amount", "date", "paidto", "site", "category"}); err != nil {
		t.Fatalf("header: %v", err)
	}
	if err := sheet.Row("99.00", "2025-04-01", "Vendor", "Riverside", "Misc"); err != nil {
		t.Fatalf("row: %v", err)
	}
	data, err := wb.Bytes(sheet)
	if err != nil {
		t.Fatalf("bytes: %v", err)
	}

	got, rowErrs, err := expenses.ParseImport(bytes.NewReader(data), "Ravi Kumar")
	if err != nil {
		t.Fatalf("ParseImport failed: %v", err)
	}
	if len(rowErrs) != 0 {
		t.Fatalf("unexpected row errors: %v", rowErrs)
	}
	if len(got) != 1 || got[0].Amount != "99.00" || got[0].Date != "2025-04-01" {
		t.Errorf("unexpected parse result: %+v", got)
	}
}

func TestParseImport_MissingRequiredColumn(t *testing.T) {
	wb, err := xlsx.NewWorkbook()
	if err != nil {
		t.Fatalf("new workbook: %v", err)
	}
	sheet, err := wb.AddSheet("Sheet1")
	if err != nil {
		t.Fatalf("add sheet: %v", err)
	}
	if err := sheet.Header([]string{"Date", "Site", "Category", "PaidTo"}); err != nil {
		t.Fatalf("header: %v", err)
	}
	data, err := wb.Bytes(sheet)
	if err != nil {
		t.Fatalf("bytes: %v", err)
	}

	if _, _, err := expenses.ParseImport(bytes.NewReader(data), "Ravi Kumar"); err == nil {
		t.Error("expected an error for a workbook missing the Amount column")
	}
}
