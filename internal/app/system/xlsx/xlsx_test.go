package xlsx

import (
	"bytes"
	"testing"
)

// Builds a small workbook and reads it back through ReadRows.
func TestWorkbookRoundTrip(t *testing.T) {
	wb, err := NewWorkbook()
	if err != nil {
		t.Fatalf("NewWorkbook: %v", err)
	}
	sheet, err := wb.AddSheet("Expenses")
	if err != nil {
		t.Fatalf("AddSheet: %v", err)
	}

	if err := sheet.Header([]string{"Date", "Person", "Amount"}); err != nil {
		t.Fatalf("Header: %v", err)
	}
	if err := sheet.Row("05-03-2026", "Asha Rao", "1250.50"); err != nil {
		t.Fatalf("Row: %v", err)
	}
	if err := sheet.Row("06-03-2026", "Ravi Kumar", "300.00"); err != nil {
		t.Fatalf("Row: %v", err)
	}
	if err := sheet.Total("Total", "", "1550.50"); err != nil {
		t.Fatalf("Total: %v", err)
	}

	data, err := wb.Bytes(sheet)
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("empty workbook bytes")
	}

	rows, err := ReadRows(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadRows: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("rows = %d, want 4", len(rows))
	}
	if rows[0][0] != "Date" || rows[0][2] != "Amount" {
		t.Errorf("header row = %v", rows[0])
	}
	if rows[1][1] != "Asha Rao" {
		t.Errorf("data row = %v", rows[1])
	}
	if rows[3][0] != "Total" {
		t.Errorf("total row = %v", rows[3])
	}
}

func TestBlankSeparatesSections(t *testing.T) {
	wb, err := NewWorkbook()
	if err != nil {
		t.Fatalf("NewWorkbook: %v", err)
	}
	sheet, err := wb.AddSheet("Report")
	if err != nil {
		t.Fatalf("AddSheet: %v", err)
	}

	if err := sheet.Header([]string{"A"}); err != nil {
		t.Fatal(err)
	}
	sheet.Blank()
	if err := sheet.Row("after gap"); err != nil {
		t.Fatal(err)
	}

	data, err := wb.Bytes(sheet)
	if err != nil {
		t.Fatal(err)
	}
	rows, err := ReadRows(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3 (header, blank, data)", len(rows))
	}
	if rows[2][0] != "after gap" {
		t.Errorf("row 3 = %v", rows[2])
	}
}

func TestReadRows_RejectsGarbage(t *testing.T) {
	if _, err := ReadRows(bytes.NewReader([]byte("not an xlsx"))); err == nil {
		t.Fatal("expected error for non-xlsx input")
	}
}
