package forms

import (
	"bytes"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"mimiops/internal"
)

func makeItems(n int, supplier string) []internal.SelectionItem {
	items := make([]internal.SelectionItem, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, internal.SelectionItem{
			Barcode:     fmt.Sprintf("78912345678%02d", i),
			Code:        fmt.Sprintf("REF-%d", i),
			Supplier:    supplier,
			Description: fmt.Sprintf("PRODUTO %d", i),
			Quantity:    i + 1,
			Origin:      "CAD1",
		})
	}
	return items
}

func writeTemplate(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f := excelize.NewFile()
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save template: %v", err)
	}
	_ = f.Close()
	return path
}

func openResult(t *testing.T, blob []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(blob))
	if err != nil {
		t.Fatalf("reopen generated workbook: %v", err)
	}
	return f
}

func TestBuildExchangeFormTruncatesAtCap(t *testing.T) {
	tpl := writeTemplate(t, "exchange.xlsx")

	blob, err := BuildExchangeForm(tpl, "ACME", makeItems(35, "ACME"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f := openResult(t, blob)
	defer f.Close()
	sheet := f.GetSheetName(0)

	if got, _ := f.GetCellValue(sheet, "C3"); got != "ACME" {
		t.Fatalf("supplier cell got %q", got)
	}
	// 27 items occupy rows 6..32
	if got, _ := f.GetCellValue(sheet, "A6"); got != "7891234567800" {
		t.Fatalf("first row got %q", got)
	}
	if got, _ := f.GetCellValue(sheet, "C32"); got != "PRODUTO 26" {
		t.Fatalf("last kept row got %q", got)
	}
	if got, _ := f.GetCellValue(sheet, "D32"); got != "27" {
		t.Fatalf("last qty got %q", got)
	}
	// item 28 and beyond silently dropped
	if got, _ := f.GetCellValue(sheet, "A33"); got != "" {
		t.Fatalf("row 33 should be empty, got %q", got)
	}
}

func TestBuildTransferForm(t *testing.T) {
	tpl := writeTemplate(t, "transfer.xlsx")
	now := time.Date(2025, 7, 9, 15, 0, 0, 0, time.UTC)

	blob, err := BuildTransferForm(tpl, "MIMI", "KAMI", makeItems(31, "ACME"), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f := openResult(t, blob)
	defer f.Close()
	sheet := f.GetSheetName(0)

	if got, _ := f.GetCellValue(sheet, "A4"); got != "DE: MIMI" {
		t.Fatalf("origin got %q", got)
	}
	if got, _ := f.GetCellValue(sheet, "C4"); got != "KAMI" {
		t.Fatalf("destination got %q", got)
	}
	if got, _ := f.GetCellValue(sheet, "D4"); got != "DATA 09/07/2025" {
		t.Fatalf("date got %q", got)
	}
	if got, _ := f.GetCellValue(sheet, "C8"); got != "ACME" {
		t.Fatalf("supplier column got %q", got)
	}
	// 30-row cap: rows 8..37 used, 31st item dropped
	if got, _ := f.GetCellValue(sheet, "E37"); got != "30" {
		t.Fatalf("last qty got %q", got)
	}
	if got, _ := f.GetCellValue(sheet, "A38"); got != "" {
		t.Fatalf("row 38 should be empty, got %q", got)
	}
}

func TestBuildOrderSheet(t *testing.T) {
	blob, err := BuildOrderSheet(makeItems(3, "BETA"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f := openResult(t, blob)
	defer f.Close()
	sheet := f.GetSheetName(0)

	if got, _ := f.GetCellValue(sheet, "A1"); got != "FORNECEDOR" {
		t.Fatalf("header got %q", got)
	}
	if got, _ := f.GetCellValue(sheet, "D4"); got != "PRODUTO 2" {
		t.Fatalf("row got %q", got)
	}
}

func TestBuildBatchTemplate(t *testing.T) {
	blob, err := BuildBatchTemplate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f := openResult(t, blob)
	defer f.Close()
	sheet := f.GetSheetName(0)
	if got, _ := f.GetCellValue(sheet, "C1"); got != "QTD" {
		t.Fatalf("got %q", got)
	}
}
