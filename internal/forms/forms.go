// Package forms populates the fixed-layout spreadsheet documents the
// stores exchange on paper: exchange forms, transfer forms and order
// sheets. Templates are opaque xlsx files; only the agreed cells are
// written.
package forms

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"mimiops/internal"
)

type Field int

const (
	FieldBarcode Field = iota
	FieldCode
	FieldSupplier
	FieldDescription
	FieldQuantity
)

type ColumnSpec struct {
	Letter string
	Field  Field
}

// Layout describes where a template expects its line items. MaxRows is
// a physical property of the printed form: items beyond it are
// silently truncated, by long-standing store practice.
type Layout struct {
	StartRow int
	MaxRows  int
	Columns  []ColumnSpec
}

var ExchangeLayout = Layout{
	StartRow: 6,
	MaxRows:  27,
	Columns: []ColumnSpec{
		{"A", FieldBarcode},
		{"B", FieldCode},
		{"C", FieldDescription},
		{"D", FieldQuantity},
	},
}

var TransferLayout = Layout{
	StartRow: 8,
	MaxRows:  30,
	Columns: []ColumnSpec{
		{"A", FieldBarcode},
		{"B", FieldCode},
		{"C", FieldSupplier},
		{"D", FieldDescription},
		{"E", FieldQuantity},
	},
}

// Populate writes items onto the sheet at the layout's coordinates and
// returns how many fit.
func Populate(f *excelize.File, sheet string, layout Layout, items []internal.SelectionItem) (int, error) {
	count := len(items)
	if count > layout.MaxRows {
		count = layout.MaxRows
	}
	for i := 0; i < count; i++ {
		row := layout.StartRow + i
		for _, col := range layout.Columns {
			cell := fmt.Sprintf("%s%d", col.Letter, row)
			if err := f.SetCellValue(sheet, cell, fieldValue(items[i], col.Field)); err != nil {
				return 0, err
			}
		}
	}
	return count, nil
}

func fieldValue(item internal.SelectionItem, field Field) any {
	switch field {
	case FieldBarcode:
		return item.Barcode
	case FieldCode:
		return item.Code
	case FieldSupplier:
		return item.Supplier
	case FieldDescription:
		return item.Description
	case FieldQuantity:
		return item.Quantity
	}
	return ""
}

// BuildExchangeForm fills the exchange template: supplier at C3, items
// from row 6, at most 27. The caller has already verified the single
// supplier constraint.
func BuildExchangeForm(templatePath, supplier string, items []internal.SelectionItem) ([]byte, error) {
	f, err := excelize.OpenFile(templatePath)
	if err != nil {
		return nil, fmt.Errorf("open exchange template: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := f.SetCellValue(sheet, "C3", supplier); err != nil {
		return nil, err
	}
	if _, err := Populate(f, sheet, ExchangeLayout, items); err != nil {
		return nil, err
	}
	return writeBytes(f)
}

// BuildTransferForm fills the transfer template: origin, destination
// and date in the header, items from row 8, at most 30.
func BuildTransferForm(templatePath, from, to string, items []internal.SelectionItem, now time.Time) ([]byte, error) {
	f, err := excelize.OpenFile(templatePath)
	if err != nil {
		return nil, fmt.Errorf("open transfer template: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	header := map[string]string{
		"A4": "DE: " + from,
		"C4": to,
		"D4": "DATA " + now.Format("02/01/2006"),
	}
	for cell, value := range header {
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return nil, err
		}
	}
	if _, err := Populate(f, sheet, TransferLayout, items); err != nil {
		return nil, err
	}
	return writeBytes(f)
}

var orderSheetHeaders = []string{"FORNECEDOR", "CODIGO BARRA", "CODIGO", "DESCRICAO", "QTD", "ORIGEM"}

// BuildOrderSheet generates the consolidated order workbook, one row
// per item. No template and no row cap: this sheet is sent onward
// digitally, not printed.
func BuildOrderSheet(items []internal.SelectionItem) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for i, h := range orderSheetHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, item := range items {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}
		set(1, item.Supplier)
		set(2, item.Barcode)
		set(3, item.Code)
		set(4, item.Description)
		set(5, item.Quantity)
		set(6, item.Origin)
	}

	return writeBytes(f)
}

var batchTemplateHeaders = []string{"CODIGO BARRA", "CODIGO", "QTD"}

// BuildBatchTemplate generates the empty workbook stores fill in for
// batch order uploads.
func BuildBatchTemplate() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, h := range batchTemplateHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	return writeBytes(f)
}

func writeBytes(f *excelize.File) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
