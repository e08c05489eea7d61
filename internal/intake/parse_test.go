package intake

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"mimiops/internal"
	"mimiops/internal/catalog"
)

func TestParseTextLines(t *testing.T) {
	text := `Bom dia,

segue pedido da loja:
7891234567895 12
A-10 5 un
sem identificador nenhum
Atenciosamente,
Maria
`
	lines := parseTextLines(internal.SourceEmailText, text)
	if len(lines) != 2 {
		t.Fatalf("got %d lines want 2: %+v", len(lines), lines)
	}
	if lines[0].Identifier != "7891234567895" || lines[0].Qty != 12 {
		t.Fatalf("line 0: %+v", lines[0])
	}
	if lines[1].Identifier != "A-10" || lines[1].Qty != 5 {
		t.Fatalf("line 1: %+v", lines[1])
	}
}

func TestParseHTMLTables(t *testing.T) {
	html := `<html><body><table>
<tr><th>Codigo de Barras</th><th>Descricao</th><th>Qtd</th></tr>
<tr><td>7891234567895</td><td>Caneta</td><td>3</td></tr>
<tr><td>7891234567896</td><td>Lapis</td><td>1.000</td></tr>
<tr><td></td><td>linha vazia</td><td></td></tr>
</table></body></html>`

	lines := parseHTMLTables(html)
	if len(lines) != 2 {
		t.Fatalf("got %d lines want 2: %+v", len(lines), lines)
	}
	if lines[0].Identifier != "7891234567895" || lines[0].Qty != 3 {
		t.Fatalf("line 0: %+v", lines[0])
	}
	if lines[1].Qty != 1000 {
		t.Fatalf("line 1 qty: %+v", lines[1])
	}
	if lines[0].Source != internal.SourceEmailHTMLTable {
		t.Fatalf("source: %s", lines[0].Source)
	}
}

func buildWorkbook(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		for j, value := range row {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+1)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				t.Fatalf("set cell: %v", err)
			}
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	_ = f.Close()
	return buf.Bytes()
}

func TestParseXLSXLinesWithHeader(t *testing.T) {
	blob := buildWorkbook(t, [][]any{
		{"CODIGO BARRA", "CODIGO", "QTD"},
		{"7891234567895", "A-10", 12},
		{"", "B-20", ""},
		{"7891234567896", "C-30", 4},
	})

	lines, err := ParseXLSXLines(blob)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("got %d lines want 2: %+v", len(lines), lines)
	}
	if lines[0].Identifier != "7891234567895" || lines[0].Qty != 12 {
		t.Fatalf("line 0: %+v", lines[0])
	}
	if lines[1].Identifier != "7891234567896" || lines[1].Qty != 4 {
		t.Fatalf("line 1: %+v", lines[1])
	}
}

func TestParseXLSXLinesHeaderless(t *testing.T) {
	blob := buildWorkbook(t, [][]any{
		{"7891234567895", 2},
		{"7891234567896", 7},
	})

	lines, err := ParseXLSXLines(blob)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 2 || lines[1].Qty != 7 {
		t.Fatalf("got %+v", lines)
	}
}

func TestDetectOrderEmail(t *testing.T) {
	positive := DetectOrderEmail(
		"Pedido loja KAMI",
		"segue pedido: 7891234567895 qtd 12\n7891234567896 qtd 3",
		"",
		[]string{"pedido.xlsx"},
	)
	if !positive.IsOrder {
		t.Fatalf("expected order email, score=%v", positive.Score)
	}

	negative := DetectOrderEmail("Newsletter", "promocao imperdivel de verao", "", nil)
	if negative.IsOrder {
		t.Fatalf("expected non-order email, score=%v", negative.Score)
	}
}

func TestResolve(t *testing.T) {
	table := catalog.Normalize([][]string{
		{"CODIGO BARRA", "CODIGO", "FORNECEDOR", "DESCRICAO", "__ORIGEM_PLANILHA__"},
		{"7891234567895", "A-10", "ACME", "CANETA", "CAD1"},
	})

	lines := []internal.OrderLine{
		{LineNo: 1, Identifier: "7891234567895", Qty: 3},
		{LineNo: 2, Identifier: "A-10", Qty: 2},
		{LineNo: 3, Identifier: "0000", Qty: 1},
	}

	resolved := Resolve(table, lines)
	if len(resolved) != 3 {
		t.Fatalf("got %d", len(resolved))
	}
	if resolved[0].Item == nil || resolved[0].Item.Quantity != 3 || resolved[0].Item.Supplier != "ACME" {
		t.Fatalf("barcode resolution: %+v", resolved[0].Item)
	}
	if resolved[1].Item == nil || resolved[1].Item.Code != "A-10" {
		t.Fatalf("ref resolution: %+v", resolved[1].Item)
	}
	if resolved[2].Item != nil {
		t.Fatalf("miss must stay unresolved")
	}
}
