package catalog

import (
	"testing"

	"mimiops/internal"
)

func testTable() *Table {
	records := [][]string{
		{"CODIGO BARRA", "CODIGO", "FORNECEDOR", "DESCRICAO"},
		{"7891234567895", "A-10", "ACME", "CANETA AZUL"},
		{" 7891234567896 ", "B-20", "ACME", "CANETA VERMELHA"},
		{"7891234567895", "C-30", "BETA", "DUPLICATA DO MESMO EAN"},
		{"123", "D-40", "BETA", "LAPIS"},
	}
	return Normalize(records)
}

func TestFindExact(t *testing.T) {
	table := testTable()

	row, ok := table.FindExact("CODIGO BARRA", "7891234567895")
	if !ok {
		t.Fatalf("expected a hit")
	}
	// first row in table order wins on duplicate keys
	if got := row.Get("CODIGO"); got != "A-10" {
		t.Fatalf("got %q want A-10", got)
	}

	// both sides trimmed
	if _, ok := table.FindExact("CODIGO BARRA", "  7891234567896  "); !ok {
		t.Fatalf("expected trimmed match")
	}

	if _, ok := table.FindExact("CODIGO BARRA", "0000000000000"); ok {
		t.Fatalf("expected not found")
	}
	if _, ok := table.FindExact("NO SUCH COLUMN", "x"); ok {
		t.Fatalf("missing column must be a soft miss")
	}
	if _, ok := table.FindExact("CODIGO", ""); ok {
		t.Fatalf("empty key must miss")
	}
}

func TestFindExactScanFallback(t *testing.T) {
	// table built by hand, without the exact index
	table := &Table{
		Columns: []string{"CODIGO"},
		Rows:    []Row{{"CODIGO": " A-10 "}, {"CODIGO": "B-20"}},
	}
	row, ok := table.FindExact("CODIGO", "A-10")
	if !ok || row.Get("CODIGO") != " A-10 " {
		t.Fatalf("scan fallback failed: ok=%v", ok)
	}
}

func TestFindContains(t *testing.T) {
	table := testTable()

	rows, err := table.FindContains("DESCRICAO", "caneta")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows want 2", len(rows))
	}
	if rows[0].Get("CODIGO") != "A-10" || rows[1].Get("CODIGO") != "B-20" {
		t.Fatalf("order not preserved: %v %v", rows[0], rows[1])
	}

	rows, err = table.FindContains("CODIGO BARRA", "123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("substring on key column got %d rows want 4", len(rows))
	}

	if _, err := table.FindContains("DESCRICAO", "   "); !internal.IsUserInput(err) {
		t.Fatalf("empty fragment must be a user input error, got %v", err)
	}
	if _, err := table.FindContains("NO SUCH", "x"); !internal.IsUserInput(err) {
		t.Fatalf("unknown column must be a user input error, got %v", err)
	}
}

func TestDistinctValuesAndFilter(t *testing.T) {
	table := testTable()

	suppliers := table.DistinctValues("FORNECEDOR")
	if len(suppliers) != 2 || suppliers[0] != "ACME" || suppliers[1] != "BETA" {
		t.Fatalf("got %v", suppliers)
	}

	beta := table.FilterEqual("FORNECEDOR", "BETA")
	if len(beta) != 2 {
		t.Fatalf("got %d rows want 2", len(beta))
	}
}
