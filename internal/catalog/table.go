package catalog

import (
	"sort"
	"strings"

	"mimiops/internal"
)

// Row maps normalized column names to cell values. Absent columns read
// as the empty string, mirroring how the source sheets behave.
type Row map[string]string

func (r Row) Get(col string) string { return r[col] }

// Product is the typed view of a catalog row used by the screens.
type Product struct {
	Barcode     string `json:"barcode"`
	Code        string `json:"code"`
	Supplier    string `json:"supplier"`
	Description string `json:"description"`
	VarejoFacil string `json:"varejoFacil"`
	Situation   string `json:"situation"`
	Origin      string `json:"origin"`
}

func (r Row) Product() Product {
	return Product{
		Barcode:     r.Get(internal.ColBarcode),
		Code:        r.Get(internal.ColCode),
		Supplier:    r.Get(internal.ColSupplier),
		Description: r.Get(internal.ColDescription),
		VarejoFacil: r.Get(internal.ColVarejoFacil),
		Situation:   r.Get(internal.ColSituation),
		Origin:      r.Get(internal.ColOrigin),
	}
}

// Item builds a selection line from a catalog hit.
func (r Row) Item(quantity int) internal.SelectionItem {
	return internal.SelectionItem{
		Barcode:     r.Get(internal.ColBarcode),
		Code:        r.Get(internal.ColCode),
		Supplier:    r.Get(internal.ColSupplier),
		Description: r.Get(internal.ColDescription),
		Quantity:    quantity,
		Origin:      r.Get(internal.ColOrigin),
	}
}

// Table is the normalized catalog: unique upper-case trimmed columns,
// rows in source order. Immutable after construction; safe for
// concurrent readers.
type Table struct {
	Columns []string
	Rows    []Row

	// first occurrence per column keyed by trimmed cell value
	exact map[string]map[string]int
}

func (t *Table) HasColumn(col string) bool {
	for _, c := range t.Columns {
		if c == col {
			return true
		}
	}
	return false
}

func (t *Table) Len() int { return len(t.Rows) }

// DistinctValues returns the sorted distinct non-empty values of a
// column, e.g. the supplier dropdown of the order screen.
func (t *Table) DistinctValues(col string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0)
	for _, row := range t.Rows {
		v := strings.TrimSpace(row.Get(col))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// FilterEqual returns the rows whose column equals value, in table
// order.
func (t *Table) FilterEqual(col, value string) []Row {
	value = strings.TrimSpace(value)
	out := []Row{}
	for _, row := range t.Rows {
		if strings.TrimSpace(row.Get(col)) == value {
			out = append(out, row)
		}
	}
	return out
}

// buildExactIndex records the first row per trimmed value for every
// column, so FindExact keeps first-match-wins semantics without a
// scan.
func (t *Table) buildExactIndex() {
	t.exact = make(map[string]map[string]int, len(t.Columns))
	for _, col := range t.Columns {
		t.exact[col] = make(map[string]int)
	}
	for i, row := range t.Rows {
		for _, col := range t.Columns {
			key := strings.TrimSpace(row.Get(col))
			if key == "" {
				continue
			}
			if _, ok := t.exact[col][key]; !ok {
				t.exact[col][key] = i
			}
		}
	}
}
