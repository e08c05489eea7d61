package catalog

import (
	"regexp"
	"strconv"
	"strings"
)

var unnamedPattern = regexp.MustCompile(`(?i)^unnamed`)

// The two text columns whose cells get the cedilla replaced. The
// column set is fixed by the legacy sheets; a missing column is
// skipped, not an error.
var cedillaColumns = []string{"SITUACAO", "DESCRIÇÃO"}

// Normalize turns raw CSV records (header row first) into a Table:
// unnamed columns dropped, headers trimmed and upper-cased, repeated
// headers suffixed _1, _2, ... in encounter order, "ç" replaced with
// "c" in the designated columns, missing cells read as "". Pure and
// idempotent: normalizing a normalized table changes nothing.
func Normalize(records [][]string) *Table {
	if len(records) == 0 {
		return &Table{}
	}

	type keptColumn struct {
		src  int
		name string
	}
	kept := make([]keptColumn, 0, len(records[0]))
	for i, h := range records[0] {
		name := strings.ToUpper(strings.TrimSpace(h))
		if name == "" || unnamedPattern.MatchString(name) {
			continue
		}
		kept = append(kept, keptColumn{src: i, name: name})
	}

	names := make([]string, len(kept))
	for i, kc := range kept {
		names[i] = kc.name
	}
	names = DedupColumns(names)

	table := &Table{Columns: names, Rows: make([]Row, 0, len(records)-1)}
	for _, record := range records[1:] {
		row := make(Row, len(kept))
		for i, kc := range kept {
			value := ""
			if kc.src < len(record) {
				value = record[kc.src]
			}
			row[names[i]] = value
		}
		for _, col := range cedillaColumns {
			if v, ok := row[col]; ok {
				row[col] = strings.ReplaceAll(v, "ç", "c")
			}
		}
		table.Rows = append(table.Rows, row)
	}

	table.buildExactIndex()
	return table
}

// DedupColumns uniquifies repeated names by suffixing the 2nd+
// occurrence with _1, _2, ... in encounter order; first occurrences
// keep their name. ["A","B","A","A"] -> ["A","B","A_1","A_2"].
func DedupColumns(cols []string) []string {
	seen := map[string]int{}
	out := make([]string, 0, len(cols))
	for _, col := range cols {
		if n, ok := seen[col]; ok {
			seen[col] = n + 1
			out = append(out, col+"_"+strconv.Itoa(n+1))
			continue
		}
		seen[col] = 0
		out = append(out, col)
	}
	return out
}
