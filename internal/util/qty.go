package util

import (
	"regexp"
	"strconv"
	"strings"
)

// Quantities in this system are piece counts: positive integers.
// Senders still write them with Brazilian thousand separators
// ("1.000", "1 000") or trailing unit words ("12 un", "5 pç").

var (
	unitPattern   = regexp.MustCompile(`(?i)\b(un|und|unid\.?|pc|pç|pçs|pe?ças?|cx|caixas?)\b`)
	numberPattern = regexp.MustCompile(`(?:^|[^0-9.,])(\d{1,3}(?:[\s.]\d{3})+|\d+)`)
)

// ParseCellQty parses a quantity written alone in a spreadsheet cell.
func ParseCellQty(input string) (int, bool) {
	s := strings.TrimSpace(strings.ReplaceAll(input, " ", " "))
	s = unitPattern.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(normalizeNumericToken(s))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// ParseLineQty extracts the last standalone number of a free-text
// order line, e.g. "7891234567895 pecas 12" -> 12.
func ParseLineQty(input string) (qty int, raw string, ok bool) {
	line := strings.ReplaceAll(input, " ", " ")
	matches := numberPattern.FindAllStringSubmatch(line, -1)
	if len(matches) == 0 {
		return 0, "", false
	}
	last := strings.TrimSpace(matches[len(matches)-1][1])
	n, err := strconv.Atoi(normalizeNumericToken(last))
	if err != nil || n <= 0 {
		return 0, "", false
	}
	return n, last, true
}

func normalizeNumericToken(token string) string {
	compact := strings.ReplaceAll(token, " ", "")
	if regexp.MustCompile(`^\d{1,3}(?:\.\d{3})+$`).MatchString(compact) {
		return strings.ReplaceAll(compact, ".", "")
	}
	return compact
}
