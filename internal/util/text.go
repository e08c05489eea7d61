package util

import (
	"regexp"
	"strings"
)

var reSpaces = regexp.MustCompile(`\s+`)

func CollapseSpaces(input string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(input, " "))
}

func StringPtr(v string) *string { return &v }

// IsDigits reports whether the string is non-empty and numeric only.
func IsDigits(input string) bool {
	if input == "" {
		return false
	}
	for _, r := range input {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// PadBarcode left-pads a numeric barcode with zeros to EAN-13 width.
// The legacy vendor API stores barcodes zero-padded, so lookups must
// send them the same way. Non-numeric input is only trimmed.
func PadBarcode(input string) string {
	s := strings.TrimSpace(input)
	if !IsDigits(s) {
		return s
	}
	for len(s) < 13 {
		s = "0" + s
	}
	return s
}

// LooksLikeIdentifier reports whether a token could be a barcode or an
// internal ref: at least three characters, at least one digit, no
// spaces.
func LooksLikeIdentifier(input string) bool {
	s := strings.TrimSpace(input)
	if len(s) < 3 || strings.ContainsAny(s, " \t") {
		return false
	}
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}
