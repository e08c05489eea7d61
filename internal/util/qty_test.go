package util

import "testing"

func TestParseCellQty(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  int
		ok    bool
	}{
		{name: "plain", input: "12", want: 12, ok: true},
		{name: "thousand dot", input: "1.000", want: 1000, ok: true},
		{name: "thousand space", input: "1 000", want: 1000, ok: true},
		{name: "unit suffix", input: "5 un", want: 5, ok: true},
		{name: "zero rejected", input: "0", ok: false},
		{name: "negative rejected", input: "-3", ok: false},
		{name: "empty", input: "  ", ok: false},
		{name: "text", input: "doze", ok: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseCellQty(tc.input)
			if ok != tc.ok {
				t.Fatalf("ok=%v want %v", ok, tc.ok)
			}
			if ok && got != tc.want {
				t.Fatalf("got %d want %d", got, tc.want)
			}
		})
	}
}

func TestParseLineQty(t *testing.T) {
	qty, raw, ok := ParseLineQty("7891234567895 pecas 12")
	if !ok || qty != 12 || raw != "12" {
		t.Fatalf("got qty=%d raw=%q ok=%v", qty, raw, ok)
	}

	qty, _, ok = ParseLineQty("REF A-10 1.000")
	if !ok || qty != 1000 {
		t.Fatalf("got qty=%d ok=%v", qty, ok)
	}

	if _, _, ok := ParseLineQty("sem numero"); ok {
		t.Fatalf("expected no qty")
	}
}

func TestPadBarcode(t *testing.T) {
	if got := PadBarcode("123"); got != "0000000000123" {
		t.Fatalf("got %q", got)
	}
	if got := PadBarcode("7891234567895"); got != "7891234567895" {
		t.Fatalf("got %q", got)
	}
	if got := PadBarcode(" A-10 "); got != "A-10" {
		t.Fatalf("got %q", got)
	}
}
