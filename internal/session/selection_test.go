package session

import (
	"errors"
	"testing"
	"time"

	"mimiops/internal"
)

func item(supplier, code string) internal.SelectionItem {
	return internal.SelectionItem{Supplier: supplier, Code: code, Quantity: 1}
}

func TestRemoveLast(t *testing.T) {
	l := &List{}
	l.Add(item("ACME", "A-10"))
	l.Add(item("ACME", "B-20"))

	got, err := l.RemoveLast()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Code != "B-20" || l.Len() != 1 {
		t.Fatalf("got %+v len=%d", got, l.Len())
	}
}

func TestRemoveLastEmpty(t *testing.T) {
	l := &List{}
	_, err := l.RemoveLast()
	if !errors.Is(err, internal.ErrEmptyList) {
		t.Fatalf("got %v want ErrEmptyList", err)
	}
	if l.Len() != 0 {
		t.Fatalf("empty remove must have no side effect")
	}
}

func TestRequireSingleSupplier(t *testing.T) {
	l := &List{}
	l.Add(item("A", "1"))
	l.Add(item("A", "2"))

	supplier, err := l.RequireSingleSupplier()
	if err != nil || supplier != "A" {
		t.Fatalf("got %q err=%v", supplier, err)
	}

	l.Add(item("B", "3"))
	if _, err := l.RequireSingleSupplier(); !errors.Is(err, internal.ErrMultiSupplier) {
		t.Fatalf("got %v want ErrMultiSupplier", err)
	}

	empty := &List{}
	if _, err := empty.RequireSingleSupplier(); !errors.Is(err, internal.ErrEmptyList) {
		t.Fatalf("got %v want ErrEmptyList", err)
	}
}

func TestSupplierSetOrder(t *testing.T) {
	l := &List{}
	l.Add(item("A", "1"))
	l.Add(item("A", "2"))
	l.Add(item("B", "3"))
	l.Add(item("A", "4"))

	set := l.SupplierSet()
	if len(set) != 2 || set[0] != "A" || set[1] != "B" {
		t.Fatalf("got %v", set)
	}
}

func TestItemsIsSnapshot(t *testing.T) {
	l := &List{}
	l.Add(item("A", "1"))
	snap := l.Items()
	l.Add(item("A", "2"))
	if len(snap) != 1 {
		t.Fatalf("snapshot grew: %d", len(snap))
	}
}

func TestManagerSessions(t *testing.T) {
	m := NewManager(time.Hour)

	first := m.Get("")
	if first.ID == "" {
		t.Fatalf("missing session id")
	}

	same := m.Get(first.ID)
	if same != first {
		t.Fatalf("expected the same session back")
	}

	other := m.Get("unknown-id")
	if other == first {
		t.Fatalf("unknown id must start a new session")
	}

	// lists are isolated per session and per kind
	first.List(internal.KindExchange).Add(item("A", "1"))
	if other.List(internal.KindExchange).Len() != 0 {
		t.Fatalf("sessions share state")
	}
	if first.List(internal.KindTransfer).Len() != 0 {
		t.Fatalf("kinds share state")
	}
}

func TestManagerSweep(t *testing.T) {
	m := NewManager(time.Millisecond)
	s := m.Get("")
	time.Sleep(5 * time.Millisecond)
	_ = m.Get("")
	if m.Len() != 1 {
		t.Fatalf("stale session not swept, len=%d", m.Len())
	}
	if revived := m.Get(s.ID); revived == s {
		t.Fatalf("swept session must not come back")
	}
}
