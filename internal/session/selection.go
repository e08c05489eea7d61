package session

import (
	"sync"

	"mimiops/internal"
)

// List is the per-session ordered accumulation of chosen line items.
// Append-only except for RemoveLast. The single-supplier constraint is
// checked at export time, not at add time, so a user may mix suppliers
// and only hears about it when generating a document. Safe for
// concurrent requests of one session.
type List struct {
	mu    sync.Mutex
	items []internal.SelectionItem
}

func (l *List) Add(item internal.SelectionItem) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append(l.items, item)
}

// RemoveLast pops and returns the most recent item. Removing from an
// empty list fails with ErrEmptyList and has no side effect.
func (l *List) RemoveLast() (internal.SelectionItem, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.items) == 0 {
		return internal.SelectionItem{}, internal.ErrEmptyList
	}
	last := l.items[len(l.items)-1]
	l.items = l.items[:len(l.items)-1]
	return last, nil
}

func (l *List) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// Items returns a copy; the export populates from the snapshot while
// the list stays mutable.
func (l *List) Items() []internal.SelectionItem {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]internal.SelectionItem, len(l.items))
	copy(out, l.items)
	return out
}

// SupplierSet returns the distinct supplier values across all items,
// in first-seen order.
func (l *List) SupplierSet() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.supplierSetLocked()
}

func (l *List) supplierSetLocked() []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, item := range l.items {
		if _, ok := seen[item.Supplier]; ok {
			continue
		}
		seen[item.Supplier] = struct{}{}
		out = append(out, item.Supplier)
	}
	return out
}

// RequireSingleSupplier returns the sole supplier of the list, or
// ErrMultiSupplier when items span more than one. An empty list fails
// with ErrEmptyList: there is nothing to export.
func (l *List) RequireSingleSupplier() (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	suppliers := l.supplierSetLocked()
	switch len(suppliers) {
	case 0:
		return "", internal.ErrEmptyList
	case 1:
		return suppliers[0], nil
	default:
		return "", internal.ErrMultiSupplier
	}
}
