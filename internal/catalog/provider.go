package catalog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"mimiops/internal"
	"mimiops/internal/config"
	"mimiops/internal/storage"
)

// Provider loads the catalog once per process and hands the same
// immutable Table to every session. Refresh replaces the memoized
// table and persists a snapshot so a later start can survive a dead
// catalog source.
type Provider struct {
	cfg    config.Config
	db     *storage.DB
	source *Source

	mu    sync.Mutex
	table *Table
}

func NewProvider(cfg config.Config, db *storage.DB) *Provider {
	return &Provider{cfg: cfg, db: db, source: NewSource(cfg)}
}

func (p *Provider) Load(ctx context.Context) (*Table, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.table != nil {
		return p.table, nil
	}

	table, err := p.fetchAndStore(ctx)
	if err != nil {
		snapshot, snapErr := p.loadSnapshot()
		if snapErr != nil || snapshot == nil {
			return nil, err
		}
		table = snapshot
	}

	p.table = table
	return p.table, nil
}

// Refresh forces a remote fetch, replacing the memoized table.
func (p *Provider) Refresh(ctx context.Context) (*Table, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	table, err := p.fetchAndStore(ctx)
	if err != nil {
		return nil, err
	}
	p.table = table
	return table, nil
}

func (p *Provider) fetchAndStore(ctx context.Context) (*Table, error) {
	records, err := p.source.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	table := Normalize(records)
	if table.Len() == 0 {
		return nil, &internal.RemoteError{Op: "catalog fetch", Body: "catalog is empty"}
	}

	if p.db != nil {
		rows := make([]map[string]string, len(table.Rows))
		for i, row := range table.Rows {
			rows[i] = row
		}
		if err := p.db.ReplaceCatalogRows(table.Columns, rows); err != nil {
			return nil, fmt.Errorf("store catalog snapshot: %w", err)
		}
		_ = p.db.SetMetadata("catalog.last_refresh", time.Now().UTC().Format(time.RFC3339))
	}

	return table, nil
}

func (p *Provider) loadSnapshot() (*Table, error) {
	if p.db == nil {
		return nil, nil
	}
	columns, rows, err := p.db.LoadCatalogRows()
	if err != nil {
		return nil, err
	}
	if columns == nil || len(rows) == 0 {
		return nil, nil
	}

	table := &Table{Columns: columns, Rows: make([]Row, len(rows))}
	for i, row := range rows {
		table.Rows[i] = row
	}
	table.buildExactIndex()
	return table, nil
}
