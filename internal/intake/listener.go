package intake

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"mimiops/internal/catalog"
	"mimiops/internal/config"
	"mimiops/internal/storage"
)

// Listener polls the order mailbox on an interval and runs the
// fetch-then-process cycle. A failed cycle is logged and the next one
// tried; only context cancellation stops the loop.
type Listener struct {
	db       *storage.DB
	cfg      config.Config
	provider *catalog.Provider
}

func NewListener(db *storage.DB, cfg config.Config, provider *catalog.Provider) *Listener {
	return &Listener{db: db, cfg: cfg, provider: provider}
}

func (l *Listener) Run(ctx context.Context) error {
	interval := time.Duration(l.cfg.ListenerIntervalSec) * time.Second
	for {
		if err := l.runCycle(ctx); err != nil {
			slog.Error("intake cycle failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
	}
}

func (l *Listener) runCycle(ctx context.Context) error {
	provider := strings.ToLower(strings.TrimSpace(l.cfg.ListenerProvider))
	connector, err := MakeConnector(l.cfg, provider)
	if err != nil {
		return err
	}

	fetcher := NewFetcher(l.db, l.cfg.RawMailDir, connector)
	fetchResult, err := fetcher.FetchAndStore(ctx, l.cfg.ListenerLabel, l.cfg.ListenerFetchMax)
	if err != nil {
		return err
	}

	processor := NewProcessor(l.db, l.cfg, l.provider)
	emails, lines, err := processor.ProcessPending(ctx, l.cfg.ListenerBatch, provider)
	if err != nil {
		return err
	}

	slog.Info("intake cycle done",
		"provider", provider,
		"fetched", fetchResult.Fetched,
		"stored", fetchResult.Stored,
		"processed", emails,
		"lines", lines,
	)
	return nil
}
