package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"mimiops/internal/catalog"
	"mimiops/internal/config"
	"mimiops/internal/intake"
	_ "mimiops/internal/intake/gmail"
	_ "mimiops/internal/intake/imap"
	"mimiops/internal/storage"
	"mimiops/internal/web"
)

func main() {
	cfg, err := config.Load()
	must(err)
	web.SetupLogging(cfg)

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	provider := catalog.NewProvider(cfg, db)
	listener := intake.NewListener(db, cfg, provider)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	must(listener.Run(ctx))
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
