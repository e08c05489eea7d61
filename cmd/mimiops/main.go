package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"mimiops/internal"
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

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	provider := catalog.NewProvider(cfg, db)

	cmd := os.Args[1]
	switch cmd {
	case "serve":
		srv := web.NewServer(cfg, db, provider)
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		must(srv.ListenAndServe(ctx))
	case "catalog:refresh":
		table, err := provider.Refresh(context.Background())
		must(err)
		fmt.Printf("catalog refreshed: %d rows, %d columns\n", table.Len(), len(table.Columns))
	case "catalog:lookup":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		by := fs.String("by", "barcode", "barcode|vf|ref")
		value := fs.String("value", "", "identifier value")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*value) == "" {
			must(fmt.Errorf("--value is required"))
		}
		col, err := lookupColumn(*by)
		must(err)
		table, err := provider.Load(context.Background())
		must(err)
		row, ok := table.FindExact(col, *value)
		if !ok {
			must(fmt.Errorf("no catalog entry for %q", *value))
		}
		p := row.Product()
		fmt.Printf("barcode=%s code=%s supplier=%s description=%s vf=%s\n",
			p.Barcode, p.Code, p.Supplier, p.Description, p.VarejoFacil)
	case "export:orders":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		limit := fs.Int("limit", 50, "max audit rows")
		_ = fs.Parse(os.Args[2:])
		exports, err := db.ListExports(*limit)
		must(err)
		for _, e := range exports {
			fmt.Printf("%s kind=%s supplier=%s items=%d file=%s\n",
				e.CreatedAt, e.Kind, e.Supplier, e.Items, e.Filename)
		}
	case "intake:run":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		provName := fs.String("provider", "gmail", "gmail|imap")
		label := fs.String("label", "INBOX", "mailbox/label")
		max := fs.Int("max", 50, "max messages")
		_ = fs.Parse(os.Args[2:])
		conn, err := intake.MakeConnector(cfg, *provName)
		must(err)
		fetcher := intake.NewFetcher(db, cfg.RawMailDir, conn)
		result, err := fetcher.FetchAndStore(context.Background(), *label, *max)
		must(err)
		fmt.Printf("intake fetch done provider=%s fetched=%d stored=%d\n", *provName, result.Fetched, result.Stored)
	case "intake:process":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		provName := fs.String("provider", "gmail", "gmail|imap")
		batch := fs.Int("batch", 20, "batch size")
		_ = fs.Parse(os.Args[2:])
		processor := intake.NewProcessor(db, cfg, provider)
		emails, lines, err := processor.ProcessPending(context.Background(), *batch, *provName)
		must(err)
		fmt.Printf("processed pending emails=%d lines=%d\n", emails, lines)
	default:
		usage()
		os.Exit(1)
	}
}

func lookupColumn(by string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(by)) {
	case "barcode":
		return internal.ColBarcode, nil
	case "vf":
		return internal.ColVarejoFacil, nil
	case "ref":
		return internal.ColCode, nil
	default:
		return "", fmt.Errorf("unknown --by value %q", by)
	}
}

func usage() {
	fmt.Println("usage: mimiops <command> [flags]")
	fmt.Println("commands:")
	fmt.Println("  serve")
	fmt.Println("  catalog:refresh")
	fmt.Println("  catalog:lookup --by barcode|vf|ref --value <v>")
	fmt.Println("  export:orders [--limit N]")
	fmt.Println("  intake:run [--provider gmail|imap] [--label INBOX] [--max 50]")
	fmt.Println("  intake:process [--provider gmail|imap] [--batch 20]")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
