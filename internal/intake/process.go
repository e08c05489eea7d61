package intake

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mimiops/internal"
	"mimiops/internal/catalog"
	"mimiops/internal/config"
	"mimiops/internal/forms"
	"mimiops/internal/storage"
)

// Processor turns stored emails into resolved order lines and, when
// anything resolved, an order sheet in the output dir.
type Processor struct {
	db       *storage.DB
	cfg      config.Config
	provider *catalog.Provider
}

func NewProcessor(db *storage.DB, cfg config.Config, provider *catalog.Provider) *Processor {
	return &Processor{db: db, cfg: cfg, provider: provider}
}

type ProcessResult struct {
	EmailID    int
	Lines      int
	Resolved   int
	Skipped    bool
	OutputPath string
}

func (p *Processor) ProcessEmail(ctx context.Context, email internal.EmailRow) (ProcessResult, error) {
	raw, err := os.ReadFile(email.RawRef)
	if err != nil {
		return ProcessResult{}, fmt.Errorf("read raw message: %w", err)
	}

	envelope, err := ExtractFromRaw(raw)
	if err != nil {
		return ProcessResult{}, err
	}

	result := ProcessResult{EmailID: email.ID}

	detected := DetectOrderEmail(envelope.Subject, envelope.Text, envelope.HTML, envelope.AttachmentNames)
	if !detected.IsOrder {
		result.Skipped = true
		return result, p.db.UpdateOrderEmailStatus(email.ID, "skipped")
	}

	table, err := p.provider.Load(ctx)
	if err != nil {
		return ProcessResult{}, err
	}

	resolved := Resolve(table, envelope.Lines)
	result.Lines = len(resolved)
	if err := p.db.ReplaceOrderLines(email.ID, resolved); err != nil {
		return ProcessResult{}, err
	}

	items := []internal.SelectionItem{}
	for _, line := range resolved {
		if line.Item != nil {
			items = append(items, *line.Item)
		}
	}
	result.Resolved = len(items)

	if len(items) > 0 {
		blob, err := forms.BuildOrderSheet(items)
		if err != nil {
			return ProcessResult{}, err
		}
		filename := fmt.Sprintf("%d_%s.xlsx", email.ID, sanitizeMessageID(email.MessageID))
		outputPath := filepath.Join(p.cfg.OutputDir, "intake", filename)
		if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
			return ProcessResult{}, err
		}
		if err := os.WriteFile(outputPath, blob, 0o644); err != nil {
			return ProcessResult{}, err
		}
		result.OutputPath = outputPath
		_ = p.db.RecordExport("intake", email.Provider, "", filename, len(items))
	}

	return result, p.db.UpdateOrderEmailStatus(email.ID, "processed")
}

// ProcessPending works through fetched emails of one provider in
// arrival order.
func (p *Processor) ProcessPending(ctx context.Context, batch int, provider string) (emails, lines int, err error) {
	pending, err := p.db.ListOrderEmailsByStatus("fetched", batch)
	if err != nil {
		return 0, 0, err
	}

	for _, email := range pending {
		if email.Provider != provider {
			continue
		}
		result, err := p.ProcessEmail(ctx, email)
		if err != nil {
			return emails, lines, err
		}
		if result.Skipped {
			continue
		}
		emails++
		lines += result.Lines
	}
	return emails, lines, nil
}

// Resolve looks each extracted line up in the catalog, barcode column
// first, then the internal ref, keeping the line's own quantity.
func Resolve(table *catalog.Table, lines []internal.OrderLine) []internal.ResolvedLine {
	out := make([]internal.ResolvedLine, 0, len(lines))
	for _, line := range lines {
		resolved := internal.ResolvedLine{OrderLine: line}
		row, ok := table.FindExact(internal.ColBarcode, line.Identifier)
		if !ok {
			row, ok = table.FindExact(internal.ColCode, line.Identifier)
		}
		if ok {
			item := row.Item(line.Qty)
			resolved.Item = &item
		}
		out = append(out, resolved)
	}
	return out
}

func sanitizeMessageID(input string) string {
	repl := strings.NewReplacer("<", "_", ">", "_", ":", "_", "/", "_", "\\", "_", "|", "_", "?", "_", "*", "_", " ", "_")
	out := repl.Replace(input)
	if len(out) > 120 {
		out = out[:120]
	}
	return out
}
