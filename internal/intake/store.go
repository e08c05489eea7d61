package intake

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"

	"mimiops/internal"
	"mimiops/internal/storage"
)

// Fetcher pulls new messages from a connector and lands them: the raw
// RFC 5322 bytes on disk keyed by content hash, the envelope row in
// sqlite. Re-fetching a message is a no-op upsert.
type Fetcher struct {
	db        *storage.DB
	rawDir    string
	connector MailConnector
}

func NewFetcher(db *storage.DB, rawDir string, connector MailConnector) *Fetcher {
	return &Fetcher{db: db, rawDir: rawDir, connector: connector}
}

type FetchResult struct {
	Fetched int
	Stored  int
}

func (f *Fetcher) FetchAndStore(ctx context.Context, label string, max int) (FetchResult, error) {
	messages, err := f.connector.FetchInbox(ctx, label, max)
	if err != nil {
		return FetchResult{}, err
	}

	result := FetchResult{Fetched: len(messages)}
	for _, msg := range messages {
		if _, err := f.store(msg); err != nil {
			return result, err
		}
		result.Stored++
	}
	return result, nil
}

func (f *Fetcher) store(msg internal.FetchedMailMessage) (internal.EmailRow, error) {
	sum := sha256.Sum256(msg.Raw)
	hash := hex.EncodeToString(sum[:])

	if err := os.MkdirAll(f.rawDir, 0o755); err != nil {
		return internal.EmailRow{}, err
	}

	rawPath := filepath.Join(f.rawDir, hash+".eml")
	if _, err := os.Stat(rawPath); os.IsNotExist(err) {
		if err := os.WriteFile(rawPath, msg.Raw, 0o644); err != nil {
			return internal.EmailRow{}, err
		}
	}

	return f.db.UpsertOrderEmail(msg.Provider, msg.MessageID, msg.Subject, msg.From, msg.ReceivedAt, hash, rawPath, "fetched")
}
