package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"mimiops/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS catalog_rows (
  position INTEGER PRIMARY KEY,
  data TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS order_emails (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  provider TEXT NOT NULL,
  messageId TEXT NOT NULL,
  subject TEXT,
  sender TEXT,
  receivedAt TEXT,
  hash TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'fetched',
  rawRef TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(provider, messageId)
);

CREATE TABLE IF NOT EXISTS order_lines (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  emailId INTEGER NOT NULL,
  lineNo INTEGER NOT NULL,
  source TEXT NOT NULL,
  rawLine TEXT NOT NULL,
  identifier TEXT NOT NULL,
  qty INTEGER NOT NULL,
  resolved INTEGER NOT NULL DEFAULT 0,
  itemJson TEXT,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(emailId, lineNo, source, rawLine),
  FOREIGN KEY(emailId) REFERENCES order_emails(id)
);

CREATE TABLE IF NOT EXISTS exports (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  kind TEXT NOT NULL,
  sessionId TEXT NOT NULL,
  supplier TEXT,
  items INTEGER NOT NULL,
  filename TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

// ReplaceCatalogRows stores a catalog snapshot, one JSON object per
// row in table order. Column order is kept under the metadata key
// "catalog.columns".
func (d *DB) ReplaceCatalogRows(columns []string, rows []map[string]string) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM catalog_rows`); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO catalog_rows (position, data) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, row := range rows {
		blob, err := json.Marshal(row)
		if err != nil {
			return err
		}
		if _, err := stmt.Exec(i, string(blob)); err != nil {
			return err
		}
	}

	colsBlob, _ := json.Marshal(columns)
	if _, err := tx.Exec(`
INSERT INTO metadata (key, value, updatedAt) VALUES ('catalog.columns', ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value=excluded.value, updatedAt=CURRENT_TIMESTAMP
`, string(colsBlob)); err != nil {
		return err
	}

	return tx.Commit()
}

// LoadCatalogRows returns the stored snapshot, or (nil, nil, nil) when
// none has ever been written.
func (d *DB) LoadCatalogRows() ([]string, []map[string]string, error) {
	colsValue, err := d.GetMetadata("catalog.columns")
	if err != nil {
		return nil, nil, err
	}
	if colsValue == nil {
		return nil, nil, nil
	}
	var columns []string
	if err := json.Unmarshal([]byte(*colsValue), &columns); err != nil {
		return nil, nil, err
	}

	rows, err := d.conn.Query(`SELECT data FROM catalog_rows ORDER BY position ASC`)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	out := []map[string]string{}
	for rows.Next() {
		var blob string
		if err := rows.Scan(&blob); err != nil {
			return nil, nil, err
		}
		row := map[string]string{}
		if err := json.Unmarshal([]byte(blob), &row); err != nil {
			return nil, nil, err
		}
		out = append(out, row)
	}

	return columns, out, rows.Err()
}

func (d *DB) UpsertOrderEmail(provider, messageID, subject, sender, receivedAt, hash, rawRef, status string) (internal.EmailRow, error) {
	_, err := d.conn.Exec(`
INSERT INTO order_emails (provider, messageId, subject, sender, receivedAt, hash, status, rawRef)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(provider, messageId) DO UPDATE SET
  subject=excluded.subject,
  sender=excluded.sender,
  receivedAt=excluded.receivedAt,
  hash=excluded.hash,
  rawRef=excluded.rawRef,
  updatedAt=CURRENT_TIMESTAMP
`, provider, messageID, subject, sender, receivedAt, hash, status, rawRef)
	if err != nil {
		return internal.EmailRow{}, err
	}

	row, err := d.GetOrderEmailByProviderMessageID(provider, messageID)
	if err != nil {
		return internal.EmailRow{}, err
	}
	if row == nil {
		return internal.EmailRow{}, errors.New("failed to upsert order email")
	}
	return *row, nil
}

func (d *DB) GetOrderEmailByProviderMessageID(provider, messageID string) (*internal.EmailRow, error) {
	var row internal.EmailRow
	err := d.conn.QueryRow(`
SELECT id, provider, messageId, subject, sender, receivedAt, hash, status, rawRef
FROM order_emails WHERE provider = ? AND messageId = ?
`, provider, messageID).Scan(
		&row.ID, &row.Provider, &row.MessageID, &row.Subject, &row.Sender, &row.ReceivedAt, &row.Hash, &row.Status, &row.RawRef,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) GetOrderEmailByID(id int) (*internal.EmailRow, error) {
	var row internal.EmailRow
	err := d.conn.QueryRow(`
SELECT id, provider, messageId, subject, sender, receivedAt, hash, status, rawRef
FROM order_emails WHERE id = ?
`, id).Scan(
		&row.ID, &row.Provider, &row.MessageID, &row.Subject, &row.Sender, &row.ReceivedAt, &row.Hash, &row.Status, &row.RawRef,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) ListOrderEmailsByStatus(status string, limit int) ([]internal.EmailRow, error) {
	rows, err := d.conn.Query(`
SELECT id, provider, messageId, subject, sender, receivedAt, hash, status, rawRef
FROM order_emails WHERE status = ? ORDER BY receivedAt ASC LIMIT ?
`, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []internal.EmailRow{}
	for rows.Next() {
		var row internal.EmailRow
		if err := rows.Scan(
			&row.ID, &row.Provider, &row.MessageID, &row.Subject, &row.Sender, &row.ReceivedAt, &row.Hash, &row.Status, &row.RawRef,
		); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) UpdateOrderEmailStatus(id int, status string) error {
	_, err := d.conn.Exec(`
UPDATE order_emails SET status = ?, updatedAt = CURRENT_TIMESTAMP WHERE id = ?
`, status, id)
	return err
}

// ReplaceOrderLines rewrites the extracted lines of one email.
func (d *DB) ReplaceOrderLines(emailID int, lines []internal.ResolvedLine) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM order_lines WHERE emailId = ?`, emailID); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
INSERT INTO order_lines (emailId, lineNo, source, rawLine, identifier, qty, resolved, itemJson)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, line := range lines {
		resolved := 0
		itemJSON := sql.NullString{}
		if line.Item != nil {
			resolved = 1
			blob, _ := json.Marshal(line.Item)
			itemJSON = sql.NullString{String: string(blob), Valid: true}
		}
		if _, err := stmt.Exec(emailID, line.LineNo, string(line.Source), line.RawLine, line.Identifier, line.Qty, resolved, itemJSON); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) ListOrderLines(emailID int) ([]internal.ResolvedLine, error) {
	rows, err := d.conn.Query(`
SELECT lineNo, source, rawLine, identifier, qty, resolved, itemJson
FROM order_lines WHERE emailId = ? ORDER BY lineNo ASC
`, emailID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []internal.ResolvedLine{}
	for rows.Next() {
		var line internal.ResolvedLine
		var source string
		var resolved int
		var itemJSON sql.NullString
		if err := rows.Scan(&line.LineNo, &source, &line.RawLine, &line.Identifier, &line.Qty, &resolved, &itemJSON); err != nil {
			return nil, err
		}
		line.Source = internal.LineSource(source)
		if resolved == 1 && itemJSON.Valid {
			item := internal.SelectionItem{}
			if err := json.Unmarshal([]byte(itemJSON.String), &item); err == nil {
				line.Item = &item
			}
		}
		out = append(out, line)
	}
	return out, rows.Err()
}

func (d *DB) RecordExport(kind, sessionID, supplier, filename string, items int) error {
	_, err := d.conn.Exec(`
INSERT INTO exports (kind, sessionId, supplier, items, filename) VALUES (?, ?, ?, ?, ?)
`, kind, sessionID, supplier, items, filename)
	return err
}

func (d *DB) ListExports(limit int) ([]internal.ExportRow, error) {
	rows, err := d.conn.Query(`
SELECT id, kind, sessionId, COALESCE(supplier, ''), items, filename, createdAt
FROM exports ORDER BY id DESC LIMIT ?
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []internal.ExportRow{}
	for rows.Next() {
		var row internal.ExportRow
		if err := rows.Scan(&row.ID, &row.Kind, &row.SessionID, &row.Supplier, &row.Items, &row.Filename, &row.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value, updatedAt) VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value=excluded.value, updatedAt=CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}
