package catalog

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"mimiops/internal"
	"mimiops/internal/config"
)

// Source fetches the combined catalog CSV published as a flat file.
type Source struct {
	url        string
	httpClient *http.Client
}

func NewSource(cfg config.Config) *Source {
	return &Source{
		url:        cfg.CatalogCSVURL,
		httpClient: &http.Client{Timeout: time.Duration(cfg.CatalogTimeout) * time.Millisecond},
	}
}

// Fetch downloads and parses the raw CSV. Rows may have ragged widths;
// width reconciliation is the normalizer's job. A failed fetch is
// surfaced verbatim, no retry.
func (s *Source) Fetch(ctx context.Context) ([][]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &internal.RemoteError{Op: "catalog fetch", Body: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &internal.RemoteError{Op: "catalog fetch", Status: resp.StatusCode, Body: resp.Status}
	}

	reader := csv.NewReader(resp.Body)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse catalog csv: %w", err)
	}
	return records, nil
}
