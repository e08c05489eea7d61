package web

import (
	"io"
	"net/http"

	"mimiops/internal"
	"mimiops/internal/intake"
)

const maxBatchUpload = 10 << 20

// handleOrderBatch ingests an uploaded workbook of identifier and
// quantity pairs and appends every resolved row to the order list.
// Rows the catalog cannot resolve are reported back, not dropped
// silently.
func (s *Server) handleOrderBatch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxBatchUpload); err != nil {
		respondError(w, r, internal.NewUserInputError("file", "invalid multipart upload"))
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, internal.NewUserInputError("file", "workbook file is required"))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxBatchUpload))
	if err != nil {
		respondError(w, r, err)
		return
	}

	lines, err := intake.ParseXLSXLines(content)
	if err != nil {
		respondError(w, r, internal.NewUserInputError("file", "could not read workbook"))
		return
	}
	if len(lines) == 0 {
		respondError(w, r, internal.NewUserInputError("file", "workbook has no usable rows"))
		return
	}

	table, err := s.catalog.Load(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	list := s.list(r, internal.KindOrder)
	var added int
	var unresolved []string
	for _, line := range intake.Resolve(table, lines) {
		if line.Item == nil {
			unresolved = append(unresolved, line.RawLine)
			continue
		}
		list.Add(*line.Item)
		added++
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"added":      added,
		"unresolved": unresolved,
		"count":      list.Len(),
	})
}
