package web

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"mimiops/internal"
	"mimiops/internal/session"
)

func kindFromRequest(r *http.Request) internal.SelectionKind {
	return internal.SelectionKind(chi.URLParam(r, "kind"))
}

func (s *Server) list(r *http.Request, kind internal.SelectionKind) *session.List {
	return s.session(r).List(kind)
}

type addItemRequest struct {
	By       string `json:"by"`
	Value    string `json:"value"`
	Quantity int    `json:"quantity"`
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	list := s.list(r, kindFromRequest(r))
	respondJSON(w, http.StatusOK, map[string]any{
		"items":     list.Items(),
		"suppliers": list.SupplierSet(),
	})
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	col, err := searchColumn(req.By)
	if err != nil {
		respondError(w, r, err)
		return
	}
	value := strings.TrimSpace(req.Value)
	if value == "" {
		respondError(w, r, internal.NewUserInputError("value", "identifier is required"))
		return
	}
	if req.Quantity <= 0 {
		respondError(w, r, internal.NewUserInputError("quantity", "must be a positive integer"))
		return
	}

	table, err := s.catalog.Load(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	row, ok := table.FindExact(col, value)
	if !ok {
		respondError(w, r, fmt.Errorf("no catalog entry for %q: %w", value, internal.ErrNotFound))
		return
	}

	item := row.Item(req.Quantity)
	list := s.list(r, kindFromRequest(r))
	list.Add(item)
	respondJSON(w, http.StatusCreated, map[string]any{
		"item":  item,
		"count": list.Len(),
	})
}

func (s *Server) handleRemoveLast(w http.ResponseWriter, r *http.Request) {
	list := s.list(r, kindFromRequest(r))
	removed, err := list.RemoveLast()
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"removed": removed,
		"count":   list.Len(),
	})
}
