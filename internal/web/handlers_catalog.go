package web

import (
	"net/http"
	"sort"
	"strings"

	"mimiops/internal"
	"mimiops/internal/catalog"
)

// searchColumn maps the public "by" parameter onto catalog columns.
func searchColumn(by string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(by)) {
	case "barcode":
		return internal.ColBarcode, nil
	case "vf":
		return internal.ColVarejoFacil, nil
	case "ref":
		return internal.ColCode, nil
	default:
		return "", internal.NewUserInputError("by", "must be one of barcode, vf, ref")
	}
}

func (s *Server) handleCatalogSearch(w http.ResponseWriter, r *http.Request) {
	col, err := searchColumn(r.URL.Query().Get("by"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		respondError(w, r, internal.NewUserInputError("q", "search term is required"))
		return
	}

	table, err := s.catalog.Load(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	rows, err := table.FindContains(col, q)
	if err != nil {
		respondError(w, r, err)
		return
	}

	products := make([]catalog.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, row.Product())
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"count":   len(products),
		"results": products,
	})
}

func (s *Server) handleCatalogSuppliers(w http.ResponseWriter, r *http.Request) {
	table, err := s.catalog.Load(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"suppliers": table.DistinctValues(internal.ColSupplier),
	})
}

// handleSupplierProducts lists the distinct identifier values one
// supplier carries, for the guided browse flow.
func (s *Server) handleSupplierProducts(w http.ResponseWriter, r *http.Request) {
	supplier := strings.TrimSpace(r.URL.Query().Get("supplier"))
	if supplier == "" {
		respondError(w, r, internal.NewUserInputError("supplier", "supplier is required"))
		return
	}
	col, err := searchColumn(r.URL.Query().Get("by"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	table, err := s.catalog.Load(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	seen := make(map[string]bool)
	var values []string
	for _, row := range table.FilterEqual(internal.ColSupplier, supplier) {
		v := strings.TrimSpace(row.Get(col))
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	sort.Strings(values)

	respondJSON(w, http.StatusOK, map[string]any{
		"supplier": supplier,
		"values":   values,
	})
}

func (s *Server) handleCatalogRefresh(w http.ResponseWriter, r *http.Request) {
	table, err := s.catalog.Refresh(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"rows":    table.Len(),
		"columns": table.Columns,
	})
}
