package web

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"mimiops/internal"
)

type priceLoginRequest struct {
	Usuario string `json:"usuario"`
	Senha   string `json:"senha"`
}

func (s *Server) handlePriceLogin(w http.ResponseWriter, r *http.Request) {
	var req priceLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	token, err := s.prices.Authenticate(r.Context(), req.Usuario, req.Senha)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"accessToken": token})
}

func (s *Server) handlePriceQuery(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		respondError(w, r, internal.ErrAuth)
		return
	}
	barcode := strings.TrimSpace(r.URL.Query().Get("barcode"))
	if barcode == "" {
		respondError(w, r, internal.NewUserInputError("barcode", "barcode is required"))
		return
	}

	product, err := s.prices.LookupByBarcode(r.Context(), token, barcode)
	if err != nil {
		respondError(w, r, err)
		return
	}
	prices, err := s.prices.GetPrices(r.Context(), token, product.ID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"product": product,
		"prices":  prices,
	})
}

func (s *Server) handlePriceUpdate(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		respondError(w, r, internal.ErrAuth)
		return
	}
	priceID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, r, internal.NewUserInputError("id", "must be a numeric price id"))
		return
	}

	var update internal.PriceUpdate
	if err := decodeJSON(r, &update); err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.prices.UpdatePrice(r.Context(), token, priceID, update); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"updated": priceID})
}
