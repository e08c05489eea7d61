package web

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"mimiops/internal"
	"mimiops/internal/forms"
)

func (s *Server) handleExchangeForm(w http.ResponseWriter, r *http.Request) {
	sess := s.session(r)
	list := sess.List(internal.KindExchange)

	supplier, err := list.RequireSingleSupplier()
	if err != nil {
		respondError(w, r, err)
		return
	}

	data, err := forms.BuildExchangeForm(s.cfg.TemplatePath(s.cfg.ExchangeTemplate), supplier, list.Items())
	if err != nil {
		respondError(w, r, err)
		return
	}

	const filename = "FORMULARIO_TROCA.xlsx"
	if err := s.db.RecordExport("exchange", sess.ID, supplier, filename, list.Len()); err != nil {
		slog.Warn("export audit write failed", "error", err)
	}
	respondWorkbook(w, filename, data)
}

type transferFormRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func validStore(name string) bool {
	for _, s := range internal.TransferStores {
		if s == name {
			return true
		}
	}
	return false
}

func (s *Server) handleTransferForm(w http.ResponseWriter, r *http.Request) {
	var req transferFormRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	from := strings.ToUpper(strings.TrimSpace(req.From))
	to := strings.ToUpper(strings.TrimSpace(req.To))
	if !validStore(from) {
		respondError(w, r, internal.NewUserInputError("from", "unknown store"))
		return
	}
	if !validStore(to) {
		respondError(w, r, internal.NewUserInputError("to", "unknown store"))
		return
	}
	if from == to {
		respondError(w, r, internal.NewUserInputError("to", "origin and destination must differ"))
		return
	}

	sess := s.session(r)
	list := sess.List(internal.KindTransfer)
	supplier, err := list.RequireSingleSupplier()
	if err != nil {
		respondError(w, r, err)
		return
	}

	data, err := forms.BuildTransferForm(s.cfg.TemplatePath(s.cfg.TransferTemplate), from, to, list.Items(), time.Now())
	if err != nil {
		respondError(w, r, err)
		return
	}

	const filename = "FORMULARIO_TRANSFERENCIA.xlsx"
	if err := s.db.RecordExport("transfer", sess.ID, supplier, filename, list.Len()); err != nil {
		slog.Warn("export audit write failed", "error", err)
	}
	respondWorkbook(w, filename, data)
}

func (s *Server) handleOrderSheet(w http.ResponseWriter, r *http.Request) {
	sess := s.session(r)
	list := sess.List(internal.KindOrder)
	if list.Len() == 0 {
		respondError(w, r, internal.ErrEmptyList)
		return
	}

	data, err := forms.BuildOrderSheet(list.Items())
	if err != nil {
		respondError(w, r, err)
		return
	}

	const filename = "PEDIDO.xlsx"
	if err := s.db.RecordExport("order", sess.ID, strings.Join(list.SupplierSet(), ","), filename, list.Len()); err != nil {
		slog.Warn("export audit write failed", "error", err)
	}
	respondWorkbook(w, filename, data)
}

func (s *Server) handleBatchTemplate(w http.ResponseWriter, r *http.Request) {
	data, err := forms.BuildBatchTemplate()
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondWorkbook(w, "MODELO_LOTE.xlsx", data)
}

func (s *Server) handleListExports(w http.ResponseWriter, r *http.Request) {
	exports, err := s.db.ListExports(100)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"exports": exports})
}
