package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"mimiops/internal"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// respondError maps the domain error taxonomy onto HTTP statuses and
// logs the technical detail server-side. Lookup misses and list-state
// conflicts are ordinary outcomes here, logged at debug only.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	code, status := classify(err)

	if status >= http.StatusInternalServerError {
		slog.Error("request failed",
			"path", r.URL.Path,
			"method", r.Method,
			"status", status,
			"error", err.Error(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	} else {
		slog.Debug("request rejected",
			"path", r.URL.Path,
			"status", status,
			"error", err.Error(),
		)
	}

	respondJSON(w, status, errorResponse{Error: code, Message: err.Error()})
}

func classify(err error) (code string, status int) {
	switch {
	case internal.IsUserInput(err):
		return "user_input", http.StatusUnprocessableEntity
	case errors.Is(err, internal.ErrNotFound):
		return "not_found", http.StatusNotFound
	case errors.Is(err, internal.ErrMultiSupplier):
		return "multi_supplier", http.StatusConflict
	case errors.Is(err, internal.ErrEmptyList):
		return "empty_list", http.StatusConflict
	case errors.Is(err, internal.ErrAuth):
		return "auth", http.StatusUnauthorized
	case internal.IsRemote(err):
		return "remote", http.StatusBadGateway
	default:
		return "internal", http.StatusInternalServerError
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return internal.NewUserInputError("body", "invalid JSON payload")
	}
	return nil
}
