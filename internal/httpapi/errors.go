package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pnordq/pnfem/internal/domain"
)

type errorResponse struct {
	Error  string   `json:"error"`
	Kind   string   `json:"kind"`
	Issues []string `json:"issues,omitempty"`
}

// StatusFor maps an error kind to an HTTP status code.
func StatusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindInvalidConfig:
		return http.StatusBadRequest
	case domain.KindInvalidModel:
		return http.StatusUnprocessableEntity
	case domain.KindBusy:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	resp := errorResponse{Error: err.Error(), Kind: string(domain.KindOf(err))}
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		for _, is := range verr.Issues {
			resp.Issues = append(resp.Issues, is.Message)
		}
	}
	writeJSON(w, StatusFor(err), resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
