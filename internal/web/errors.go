package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/terraconstructs/postboard/pkg/sdk"
)

// ErrorResponse is the JSON body of every gateway error.
type ErrorResponse struct {
	Error    string   `json:"error"`
	Messages []string `json:"messages,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeErrorMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// writeError maps SDK errors onto gateway responses. Upstream statuses are
// passed through; failures to reach the API are 502.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var (
		validationErr *sdk.ValidationError
		httpErr       *sdk.HTTPError
		networkErr    *sdk.NetworkError
		protocolErr   *sdk.ProtocolError
	)

	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:    validationErr.Error(),
			Messages: validationErr.Messages(),
		})
	case errors.As(err, &httpErr):
		msg := httpErr.APIMessage()
		if msg == "" {
			msg = http.StatusText(httpErr.Status)
		}
		writeErrorMessage(w, httpErr.Status, msg)
	case errors.As(err, &networkErr), errors.As(err, &protocolErr):
		logger.Warn("upstream API failure", "error", err)
		writeErrorMessage(w, http.StatusBadGateway, "API unavailable")
	default:
		logger.Error("gateway request failed", "error", err)
		writeErrorMessage(w, http.StatusInternalServerError, "internal error")
	}
}
