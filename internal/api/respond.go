package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	apperrors "golfalerts/internal/errors"
)

const degradedHeader = "X-Upstream-Degraded"

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError answers with the status StatusFor assigns. Validation and
// not-found reasons are shown to the caller; anything else is logged and
// hidden.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	status := apperrors.StatusFor(err)
	msg := http.StatusText(status)

	var validation *apperrors.ValidationError
	var httpErr *apperrors.HTTPError
	switch {
	case errors.As(err, &validation):
		msg = validation.Reason
	case errors.As(err, &httpErr):
		msg = httpErr.Message
	case errors.Is(err, apperrors.ErrNotFound):
		msg = err.Error()
	default:
		logger.Error("request failed", zap.Int("status", status), zap.Error(err))
	}
	writeJSON(w, status, ErrorResponse{Error: msg})
}
