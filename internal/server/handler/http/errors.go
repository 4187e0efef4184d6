package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/catalog/internal/docstore"
)

// invalidIDMessage is returned for every malformed path or query id.
const invalidIDMessage = "Invalid ID format."

// messages are the client-facing texts for one endpoint.
type messages struct {
	// notFound is sent with 404, e.g. "Item not found.".
	notFound string
	// duplicate is sent with 409.
	duplicate string
	// failed is sent with 5xx, e.g. "Error fetching item.".
	failed string
}

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeMessage sends {"message": msg}.
func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// writeError maps err onto a status code: validation and id errors are 400,
// missing documents 404, unique violations 409, an unreachable medium 503.
// Server-side failures are logged; client errors are not.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error, msgs messages) {
	switch {
	case errors.Is(err, docstore.ErrInvalidID):
		writeMessage(w, http.StatusBadRequest, invalidIDMessage)
	case errors.Is(err, docstore.ErrValidation):
		var verr *docstore.ValidationError
		if errors.As(err, &verr) {
			writeMessage(w, http.StatusBadRequest, verr.Error())
			return
		}
		writeMessage(w, http.StatusBadRequest, "Invalid request.")
	case errors.Is(err, docstore.ErrNotFound):
		writeMessage(w, http.StatusNotFound, msgs.notFound)
	case errors.Is(err, docstore.ErrDuplicateKey):
		writeMessage(w, http.StatusConflict, msgs.duplicate)
	case errors.Is(err, docstore.ErrStorage):
		logger.Error(msgs.failed, zap.Error(err))
		writeMessage(w, http.StatusServiceUnavailable, msgs.failed)
	default:
		logger.Error(msgs.failed, zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, msgs.failed)
	}
}

// decodeBody reads a JSON request body into v, answering 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body.")
		return false
	}
	return true
}
