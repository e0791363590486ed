package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nerrad567/scmi-pinctrl/internal/pinctrl"
	"github.com/nerrad567/scmi-pinctrl/internal/scmi"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes.
const (
	ErrCodeBadRequest = "bad_request"
	ErrCodeNotFound   = "not_found"
	ErrCodeConflict   = "conflict"
	ErrCodeUpstream   = "upstream_error"
	ErrCodeInternal   = "internal_error"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeNotFound writes a 404 error response.
func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeDriverError maps pin driver errors to HTTP responses.
//
// Validation failures map to 400, unknown pins and unclaimed releases to
// 404, duplicate claims to 409, and platform/transport failures to 502.
func writeDriverError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pinctrl.ErrInvalidArgument),
		errors.Is(err, pinctrl.ErrNotSupported),
		errors.Is(err, pinctrl.ErrInvalidProperty),
		errors.Is(err, pinctrl.ErrCapacityExceeded):
		writeBadRequest(w, err.Error())
	case errors.Is(err, pinctrl.ErrNotFound):
		writeNotFound(w, err.Error())
	case errors.Is(err, pinctrl.ErrAlreadyClaimed):
		writeError(w, http.StatusConflict, ErrCodeConflict, err.Error())
	case errors.Is(err, scmi.ErrProtocol),
		errors.Is(err, scmi.ErrTransport),
		errors.Is(err, scmi.ErrInvalidFrame),
		errors.Is(err, scmi.ErrNotConnected),
		errors.Is(err, pinctrl.ErrInvalidData):
		writeError(w, http.StatusBadGateway, ErrCodeUpstream, err.Error())
	default:
		writeInternalError(w, err.Error())
	}
}
