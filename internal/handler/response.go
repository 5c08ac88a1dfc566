// Package handler contains the HTTP layer: request DTOs, schema
// validation, and the fixed response envelopes.
//
// ENVELOPES:
// Every endpoint answers with one of exactly two JSON shapes:
//
//	{"status":"success","message":"...","data":{...}}
//	{"status":"error","code":"KEY_NOT_FOUND","message":"..."}
//
// writeError below is the single place domain errors become HTTP status
// codes. Services return apperror values; nothing else in the call chain
// picks status codes, and anything that is not a typed domain error is
// reported as the generic INTERNAL_SERVER_ERROR envelope with no internal
// detail attached.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/datavault/internal/apperror"
)

const msgInternalError = "An internal server error occurred. Please try again later."

// successResponse is the success envelope. Data is omitted when an
// operation has no payload (create/update/delete acknowledge via message).
type successResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// errorResponse is the error envelope. Code is the stable machine-readable
// identifier; clients branch on it, not on the message.
type errorResponse struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON sends a JSON body with the given status. Headers must be set
// before the first body write, hence the ordering here.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are gone by now; logging is all that's left.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeSuccess sends the 200 success envelope.
func writeSuccess(w http.ResponseWriter, message string, data any) {
	writeJSON(w, http.StatusOK, successResponse{
		Status:  "success",
		Message: message,
		Data:    data,
	})
}

// writeError maps a domain error to its HTTP status and error envelope.
//
// The sentinel kind inside the AppError picks the status: validation → 400,
// unauthorized → 401, not found → 404. Errors without an AppError in their
// chain are unanticipated faults: they are logged with full detail
// server-side and reported to the client as a generic 500 — stack traces
// and SQL errors never cross this boundary.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
		}

		writeJSON(w, status, errorResponse{
			Status:  "error",
			Code:    appErr.Code,
			Message: appErr.Message,
		})
		return
	}

	logger.Error("internal error", slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, errorResponse{
		Status:  "error",
		Code:    apperror.CodeInternalServerError,
		Message: msgInternalError,
	})
}
