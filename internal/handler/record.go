package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/datavault/internal/apperror"
	"github.com/sakif/datavault/internal/service"
)

// RecordHandler serves the protected /api/data endpoints. The RequireAuth
// middleware runs before every method here, so by the time a request
// arrives the bearer token has already been verified — these handlers only
// deal with the key-value lifecycle.
type RecordHandler struct {
	records *service.RecordService
	logger  *slog.Logger
}

// NewRecordHandler creates a RecordHandler.
func NewRecordHandler(records *service.RecordService, logger *slog.Logger) *RecordHandler {
	return &RecordHandler{
		records: records,
		logger:  logger,
	}
}

// storeRequest is the POST /api/data body.
type storeRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// updateRequest is the PUT /api/data/{key} body. Only the value travels in
// the body — the key is immutable and comes from the path.
type updateRequest struct {
	Value string `json:"value"`
}

// recordData is the payload of a successful GET.
type recordData struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// HandleStore creates a key-value pair (store-if-absent).
//
// HTTP: POST /api/data (bearer token)
func (h *RecordHandler) HandleStore(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req storeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// No parseable body means no usable key.
		writeError(w, h.logger, apperror.Validation(apperror.CodeInvalidKey,
			"The provided key is not valid or missing."))
		return
	}

	if err := h.records.Store(r.Context(), req.Key, req.Value); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeSuccess(w, "Data stored successfully.", nil)
}

// HandleGet returns the value stored under a key.
//
// HTTP: GET /api/data/{key} (bearer token)
func (h *RecordHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	rec, err := h.records.Get(r.Context(), key)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeSuccess(w, "Data retrieved successfully.", recordData{
		Key:   rec.Key,
		Value: rec.Value,
	})
}

// HandleUpdate replaces the value under an existing key.
//
// HTTP: PUT /api/data/{key} (bearer token)
func (h *RecordHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, apperror.Validation(apperror.CodeInvalidValue,
			"The provided value is not valid or missing."))
		return
	}

	if err := h.records.Update(r.Context(), key, req.Value); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeSuccess(w, "Data updated successfully.", nil)
}

// HandleDelete removes a key-value pair.
//
// HTTP: DELETE /api/data/{key} (bearer token)
func (h *RecordHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	if err := h.records.Delete(r.Context(), key); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeSuccess(w, "Data deleted successfully.", nil)
}
