package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"opsboard/internal/domain/faults"
)

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type Envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Error     *Error `json:"error,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("write json failed", "err", err)
	}
}

func Success(w http.ResponseWriter, data any, requestID string) {
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Data: data, RequestID: requestID})
}

func Created(w http.ResponseWriter, data any, requestID string) {
	WriteJSON(w, http.StatusCreated, Envelope{Success: true, Data: data, RequestID: requestID})
}

func Fail(w http.ResponseWriter, status int, code, message, requestID string) {
	WriteJSON(w, status, Envelope{Success: false, Error: &Error{Code: code, Message: message}, RequestID: requestID})
}

// FailErr maps the engine's error taxonomy onto HTTP statuses in one place.
func FailErr(w http.ResponseWriter, err error, requestID string) {
	Fail(w, StatusFor(err), faults.Code(err), err.Error(), requestID)
}

func StatusFor(err error) int {
	switch {
	case errors.Is(err, faults.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, faults.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, faults.ErrNotAssigned):
		return http.StatusConflict
	case errors.Is(err, faults.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, faults.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, faults.ErrDuplicatePayment):
		return http.StatusConflict
	case errors.Is(err, faults.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
