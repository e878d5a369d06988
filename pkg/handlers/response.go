package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/Ezzyro/Airtable-Test/pkg/apperrors"
)

// IntakeErrorResponse is returned when a review or processing request fails.
// It echoes the correlation fields of the request.
type IntakeErrorResponse struct {
	Error    string `json:"error"`
	Action   string `json:"action,omitempty"`
	IntakeID string `json:"intakeId,omitempty"`
}

// WriteJSON writes data with the given status. The caller logs encoding errors.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// writeIntakeError writes an IntakeErrorResponse, logging if the write fails.
func writeIntakeError(w http.ResponseWriter, logger *zap.Logger, status int, body IntakeErrorResponse) {
	if err := WriteJSON(w, status, body); err != nil {
		logger.Error("Failed to write error response", zap.Int("status", status), zap.Error(err))
	}
}

// recoverIntakeError turns a panic in an intake handler into the standard 500
// body so the caller always gets a JSON answer. Handlers defer it directly;
// intakeID is read when the panic happens.
func recoverIntakeError(w http.ResponseWriter, logger *zap.Logger, action string, intakeID *string) {
	rec := recover()
	if rec == nil {
		return
	}
	if rec == http.ErrAbortHandler {
		panic(rec)
	}
	logger.Error("Handler panicked",
		zap.String("action", action),
		zap.String("intake_id", *intakeID),
		zap.Any("panic", rec),
		zap.Stack("stack"))
	writeIntakeError(w, logger, http.StatusInternalServerError, IntakeErrorResponse{
		Error:    "internal server error",
		Action:   action,
		IntakeID: *intakeID,
	})
}

// decodeOptionalJSON reads at most limit bytes into dst. An empty body
// leaves dst untouched.
func decodeOptionalJSON(r *http.Request, limit int64, dst any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, limit)).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return fmt.Errorf("%w: malformed JSON body", apperrors.ErrInvalidInput)
}

// StatusForError maps the application's sentinel errors to HTTP status codes.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrInvalidAction), errors.Is(err, apperrors.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
