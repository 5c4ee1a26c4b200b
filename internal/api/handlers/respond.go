package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/zezinho10632/DouglasApi/internal/contracts"
	"github.com/zezinho10632/DouglasApi/pkg/logger"
)

// Error codes of the error envelope
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeConflict     = "CONFLICT"
	CodePeriodClosed = "PERIOD_CLOSED"
	CodeNotFound     = "NOT_FOUND"
	CodeForbidden    = "FORBIDDEN"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeRateLimited  = "RATE_LIMITED"
	CodeInternal     = "INTERNAL_ERROR"
	CodeUnavailable  = "UNAVAILABLE"
)

// Envelope wraps every response body
// ⭐ SSOT: the response shape is defined here only
type Envelope struct {
	Data    interface{} `json:"data"`
	Message string      `json:"message"`
	Success bool        `json:"success"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

// ErrorBody details a failed request
type ErrorBody struct {
	Code   string `json:"code"`
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondData(w http.ResponseWriter, status int, message string, data interface{}) {
	respondJSON(w, status, Envelope{Data: data, Message: message, Success: true})
}

func respondOK(w http.ResponseWriter, data interface{}) {
	respondData(w, http.StatusOK, "OK", data)
}

func respondCreated(w http.ResponseWriter, data interface{}) {
	respondData(w, http.StatusCreated, "Created", data)
}

// RespondFailure writes an error envelope with an explicit status and code.
// Middleware uses it for failures raised outside the handlers.
func RespondFailure(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, Envelope{
		Message: message,
		Error:   &ErrorBody{Code: code},
	})
}

// respondError maps the error taxonomy onto HTTP statuses
func respondError(w http.ResponseWriter, r *http.Request, log *logger.Logger, err error) {
	status, body, message := classify(err)
	if status == http.StatusInternalServerError {
		log.WithError(err).WithFields(map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error("Request failed")
	}
	respondJSON(w, status, Envelope{Message: message, Error: body})
}

func classify(err error) (int, *ErrorBody, string) {
	var (
		validation *contracts.ValidationError
		conflict   *contracts.ConflictError
		closed     *contracts.PeriodClosedError
		notFound   *contracts.NotFoundError
		forbidden  *contracts.AuthorizationError
	)

	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest,
			&ErrorBody{Code: CodeValidation, Field: validation.Field, Reason: validation.Reason},
			validation.Error()
	case errors.As(err, &closed):
		return http.StatusConflict,
			&ErrorBody{Code: CodePeriodClosed, Reason: string(closed.Status)},
			"Período fechado"
	case errors.As(err, &conflict):
		return http.StatusConflict,
			&ErrorBody{Code: CodeConflict, Reason: conflict.Reason},
			conflict.Error()
	case errors.As(err, &notFound):
		return http.StatusNotFound, &ErrorBody{Code: CodeNotFound}, notFound.Error()
	case errors.As(err, &forbidden):
		return http.StatusForbidden, &ErrorBody{Code: CodeForbidden}, forbidden.Error()
	case errors.Is(err, contracts.ErrUnauthorized):
		return http.StatusUnauthorized, &ErrorBody{Code: CodeUnauthorized}, "authentication required"
	}
	return http.StatusInternalServerError, &ErrorBody{Code: CodeInternal}, "Internal server error"
}
