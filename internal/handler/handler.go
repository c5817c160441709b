package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/cydodol-beep/shorttail-ecommerce-sub002/internal/model"

	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already written; an encode failure cannot be reported.
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, code, message string, logger zerolog.Logger) {
	logger.Error().Str("error", message).Str("code", code).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Error: code, Message: message})
}

// writeDomainError maps a service error to an HTTP response. The message
// reaches the POS UI verbatim, so stock rejections keep their item name
// and available quantity.
func writeDomainError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var stockErr *model.InsufficientStockError
	if errors.As(err, &stockErr) {
		writeError(w, http.StatusConflict, model.ErrCodeInsufficientStock, stockErr.Error(), logger)
		return
	}

	var transitionErr *model.InvalidTransitionError
	if errors.As(err, &transitionErr) {
		writeError(w, http.StatusUnprocessableEntity, model.ErrCodeInvalidStatusTransition, transitionErr.Error(), logger)
		return
	}

	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		status := http.StatusBadRequest
		switch domainErr.Code {
		case model.ErrCodeOrderNotFound:
			status = http.StatusNotFound
		case model.ErrCodeDuplicateRequest:
			status = http.StatusConflict
		case model.ErrCodeInvalidStatusTransition:
			status = http.StatusUnprocessableEntity
		}
		writeError(w, status, domainErr.Code, domainErr.Message, logger)
		return
	}

	// Request-shape failures surfaced by the service's own validation.
	if strings.Contains(err.Error(), "required") ||
		strings.Contains(err.Error(), "must contain") ||
		strings.Contains(err.Error(), "cannot be empty") ||
		strings.Contains(err.Error(), "nil") {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidationFailed, err.Error(), logger)
		return
	}

	writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "failed to process request", logger)
}
