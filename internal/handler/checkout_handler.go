package handler

import (
	"encoding/json"
	"net/http"

	"github.com/cydodol-beep/shorttail-ecommerce-sub002/internal/idempotency"
	"github.com/cydodol-beep/shorttail-ecommerce-sub002/internal/middleware"
	"github.com/cydodol-beep/shorttail-ecommerce-sub002/internal/model"
	"github.com/cydodol-beep/shorttail-ecommerce-sub002/internal/service"

	"github.com/go-chi/chi/v5"
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CheckoutHandler handles point-of-sale order requests.
type CheckoutHandler struct {
	service   service.CheckoutService
	idem      *idempotency.Store // nil when redis is disabled
	validator *validatorv10.Validate
	logger    zerolog.Logger
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(svc service.CheckoutService, idem *idempotency.Store, logger zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service:   svc,
		idem:      idem,
		validator: newValidator(),
		logger:    logger.With().Str("handler", "checkout").Logger(),
	}
}

// Create handles POST /api/pos/orders requests.
func (h *CheckoutHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	if err := h.validator.Struct(req); err != nil {
		h.logger.Warn().Err(err).Msg("checkout request validation failed")
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  model.ErrCodeValidationFailed,
			"fields": validationErrorsToMap(err),
		})
		return
	}

	session := middleware.SessionFromContext(r.Context())
	if session == nil {
		writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "authentication required", h.logger)
		return
	}

	// Optional double-submit guard. A redis outage fails open: the
	// source system has no guard at all, so a missing one is never a
	// reason to refuse a sale.
	idemKey := r.Header.Get("Idempotency-Key")
	claimed := false
	if idemKey != "" && h.idem != nil {
		ok, err := h.idem.Claim(r.Context(), idemKey)
		if err != nil {
			h.logger.Warn().Err(err).Msg("idempotency claim failed, proceeding without guard")
		} else if !ok {
			writeDomainError(w, model.ErrDuplicateRequest, h.logger)
			return
		} else {
			claimed = true
		}
	}

	resp, err := h.service.Checkout(r.Context(), &req, session)
	if err != nil {
		if claimed {
			if relErr := h.idem.Release(r.Context(), idemKey); relErr != nil {
				h.logger.Warn().Err(relErr).Msg("failed to release idempotency key")
			}
		}
		writeDomainError(w, err, h.logger)
		return
	}

	if claimed {
		if err := h.idem.Complete(r.Context(), idemKey, resp.Order.ID.String()); err != nil {
			h.logger.Warn().Err(err).Msg("failed to record idempotency key")
		}
	}

	writeJSON(w, http.StatusCreated, resp)
}

// GetByID handles GET /api/orders/{id} requests.
func (h *CheckoutHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidationFailed, "invalid order ID format", h.logger)
		return
	}

	order, err := h.service.GetOrder(r.Context(), orderID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "failed to retrieve order", h.logger)
		return
	}

	if order == nil {
		writeError(w, http.StatusNotFound, model.ErrCodeOrderNotFound, "order not found", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// UpdateStatus handles PATCH /api/orders/{id}/status requests.
func (h *CheckoutHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidationFailed, "invalid order ID format", h.logger)
		return
	}

	var req model.StatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}
	if req.Status == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidationFailed, "status is required", h.logger)
		return
	}

	order, err := h.service.UpdateStatus(r.Context(), orderID, req.Status)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}
