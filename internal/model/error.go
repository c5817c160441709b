package model

import "fmt"

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON             = "INVALID_JSON"
	ErrCodeValidationFailed        = "VALIDATION_FAILED"
	ErrCodeInsufficientStock       = "INSUFFICIENT_STOCK"
	ErrCodeProductNotFound         = "PRODUCT_NOT_FOUND"
	ErrCodeVariantRequired         = "VARIANT_REQUIRED"
	ErrCodeInvalidQuantity         = "INVALID_QUANTITY"
	ErrCodeInvalidPromoCode        = "INVALID_PROMO_CODE"
	ErrCodeInvalidPromoLength      = "INVALID_PROMO_LENGTH"
	ErrCodeOrderNotFound           = "ORDER_NOT_FOUND"
	ErrCodeInvalidStatusTransition = "INVALID_STATUS_TRANSITION"
	ErrCodeDuplicateRequest        = "DUPLICATE_REQUEST"
	ErrCodeUnauthorised            = "UNAUTHORIZED"
	ErrCodeForbidden               = "FORBIDDEN"
	ErrCodeInternalError           = "INTERNAL_ERROR"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// DomainError carries a stable error code alongside the message so
// handlers can map business failures to HTTP statuses.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrProductNotFound    = NewDomainError(ErrCodeProductNotFound, "One or more products not found")
	ErrVariantRequired    = NewDomainError(ErrCodeVariantRequired, "Product has variants; a variant must be selected")
	ErrInvalidQuantity    = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrInvalidPromoCode   = NewDomainError(ErrCodeInvalidPromoCode, "Promo code is not active")
	ErrInvalidPromoLength = NewDomainError(ErrCodeInvalidPromoLength, "Promo code must be between 6 and 12 characters")
	ErrOrderNotFound      = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrDuplicateRequest   = NewDomainError(ErrCodeDuplicateRequest, "Request with this idempotency key was already processed")
)

// InsufficientStockError names the first cart line that could not be
// fulfilled. The POS UI surfaces Error() verbatim.
type InsufficientStockError struct {
	ProductName string
	VariantName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	name := e.ProductName
	if e.VariantName != "" {
		name = fmt.Sprintf("%s (%s)", e.ProductName, e.VariantName)
	}
	return fmt.Sprintf("not enough stock for %s: only %d available", name, e.Available)
}

// InvalidTransitionError reports a disallowed order status change.
type InvalidTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition order from %s to %s", e.From, e.To)
}
