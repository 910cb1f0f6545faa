package dto

import (
	"net/http"
	"strings"
)

// Error codes sent to clients. Domain error codes are exposed as
// "ERR_" + code, so ERR_INSUFFICIENT_STOCK comes from INSUFFICIENT_STOCK.

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Request error codes
const (
	ErrCodeValidation      = "ERR_VALIDATION"
	ErrCodeBadRequest      = "ERR_BAD_REQUEST"
	ErrCodeInvalidJSON     = "ERR_INVALID_JSON"
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
	ErrCodeRateLimited     = "ERR_RATE_LIMITED"
)

// Tenant error codes
const (
	ErrCodeTenantRequired = "ERR_TENANT_REQUIRED"
	ErrCodeTenantInactive = "ERR_TENANT_INACTIVE"
	ErrCodeForbidden      = "ERR_FORBIDDEN"
)

// Resource error codes
const (
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeInUse               = "ERR_IN_USE"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Business rule error codes
const (
	ErrCodeInvalidInput      = "ERR_INVALID_INPUT"
	ErrCodeInvalidState      = "ERR_INVALID_STATE"
	ErrCodeInvalidStatus     = "ERR_INVALID_STATUS"
	ErrCodeNotAssigned       = "ERR_NOT_ASSIGNED"
	ErrCodeInsufficientStock = "ERR_INSUFFICIENT_STOCK"
	ErrCodeOverReceipt       = "ERR_OVER_RECEIPT"
	ErrCodeOverPayment       = "ERR_OVER_PAYMENT"
	ErrCodeImportRejected    = "ERR_IMPORT_REJECTED"
)

// Dependency error codes
const (
	ErrCodePDFUnavailable     = "ERR_PDF_UNAVAILABLE"
	ErrCodeServiceUnavailable = "ERR_SERVICE_UNAVAILABLE"
	ErrCodeNotImplemented     = "ERR_NOT_IMPLEMENTED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:     http.StatusTooManyRequests,

	ErrCodeTenantRequired: http.StatusBadRequest,
	ErrCodeTenantInactive: http.StatusForbidden,
	ErrCodeForbidden:      http.StatusForbidden,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeInUse:               http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	ErrCodeInvalidState:      http.StatusUnprocessableEntity,
	ErrCodeInvalidStatus:     http.StatusUnprocessableEntity,
	ErrCodeNotAssigned:       http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock: http.StatusUnprocessableEntity,
	ErrCodeOverReceipt:       http.StatusUnprocessableEntity,
	ErrCodeOverPayment:       http.StatusUnprocessableEntity,
	ErrCodeImportRejected:    http.StatusUnprocessableEntity,

	ErrCodePDFUnavailable:     http.StatusServiceUnavailable,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeNotImplemented:     http.StatusNotImplemented,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Field validation codes (ERR_INVALID_*) not listed in the table are 400;
// anything else unknown is 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "ERR_INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// NormalizeErrorCode converts a domain error code to its client form.
// Codes already carrying the ERR_ prefix pass through unchanged.
func NormalizeErrorCode(code string) string {
	if code == "" {
		return ErrCodeUnknown
	}
	if strings.HasPrefix(code, "ERR_") {
		return code
	}
	return "ERR_" + code
}

// DomainHTTPStatus returns the status for a domain error code. A domain
// code the table does not know is a business rule violation (422).
func DomainHTTPStatus(code string) int {
	normalized := NormalizeErrorCode(code)
	if status, ok := ErrorCodeHTTPStatus[normalized]; ok {
		return status
	}
	if strings.HasPrefix(normalized, "ERR_INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusUnprocessableEntity
}
