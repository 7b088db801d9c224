package apperror

import (
	"errors"
	"net/http"
)

// Kind is a machine-readable error category. Handlers map errors to HTTP
// status codes by Kind, clients and tests branch on it instead of matching
// message text.
type Kind string

const (
	KindValidation           Kind = "validation"
	KindNotFound             Kind = "not_found"
	KindNotDraft             Kind = "not_draft"
	KindAlreadyFinalized     Kind = "already_finalized"
	KindOverpayment          Kind = "overpayment"
	KindAlreadyPaid          Kind = "already_paid"
	KindConflict             Kind = "conflict"
	KindBusy                 Kind = "busy"
	KindTransportUnavailable Kind = "transport_unavailable"
	KindInternal             Kind = "internal"
)

// AppError represents an application error with a category and HTTP status code
type AppError struct {
	Kind    Kind   `json:"kind"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

// NewAppError creates a new application error
func NewAppError(kind Kind, code int, message string) *AppError {
	return &AppError{Kind: kind, Code: code, Message: message}
}

// NewValidationError reports a malformed request shape
func NewValidationError(message string) *AppError {
	return &AppError{Kind: KindValidation, Code: http.StatusBadRequest, Message: message}
}

// NewNotFoundError reports an unknown receipt/item/unit/token, or an
// item-unit pair that does not match the stored relationship
func NewNotFoundError(resource string) *AppError {
	return &AppError{Kind: KindNotFound, Code: http.StatusNotFound, Message: resource + " not found"}
}

// NewNotDraftError reports a write against a receipt that already left draft
func NewNotDraftError(message string) *AppError {
	return &AppError{Kind: KindNotDraft, Code: http.StatusBadRequest, Message: message}
}

// NewAlreadyFinalizedError reports a second finalize call
func NewAlreadyFinalizedError(message string) *AppError {
	return &AppError{Kind: KindAlreadyFinalized, Code: http.StatusBadRequest, Message: message}
}

// NewOverpaymentError reports a payment line exceeding the remaining balance
func NewOverpaymentError(message string) *AppError {
	return &AppError{Kind: KindOverpayment, Code: http.StatusConflict, Message: message}
}

// NewAlreadyPaidError reports a unit_full line with nothing left to pay
func NewAlreadyPaidError(message string) *AppError {
	return &AppError{Kind: KindAlreadyPaid, Code: http.StatusConflict, Message: message}
}

// NewBusyError reports a room-lock acquisition timeout
func NewBusyError(message string) *AppError {
	return &AppError{Kind: KindBusy, Code: http.StatusServiceUnavailable, Message: message}
}

// NewTransportUnavailableError reports a notification-channel failure
func NewTransportUnavailableError(message string) *AppError {
	return &AppError{Kind: KindTransportUnavailable, Code: http.StatusBadGateway, Message: message}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// IsKind reports whether err is an AppError of the given kind
func IsKind(err error, kind Kind) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

// GetAppError converts an error to AppError if possible
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{
		Kind:    KindInternal,
		Code:    http.StatusInternalServerError,
		Message: err.Error(),
	}
}
