// Package businessflow contains the core business logic and use cases for tariff workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Carrier-related errors
	ErrCarrierNotFound = errors.New("carrier not found")
	ErrCarrierInactive = errors.New("carrier is inactive")

	// Order-related errors
	ErrOrderNotFound     = errors.New("tariff order not found")
	ErrOrderAccessDenied = errors.New("tariff order access denied")
	ErrOrderExpired      = errors.New("tariff order has expired")
	ErrOrderNotEditable  = errors.New("tariff order cannot be edited in current status")
	ErrOrderNotExpired   = errors.New("tariff order is not yet due for renewal")

	// Method change errors
	ErrMethodMismatch             = errors.New("pricing method does not match the order; method changes require approval")
	ErrMethodUnchanged            = errors.New("requested pricing method equals the current method")
	ErrMethodChangeNotFound       = errors.New("method change request not found")
	ErrMethodChangeAlreadyDecided = errors.New("method change request already decided")
	ErrMethodChangePending        = errors.New("a method change request is already pending for this order")
	ErrInvalidPricingMethod       = errors.New("invalid pricing method")

	// Document errors
	ErrDocumentNotFound  = errors.New("no document has been generated for this order")
	ErrRendererFailed    = errors.New("document rendering failed")
	ErrRegenerationBusy  = errors.New("too many pending regenerations for this order, retry later")

	// Filter errors
	ErrInvalidPage     = errors.New("page must be at least 1")
	ErrInvalidPageSize = errors.New("page size must be between 1 and 100")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func IsCarrierNotFound(err error) bool {
	return errors.Is(err, ErrCarrierNotFound)
}

func IsCarrierInactive(err error) bool {
	return errors.Is(err, ErrCarrierInactive)
}

func IsOrderNotFound(err error) bool {
	return errors.Is(err, ErrOrderNotFound)
}

func IsOrderAccessDenied(err error) bool {
	return errors.Is(err, ErrOrderAccessDenied)
}

func IsOrderExpired(err error) bool {
	return errors.Is(err, ErrOrderExpired)
}

func IsOrderNotEditable(err error) bool {
	return errors.Is(err, ErrOrderNotEditable)
}

func IsOrderNotExpired(err error) bool {
	return errors.Is(err, ErrOrderNotExpired)
}

func IsMethodMismatch(err error) bool {
	return errors.Is(err, ErrMethodMismatch)
}

func IsMethodUnchanged(err error) bool {
	return errors.Is(err, ErrMethodUnchanged)
}

func IsMethodChangeNotFound(err error) bool {
	return errors.Is(err, ErrMethodChangeNotFound)
}

func IsMethodChangeAlreadyDecided(err error) bool {
	return errors.Is(err, ErrMethodChangeAlreadyDecided)
}

func IsMethodChangePending(err error) bool {
	return errors.Is(err, ErrMethodChangePending)
}

func IsInvalidPricingMethod(err error) bool {
	return errors.Is(err, ErrInvalidPricingMethod)
}

func IsDocumentNotFound(err error) bool {
	return errors.Is(err, ErrDocumentNotFound)
}

func IsRendererFailed(err error) bool {
	return errors.Is(err, ErrRendererFailed)
}

func IsRegenerationBusy(err error) bool {
	return errors.Is(err, ErrRegenerationBusy)
}

func IsInvalidPage(err error) bool {
	return errors.Is(err, ErrInvalidPage)
}

func IsInvalidPageSize(err error) bool {
	return errors.Is(err, ErrInvalidPageSize)
}
