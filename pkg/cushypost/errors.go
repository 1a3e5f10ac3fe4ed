package cushypost

import (
	"errors"
	"fmt"
)

// Error codes, one per failure mode of the session workflow.
const (
	CodeInvalidEnvironment           = "INVALID_ENVIRONMENT"
	CodeLoginFailed                  = "LOGIN_FAILED"
	CodeRefreshFailed                = "REFRESH_FAILED"
	CodeMissingToken                 = "MISSING_TOKEN"
	CodeGeoDBAutoComplete            = "GEODB_AUTOCOMPLETE"
	CodeMissingFrom                  = "MISSING_FROM"
	CodeMissingData                  = "MISSING_DATA"
	CodeInvalidCollectionDate        = "INVALID_COLLECTION_DATE"
	CodeShippingRateFailed           = "SHIPPING_RATE_FAILED"
	CodeApproveRateFailed            = "APPROVE_RATE_FAILED"
	CodeSearchPaidShipmentsFailed    = "SEARCH_PAID_SHIPMENTS_FAILED"
	CodeSearchQuotationFailed        = "SEARCH_QUOTATION_FAILED"
	CodeNoQuotationFound             = "NO_QUOTATION_FOUND"
	CodeAddToCartFailed              = "ADD_TO_CART_FAILED"
	CodeRemoveFromCartFailed         = "REMOVE_FROM_CART_FAILED"
	CodeBuyCartFailed                = "BUY_CART_FAILED"
	CodeConfirmCartFailed            = "CONFIRM_CART_FAILED"
	CodeConfirmCartMissingParameters = "CONFIRM_CART_MISSING_PARAMETERS"
	CodeTransport                    = "TRANSPORT"
)

// Error is returned by every Client operation that fails.
type Error struct {
	Code       string
	Message    string
	StatusCode int
	Cause      error

	// Compensation is set when the failed operation attempted a rollback.
	Compensation *Compensation
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.StatusCode)
	}
	if e.Cause != nil {
		return fmt.Sprintf("cushypost: %s: %v", msg, e.Cause)
	}
	return "cushypost: " + msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches on the error code, so errors.Is(err, ErrLoginFailed) holds for
// any login failure regardless of status code or cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewError creates a new Error.
func NewError(code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(err error) *Error {
	e.Cause = err
	return e
}

// WithStatusCode adds the HTTP status code of the failing response.
func (e *Error) WithStatusCode(code int) *Error {
	e.StatusCode = code
	return e
}

// WithCompensation attaches the outcome of a rollback.
func (e *Error) WithCompensation(c *Compensation) *Error {
	e.Compensation = c
	return e
}

// Sentinel errors. Operations return fresh copies carrying status and cause;
// compare with errors.Is.
var (
	ErrInvalidEnvironment           = NewError(CodeInvalidEnvironment, "ENVIRONMENT NOT VALID")
	ErrLoginFailed                  = NewError(CodeLoginFailed, "LOGIN FAILED")
	ErrRefreshFailed                = NewError(CodeRefreshFailed, "REFRESH FAILED")
	ErrMissingToken                 = NewError(CodeMissingToken, "MISSING TOKENS")
	ErrGeoDBAutoComplete            = NewError(CodeGeoDBAutoComplete, "GEODB AUTOCOMPLETE FAILED")
	ErrMissingFrom                  = NewError(CodeMissingFrom, "MISSING FROM")
	ErrMissingData                  = NewError(CodeMissingData, "MISSING DATA")
	ErrInvalidCollectionDate        = NewError(CodeInvalidCollectionDate, "INVALID COLLECTION DATE")
	ErrShippingRateFailed           = NewError(CodeShippingRateFailed, "SHIPPING RATE FAILED")
	ErrApproveRateFailed            = NewError(CodeApproveRateFailed, "APPROVE RATE FAILED")
	ErrSearchPaidShipmentsFailed    = NewError(CodeSearchPaidShipmentsFailed, "SEARCH PAID SHIPMENTS FAILED")
	ErrSearchQuotationFailed        = NewError(CodeSearchQuotationFailed, "SEARCH QUOTATION FAILED")
	ErrNoQuotationFound             = NewError(CodeNoQuotationFound, "NO QUOTATION FOUND")
	ErrAddToCartFailed              = NewError(CodeAddToCartFailed, "ADD TO CART FAILED")
	ErrRemoveFromCartFailed         = NewError(CodeRemoveFromCartFailed, "REMOVE FROM CART FAILED")
	ErrBuyCartFailed                = NewError(CodeBuyCartFailed, "BUY CART FAILED")
	ErrConfirmCartFailed            = NewError(CodeConfirmCartFailed, "CONFIRM CART FAILED")
	ErrConfirmCartMissingParameters = NewError(CodeConfirmCartMissingParameters, "CONFIRM CART FAILED - MISSING PARAMETERS")
	ErrTransport                    = NewError(CodeTransport, "TRANSPORT FAILED")
)

// fail returns a copy of a sentinel that can be decorated without mutating it.
func fail(sentinel *Error) *Error {
	e := *sentinel
	return &e
}

// failResponse builds an error for a non-successful API response.
func failResponse(sentinel *Error, resp *Response) *Error {
	e := fail(sentinel)
	if resp != nil {
		e.StatusCode = resp.StatusCode
		if apiErr := parseAPIError(resp); apiErr != nil {
			e.Cause = apiErr
		}
	}
	return e
}

// ErrorCode returns the code of a cushypost error, or "" for any other error.
func ErrorCode(err error) string {
	var cpErr *Error
	if errors.As(err, &cpErr) {
		return cpErr.Code
	}
	return ""
}
