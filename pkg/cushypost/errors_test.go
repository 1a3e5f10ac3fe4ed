package cushypost_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tournevent/cushypost/pkg/cushypost"
)

func TestError_Error(t *testing.T) {
	err := cushypost.NewError(cushypost.CodeLoginFailed, "LOGIN FAILED")
	assert.Equal(t, "cushypost: LOGIN FAILED", err.Error())
}

func TestError_ErrorWithStatusAndCause(t *testing.T) {
	cause := errors.New("bad credentials")
	err := cushypost.NewError(cushypost.CodeLoginFailed, "LOGIN FAILED").WithStatusCode(403).WithCause(cause)
	assert.Contains(t, err.Error(), "LOGIN FAILED (HTTP 403)")
	assert.Contains(t, err.Error(), "bad credentials")
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("network timeout")
	err := cushypost.NewError(cushypost.CodeTransport, "TRANSPORT FAILED").WithCause(cause)
	assert.True(t, errors.Is(err, cause))
}

func TestError_IsMatchesCode(t *testing.T) {
	err := cushypost.NewError(cushypost.CodeMissingToken, "different message").WithStatusCode(401)
	assert.True(t, errors.Is(err, cushypost.ErrMissingToken))
	assert.False(t, errors.Is(err, cushypost.ErrMissingData))
}

func TestError_IsThroughCause(t *testing.T) {
	err := cushypost.NewError(cushypost.CodeAddToCartFailed, "ADD TO CART FAILED").
		WithCause(cushypost.NewError(cushypost.CodeRefreshFailed, "REFRESH FAILED"))
	assert.True(t, errors.Is(err, cushypost.ErrAddToCartFailed))
	assert.True(t, errors.Is(err, cushypost.ErrRefreshFailed))
	assert.Equal(t, cushypost.CodeAddToCartFailed, cushypost.ErrorCode(err))
}

func TestErrorCode_Foreign(t *testing.T) {
	assert.Equal(t, "", cushypost.ErrorCode(errors.New("plain")))
}

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     *cushypost.Error
		message string
	}{
		{"ErrInvalidEnvironment", cushypost.ErrInvalidEnvironment, "ENVIRONMENT NOT VALID"},
		{"ErrLoginFailed", cushypost.ErrLoginFailed, "LOGIN FAILED"},
		{"ErrRefreshFailed", cushypost.ErrRefreshFailed, "REFRESH FAILED"},
		{"ErrMissingToken", cushypost.ErrMissingToken, "MISSING TOKENS"},
		{"ErrGeoDBAutoComplete", cushypost.ErrGeoDBAutoComplete, "GEODB AUTOCOMPLETE FAILED"},
		{"ErrMissingFrom", cushypost.ErrMissingFrom, "MISSING FROM"},
		{"ErrMissingData", cushypost.ErrMissingData, "MISSING DATA"},
		{"ErrShippingRateFailed", cushypost.ErrShippingRateFailed, "SHIPPING RATE FAILED"},
		{"ErrApproveRateFailed", cushypost.ErrApproveRateFailed, "APPROVE RATE FAILED"},
		{"ErrSearchPaidShipmentsFailed", cushypost.ErrSearchPaidShipmentsFailed, "SEARCH PAID SHIPMENTS FAILED"},
		{"ErrSearchQuotationFailed", cushypost.ErrSearchQuotationFailed, "SEARCH QUOTATION FAILED"},
		{"ErrNoQuotationFound", cushypost.ErrNoQuotationFound, "NO QUOTATION FOUND"},
		{"ErrAddToCartFailed", cushypost.ErrAddToCartFailed, "ADD TO CART FAILED"},
		{"ErrRemoveFromCartFailed", cushypost.ErrRemoveFromCartFailed, "REMOVE FROM CART FAILED"},
		{"ErrBuyCartFailed", cushypost.ErrBuyCartFailed, "BUY CART FAILED"},
		{"ErrConfirmCartFailed", cushypost.ErrConfirmCartFailed, "CONFIRM CART FAILED"},
		{"ErrConfirmCartMissingParameters", cushypost.ErrConfirmCartMissingParameters, "CONFIRM CART FAILED - MISSING PARAMETERS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.message, tt.err.Message)
			assert.NotEmpty(t, tt.err.Code)
		})
	}
}
