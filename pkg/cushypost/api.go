package cushypost

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Transport sends one HTTP request to the CushyPost API.
// This abstraction allows scripted implementations during testing
// and the resty-backed implementation in production.
type Transport interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// Request is a fully resolved HTTP request.
type Request struct {
	Method string
	URL    string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// Response is the part of an HTTP response the client reads.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports whether the API accepted the request.
func (r *Response) OK() bool {
	return r.StatusCode == http.StatusOK
}

// Response headers carrying the session credentials.
const (
	HeaderToken        = "X-Cushypost-JWT"
	HeaderRefreshToken = "X-Cushypost-Refresh-JWT"
)

// API paths, relative to the environment base URL.
const (
	pathLogin             = "security/v1/login"
	pathRefreshToken      = "security/refresh_token"
	pathPlaceAutocomplete = "geodb/place_autocomplete"
	pathHolidays          = "calendar/holidays"
	pathRate              = "shipment/rate"
	pathApprove           = "quotation/approve"
	pathSearch            = "shipment/search"
	pathCartItem          = "cart/item"
	pathCartBuy           = "cart/buy"
	pathCartConfirm       = "cart/confirm"
	pathLabel             = "shipment/label"
)

// ============================================================================
// Wire envelopes (bodies are reproduced exactly as the API expects them)
// ============================================================================

// envelope is the outer shape of every JSON response: {"response": {"data": ...}}.
type envelope[T any] struct {
	Response struct {
		Data T `json:"data"`
	} `json:"response"`
}

// decodeData extracts response.data from a response body.
func decodeData[T any](resp *Response) (T, error) {
	var env envelope[T]
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		var zero T
		return zero, fmt.Errorf("failed to decode response: %w", err)
	}
	return env.Response.Data, nil
}

type loginRequest struct {
	App      string `json:"app"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type appRequest struct {
	App string `json:"app"`
}

type placeAutocompleteRequest struct {
	App         string `json:"app"`
	CountryCode string `json:"country_code"`
	Sequence    string `json:"sequence"`
	Limit       int    `json:"limit"`
}

type holidaysRequest struct {
	App     string `json:"app"`
	Country string `json:"country"`
	Year    int    `json:"year"`
}

type rateRequest struct {
	App      string    `json:"app"`
	From     *Location `json:"from"`
	To       *Location `json:"to"`
	Shipping *Shipment `json:"shipping"`
	Services *Services `json:"services"`
}

type approveRequest struct {
	App         string `json:"app"`
	As          string `json:"as"`
	QuotationID string `json:"quotation_id"`
	Order       order  `json:"order"`
}

type order struct {
	Quotation string    `json:"quotation"`
	From      *Location `json:"from"`
	To        *Location `json:"to"`
	Shipping  *Shipment `json:"shipping"`
	Services  *Services `json:"services"`
}

type searchRequest struct {
	App     string         `json:"app"`
	Limit   int            `json:"limit"`
	Skip    int            `json:"skip"`
	Sort    map[string]int `json:"sort"`
	Filter  map[string]any `json:"filter"`
	Match   map[string]any `json:"match,omitempty"`
	Inspect bool           `json:"inspect,omitempty"`
}

type cartItemRequest struct {
	App string `json:"app"`
	ID  string `json:"id"`
}

type cartBuyRequest struct {
	App         string `json:"app"`
	SuccessURL  string `json:"success_url"`
	CancelURL   string `json:"cancel_url"`
	Description string `json:"description"`
}

type cartBuyResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

type cartConfirmRequest struct {
	App       string `json:"app"`
	SessionID string `json:"session_id"`
}

// APIError represents an error body returned by the CushyPost API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Message)
}

// parseAPIError extracts error information from a failed response.
func parseAPIError(resp *Response) error {
	if len(resp.Body) == 0 {
		return nil
	}

	var simpleErr struct {
		Error    string `json:"error"`
		Message  string `json:"message"`
		Response struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		} `json:"response"`
	}
	if err := json.Unmarshal(resp.Body, &simpleErr); err == nil {
		for _, msg := range []string{simpleErr.Response.Message, simpleErr.Response.Error, simpleErr.Message, simpleErr.Error} {
			if msg != "" {
				return &APIError{Status: resp.StatusCode, Message: msg}
			}
		}
	}

	return &APIError{
		Status:  resp.StatusCode,
		Message: strings.TrimSpace(string(resp.Body)),
	}
}
