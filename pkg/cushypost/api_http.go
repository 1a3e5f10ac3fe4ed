package cushypost

import (
	"context"
	"fmt"
	"time"

	"resty.dev/v3"
)

// HTTPTransport is the production implementation of Transport using resty.
type HTTPTransport struct {
	client *resty.Client
}

// HTTPTransportConfig holds configuration for the HTTP transport.
type HTTPTransportConfig struct {
	Timeout   time.Duration
	UserAgent string
}

// NewHTTPTransport creates a new resty-based transport for production use.
func NewHTTPTransport(cfg HTTPTransportConfig) *HTTPTransport {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "cushypost-go/1.0"
	}

	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent)

	return &HTTPTransport{client: client}
}

// Do performs the request. Non-2xx statuses are not errors at this layer;
// only failures to obtain a response are.
func (t *HTTPTransport) Do(ctx context.Context, req *Request) (*Response, error) {
	r := t.client.R().SetContext(ctx)

	for name := range req.Header {
		r.SetHeader(name, req.Header.Get(name))
	}
	if len(req.Query) > 0 {
		r.SetQueryParamsFromValues(req.Query)
	}
	if req.Body != nil {
		r.SetBody(req.Body)
	}

	resp, err := r.Execute(req.Method, req.URL)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL, err)
	}

	return &Response{
		StatusCode: resp.StatusCode(),
		Header:     resp.Header(),
		Body:       []byte(resp.String()),
	}, nil
}

// Ensure HTTPTransport implements Transport interface
var _ Transport = (*HTTPTransport)(nil)
