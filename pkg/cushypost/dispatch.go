package cushypost

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// Dispatch sends one authenticated request. A 401 triggers a single token
// refresh and one retry with the new token; a second 401 is returned as-is.
func (c *Client) Dispatch(ctx context.Context, method, path string, query url.Values, body any) (*Response, error) {
	resp, err := c.send(ctx, method, path, query, body, c.token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	c.logger.Info("Access token rejected, refreshing",
		zap.String("method", method),
		zap.String("path", path),
	)
	if err := c.RefreshTokens(ctx); err != nil {
		return nil, err
	}

	return c.send(ctx, method, path, query, body, c.token)
}

// send performs a single request. An empty bearer omits the Authorization header.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, body any, bearer string) (*Response, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fail(ErrTransport).WithCause(fmt.Errorf("failed to marshal request body: %w", err))
		}
	}

	header := http.Header{}
	header.Set("Content-Type", "application/json")
	if bearer != "" {
		header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.transport.Do(ctx, &Request{
		Method: method,
		URL:    c.baseURL + "/" + strings.TrimPrefix(path, "/"),
		Query:  query,
		Header: header,
		Body:   payload,
	})
	if err != nil {
		c.logger.Error("CushyPost transport error",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, fail(ErrTransport).WithCause(err)
	}
	return resp, nil
}

// expectOK turns a dispatch outcome into an error. Dispatch-level failures
// (transport, refresh) are returned unchanged; a non-200 response becomes
// the operation's own error.
func expectOK(resp *Response, err error, sentinel *Error) error {
	if err != nil {
		return err
	}
	if !resp.OK() {
		return failResponse(sentinel, resp)
	}
	return nil
}
