package cushypost

import (
	"context"
	"net/http"

	"go.uber.org/zap"
)

// Login starts a session and stores the tokens returned in the response
// headers. On failure the held tokens are left untouched.
func (c *Client) Login(ctx context.Context, username, password string) (err error) {
	ctx, done := c.observe(ctx, "Login")
	defer done(&err)

	c.logger.Info("Logging in to CushyPost",
		zap.String("app", c.app),
		zap.String("environment", string(c.environment)),
	)

	resp, err := c.send(ctx, http.MethodPost, pathLogin, nil, loginRequest{
		App:      c.app,
		Username: username,
		Password: password,
	}, "")
	if err != nil {
		return fail(ErrLoginFailed).WithCause(err)
	}
	if !resp.OK() {
		c.logger.Error("CushyPost login rejected", zap.Int("status", resp.StatusCode))
		return failResponse(ErrLoginFailed, resp)
	}

	c.storeTokens(resp)
	return nil
}

// RefreshTokens replaces both tokens using the refresh token as credential.
func (c *Client) RefreshTokens(ctx context.Context) (err error) {
	ctx, done := c.observe(ctx, "RefreshTokens")
	defer done(&err)

	if c.refreshToken == "" {
		return fail(ErrMissingToken)
	}

	resp, err := c.send(ctx, http.MethodPost, pathRefreshToken, nil, appRequest{App: c.app}, c.refreshToken)
	if err != nil {
		return fail(ErrRefreshFailed).WithCause(err)
	}
	if !resp.OK() {
		c.logger.Error("CushyPost token refresh rejected", zap.Int("status", resp.StatusCode))
		return failResponse(ErrRefreshFailed, resp)
	}

	c.storeTokens(resp)
	return nil
}

func (c *Client) storeTokens(resp *Response) {
	c.token = resp.Header.Get(HeaderToken)
	c.refreshToken = resp.Header.Get(HeaderRefreshToken)
}
