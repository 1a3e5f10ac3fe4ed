package cushypost_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/cushypost/pkg/cushypost"
)

func TestHTTPTransport_Do(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/cart/item", r.URL.Path)
		assert.Equal(t, "S1", r.URL.Query().Get("id"))
		assert.Equal(t, "Bearer jwt", r.Header.Get("Authorization"))
		assert.Equal(t, "cushypost-go/1.0", r.Header.Get("User-Agent"))

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.JSONEq(t, `{"app":"NEW_APP"}`, string(body))

		w.Header().Set(cushypost.HeaderToken, "jwt-next")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"response":{"data":true}}`))
	}))
	defer server.Close()

	transport := cushypost.NewHTTPTransport(cushypost.HTTPTransportConfig{Timeout: 5 * time.Second})
	header := http.Header{}
	header.Set("Authorization", "Bearer jwt")
	header.Set("Content-Type", "application/json")

	resp, err := transport.Do(context.Background(), &cushypost.Request{
		Method: http.MethodPost,
		URL:    server.URL + "/cart/item",
		Query:  url.Values{"id": []string{"S1"}},
		Header: header,
		Body:   []byte(`{"app":"NEW_APP"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.False(t, resp.OK())
	assert.Equal(t, "jwt-next", resp.Header.Get(cushypost.HeaderToken))
	assert.JSONEq(t, `{"response":{"data":true}}`, string(resp.Body))
}

func TestHTTPTransport_ErrorStatusIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	transport := cushypost.NewHTTPTransport(cushypost.HTTPTransportConfig{})
	resp, err := transport.Do(context.Background(), &cushypost.Request{Method: http.MethodGet, URL: server.URL})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHTTPTransport_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	addr := server.URL
	server.Close()

	transport := cushypost.NewHTTPTransport(cushypost.HTTPTransportConfig{Timeout: time.Second})
	_, err := transport.Do(context.Background(), &cushypost.Request{Method: http.MethodGet, URL: addr})
	assert.Error(t, err)
}
