package cushypost_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/cushypost/pkg/cushypost"
)

func TestEnvironment_BaseURL(t *testing.T) {
	tests := []struct {
		env  cushypost.Environment
		want string
	}{
		{cushypost.EnvironmentTest, "https://test.api.cushypost.com"},
		{cushypost.EnvironmentProduction, "https://api.cushypost.com"},
	}

	for _, tt := range tests {
		t.Run(string(tt.env), func(t *testing.T) {
			got, err := tt.env.BaseURL()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEnvironment_BaseURLInvalid(t *testing.T) {
	for _, env := range []cushypost.Environment{"", "test", "STAGING"} {
		_, err := env.BaseURL()
		assert.True(t, errors.Is(err, cushypost.ErrInvalidEnvironment), "environment %q", env)
	}
}

func TestNew_InvalidEnvironment(t *testing.T) {
	client, err := cushypost.New(cushypost.Config{Environment: "DEV", App: "NEW_APP", UseMock: true}, nil, nil)
	assert.Nil(t, client)
	assert.True(t, errors.Is(err, cushypost.ErrInvalidEnvironment))
}

func TestNew_InitialState(t *testing.T) {
	client, err := cushypost.New(cushypost.Config{Environment: cushypost.EnvironmentProduction, App: "NEW_APP", UseMock: true}, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, cushypost.EnvironmentProduction, client.Environment())
	assert.Equal(t, "NEW_APP", client.App())
	assert.Equal(t, "https://api.cushypost.com", client.BaseURL())
	assert.Empty(t, client.Token())
	assert.Empty(t, client.RefreshToken())
	assert.Nil(t, client.From())
	assert.Nil(t, client.To())
	assert.Nil(t, client.Services())
	assert.Nil(t, client.Shipping())
	assert.Empty(t, client.CheckoutSession())
}

func TestNew_HTTPTransport(t *testing.T) {
	client, err := cushypost.New(cushypost.Config{Environment: cushypost.EnvironmentTest, App: "NEW_APP"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://test.api.cushypost.com", client.BaseURL())
}

func TestClient_AccessorsReturnCopies(t *testing.T) {
	mock := cushypost.NewMockTransport()
	client := newQuotedClient(t, mock)

	from := client.From()
	from.City = "changed"
	assert.Equal(t, "Milano", client.From().City)

	shipping := client.Shipping()
	shipping.Packages[0].Weight = 99
	assert.Equal(t, float64(2), client.Shipping().Packages[0].Weight)
}
