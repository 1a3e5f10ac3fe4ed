package cushypost_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tournevent/cushypost/pkg/cushypost"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// wednesday is 2024-05-08, a Wednesday, with sub-second noise.
var wednesday = time.Date(2024, time.May, 8, 14, 3, 22, 500_000_000, time.UTC)

func newTestClient(t *testing.T, mock *cushypost.MockTransport) *cushypost.Client {
	t.Helper()
	return newTestClientIn(t, cushypost.EnvironmentTest, mock)
}

func newTestClientIn(t *testing.T, env cushypost.Environment, mock *cushypost.MockTransport) *cushypost.Client {
	t.Helper()
	client, err := cushypost.NewWithTransport(
		cushypost.Config{
			Environment:  env,
			App:          "NEW_APP",
			Token:        "token",
			RefreshToken: "refresh_token",
		},
		mock,
		otelzap.New(zap.NewNop()),
		nil,
	)
	require.NoError(t, err)
	return client.WithClock(func() time.Time { return wednesday })
}

// newQuotedClient returns a client with both locations, services and
// shipping set from the mock's default replies.
func newQuotedClient(t *testing.T, mock *cushypost.MockTransport) *cushypost.Client {
	t.Helper()
	client := newTestClient(t, mock)
	ctx := context.Background()

	require.NoError(t, client.SetFrom(ctx, "IT", "20121", "Milano"))
	require.NoError(t, client.SetTo(ctx, "IT", "00184", "Roma"))
	require.NoError(t, client.SetServices(ctx, cushypost.ServicesRequest{Year: 2024}))
	require.NoError(t, client.SetShipping([]cushypost.Package{
		{Height: 10, Width: 20, Length: 30, Weight: 2},
		{Height: 15, Width: 15, Length: 15, Weight: 3},
	}, "books", ""))
	return client
}

func lookupRecord(id, postcode, city string, lng, lat float64) cushypost.LookupRecord {
	return cushypost.LookupRecord{
		ID:       id,
		Country:  "IT",
		Province: "MI",
		Region:   "Lombardia",
		Postcode: postcode,
		City:     city,
		Location: cushypost.GeoPoint{Type: "Point", Coordinates: []float64{lng, lat}},
	}
}

func decodeBody(t *testing.T, req *cushypost.Request) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(req.Body, &body))
	return body
}

func ok(data any) *cushypost.Response {
	return cushypost.JSONResponse(http.StatusOK, data)
}

func status(code int) *cushypost.Response {
	return cushypost.StatusResponse(code)
}
