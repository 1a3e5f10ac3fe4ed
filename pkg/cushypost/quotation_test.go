package cushypost_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/cushypost/pkg/cushypost"
)

const (
	ratePath    = "shipment/rate"
	approvePath = "quotation/approve"
)

func TestGetRates_Success(t *testing.T) {
	mock := cushypost.NewMockTransport()
	client := newQuotedClient(t, mock)

	rates, err := client.GetRates(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, rates.BestPrice)
	assert.NotEmpty(t, rates.BestTime)
	assert.Len(t, rates.List, 1)

	calls := mock.CallsTo(http.MethodPost, ratePath)
	require.Len(t, calls, 1)
	body := decodeBody(t, calls[0])
	assert.Equal(t, "NEW_APP", body["app"])
	assert.Contains(t, body, "from")
	assert.Contains(t, body, "to")
	assert.Contains(t, body, "shipping")
	assert.Contains(t, body, "services")

	shipping := body["shipping"].(map[string]any)
	assert.Equal(t, float64(5), shipping["total_weight"])
	assert.Len(t, shipping["packages"], 2)
}

func TestGetRates_Rejected(t *testing.T) {
	mock := cushypost.NewMockTransport().
		Enqueue(http.MethodPost, ratePath, &cushypost.Response{
			StatusCode: http.StatusUnprocessableEntity,
			Body:       []byte(`{"response":{"message":"invalid postcode"}}`),
		})
	client := newQuotedClient(t, mock)

	_, err := client.GetRates(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, cushypost.ErrShippingRateFailed))

	var apiErr *cushypost.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "invalid postcode", apiErr.Message)
}

func TestGetRates_MissingData(t *testing.T) {
	mock := cushypost.NewMockTransport()
	client := newTestClient(t, mock)
	require.NoError(t, client.SetFrom(context.Background(), "IT", "20121", "Milano"))

	_, err := client.GetRates(context.Background())
	assert.True(t, errors.Is(err, cushypost.ErrMissingData))
	assert.Empty(t, mock.CallsTo(http.MethodPost, ratePath))
}

func TestGetRates_MissingToken(t *testing.T) {
	mock := cushypost.NewMockTransport()
	client := newQuotedClient(t, mock)
	snap := client.Snapshot()
	snap.Config.Token = ""
	require.NoError(t, client.Load(snap))

	_, err := client.GetRates(context.Background())
	assert.True(t, errors.Is(err, cushypost.ErrMissingToken))
}

func TestApproveQuotation_CompletesLocations(t *testing.T) {
	mock := cushypost.NewMockTransport()
	client := newQuotedClient(t, mock)
	hashes := []string{client.Shipping().Packages[0].Hash, client.Shipping().Packages[1].Hash}

	data, err := client.ApproveQuotation(context.Background(), "Q1",
		cushypost.ContactDetails{Name: "Alice", Phone: "+39 02 1234", Email: "alice@example.com", Address: "Via Roma 1", City: "Milano Centro"},
		cushypost.ContactDetails{Name: "Bob", Address: "Via Po 2"},
		nil,
	)
	require.NoError(t, err)
	assert.JSONEq(t, `{"state":"WaitingForPayment"}`, string(data))

	from := client.From()
	assert.Equal(t, "Alice", from.Name)
	assert.Equal(t, "Via Roma 1", from.Address)
	assert.Equal(t, "Milano Centro", from.City)
	assert.Equal(t, "Milano Centro", from.AdministrativeAreaLevel3)

	to := client.To()
	assert.Equal(t, "Bob", to.Name)
	assert.Equal(t, "+39 02 1234", to.Phone)
	assert.Equal(t, "alice@example.com", to.Email)
	assert.Equal(t, "Milano", to.AdministrativeAreaLevel3)

	assert.Equal(t, hashes, []string{client.Shipping().Packages[0].Hash, client.Shipping().Packages[1].Hash})

	calls := mock.CallsTo(http.MethodPost, approvePath)
	require.Len(t, calls, 1)
	body := decodeBody(t, calls[0])
	assert.Equal(t, "WaitingForPayment", body["as"])
	assert.Equal(t, "Q1", body["quotation_id"])
	order := body["order"].(map[string]any)
	assert.Equal(t, "Q1", order["quotation"])
	assert.Equal(t, "Bob", order["to"].(map[string]any)["name"])
}

func TestApproveQuotation_RecipientContactsKept(t *testing.T) {
	client := newQuotedClient(t, cushypost.NewMockTransport())

	_, err := client.ApproveQuotation(context.Background(), "Q1",
		cushypost.ContactDetails{Name: "Alice", Phone: "111", Email: "alice@example.com"},
		cushypost.ContactDetails{Name: "Bob", Phone: "222", Email: "bob@example.com"},
		nil,
	)
	require.NoError(t, err)
	assert.Equal(t, "222", client.To().Phone)
	assert.Equal(t, "bob@example.com", client.To().Email)
	assert.Equal(t, "Milano", client.From().City)
}

func TestApproveQuotation_PackageOverridesRebuildShipping(t *testing.T) {
	mock := cushypost.NewMockTransport()
	client := newQuotedClient(t, mock)
	first := client.Shipping().Packages[0].Hash

	_, err := client.ApproveQuotation(context.Background(), "Q1",
		cushypost.ContactDetails{Name: "Alice"},
		cushypost.ContactDetails{Name: "Bob"},
		&cushypost.ShippingExtra{
			GoodsDesc: "toys",
			Packages:  map[string]cushypost.PackageExtra{first: {ContentDesc: "bricks"}},
		},
	)
	require.NoError(t, err)

	shipping := client.Shipping()
	assert.Equal(t, "toys", shipping.GoodsDesc)
	assert.Equal(t, "bricks", shipping.Packages[0].Content)
	assert.Equal(t, "content", shipping.Packages[1].Content)
	assert.NotEqual(t, first, shipping.Packages[0].Hash)

	sent := decodeBody(t, mock.CallsTo(http.MethodPost, approvePath)[0])
	packages := sent["order"].(map[string]any)["shipping"].(map[string]any)["packages"].([]any)
	assert.Equal(t, "bricks", packages[0].(map[string]any)["content"])
}

func TestApproveQuotation_Rejected(t *testing.T) {
	mock := cushypost.NewMockTransport().Enqueue(http.MethodPost, approvePath, status(http.StatusConflict))
	client := newQuotedClient(t, mock)

	_, err := client.ApproveQuotation(context.Background(), "Q1", cushypost.ContactDetails{}, cushypost.ContactDetails{}, nil)
	assert.True(t, errors.Is(err, cushypost.ErrApproveRateFailed))
}

func TestApproveQuotation_MissingData(t *testing.T) {
	client := newTestClient(t, cushypost.NewMockTransport())

	_, err := client.ApproveQuotation(context.Background(), "Q1", cushypost.ContactDetails{}, cushypost.ContactDetails{}, nil)
	assert.True(t, errors.Is(err, cushypost.ErrMissingData))
}
