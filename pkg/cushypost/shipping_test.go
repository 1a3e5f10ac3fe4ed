package cushypost_test

import (
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/cushypost/pkg/cushypost"
)

var hashPattern = regexp.MustCompile(`^[0-9a-f]{32}$`)

func TestSetShipping_Empty(t *testing.T) {
	client := newTestClient(t, cushypost.NewMockTransport())

	err := client.SetShipping(nil, "books", "")
	assert.True(t, errors.Is(err, cushypost.ErrMissingData))
	assert.Nil(t, client.Shipping())
}

func TestSetShipping_Defaults(t *testing.T) {
	client := newTestClient(t, cushypost.NewMockTransport())

	require.NoError(t, client.SetShipping([]cushypost.Package{
		{Height: 10, Width: 20, Length: 30, Weight: 2.7},
		{Type: "Pallet", Height: 100, Width: 80, Length: 120, Weight: 3.9, Content: "chairs"},
	}, "", ""))

	shipping := client.Shipping()
	assert.Equal(t, 5, shipping.TotalWeight)
	assert.Equal(t, "content", shipping.GoodsDesc)
	assert.Equal(t, "All", shipping.Product)
	require.Len(t, shipping.Packages, 2)

	assert.Equal(t, "Parcel", shipping.Packages[0].Type)
	assert.Equal(t, "content", shipping.Packages[0].Content)
	assert.Equal(t, 2.7, shipping.Packages[0].Weight)
	assert.Equal(t, "Pallet", shipping.Packages[1].Type)
	assert.Equal(t, "chairs", shipping.Packages[1].Content)

	for _, p := range shipping.Packages {
		assert.Regexp(t, hashPattern, p.Hash)
	}
	assert.NotEqual(t, shipping.Packages[0].Hash, shipping.Packages[1].Hash)
}

func TestSetShipping_RebuildChangesHashes(t *testing.T) {
	client := newTestClient(t, cushypost.NewMockTransport())
	packages := []cushypost.Package{{Height: 1, Width: 1, Length: 1, Weight: 1}}

	require.NoError(t, client.SetShipping(packages, "books", ""))
	first := client.Shipping().Packages[0].Hash
	require.NoError(t, client.SetShipping(packages, "books", ""))

	assert.NotEqual(t, first, client.Shipping().Packages[0].Hash)
}

func TestSetShipping_SpecialInstructions(t *testing.T) {
	tests := []struct {
		name      string
		env       cushypost.Environment
		requested string
		want      string
	}{
		{"test environment ignores request", cushypost.EnvironmentTest, "Fragile", "Questo è solo un test. Si prega di cancellare!"},
		{"test environment default", cushypost.EnvironmentTest, "", "Questo è solo un test. Si prega di cancellare!"},
		{"production request", cushypost.EnvironmentProduction, "Fragile", "Fragile"},
		{"production default", cushypost.EnvironmentProduction, "", "Nessuna"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClientIn(t, tt.env, cushypost.NewMockTransport())

			require.NoError(t, client.SetShipping([]cushypost.Package{{Weight: 1}}, "books", tt.requested))
			assert.Equal(t, tt.want, client.Shipping().SpecialInstructions)
		})
	}
}
