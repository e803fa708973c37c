package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Status
	}{
		{name: "pending", raw: "pending", want: StatusPending},
		{name: "approved", raw: "approved", want: StatusApproved},
		{name: "rejected", raw: "rejected", want: StatusRejected},
		{name: "empty defaults to approved", raw: "", want: StatusApproved},
		{name: "unknown defaults to approved", raw: "published", want: StatusApproved},
		{name: "case sensitive", raw: "Pending", want: StatusApproved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseStatus(tt.raw))
		})
	}
}

func TestReviewJSONProductIDAsString(t *testing.T) {
	review := Review{
		ID:        "abc",
		ProductID: 123456789012345,
		Rating:    5,
		Status:    StatusPending,
	}

	data, err := json.Marshal(review)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	// Large product ids must render as decimal strings so text-based
	// consumers keep full precision.
	assert.Equal(t, "123456789012345", decoded["productId"])

	var roundTrip Review
	require.NoError(t, json.Unmarshal(data, &roundTrip))
	assert.Equal(t, review.ProductID, roundTrip.ProductID)
}

func TestReviewJSONOptionalFieldsNullWhenAbsent(t *testing.T) {
	data, err := json.Marshal(Review{ID: "abc", ProductID: 1, Rating: 3})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	for _, key := range []string{"title", "authorEmail", "productHandle"} {
		v, ok := decoded[key]
		require.True(t, ok, "key %q must be present", key)
		assert.Nil(t, v)
	}
}
