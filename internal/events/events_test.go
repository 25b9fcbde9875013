package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michaelcoll/card-collection-price-tracker/internal/models"
)

func TestConnect_EmptyURLDisablesPublishing(t *testing.T) {
	p, err := Connect("", "")
	require.NoError(t, err)
	assert.Nil(t, p)

	// A nil publisher accepts events and closes quietly.
	assert.NoError(t, p.SnapshotCreated(context.Background(), models.ValuationSnapshot{}))
	p.Close()
}

func TestSnapshotCreatedPayload(t *testing.T) {
	payload := SnapshotCreated{
		Date:  models.NewDate(2025, 1, 2),
		User:  "alice",
		Total: models.PriceGuide{Trend: models.Cents(1234)},
	}

	data, err := json.Marshal(payload)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "2025-01-02", decoded["date"])
	assert.Equal(t, "alice", decoded["user"])

	total, ok := decoded["total"].(map[string]any)
	require.True(t, ok)
	assert.Nil(t, total["low"])
	assert.EqualValues(t, 1234, total["trend"])
}
