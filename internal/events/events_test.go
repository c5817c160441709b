package events

import (
	"encoding/json"
	"testing"

	"github.com/cydodol-beep/shorttail-ecommerce-sub002/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrderCreated(t *testing.T) {
	order := &model.Order{
		ID:          uuid.New(),
		Source:      model.SourcePOS,
		CashierID:   "cashier-1",
		TotalAmount: 95000,
	}

	env, err := NewOrderCreated("pos-api", order, 4)
	require.NoError(t, err)

	assert.NotEmpty(t, env.EventID)
	assert.Equal(t, EventOrderCreated, env.EventType)
	assert.Equal(t, 1, env.EventVersion)
	assert.Equal(t, "pos-api", env.Producer)
	assert.Equal(t, order.ID.String(), env.CorrelationID)
	assert.False(t, env.OccurredAt.IsZero())

	var payload OrderCreatedPayload
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, order.ID.String(), payload.OrderID)
	assert.Equal(t, model.SourcePOS, payload.Source)
	assert.Equal(t, "cashier-1", payload.CashierID)
	assert.Equal(t, 4, payload.ItemCount)
	assert.Equal(t, int64(95000), payload.TotalAmount)
}

func TestPartitionKey(t *testing.T) {
	assert.Equal(t, []byte("abc"), PartitionKey("abc"))
}
