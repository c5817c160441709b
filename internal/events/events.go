package events

import (
	"encoding/json"
	"time"

	"github.com/cydodol-beep/shorttail-ecommerce-sub002/internal/model"

	"github.com/google/uuid"
)

// Event types published by this service.
const (
	EventOrderCreated = "OrderCreated"
)

// Envelope wraps every published event.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// OrderCreatedPayload is the payload of an OrderCreated event.
type OrderCreatedPayload struct {
	OrderID     string `json:"order_id"`
	Source      string `json:"source"`
	CashierID   string `json:"cashier_id"`
	ItemCount   int    `json:"item_count"`
	TotalAmount int64  `json:"total_amount"`
}

// NewOrderCreated builds an OrderCreated envelope for the given order.
func NewOrderCreated(producer string, order *model.Order, itemCount int) (Envelope, error) {
	payload, err := json.Marshal(OrderCreatedPayload{
		OrderID:     order.ID.String(),
		Source:      order.Source,
		CashierID:   order.CashierID,
		ItemCount:   itemCount,
		TotalAmount: order.TotalAmount,
	})
	if err != nil {
		return Envelope{}, err
	}

	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     EventOrderCreated,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		CorrelationID: order.ID.String(),
		Payload:       payload,
	}, nil
}

// PartitionKey keys messages by order id so events for one order keep
// their order within a partition.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
