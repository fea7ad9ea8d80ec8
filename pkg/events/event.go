package events

import (
	"time"

	"github.com/google/uuid"
)

// Event is the contract for everything published on the bus.
type Event interface {
	// EventType returns the unique code for this event (e.g. "INVOICE_PAID").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Domain event codes.
const (
	TypeSubscriptionCreated = "SUBSCRIPTION_CREATED"
	TypeSubscriptionRenewed = "SUBSCRIPTION_RENEWED"
	TypeInvoicePaid         = "INVOICE_PAID"
	TypeOrderPlaced         = "ORDER_PLACED"
	TypeOrderReady          = "ORDER_READY"
	TypeOrderFailed         = "ORDER_FAILED"
)

func NewInvoicePaid(userId, invoiceId uuid.UUID, points int64) BaseEvent {
	now := time.Now()
	return BaseEvent{
		Type: TypeInvoicePaid,
		Data: map[string]interface{}{
			"user_id":    userId.String(),
			"invoice_id": invoiceId.String(),
			"points":     points,
		},
		OccurredAt: now,
	}
}

func NewSubscriptionRenewed(userId, subscriptionId, invoiceId uuid.UUID) BaseEvent {
	now := time.Now()
	return BaseEvent{
		Type: TypeSubscriptionRenewed,
		Data: map[string]interface{}{
			"user_id":         userId.String(),
			"subscription_id": subscriptionId.String(),
			"invoice_id":      invoiceId.String(),
		},
		OccurredAt: now,
	}
}

func NewOrderPlaced(userId, orderId uuid.UUID, chargedPoints int64) BaseEvent {
	now := time.Now()
	return BaseEvent{
		Type: TypeOrderPlaced,
		Data: map[string]interface{}{
			"user_id":        userId.String(),
			"order_id":       orderId.String(),
			"charged_points": chargedPoints,
		},
		OccurredAt: now,
	}
}

func NewOrderReady(userId, orderId uuid.UUID) BaseEvent {
	now := time.Now()
	return BaseEvent{
		Type: TypeOrderReady,
		Data: map[string]interface{}{
			"user_id":  userId.String(),
			"order_id": orderId.String(),
		},
		OccurredAt: now,
	}
}

func NewOrderFailed(userId, orderId uuid.UUID, reason string) BaseEvent {
	now := time.Now()
	return BaseEvent{
		Type: TypeOrderFailed,
		Data: map[string]interface{}{
			"user_id":  userId.String(),
			"order_id": orderId.String(),
			"reason":   reason,
		},
		OccurredAt: now,
	}
}
