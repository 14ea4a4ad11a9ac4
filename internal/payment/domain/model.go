// Package domain defines the canonical payment event model. Provider
// webhooks are normalized into Event by an adapter, then settled by the
// payment service exactly once per (provider, provider_event_id).
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// EventRecord is the idempotency row for a received webhook event. The
// unique index on (provider, provider_event_id) makes redelivery a
// no-op.
type EventRecord struct {
	ID              snowflake.ID   `json:"id" gorm:"primaryKey"`
	Provider        string         `json:"provider" gorm:"type:text;not null"`
	ProviderEventID string         `json:"provider_event_id" gorm:"type:text;not null"`
	EventType       string         `json:"event_type" gorm:"type:text;not null"`
	CustomerID      snowflake.ID   `json:"customer_id" gorm:"not null;index"`
	Payload         datatypes.JSON `json:"payload" gorm:"type:jsonb;not null"`
	ReceivedAt      time.Time      `json:"received_at" gorm:"not null"`
	ProcessedAt     *time.Time     `json:"processed_at"`
}

func (EventRecord) TableName() string { return "payment_events" }

const (
	EventTypePaymentSucceeded = "payment_succeeded"
	EventTypePaymentFailed    = "payment_failed"
)

// Event is the canonical payment event parsed by adapters.
type Event struct {
	Provider         string
	ProviderEventID  string
	PaymentReference string
	Type             string
	CustomerID       snowflake.ID
	InvoiceID        *snowflake.ID
	Amount           int64
	Currency         string
	OccurredAt       time.Time
	RawPayload       []byte

	// FailureDetail carries the provider's decline reason on
	// payment_failed events.
	FailureDetail string
}
