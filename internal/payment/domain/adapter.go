package domain

import (
	"context"
	"net/http"
)

// AdapterConfig carries provider credentials to an adapter factory.
type AdapterConfig struct {
	Provider string
	Config   map[string]any
}

// PaymentAdapter verifies and normalizes one provider's webhooks.
type PaymentAdapter interface {
	// Verify checks the webhook signature against the raw body.
	Verify(ctx context.Context, payload []byte, headers http.Header) error

	// Parse normalizes the payload into a canonical Event, or returns
	// ErrEventIgnored for event types this service does not settle.
	Parse(ctx context.Context, payload []byte) (*Event, error)
}

// AdapterFactory builds adapters for one provider.
type AdapterFactory interface {
	Provider() string
	NewAdapter(cfg AdapterConfig) (PaymentAdapter, error)
}
