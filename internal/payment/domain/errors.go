package domain

import "errors"

var (
	ErrInvalidEvent          = errors.New("invalid_event")
	ErrInvalidProvider       = errors.New("invalid_provider")
	ErrProviderNotFound      = errors.New("provider_not_found")
	ErrInvalidPayload        = errors.New("invalid_payload")
	ErrInvalidSignature      = errors.New("invalid_signature")
	ErrInvalidCustomer       = errors.New("invalid_customer")
	ErrInvalidCurrency       = errors.New("invalid_currency")
	ErrInvalidAmount         = errors.New("invalid_amount")
	ErrInvalidConfig         = errors.New("invalid_config")
	ErrEventAlreadyProcessed = errors.New("event_already_processed")

	// ErrEventIgnored marks provider event types the adapter does not
	// settle. Ignored events are acknowledged, never retried.
	ErrEventIgnored = errors.New("event_ignored")
)
