package domain

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// ErrUnknownTemplate is returned when an enqueue names a template the
// renderer does not know.
var ErrUnknownTemplate = errors.New("notification: unknown template")

// EnqueueRequest describes an email to queue for delivery.
type EnqueueRequest struct {
	Recipient string
	Subject   string
	Template  string
	Data      map[string]any
}

// Service queues emails and dispatches the pending backlog.
type Service interface {
	// Enqueue writes an outbox row. When tx is non-nil the row joins
	// the caller's transaction and is only visible after commit.
	Enqueue(ctx context.Context, tx *gorm.DB, req EnqueueRequest) (*EmailMessage, error)

	// DispatchPending renders and sends due pending messages, up to
	// the configured batch size. Returns the number sent.
	DispatchPending(ctx context.Context) (int, error)
}
