package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Repository persists outbox rows.
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, msg *EmailMessage) error

	// ListDue returns pending messages whose next attempt time has
	// passed, oldest first.
	ListDue(ctx context.Context, db *gorm.DB, now time.Time, limit int) ([]EmailMessage, error)

	MarkSent(ctx context.Context, db *gorm.DB, id int64, sentAt time.Time) error

	// MarkFailed records a failed attempt. The status flips to failed
	// once attempts reaches maxAttempts, otherwise the message stays
	// pending with a backed-off next attempt time.
	MarkFailed(ctx context.Context, db *gorm.DB, id int64, attempts int, maxAttempts int, lastError string, nextAttemptAt time.Time) error
}
