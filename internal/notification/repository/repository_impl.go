package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/dirtfreecarpet/portal/internal/notification/domain"
)

type repo struct{}

// Provide returns the outbox repository.
func Provide() domain.Repository { return &repo{} }

func (r *repo) Insert(ctx context.Context, db *gorm.DB, msg *domain.EmailMessage) error {
	return db.WithContext(ctx).Create(msg).Error
}

func (r *repo) ListDue(ctx context.Context, db *gorm.DB, now time.Time, limit int) ([]domain.EmailMessage, error) {
	var msgs []domain.EmailMessage
	err := db.WithContext(ctx).
		Where("status = ? AND next_attempt_at <= ?", domain.EmailStatusPending, now).
		Order("next_attempt_at ASC").
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *repo) MarkSent(ctx context.Context, db *gorm.DB, id int64, sentAt time.Time) error {
	return db.WithContext(ctx).Exec(`
		UPDATE email_outbox
		SET status = ?, sent_at = ?, updated_at = ?
		WHERE id = ?
	`, domain.EmailStatusSent, sentAt, sentAt, id).Error
}

func (r *repo) MarkFailed(ctx context.Context, db *gorm.DB, id int64, attempts int, maxAttempts int, lastError string, nextAttemptAt time.Time) error {
	status := domain.EmailStatusPending
	if attempts >= maxAttempts {
		status = domain.EmailStatusFailed
	}
	return db.WithContext(ctx).Exec(`
		UPDATE email_outbox
		SET status = ?, attempts = ?, last_error = ?, next_attempt_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, status, attempts, lastError, nextAttemptAt, id).Error
}
