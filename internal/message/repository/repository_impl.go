package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/dirtfreecarpet/portal/internal/message/domain"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, msg *domain.Message) error {
	return db.WithContext(ctx).Create(msg).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Message, error) {
	var item domain.Message
	err := db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repo) ListByCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID) ([]domain.MessageSummary, error) {
	var items []domain.MessageSummary
	err := db.WithContext(ctx).Raw(
		`SELECT m.*,
		        (SELECT COUNT(*) FROM message_replies r WHERE r.message_id = m.id) AS reply_count
		 FROM messages m
		 WHERE m.customer_id = ?
		 ORDER BY m.created_at DESC, m.id DESC`,
		customerID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListReplies(ctx context.Context, db *gorm.DB, messageID snowflake.ID) ([]domain.Reply, error) {
	var items []domain.Reply
	err := db.WithContext(ctx).
		Where("message_id = ?", messageID).
		Order("created_at asc, id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) InsertReply(ctx context.Context, db *gorm.DB, reply *domain.Reply) error {
	return db.WithContext(ctx).Create(reply).Error
}

func (r *repo) SetStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status domain.MessageStatus, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE messages
		 SET status = ?, updated_at = ?
		 WHERE id = ?`,
		status,
		now,
		id,
	).Error
}

func (r *repo) MarkRead(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`UPDATE messages
		 SET has_unread_replies = ?
		 WHERE id = ? AND has_unread_replies = ?`,
		false, id, true,
	).Error
}

func (r *repo) MarkAllRead(ctx context.Context, db *gorm.DB, customerID snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`UPDATE messages
		 SET has_unread_replies = ?
		 WHERE customer_id = ? AND has_unread_replies = ?`,
		false, customerID, true,
	).Error
}

func (r *repo) CountUnread(ctx context.Context, db *gorm.DB, customerID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&domain.Message{}).
		Where("customer_id = ?", customerID).
		Where("has_unread_replies = ? OR status = ?", true, domain.MessageStatusResponded).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
