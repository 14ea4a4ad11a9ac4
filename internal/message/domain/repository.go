package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, msg *Message) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Message, error)
	ListByCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID) ([]MessageSummary, error)
	ListReplies(ctx context.Context, db *gorm.DB, messageID snowflake.ID) ([]Reply, error)
	InsertReply(ctx context.Context, db *gorm.DB, reply *Reply) error
	SetStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status MessageStatus, now time.Time) error
	MarkRead(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	MarkAllRead(ctx context.Context, db *gorm.DB, customerID snowflake.ID) error
	CountUnread(ctx context.Context, db *gorm.DB, customerID snowflake.ID) (int64, error)
}
