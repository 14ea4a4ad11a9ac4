package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type CreateMessageRequest struct {
	CustomerID snowflake.ID
	Subject    string
	Category   string
	Body       string
}

type ListMessagesRequest struct {
	CustomerID snowflake.ID
	// Filter is "", "active" (open/in_progress/responded) or
	// "resolved" (resolved/closed).
	Filter string
}

type GetThreadRequest struct {
	ID         string
	CustomerID snowflake.ID
}

type ReplyRequest struct {
	ID         string
	CustomerID snowflake.ID
	Body       string
}

type Service interface {
	Create(ctx context.Context, req CreateMessageRequest) (Message, error)
	List(ctx context.Context, req ListMessagesRequest) ([]MessageSummary, error)
	// GetThread returns the message with its replies and clears the
	// unread flag for the thread.
	GetThread(ctx context.Context, req GetThreadRequest) (Thread, error)
	Reply(ctx context.Context, req ReplyRequest) (Reply, error)
	UnreadCount(ctx context.Context, customerID snowflake.ID) (int64, error)
	MarkAllRead(ctx context.Context, customerID snowflake.ID) error
}

var (
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidCustomer = errors.New("invalid_customer")
	ErrInvalidSubject  = errors.New("invalid_subject")
	ErrInvalidCategory = errors.New("invalid_category")
	ErrInvalidBody     = errors.New("invalid_body")
	ErrInvalidFilter   = errors.New("invalid_filter")
	ErrNotFound        = errors.New("not_found")
	ErrThreadClosed    = errors.New("thread_closed")
)
