package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type ListJobRequest struct {
	CustomerID snowflake.ID
	Upcoming   bool
}

type GetJobRequest struct {
	ID         string
	CustomerID snowflake.ID
}

type CancelJobRequest struct {
	ID         string
	CustomerID snowflake.ID
}

type Service interface {
	List(ctx context.Context, req ListJobRequest) ([]Job, error)
	GetByID(ctx context.Context, req GetJobRequest) (Job, error)
	Cancel(ctx context.Context, req CancelJobRequest) error
}

var (
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidCustomer = errors.New("invalid_customer")
	ErrNotFound        = errors.New("not_found")
	ErrCannotCancel    = errors.New("cannot_cancel")
)
