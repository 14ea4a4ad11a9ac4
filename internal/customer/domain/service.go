package domain

import (
	"context"
	"errors"
)

type GetCustomerRequest struct {
	ID string
}

type Service interface {
	GetByID(ctx context.Context, req GetCustomerRequest) (Customer, error)
	GetByEmail(ctx context.Context, email string) (Customer, error)
}

var (
	ErrInvalidID    = errors.New("invalid_id")
	ErrInvalidEmail = errors.New("invalid_email")
	ErrNotFound     = errors.New("not_found")
)
