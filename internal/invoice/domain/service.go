package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListInvoiceRequest struct {
	CustomerID snowflake.ID
	Status     string
}

type GetInvoiceRequest struct {
	ID string
}

type Service interface {
	List(ctx context.Context, req ListInvoiceRequest) ([]Invoice, error)
	GetByID(ctx context.Context, req GetInvoiceRequest) (Invoice, error)

	// MarkPaid transitions an invoice to paid inside the caller's
	// transaction. The settlement processor is the only caller.
	MarkPaid(ctx context.Context, tx *gorm.DB, id snowflake.ID, paymentReference string, paidAt time.Time) error
}

var (
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidCustomer = errors.New("invalid_customer")
	ErrInvalidStatus   = errors.New("invalid_status")
	ErrNotFound        = errors.New("not_found")
)
