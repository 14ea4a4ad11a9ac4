package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Invoice, error)
	ListByCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID, status string) ([]Invoice, error)
	MarkPaid(ctx context.Context, db *gorm.DB, id snowflake.ID, paymentReference string, paidAt time.Time) error
}
