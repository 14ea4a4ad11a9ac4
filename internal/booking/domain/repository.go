package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Job, error)
	ListByCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID, upcoming bool, now time.Time) ([]Job, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status JobStatus, now time.Time) error
}
