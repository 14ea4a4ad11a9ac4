package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	bookingdomain "github.com/dirtfreecarpet/portal/internal/booking/domain"
)

type HistoryRequest struct {
	CustomerID snowflake.ID
}

type History struct {
	Records []ServiceRecord `json:"records"`
	Stats   HistoryStats    `json:"stats"`
}

type Service interface {
	// History returns the customer's completed visits, newest first,
	// with their photos and summary stats.
	History(ctx context.Context, req HistoryRequest) (History, error)
}

type Repository interface {
	ListCompletedJobs(ctx context.Context, db *gorm.DB, customerID snowflake.ID) ([]bookingdomain.Job, error)
	ListPhotosByJobs(ctx context.Context, db *gorm.DB, jobIDs []snowflake.ID) ([]JobPhoto, error)
}

var ErrInvalidCustomer = errors.New("invalid_customer")
