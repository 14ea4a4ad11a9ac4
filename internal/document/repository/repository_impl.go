package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	bookingdomain "github.com/dirtfreecarpet/portal/internal/booking/domain"
	"github.com/dirtfreecarpet/portal/internal/document/domain"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) ListCompletedJobs(ctx context.Context, db *gorm.DB, customerID snowflake.ID) ([]bookingdomain.Job, error) {
	var items []bookingdomain.Job
	err := db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Where("status = ?", bookingdomain.JobStatusCompleted).
		Order("scheduled_date desc, id desc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListPhotosByJobs(ctx context.Context, db *gorm.DB, jobIDs []snowflake.ID) ([]domain.JobPhoto, error) {
	if len(jobIDs) == 0 {
		return nil, nil
	}

	var items []domain.JobPhoto
	err := db.WithContext(ctx).
		Where("job_id IN ?", jobIDs).
		Order("created_at asc, id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
