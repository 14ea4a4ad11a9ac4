package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/dirtfreecarpet/portal/internal/booking/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Job, error) {
	var item domain.Job
	err := db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repo) ListByCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID, upcoming bool, now time.Time) ([]domain.Job, error) {
	stmt := db.WithContext(ctx).Model(&domain.Job{}).
		Where("customer_id = ?", customerID)

	if upcoming {
		stmt = stmt.
			Where("scheduled_date >= ?", now.Truncate(24*time.Hour)).
			Where("status NOT IN ?", []domain.JobStatus{domain.JobStatusCompleted, domain.JobStatusCancelled}).
			Order("scheduled_date asc, scheduled_time asc")
	} else {
		stmt = stmt.Order("scheduled_date desc, id desc")
	}

	var items []domain.Job
	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status domain.JobStatus, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE jobs
		 SET status = ?, updated_at = ?
		 WHERE id = ?`,
		status,
		now,
		id,
	).Error
}
