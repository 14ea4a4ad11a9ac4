package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/dirtfreecarpet/portal/internal/invoice/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Invoice, error) {
	var item domain.Invoice
	err := db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repo) ListByCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID, status string) ([]domain.Invoice, error) {
	stmt := db.WithContext(ctx).Model(&domain.Invoice{}).
		Where("customer_id = ?", customerID)

	if status = strings.TrimSpace(status); status != "" {
		stmt = stmt.Where("status = ?", status)
	}

	var items []domain.Invoice
	if err := stmt.Order("created_at desc, id desc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) MarkPaid(ctx context.Context, db *gorm.DB, id snowflake.ID, paymentReference string, paidAt time.Time) error {
	// Only open invoices settle. Paid and cancelled invoices must not
	// be flipped by a late or duplicate provider event.
	return db.WithContext(ctx).Exec(
		`UPDATE invoices
		 SET status = ?, paid_at = ?, payment_reference = ?, updated_at = ?
		 WHERE id = ? AND status IN (?, ?)`,
		domain.InvoiceStatusPaid,
		paidAt,
		paymentReference,
		paidAt,
		id,
		domain.InvoiceStatusSent,
		domain.InvoiceStatusOverdue,
	).Error
}
