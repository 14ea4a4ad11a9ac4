package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/dirtfreecarpet/portal/internal/invoice/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("invoice.service"),
		repo: p.Repo,
	}
}

func (s *Service) List(ctx context.Context, req domain.ListInvoiceRequest) ([]domain.Invoice, error) {
	if req.CustomerID == 0 {
		return nil, domain.ErrInvalidCustomer
	}

	status := strings.TrimSpace(req.Status)
	if status != "" && !validStatus(status) {
		return nil, domain.ErrInvalidStatus
	}

	return s.repo.ListByCustomer(ctx, s.db, req.CustomerID, status)
}

func (s *Service) GetByID(ctx context.Context, req domain.GetInvoiceRequest) (domain.Invoice, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return domain.Invoice{}, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Invoice{}, err
	}
	if item == nil {
		return domain.Invoice{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) MarkPaid(ctx context.Context, tx *gorm.DB, id snowflake.ID, paymentReference string, paidAt time.Time) error {
	if id == 0 {
		return domain.ErrInvalidID
	}
	if tx == nil {
		tx = s.db
	}
	return s.repo.MarkPaid(ctx, tx, id, strings.TrimSpace(paymentReference), paidAt.UTC())
}

func validStatus(status string) bool {
	switch domain.InvoiceStatus(status) {
	case domain.InvoiceStatusDraft,
		domain.InvoiceStatusSent,
		domain.InvoiceStatusPaid,
		domain.InvoiceStatusOverdue,
		domain.InvoiceStatusCancelled:
		return true
	default:
		return false
	}
}
