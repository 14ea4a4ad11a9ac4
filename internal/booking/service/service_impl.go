package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	bookingdomain "github.com/dirtfreecarpet/portal/internal/booking/domain"
	"github.com/dirtfreecarpet/portal/internal/clock"
	customerdomain "github.com/dirtfreecarpet/portal/internal/customer/domain"
	notificationdomain "github.com/dirtfreecarpet/portal/internal/notification/domain"
)

type Params struct {
	fx.In

	DB              *gorm.DB
	Log             *zap.Logger
	Clock           clock.Clock
	Repo            bookingdomain.Repository
	CustomerSvc     customerdomain.Service
	NotificationSvc notificationdomain.Service
}

type Service struct {
	db              *gorm.DB
	log             *zap.Logger
	clock           clock.Clock
	repo            bookingdomain.Repository
	customerSvc     customerdomain.Service
	notificationSvc notificationdomain.Service
}

func New(p Params) bookingdomain.Service {
	return &Service{
		db:              p.DB,
		log:             p.Log.Named("booking.service"),
		clock:           p.Clock,
		repo:            p.Repo,
		customerSvc:     p.CustomerSvc,
		notificationSvc: p.NotificationSvc,
	}
}

func (s *Service) List(ctx context.Context, req bookingdomain.ListJobRequest) ([]bookingdomain.Job, error) {
	if req.CustomerID == 0 {
		return nil, bookingdomain.ErrInvalidCustomer
	}
	return s.repo.ListByCustomer(ctx, s.db, req.CustomerID, req.Upcoming, s.clock.Now().UTC())
}

func (s *Service) GetByID(ctx context.Context, req bookingdomain.GetJobRequest) (bookingdomain.Job, error) {
	job, err := s.find(ctx, req.ID, req.CustomerID)
	if err != nil {
		return bookingdomain.Job{}, err
	}
	return *job, nil
}

func (s *Service) Cancel(ctx context.Context, req bookingdomain.CancelJobRequest) error {
	job, err := s.find(ctx, req.ID, req.CustomerID)
	if err != nil {
		return err
	}

	switch job.Status {
	case bookingdomain.JobStatusCompleted, bookingdomain.JobStatusCancelled, bookingdomain.JobStatusInProgress:
		return bookingdomain.ErrCannotCancel
	}

	now := s.clock.Now().UTC()
	if err := s.repo.UpdateStatus(ctx, s.db, job.ID, bookingdomain.JobStatusCancelled, now); err != nil {
		return err
	}

	s.log.Info("appointment cancelled",
		zap.String("job_id", job.ID.String()),
		zap.String("customer_id", job.CustomerID.String()),
	)

	s.enqueueCancellationEmail(ctx, job)
	return nil
}

// enqueueCancellationEmail queues the cancellation notice. The cancel
// itself already succeeded, so a queueing failure is only logged.
func (s *Service) enqueueCancellationEmail(ctx context.Context, job *bookingdomain.Job) {
	customer, err := s.customerSvc.GetByID(ctx, customerdomain.GetCustomerRequest{ID: job.CustomerID.String()})
	if err != nil {
		s.log.Warn("cancellation email skipped, customer lookup failed",
			zap.String("job_id", job.ID.String()),
			zap.Error(err),
		)
		return
	}

	_, err = s.notificationSvc.Enqueue(ctx, nil, notificationdomain.EnqueueRequest{
		Recipient: customer.Email,
		Subject:   "Appointment Cancelled - Dirt Free Carpet",
		Template:  notificationdomain.TemplateAppointmentCancelled,
		Data: map[string]any{
			"CustomerName": customer.Name,
			"ServiceDate":  job.ScheduledDate.Format("January 2, 2006"),
			"ServiceTime":  job.ScheduledTime,
			"Services":     strings.Join(job.Services, ", "),
		},
	})
	if err != nil {
		s.log.Warn("cancellation email enqueue failed",
			zap.String("job_id", job.ID.String()),
			zap.Error(err),
		)
	}
}

func (s *Service) find(ctx context.Context, rawID string, customerID snowflake.ID) (*bookingdomain.Job, error) {
	if customerID == 0 {
		return nil, bookingdomain.ErrInvalidCustomer
	}
	id, err := snowflake.ParseString(rawID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingdomain.ErrInvalidID, rawID)
	}
	job, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if job == nil || job.CustomerID != customerID {
		return nil, bookingdomain.ErrNotFound
	}
	return job, nil
}
