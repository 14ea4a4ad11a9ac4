package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	auditdomain "github.com/dirtfreecarpet/portal/internal/audit/domain"
	"github.com/dirtfreecarpet/portal/internal/clock"
	"github.com/dirtfreecarpet/portal/internal/config"
	customerdomain "github.com/dirtfreecarpet/portal/internal/customer/domain"
	invoicedomain "github.com/dirtfreecarpet/portal/internal/invoice/domain"
	loyaltydomain "github.com/dirtfreecarpet/portal/internal/loyalty/domain"
	notificationdomain "github.com/dirtfreecarpet/portal/internal/notification/domain"
	obsmetrics "github.com/dirtfreecarpet/portal/internal/observability/metrics"
	paymentdomain "github.com/dirtfreecarpet/portal/internal/payment/domain"
)

type Params struct {
	fx.In

	DB              *gorm.DB
	Log             *zap.Logger
	Clock           clock.Clock
	GenID           *snowflake.Node
	Config          config.Config
	Repo            paymentdomain.Repository
	CustomerSvc     customerdomain.Service
	InvoiceSvc      invoicedomain.Service
	LoyaltySvc      loyaltydomain.Service
	NotificationSvc notificationdomain.Service
	AuditSvc        auditdomain.Service
	ObsMetrics      *obsmetrics.Metrics `optional:"true"`
}

// Service settles canonical payment events: it marks the invoice paid
// and awards loyalty points in one transaction, queues the customer
// emails and writes the audit trail.
type Service struct {
	db              *gorm.DB
	log             *zap.Logger
	clock           clock.Clock
	genID           *snowflake.Node
	cfg             config.Config
	repo            paymentdomain.Repository
	customerSvc     customerdomain.Service
	invoiceSvc      invoicedomain.Service
	loyaltySvc      loyaltydomain.Service
	notificationSvc notificationdomain.Service
	auditSvc        auditdomain.Service
	obsMetrics      *obsmetrics.Metrics
}

func NewService(p Params) *Service {
	return &Service{
		db:              p.DB,
		log:             p.Log.Named("payment.service"),
		clock:           p.Clock,
		genID:           p.GenID,
		cfg:             p.Config,
		repo:            p.Repo,
		customerSvc:     p.CustomerSvc,
		invoiceSvc:      p.InvoiceSvc,
		loyaltySvc:      p.LoyaltySvc,
		notificationSvc: p.NotificationSvc,
		auditSvc:        p.AuditSvc,
		obsMetrics:      p.ObsMetrics,
	}
}

func (s *Service) ProcessEvent(ctx context.Context, event *paymentdomain.Event) error {
	if err := validateEvent(event); err != nil {
		return err
	}
	if !json.Valid(event.RawPayload) {
		return paymentdomain.ErrInvalidPayload
	}

	now := s.clock.Now().UTC()
	received := paymentdomain.EventRecord{
		ID:              s.genID.Generate(),
		Provider:        event.Provider,
		ProviderEventID: event.ProviderEventID,
		EventType:       event.Type,
		CustomerID:      event.CustomerID,
		Payload:         datatypes.JSON(event.RawPayload),
		ReceivedAt:      now,
	}

	inserted, err := s.repo.InsertEvent(ctx, s.db, &received)
	if err != nil {
		return err
	}
	stored := &received
	if !inserted {
		stored, err = s.repo.FindEvent(ctx, s.db, event.Provider, event.ProviderEventID)
		if err != nil {
			return err
		}
		if stored == nil {
			return paymentdomain.ErrInvalidEvent
		}
		if stored.ProcessedAt != nil {
			return paymentdomain.ErrEventAlreadyProcessed
		}
	}

	switch event.Type {
	case paymentdomain.EventTypePaymentSucceeded:
		if err := s.settlePayment(ctx, stored, event); err != nil {
			return err
		}
	case paymentdomain.EventTypePaymentFailed:
		if err := s.recordFailure(ctx, event); err != nil {
			return err
		}
	default:
		return paymentdomain.ErrInvalidEvent
	}

	if err := s.repo.MarkProcessed(ctx, s.db, stored.ID, s.clock.Now().UTC()); err != nil {
		return err
	}

	if inserted && s.obsMetrics != nil {
		s.obsMetrics.RecordPaymentEvent(ctx, event.Provider, event.Type)
	}

	return nil
}

func validateEvent(event *paymentdomain.Event) error {
	if event == nil {
		return paymentdomain.ErrInvalidEvent
	}
	event.Provider = strings.ToLower(strings.TrimSpace(event.Provider))
	if event.Provider == "" {
		return paymentdomain.ErrInvalidProvider
	}
	event.ProviderEventID = strings.TrimSpace(event.ProviderEventID)
	if event.ProviderEventID == "" {
		return paymentdomain.ErrInvalidEvent
	}
	event.Type = strings.TrimSpace(event.Type)
	if event.Type == "" {
		return paymentdomain.ErrInvalidEvent
	}
	if event.CustomerID == 0 {
		return paymentdomain.ErrInvalidCustomer
	}
	currency := strings.TrimSpace(event.Currency)
	if currency == "" {
		return paymentdomain.ErrInvalidCurrency
	}
	event.Currency = strings.ToUpper(currency)
	if event.OccurredAt.IsZero() {
		return paymentdomain.ErrInvalidEvent
	}
	switch event.Type {
	case paymentdomain.EventTypePaymentSucceeded:
		if event.Amount <= 0 {
			return paymentdomain.ErrInvalidAmount
		}
	case paymentdomain.EventTypePaymentFailed:
	default:
		return paymentdomain.ErrInvalidEvent
	}
	return nil
}

// settlePayment marks the invoice paid and awards points inside one
// transaction, then queues the receipt and points emails on the outbox.
// Missing customer or invoice rows degrade the settlement (no email, no
// points) without failing it; the money already moved.
func (s *Service) settlePayment(ctx context.Context, stored *paymentdomain.EventRecord, event *paymentdomain.Event) error {
	customer := s.lookupCustomer(ctx, event.CustomerID)
	invoice := s.lookupInvoice(ctx, event.InvoiceID)

	pointsToAward := event.Amount / 100 * s.cfg.Loyalty.EarnRate
	description := pointsDescription(event)

	var award *loyaltydomain.AwardResult
	paidAt := s.clock.Now().UTC()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if invoice != nil {
			if err := s.invoiceSvc.MarkPaid(ctx, tx, invoice.ID, event.PaymentReference, paidAt); err != nil {
				return err
			}
		}

		if pointsToAward > 0 {
			result, err := s.loyaltySvc.Award(ctx, tx, loyaltydomain.AwardRequest{
				CustomerID:  event.CustomerID,
				Points:      pointsToAward,
				Type:        loyaltydomain.TransactionEarned,
				Description: description,
			})
			if errors.Is(err, loyaltydomain.ErrNoAccount) {
				s.log.Warn("loyalty account missing, points skipped",
					zap.String("customer_id", event.CustomerID.String()),
					zap.String("payment_reference", event.PaymentReference),
				)
			} else if err != nil {
				return err
			} else {
				award = &result
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if customer != nil {
		s.queueSettlementEmails(ctx, customer, invoice, event, paidAt, award)
	}

	s.writeSettlementAudit(ctx, event, award)

	s.log.Info("payment settled",
		zap.String("provider", event.Provider),
		zap.String("payment_reference", event.PaymentReference),
		zap.String("customer_id", event.CustomerID.String()),
		zap.Int64("amount", event.Amount),
		zap.Int64("points_awarded", awardedPoints(award)),
	)
	return nil
}

func (s *Service) recordFailure(ctx context.Context, event *paymentdomain.Event) error {
	s.log.Warn("payment failed",
		zap.String("provider", event.Provider),
		zap.String("payment_reference", event.PaymentReference),
		zap.String("customer_id", event.CustomerID.String()),
		zap.String("failure_detail", event.FailureDetail),
	)

	metadata := map[string]any{
		"payment_reference": event.PaymentReference,
		"amount":            event.Amount,
		"currency":          event.Currency,
		"status":            "failure",
	}
	if event.FailureDetail != "" {
		metadata["failure_detail"] = event.FailureDetail
	}

	actorID := event.CustomerID.String()
	return s.auditSvc.AuditLog(ctx,
		string(auditdomain.ActorTypeCustomer), &actorID,
		auditdomain.ActionPaymentFailed,
		"payment", &event.PaymentReference,
		metadata,
	)
}

func (s *Service) lookupCustomer(ctx context.Context, id snowflake.ID) *customerdomain.Customer {
	customer, err := s.customerSvc.GetByID(ctx, customerdomain.GetCustomerRequest{ID: id.String()})
	if err != nil {
		s.log.Warn("settlement customer lookup failed",
			zap.String("customer_id", id.String()),
			zap.Error(err),
		)
		return nil
	}
	return &customer
}

func (s *Service) lookupInvoice(ctx context.Context, id *snowflake.ID) *invoicedomain.Invoice {
	if id == nil || *id == 0 {
		return nil
	}
	invoice, err := s.invoiceSvc.GetByID(ctx, invoicedomain.GetInvoiceRequest{ID: id.String()})
	if err != nil {
		s.log.Warn("settlement invoice lookup failed",
			zap.String("invoice_id", id.String()),
			zap.Error(err),
		)
		return nil
	}
	return &invoice
}

func (s *Service) queueSettlementEmails(
	ctx context.Context,
	customer *customerdomain.Customer,
	invoice *invoicedomain.Invoice,
	event *paymentdomain.Event,
	paidAt time.Time,
	award *loyaltydomain.AwardResult,
) {
	if invoice != nil {
		_, err := s.notificationSvc.Enqueue(ctx, nil, notificationdomain.EnqueueRequest{
			Recipient: customer.Email,
			Subject:   "Payment Receipt - Dirt Free Carpet",
			Template:  notificationdomain.TemplatePaymentReceipt,
			Data: map[string]any{
				"CustomerName":  customer.Name,
				"InvoiceNumber": invoice.InvoiceNumber,
				"Amount":        fmt.Sprintf("%.2f", float64(event.Amount)/100),
				"PaymentDate":   paidAt.Format("Jan 2, 2006"),
			},
		})
		if err != nil {
			s.log.Warn("receipt email enqueue failed",
				zap.String("payment_reference", event.PaymentReference),
				zap.Error(err),
			)
		}
	}

	if award != nil {
		rewardValue := float64(award.Points) * s.cfg.Loyalty.PointValueUSD
		_, err := s.notificationSvc.Enqueue(ctx, nil, notificationdomain.EnqueueRequest{
			Recipient: customer.Email,
			Subject:   "You Earned Loyalty Points! - Dirt Free Carpet",
			Template:  notificationdomain.TemplateLoyaltyPointsEarned,
			Data: map[string]any{
				"CustomerName": customer.Name,
				"PointsEarned": award.PointsAwarded,
				"TotalPoints":  award.Points,
				"RewardValue":  fmt.Sprintf("%.2f", rewardValue),
			},
		})
		if err != nil {
			s.log.Warn("points email enqueue failed",
				zap.String("payment_reference", event.PaymentReference),
				zap.Error(err),
			)
		}
	}
}

func (s *Service) writeSettlementAudit(ctx context.Context, event *paymentdomain.Event, award *loyaltydomain.AwardResult) {
	metadata := map[string]any{
		"payment_reference": event.PaymentReference,
		"amount":            event.Amount,
		"currency":          event.Currency,
		"points_awarded":    awardedPoints(award),
		"status":            "success",
	}
	if event.InvoiceID != nil {
		metadata["invoice_id"] = event.InvoiceID.String()
	}

	actorID := event.CustomerID.String()
	if err := s.auditSvc.AuditLog(ctx,
		string(auditdomain.ActorTypeCustomer), &actorID,
		auditdomain.ActionPaymentCompleted,
		"payment", &event.PaymentReference,
		metadata,
	); err != nil {
		s.log.Warn("settlement audit write failed",
			zap.String("payment_reference", event.PaymentReference),
			zap.Error(err),
		)
	}
}

func pointsDescription(event *paymentdomain.Event) string {
	if event.InvoiceID != nil && *event.InvoiceID != 0 {
		raw := event.InvoiceID.String()
		if len(raw) > 8 {
			raw = raw[:8]
		}
		return fmt.Sprintf("Payment received - Invoice #%s", raw)
	}
	return fmt.Sprintf("Payment received - %s", event.PaymentReference)
}

func awardedPoints(award *loyaltydomain.AwardResult) int64 {
	if award == nil {
		return 0
	}
	return award.PointsAwarded
}
