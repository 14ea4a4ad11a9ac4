package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/dirtfreecarpet/portal/internal/clock"
	"github.com/dirtfreecarpet/portal/internal/config"
	"github.com/dirtfreecarpet/portal/internal/notification/domain"
	obsmetrics "github.com/dirtfreecarpet/portal/internal/observability/metrics"
	"github.com/dirtfreecarpet/portal/internal/providers/email"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Clock      clock.Clock
	GenID      *snowflake.Node
	Config     config.Config
	Repo       domain.Repository
	Provider   email.Provider
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	clock      clock.Clock
	genID      *snowflake.Node
	cfg        config.Config
	repo       domain.Repository
	provider   email.Provider
	obsMetrics *obsmetrics.Metrics
}

func NewService(p Params) *Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("notification.service"),
		clock:      p.Clock,
		genID:      p.GenID,
		cfg:        p.Config,
		repo:       p.Repo,
		provider:   p.Provider,
		obsMetrics: p.ObsMetrics,
	}
}

func (s *Service) Enqueue(ctx context.Context, tx *gorm.DB, req domain.EnqueueRequest) (*domain.EmailMessage, error) {
	if !knownTemplate(req.Template) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownTemplate, req.Template)
	}
	if req.Data == nil {
		req.Data = map[string]any{}
	}
	if _, ok := req.Data["PortalURL"]; !ok {
		req.Data["PortalURL"] = s.cfg.PortalBaseURL
	}
	payload, err := json.Marshal(req.Data)
	if err != nil {
		return nil, fmt.Errorf("marshal email payload: %w", err)
	}

	now := s.clock.Now().UTC()
	msg := &domain.EmailMessage{
		ID:            s.genID.Generate(),
		Recipient:     req.Recipient,
		Subject:       req.Subject,
		Template:      req.Template,
		Payload:       datatypes.JSON(payload),
		Status:        domain.EmailStatusPending,
		NextAttemptAt: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	db := tx
	if db == nil {
		db = s.db
	}
	if err := s.repo.Insert(ctx, db, msg); err != nil {
		return nil, err
	}
	s.log.Debug("email queued",
		zap.String("template", req.Template),
		zap.String("message_id", msg.ID.String()),
	)
	return msg, nil
}

func (s *Service) DispatchPending(ctx context.Context) (int, error) {
	now := s.clock.Now().UTC()
	due, err := s.repo.ListDue(ctx, s.db, now, s.cfg.Outbox.BatchSize)
	if err != nil {
		return 0, err
	}

	sent := 0
	for i := range due {
		msg := &due[i]
		if err := s.deliver(ctx, msg); err != nil {
			attempts := msg.Attempts + 1
			backoff := backoffFor(attempts)
			s.log.Warn("email delivery failed",
				zap.String("message_id", msg.ID.String()),
				zap.String("template", msg.Template),
				zap.Int("attempts", attempts),
				zap.Error(err),
			)
			if s.obsMetrics != nil {
				s.obsMetrics.RecordOutboxEmail(ctx, msg.Template, "failed")
			}
			if mErr := s.repo.MarkFailed(ctx, s.db, int64(msg.ID), attempts, s.cfg.Outbox.MaxAttempts, err.Error(), s.clock.Now().UTC().Add(backoff)); mErr != nil {
				return sent, mErr
			}
			continue
		}
		if err := s.repo.MarkSent(ctx, s.db, int64(msg.ID), s.clock.Now().UTC()); err != nil {
			return sent, err
		}
		if s.obsMetrics != nil {
			s.obsMetrics.RecordOutboxEmail(ctx, msg.Template, "sent")
		}
		sent++
	}
	return sent, nil
}

func (s *Service) deliver(ctx context.Context, msg *domain.EmailMessage) error {
	var data map[string]any
	if err := json.Unmarshal(msg.Payload, &data); err != nil {
		return fmt.Errorf("decode email payload: %w", err)
	}
	body, err := render(msg.Template, data)
	if err != nil {
		return err
	}
	return s.provider.Send(ctx, []string{msg.Recipient}, msg.Subject, body)
}

// backoffFor doubles the retry delay per attempt, capped at an hour.
func backoffFor(attempts int) time.Duration {
	d := time.Minute
	for i := 1; i < attempts; i++ {
		d *= 2
		if d >= time.Hour {
			return time.Hour
		}
	}
	return d
}
