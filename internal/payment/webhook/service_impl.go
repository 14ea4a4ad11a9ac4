package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/dirtfreecarpet/portal/internal/config"
	"github.com/dirtfreecarpet/portal/internal/payment/adapters"
	paymentdomain "github.com/dirtfreecarpet/portal/internal/payment/domain"
	paymentservice "github.com/dirtfreecarpet/portal/internal/payment/service"
)

type Params struct {
	fx.In

	Log        *zap.Logger
	PaymentSvc *paymentservice.Service
	Adapters   *adapters.Registry
	Cfg        config.Config
}

// Service is the webhook front door: it verifies the provider
// signature, normalizes the payload and hands the canonical event to
// the settlement processor.
type Service struct {
	log        *zap.Logger
	paymentSvc *paymentservice.Service
	adapters   *adapters.Registry
	cfg        config.Config
}

func NewService(p Params) paymentdomain.Service {
	return &Service{
		log:        p.Log.Named("payment.webhook"),
		paymentSvc: p.PaymentSvc,
		adapters:   p.Adapters,
		cfg:        p.Cfg,
	}
}

func (s *Service) IngestWebhook(ctx context.Context, provider string, payload []byte, headers http.Header) error {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" {
		return paymentdomain.ErrInvalidProvider
	}
	if s.adapters == nil || !s.adapters.ProviderExists(provider) {
		return paymentdomain.ErrProviderNotFound
	}
	if !json.Valid(payload) {
		return paymentdomain.ErrInvalidPayload
	}

	adapter, err := s.adapters.NewAdapter(provider, paymentdomain.AdapterConfig{
		Provider: provider,
		Config:   s.providerConfig(provider),
	})
	if err != nil {
		return err
	}

	if err := adapter.Verify(ctx, payload, headers); err != nil {
		s.log.Warn("webhook signature verification failed", zap.String("provider", provider))
		return err
	}

	event, err := adapter.Parse(ctx, payload)
	if err != nil {
		if errors.Is(err, paymentdomain.ErrEventIgnored) {
			s.log.Debug("webhook event ignored", zap.String("provider", provider))
			return nil
		}
		if errors.Is(err, paymentdomain.ErrInvalidCustomer) {
			s.log.Warn("webhook missing customer mapping", zap.String("provider", provider))
		}
		return err
	}

	event.Provider = provider
	if event.RawPayload == nil {
		event.RawPayload = payload
	}

	if err := s.paymentSvc.ProcessEvent(ctx, event); err != nil {
		// Redelivery of a settled event is acknowledged, not retried.
		if errors.Is(err, paymentdomain.ErrEventAlreadyProcessed) {
			s.log.Info("webhook event already processed",
				zap.String("provider", provider),
				zap.String("provider_event_id", event.ProviderEventID),
			)
			return nil
		}
		return err
	}
	return nil
}

func (s *Service) providerConfig(provider string) map[string]any {
	switch provider {
	case "stripe":
		return map[string]any{"webhook_secret": s.cfg.Stripe.WebhookSecret}
	default:
		return nil
	}
}
