package payment

import (
	"go.uber.org/fx"

	"github.com/dirtfreecarpet/portal/internal/payment/adapters"
	"github.com/dirtfreecarpet/portal/internal/payment/adapters/stripe"
	"github.com/dirtfreecarpet/portal/internal/payment/repository"
	paymentservice "github.com/dirtfreecarpet/portal/internal/payment/service"
	"github.com/dirtfreecarpet/portal/internal/payment/webhook"
)

var Module = fx.Module("payment.service",
	fx.Provide(repository.Provide),
	fx.Provide(func() *adapters.Registry {
		return adapters.NewRegistry(
			stripe.NewFactory(),
		)
	}),
	fx.Provide(paymentservice.NewService),
	fx.Provide(webhook.NewService),
)
