package notification

import (
	"context"

	"go.uber.org/fx"

	"github.com/dirtfreecarpet/portal/internal/notification/domain"
	"github.com/dirtfreecarpet/portal/internal/notification/repository"
	"github.com/dirtfreecarpet/portal/internal/notification/service"
)

var Module = fx.Module("notification.service",
	fx.Provide(
		repository.Provide,
		service.NewService,
		func(s *service.Service) domain.Service { return s },
	),
	fx.Invoke(runDispatcher),
)

func runDispatcher(lc fx.Lifecycle, svc *service.Service) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ctx, cancel := context.WithCancel(context.Background())

			go svc.RunForever(ctx)

			lc.Append(fx.Hook{
				OnStop: func(context.Context) error {
					cancel()
					return nil
				},
			})

			return nil
		},
	})
}
