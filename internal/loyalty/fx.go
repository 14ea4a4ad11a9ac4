package loyalty

import (
	"github.com/dirtfreecarpet/portal/internal/loyalty/repository"
	"github.com/dirtfreecarpet/portal/internal/loyalty/service"
	"go.uber.org/fx"
)

var Module = fx.Module("loyalty.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
