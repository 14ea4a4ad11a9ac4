package invoice

import (
	"github.com/dirtfreecarpet/portal/internal/invoice/repository"
	"github.com/dirtfreecarpet/portal/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
