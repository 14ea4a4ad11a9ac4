package booking

import (
	"github.com/dirtfreecarpet/portal/internal/booking/repository"
	"github.com/dirtfreecarpet/portal/internal/booking/service"
	"go.uber.org/fx"
)

var Module = fx.Module("booking.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
