package message

import (
	"github.com/dirtfreecarpet/portal/internal/message/repository"
	"github.com/dirtfreecarpet/portal/internal/message/service"
	"go.uber.org/fx"
)

var Module = fx.Module("message.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
