package document

import (
	"github.com/dirtfreecarpet/portal/internal/document/repository"
	"github.com/dirtfreecarpet/portal/internal/document/service"
	"go.uber.org/fx"
)

var Module = fx.Module("document.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
