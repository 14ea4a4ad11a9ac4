package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/dirtfreecarpet/portal/internal/clock"
	"github.com/dirtfreecarpet/portal/internal/config"
	"github.com/dirtfreecarpet/portal/internal/migration"
	"github.com/dirtfreecarpet/portal/internal/observability"
	"github.com/dirtfreecarpet/portal/internal/server"
	"github.com/dirtfreecarpet/portal/pkg/db"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
