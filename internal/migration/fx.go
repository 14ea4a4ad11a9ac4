package migration

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/dirtfreecarpet/portal/internal/config"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		// Schema migrations are written for postgres; other dialects
		// (sqlite in tests) manage their own schema.
		if cfg.DBType != "postgres" {
			return nil
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
