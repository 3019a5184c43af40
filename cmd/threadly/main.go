package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/threadly/internal/clock"
	"github.com/smallbiznis/threadly/internal/composer"
	"github.com/smallbiznis/threadly/internal/config"
	"github.com/smallbiznis/threadly/internal/generator"
	"github.com/smallbiznis/threadly/internal/migration"
	"github.com/smallbiznis/threadly/internal/observability"
	"github.com/smallbiznis/threadly/internal/quota"
	"github.com/smallbiznis/threadly/internal/server"
	"github.com/smallbiznis/threadly/internal/threadcache"
	"github.com/smallbiznis/threadly/pkg/db"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		fx.Invoke(func(conn *gorm.DB) error {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return migration.RunMigrations(sqlDB)
		}),

		quota.Module,
		threadcache.Module,
		generator.Module,
		composer.Module,

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
