package threadcache

import (
	"github.com/smallbiznis/threadly/internal/threadcache/domain"
	"github.com/smallbiznis/threadly/internal/threadcache/repository"
	"github.com/smallbiznis/threadly/internal/threadcache/service"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("threadcache.service",
	fx.Provide(func(db *gorm.DB) domain.Store {
		return repository.NewGormStore(db)
	}),
	fx.Provide(service.NewService),
)
