package quota

import (
	"github.com/smallbiznis/threadly/internal/quota/domain"
	"github.com/smallbiznis/threadly/internal/quota/repository"
	"github.com/smallbiznis/threadly/internal/quota/service"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("quota.service",
	fx.Provide(func(db *gorm.DB, log *zap.Logger) domain.Store {
		return repository.NewGormStore(db, log)
	}),
	fx.Provide(service.NewService),
)
