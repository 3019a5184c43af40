package composer

import (
	"github.com/smallbiznis/threadly/internal/composer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("composer.service",
	fx.Provide(service.NewService),
)
