package generator

import (
	"github.com/smallbiznis/threadly/internal/config"
	"github.com/smallbiznis/threadly/internal/generator/domain"
	"github.com/smallbiznis/threadly/internal/generator/openai"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("generator",
	fx.Provide(func(cfg config.Config, log *zap.Logger) domain.Generator {
		if cfg.Generator.Provider != "openai" || cfg.Generator.APIKey == "" {
			log.Warn("no generator configured, passing content through",
				zap.String("provider", cfg.Generator.Provider))
			return domain.Passthrough()
		}
		return openai.NewClient(log, cfg.Generator.APIKey, cfg.Generator.Model, cfg.Generator.BaseURL)
	}),
)
