// Package observability wires logging, tracing and metrics.
package observability

import (
	"github.com/smallbiznis/threadly/internal/config"
	"github.com/smallbiznis/threadly/internal/observability/logger"
	"github.com/smallbiznis/threadly/internal/observability/metrics"
	"github.com/smallbiznis/threadly/internal/observability/tracing"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
)

var Module = fx.Module("observability",
	logger.Module,
	fx.Provide(func(cfg config.Config) tracing.Config {
		return tracing.Config{
			Enabled:          cfg.Observability.TracingEnabled,
			ServiceName:      cfg.Observability.ServiceName,
			ServiceVersion:   cfg.Observability.ServiceVersion,
			Environment:      cfg.Environment,
			ExporterEndpoint: cfg.Observability.ExporterEndpoint,
			ExporterProtocol: cfg.Observability.ExporterProtocol,
			SamplingRatio:    cfg.Observability.SamplingRatio,
		}
	}),
	fx.Provide(tracing.NewProvider),
	fx.Invoke(func(*sdktrace.TracerProvider) {}),
	fx.Provide(func(cfg config.Config) metrics.Config {
		return metrics.Config{
			ServiceName: cfg.Observability.ServiceName,
			Environment: cfg.Environment,
		}
	}),
	fx.Provide(func(cfg metrics.Config) (*metrics.HTTPMetrics, error) {
		return metrics.NewHTTPMetrics(cfg, otel.GetMeterProvider())
	}),
)
