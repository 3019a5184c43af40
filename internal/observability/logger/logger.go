// Package logger wires zap as the process-wide structured logger and
// enriches log entries with request and trace identifiers.
package logger

import (
	"context"

	"github.com/smallbiznis/threadly/internal/config"
	"github.com/smallbiznis/threadly/internal/requestcontext"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("logger",
	fx.Provide(New),
)

// New builds the root logger from configuration and installs it as the
// zap global so FromContext works everywhere.
func New(lc fx.Lifecycle, cfg config.Config) (*zap.Logger, error) {
	var (
		log *zap.Logger
		err error
	)
	if cfg.Environment == "production" {
		log, err = zap.NewProduction()
	} else {
		log, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, err
	}

	log = log.With(
		zap.String("service", cfg.Observability.ServiceName),
		zap.String("version", cfg.Observability.ServiceVersion),
	)
	zap.ReplaceGlobals(log)

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			_ = log.Sync()
			return nil
		},
	})
	return log, nil
}

// FromContext returns the global logger annotated with the request id
// and, when the context carries a valid span, trace correlation fields.
func FromContext(ctx context.Context) *zap.Logger {
	log := zap.L()

	if requestID := requestcontext.RequestIDFromContext(ctx); requestID != "" {
		log = log.With(zap.String("request_id", requestID))
	}

	sc := trace.SpanContextFromContext(ctx)
	if sc.IsValid() {
		log = log.With(
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}
	return log
}
