// Package domain defines the external text-generation collaborator. The
// pipeline treats it as an opaque producer of raw text; retry policy,
// if any, belongs to the caller.
package domain

import (
	"context"
	"errors"
)

var (
	ErrGenerationFailed  = errors.New("generation_failed")
	ErrGenerationTimeout = errors.New("generation_timeout")
)

// Generator produces expanded text from source content. Produce must
// honor ctx cancellation; the orchestrator supplies the deadline.
type Generator interface {
	Produce(ctx context.Context, content string) (string, error)
}

// Func adapts a plain function to the Generator interface.
type Func func(ctx context.Context, content string) (string, error)

func (f Func) Produce(ctx context.Context, content string) (string, error) {
	return f(ctx, content)
}

// Passthrough returns the source content unchanged. It is the default
// when no external model is configured.
func Passthrough() Generator {
	return Func(func(_ context.Context, content string) (string, error) {
		return content, nil
	})
}
