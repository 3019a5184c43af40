package domain

import "context"

// ComposeRequest asks the pipeline to turn content into a thread on
// behalf of identity. Identity is the opaque quota/cache partition key.
type ComposeRequest struct {
	Content   string
	SourceURL string
	Identity  string
	Options   Options
}

// PreviewRequest segments caller-supplied text directly: no quota, no
// generation, no caching.
type PreviewRequest struct {
	Content string
	Options Options
}

type Service interface {
	Compose(ctx context.Context, req ComposeRequest) (*Thread, error)
	Preview(ctx context.Context, req PreviewRequest) (*Thread, error)
}
