package goFlow

import "context"

// GenerationStore orders submissions of one flow across processes. Next is
// taken before the provider call; a result is applied only if Current still
// equals that value afterwards.
type GenerationStore interface {
	Next(ctx context.Context, flowID string) (uint64, error)
	Current(ctx context.Context, flowID string) (uint64, error)
}
