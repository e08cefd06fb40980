package provider

import "context"

// Selector picks a provider when the caller did not name one.
type Selector[T Provider] interface {
	Select(ctx context.Context, candidates []T) (T, error)
}

// HealthCheckSelector returns the first candidate that reports itself
// available. Candidates are probed one at a time, in order.
type HealthCheckSelector[T Provider] struct{}

func (HealthCheckSelector[T]) Select(ctx context.Context, candidates []T) (T, error) {
	for _, p := range candidates {
		if p.IsAvailable(ctx) {
			return p, nil
		}
	}
	var zero T
	return zero, ErrNoneAvailable
}
