// Package mock provides in-memory stand-ins for the storefront resource
// services, used when no backend URL is configured.
package mock

import (
	"context"
	"time"

	"github.com/isdelr/storefront/internal/models"
)

// Latency holds the simulated round-trip delay per operation class.
type Latency struct {
	List  time.Duration
	Get   time.Duration
	Write time.Duration
	Auth  time.Duration
}

// DefaultLatency approximates a slow backend so loading states show up.
var DefaultLatency = Latency{
	List:  800 * time.Millisecond,
	Get:   600 * time.Millisecond,
	Write: 600 * time.Millisecond,
	Auth:  1000 * time.Millisecond,
}

type options struct {
	latency Latency
	now     func() time.Time
	dataset func() ([]models.Product, error)
}

// Option customizes a mock service.
type Option func(*options)

// WithLatency overrides the simulated delays.
func WithLatency(l Latency) Option {
	return func(o *options) { o.latency = l }
}

// WithoutLatency resolves every call immediately.
func WithoutLatency() Option {
	return WithLatency(Latency{})
}

// WithClock overrides the time source used for timestamps and tokens.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithDataset replaces the bundled product dataset loader.
func WithDataset(load func() ([]models.Product, error)) Option {
	return func(o *options) { o.dataset = load }
}

func buildOptions(opts []Option) options {
	o := options{latency: DefaultLatency, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// delay waits for d or until ctx is done.
func delay(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		if err := ctx.Err(); err != nil {
			return models.NewNetworkError(err)
		}
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return models.NewNetworkError(ctx.Err())
	case <-t.C:
		return nil
	}
}
