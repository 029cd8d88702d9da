package storefront

import (
	"context"
	"sync"

	"github.com/isdelr/storefront/internal/models"
)

// Request tracks the data, loading flag and error of a single fetch. The
// zero value is ready to use.
type Request[T any] struct {
	mu      sync.RWMutex
	data    T
	hasData bool
	loading bool
	err     error
}

// Execute runs fn and records its outcome. Loading is cleared on every
// return path, and a failure drops previously loaded data.
func (r *Request[T]) Execute(ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	r.mu.Lock()
	r.loading = true
	r.err = nil
	r.mu.Unlock()

	data, err := fn(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.loading = false
	if err != nil {
		var zero T
		r.data, r.hasData, r.err = zero, false, err
		return zero, err
	}
	r.data, r.hasData = data, true
	return data, nil
}

// Reset returns the request to its idle, empty state.
func (r *Request[T]) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	var zero T
	r.data, r.hasData, r.loading, r.err = zero, false, false, nil
}

// Loading reports whether a fetch is in flight.
func (r *Request[T]) Loading() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loading
}

// Data returns the last successful result, if any.
func (r *Request[T]) Data() (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.data, r.hasData
}

// Err returns the last failure.
func (r *Request[T]) Err() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.err
}

// APIError returns the last failure as an *models.APIError, if it is one.
func (r *Request[T]) APIError() (*models.APIError, bool) {
	return models.AsAPIError(r.Err())
}
