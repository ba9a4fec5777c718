package volunteers

import (
	"context"
	"errors"
	"sync"
)

// ErrSuperseded is returned by Latest.Load when a newer load started before
// this one finished. The caller should discard the result.
var ErrSuperseded = errors.New("volunteers: load superseded by a newer request")

// Latest gates repeated loads of the same view (for example pull-to-refresh)
// so that only the most recently started load delivers a value. Starting a
// load cancels the context of the one in flight.
type Latest[T any] struct {
	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

// Load runs fn under a context that is cancelled if another Load starts.
func (l *Latest[T]) Load(ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	runCtx, cancel := context.WithCancel(ctx)

	l.mu.Lock()
	l.seq++
	seq := l.seq
	if l.cancel != nil {
		l.cancel()
	}
	l.cancel = cancel
	l.mu.Unlock()

	val, err := fn(runCtx)

	l.mu.Lock()
	stale := seq != l.seq
	if !stale {
		l.cancel = nil
	}
	l.mu.Unlock()
	cancel()

	if stale {
		var zero T
		return zero, ErrSuperseded
	}
	return val, err
}

// Seq returns the number of loads started so far.
func (l *Latest[T]) Seq() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.seq
}
