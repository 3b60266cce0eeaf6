package authrx

import (
	"context"
	"sync"

	"github.com/reactivex/rxgo/v2"
)

// single adapts one completion-callback invocation into a cold observable.
// Each activation resolves the client, runs invoke once, and terminates with
// the payload or the callback's error, whichever the wrapped library
// produces. The callback is latched so a misbehaving library that fires it
// twice still yields exactly one terminal event.
func single[T any](r *Rx, invoke func(ctx context.Context, client Client, done func(T, error))) rxgo.Observable {
	return rxgo.Defer([]rxgo.Producer{func(ctx context.Context, next chan<- rxgo.Item) {
		client, ok := r.ref.Resolve()
		if !ok {
			r.logger.Warn("operation activated after client release")
			rxgo.Error(ErrClientReleased).SendContext(ctx, next)
			return
		}

		outcome := make(chan rxgo.Item, 1)
		var once sync.Once
		invoke(ctx, client, func(value T, err error) {
			once.Do(func() {
				if err != nil {
					outcome <- rxgo.Error(err)
					return
				}
				outcome <- rxgo.Of(value)
			})
		})

		// Cancellation only stops forwarding; the in-flight call is the
		// wrapped library's to finish or abandon.
		select {
		case item := <-outcome:
			item.SendContext(ctx, next)
		case <-ctx.Done():
		}
	}})
}

// completable adapts an error-only callback: the observable completes empty
// on success and emits the error otherwise.
func completable(r *Rx, invoke func(ctx context.Context, client Client, done func(error))) rxgo.Observable {
	return rxgo.Defer([]rxgo.Producer{func(ctx context.Context, next chan<- rxgo.Item) {
		client, ok := r.ref.Resolve()
		if !ok {
			r.logger.Warn("operation activated after client release")
			rxgo.Error(ErrClientReleased).SendContext(ctx, next)
			return
		}

		outcome := make(chan error, 1)
		var once sync.Once
		invoke(ctx, client, func(err error) {
			once.Do(func() {
				outcome <- err
			})
		})

		select {
		case err := <-outcome:
			if err != nil {
				rxgo.Error(err).SendContext(ctx, next)
			}
		case <-ctx.Done():
		}
	}})
}

// failWith defers an adapter-originated error so it surfaces per activation,
// like every other outcome.
func failWith(err error) rxgo.Observable {
	return rxgo.Defer([]rxgo.Producer{func(ctx context.Context, next chan<- rxgo.Item) {
		rxgo.Error(err).SendContext(ctx, next)
	}})
}
