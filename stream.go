package authrx

import (
	"context"
	"sync"

	"github.com/reactivex/rxgo/v2"
)

// StateChange pairs the client that produced a notification with the
// principal signed in at that moment. User is nil when signed out.
type StateChange struct {
	Client Client
	User   User
}

// StateChanges returns a cold stream of auth-state notifications. Each
// activation registers its own listener with the wrapped client, so two
// observers hold two independent registrations. The stream never completes on
// its own; cancel the observer's context to deregister. The listener fires on
// registration, so the first emission carries the state current at subscribe
// time.
//
// Notifications themselves carry no error channel. The one exception is
// activation against a released client, which emits ErrClientReleased and
// terminates instead of registering on a dangling handle.
func (r *Rx) StateChanges() rxgo.Observable {
	return r.listen(Client.AddStateListener, Client.RemoveStateListener)
}

// IDTokenChanges is StateChanges plus an emission on every token refresh.
func (r *Rx) IDTokenChanges() rxgo.Observable {
	return r.listen(Client.AddIDTokenListener, Client.RemoveIDTokenListener)
}

func (r *Rx) listen(
	register func(Client, StateListener) ListenerHandle,
	deregister func(Client, ListenerHandle),
) rxgo.Observable {
	return rxgo.Defer([]rxgo.Producer{func(ctx context.Context, next chan<- rxgo.Item) {
		client, ok := r.ref.Resolve()
		if !ok {
			r.logger.Warn("state stream activated after client release")
			rxgo.Error(ErrClientReleased).SendContext(ctx, next)
			return
		}

		fwd := newForwarder(ctx, next)
		handle := register(client, func(c Client, u User) {
			fwd.emit(StateChange{Client: c, User: u})
		})

		<-ctx.Done()

		// Stop forwarding before the handle is handed back, so a late
		// callback cannot race the observer channel close.
		fwd.stop()
		deregister(client, handle)
		r.logger.Debug("state listener deregistered")
	}})
}

// forwarder serializes listener callbacks onto the observer channel and drops
// everything after stop, which runs exactly once per activation.
type forwarder struct {
	ctx  context.Context
	next chan<- rxgo.Item

	mu      sync.Mutex
	stopped bool
}

func newForwarder(ctx context.Context, next chan<- rxgo.Item) *forwarder {
	return &forwarder{ctx: ctx, next: next}
}

func (f *forwarder) emit(value any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stopped {
		return
	}
	rxgo.Of(value).SendContext(f.ctx, f.next)
}

// stop returns after any in-flight emit drains; emit never sends again.
func (f *forwarder) stop() {
	f.mu.Lock()
	f.stopped = true
	f.mu.Unlock()
}
