package authrx

import "weak"

// ClientRef resolves the wrapped client at activation time. A ref that
// reports ok == false is released; operations activated against it emit
// ErrClientReleased instead of touching a dangling handle.
type ClientRef interface {
	Resolve() (Client, bool)
}

// StrongRef returns a ClientRef that keeps the client alive for as long as
// the adapter exists. This is the common case.
func StrongRef(client Client) ClientRef {
	return strongRef{client: client}
}

type strongRef struct {
	client Client
}

func (r strongRef) Resolve() (Client, bool) {
	if r.client == nil {
		return nil, false
	}
	return r.client, true
}

// WeakRef returns a ClientRef that does not extend the client's lifetime.
// Once the client is collected, Resolve reports released.
func WeakRef[T any, PT interface {
	*T
	Client
}](client PT) ClientRef {
	return weakRef[T, PT]{ptr: weak.Make((*T)(client))}
}

type weakRef[T any, PT interface {
	*T
	Client
}] struct {
	ptr weak.Pointer[T]
}

func (r weakRef[T, PT]) Resolve() (Client, bool) {
	v := r.ptr.Value()
	if v == nil {
		return nil, false
	}
	return PT(v), true
}
