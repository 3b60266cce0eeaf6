package authrx

// Rx exposes a callback-based identity client as cold observables. Operation
// methods defer the underlying call until an observer activates the returned
// observable; every activation resolves the client reference anew and runs
// the call once.
type Rx struct {
	ref    ClientRef
	logger Logger
}

// New returns an adapter holding a strong reference to the client. When the
// adapter must not extend the client's lifetime, use
// NewFromRef(WeakRef(client)) instead; operations activated after the client
// is collected fail with ErrClientReleased.
func New(client Client) *Rx {
	return NewFromRef(StrongRef(client))
}

// NewFromRef returns an adapter that resolves the client through ref on every
// activation. Pass a WeakRef when the adapter must not keep the client alive.
func NewFromRef(ref ClientRef) *Rx {
	if ref == nil {
		ref = strongRef{}
	}
	return &Rx{
		ref:    ref,
		logger: defLogger{},
	}
}

func (r *Rx) WithLogger(logger Logger) *Rx {
	if logger != nil {
		r.logger = logger
	}
	return r
}
