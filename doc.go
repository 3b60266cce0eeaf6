// Package authrx re-exposes a callback-based identity client as cold
// observables so callers can compose authentication flows reactively.
//
// Operations:
//   - Every single-shot call on the wrapped Client (sign-in variants, account
//     creation, out-of-band action codes, password resets) becomes a deferred
//     observable that performs the underlying call once per activation and
//     terminates with exactly one payload or one error. Errors produced by the
//     wrapped client are forwarded verbatim; the adapter never classifies,
//     retries, or recovers.
//   - The client's persistent listeners (auth-state-changed, ID-token-changed)
//     become never-completing streams. Each activation registers its own
//     listener and deregisters it exactly once when the observer's context is
//     cancelled.
//
// Lifetime:
//   - Build the adapter with New for the common case, or NewFromRef with a
//     WeakRef when the adapter must not keep the client alive. Activating an
//     operation after the client has been released fails with
//     ErrClientReleased instead of touching a dangling handle.
//
// The adapter owns no authentication logic. Credential verification, token
// refresh, retry policy, and persistence belong to whatever identity backend
// the Client implementation talks to.
package authrx
