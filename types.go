package authrx

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// User is the wrapped library's signed-in principal. The adapter forwards it
// unchanged and never looks past these accessors.
type User interface {
	UID() string
	Email() string
	Anonymous() bool
}

// ListenerHandle is the opaque token a registration call returns. It is owned
// by the wrapped library and required to deregister that same listener.
type ListenerHandle any

// StateListener is invoked by the wrapped client on every relevant state
// transition. user is nil when no principal is signed in.
type StateListener func(client Client, user User)

// Client is the callback-based surface of the wrapped identity library,
// consumed as given. Completion callbacks fire exactly once per invocation,
// with either a payload or an error, on whatever goroutine the library
// chooses. The adapter makes no ordering or affinity assumptions beyond that.
type Client interface {
	// SignInAnonymously signs in a throwaway principal with no credentials.
	SignInAnonymously(ctx context.Context, done func(User, error))
	// CreateUser creates an account for email and signs it in.
	CreateUser(ctx context.Context, email, password string, done func(User, error))
	// SignInWithPassword signs in an existing email+password account.
	SignInWithPassword(ctx context.Context, email, password string, done func(User, error))
	// SignInWithEmailLink completes a sign-in started by SendSignInLink.
	SignInWithEmailLink(ctx context.Context, email, link string, done func(User, error))
	// SendSignInLink emails a sign-in link governed by settings.
	SendSignInLink(ctx context.Context, email string, settings *ActionCodeSettings, done func(error))
	// FetchSignInMethods lists the sign-in methods registered for email.
	FetchSignInMethods(ctx context.Context, email string, done func([]string, error))
	// ConfirmPasswordReset consumes a reset code and sets the new password.
	ConfirmPasswordReset(ctx context.Context, code, newPassword string, done func(error))
	// VerifyPasswordResetCode yields the email a reset code was minted for.
	VerifyPasswordResetCode(ctx context.Context, code string, done func(string, error))
	// CheckActionCode yields the metadata attached to an out-of-band code.
	CheckActionCode(ctx context.Context, code string, done func(*ActionCodeInfo, error))
	// ApplyActionCode consumes an out-of-band code (email verification, etc).
	ApplyActionCode(ctx context.Context, code string, done func(error))
	// SendPasswordReset emails a password-reset code.
	SendPasswordReset(ctx context.Context, email string, done func(error))
	// SendPasswordResetWithSettings is SendPasswordReset with continue-URL and
	// platform hints attached to the email.
	SendPasswordResetWithSettings(ctx context.Context, email string, settings *ActionCodeSettings, done func(error))

	// AddStateListener registers fn for auth-state transitions. The listener
	// fires on registration, on sign-in of a different principal, and on
	// sign-out.
	AddStateListener(fn StateListener) ListenerHandle
	RemoveStateListener(handle ListenerHandle)

	// AddIDTokenListener registers fn for ID-token transitions; it fires on
	// everything AddStateListener fires on, plus token refresh.
	AddIDTokenListener(fn StateListener) ListenerHandle
	RemoveIDTokenListener(handle ListenerHandle)
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTHRX "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTHRX "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTHRX "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTHRX "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
