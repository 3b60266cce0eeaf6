package authrx

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/reactivex/rxgo/v2"
)

// SignInAnonymously emits the throwaway principal the backend minted.
func (r *Rx) SignInAnonymously() rxgo.Observable {
	return single(r, func(ctx context.Context, client Client, done func(User, error)) {
		client.SignInAnonymously(ctx, done)
	})
}

// CreateUser emits the newly created, signed-in principal. An email that is
// already registered surfaces as the backend's own conflict error.
func (r *Rx) CreateUser(email, password string) rxgo.Observable {
	return single(r, func(ctx context.Context, client Client, done func(User, error)) {
		client.CreateUser(ctx, email, password, done)
	})
}

// SignInWithPassword emits the signed-in principal.
func (r *Rx) SignInWithPassword(email, password string) rxgo.Observable {
	return single(r, func(ctx context.Context, client Client, done func(User, error)) {
		client.SignInWithPassword(ctx, email, password, done)
	})
}

// SignInWithEmailLink completes a link sign-in and emits the principal.
func (r *Rx) SignInWithEmailLink(email, link string) rxgo.Observable {
	return single(r, func(ctx context.Context, client Client, done func(User, error)) {
		client.SignInWithEmailLink(ctx, email, link, done)
	})
}

// SendSignInLink completes empty once the link email is dispatched. The link
// can only finish sign-in inside the application, so settings must be present
// with HandleCodeInApp set.
func (r *Rx) SendSignInLink(email string, settings *ActionCodeSettings) rxgo.Observable {
	if settings == nil {
		return failWith(ErrSettingsRequired)
	}
	if !settings.HandleCodeInApp {
		return failWith(goerrors.New("sign-in link must be handled in app", goerrors.CategoryBadInput))
	}
	if err := settings.Validate(); err != nil {
		return failWith(goerrors.Wrap(err, goerrors.CategoryValidation, "invalid action code settings"))
	}
	return completable(r, func(ctx context.Context, client Client, done func(error)) {
		client.SendSignInLink(ctx, email, settings, done)
	})
}

// FetchSignInMethods emits the sign-in methods registered for email.
func (r *Rx) FetchSignInMethods(email string) rxgo.Observable {
	return single(r, func(ctx context.Context, client Client, done func([]string, error)) {
		client.FetchSignInMethods(ctx, email, done)
	})
}

// ConfirmPasswordReset consumes a reset code and completes empty once the new
// password is set.
func (r *Rx) ConfirmPasswordReset(code, newPassword string) rxgo.Observable {
	return completable(r, func(ctx context.Context, client Client, done func(error)) {
		client.ConfirmPasswordReset(ctx, code, newPassword, done)
	})
}

// VerifyPasswordResetCode emits the email the reset code was minted for.
func (r *Rx) VerifyPasswordResetCode(code string) rxgo.Observable {
	return single(r, func(ctx context.Context, client Client, done func(string, error)) {
		client.VerifyPasswordResetCode(ctx, code, done)
	})
}

// CheckActionCode emits the metadata attached to an out-of-band code without
// consuming it.
func (r *Rx) CheckActionCode(code string) rxgo.Observable {
	return single(r, func(ctx context.Context, client Client, done func(*ActionCodeInfo, error)) {
		client.CheckActionCode(ctx, code, done)
	})
}

// ApplyActionCode consumes an out-of-band code and completes empty.
func (r *Rx) ApplyActionCode(code string) rxgo.Observable {
	return completable(r, func(ctx context.Context, client Client, done func(error)) {
		client.ApplyActionCode(ctx, code, done)
	})
}

// SendPasswordReset completes empty once the reset email is dispatched.
func (r *Rx) SendPasswordReset(email string) rxgo.Observable {
	return completable(r, func(ctx context.Context, client Client, done func(error)) {
		client.SendPasswordReset(ctx, email, done)
	})
}

// SendPasswordResetWithSettings is SendPasswordReset with continue-URL and
// platform hints attached to the email.
func (r *Rx) SendPasswordResetWithSettings(email string, settings *ActionCodeSettings) rxgo.Observable {
	if settings == nil {
		return failWith(ErrSettingsRequired)
	}
	if err := settings.Validate(); err != nil {
		return failWith(goerrors.Wrap(err, goerrors.CategoryValidation, "invalid action code settings"))
	}
	return completable(r, func(ctx context.Context, client Client, done func(error)) {
		client.SendPasswordResetWithSettings(ctx, email, settings, done)
	})
}
