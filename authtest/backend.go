// Package authtest provides a deterministic, in-process implementation of
// authrx.Client so adapter flows can be exercised end to end without a real
// identity backend. Accounts live in an in-memory SQLite table, passwords are
// bcrypt hashes, and completion callbacks fire on their own goroutine the way
// a real client's would. It is test infrastructure, not a shipping backend.
package authtest

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	authrx "github.com/goliatone/go-auth-rx"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var _ authrx.Client = (*Backend)(nil)

// account implements authrx.User.
type account struct {
	uid       string
	email     string
	anonymous bool
}

func (a account) UID() string     { return a.uid }
func (a account) Email() string   { return a.email }
func (a account) Anonymous() bool { return a.anonymous }

type oobCode struct {
	op            authrx.ActionCodeOperation
	email         string
	previousEmail string
}

type notification struct {
	listeners []authrx.StateListener
	user      authrx.User
}

// Backend is the in-process identity client stand-in.
type Backend struct {
	store *userStore

	mu             sync.Mutex
	current        *account
	token          string
	codes          map[string]oobCode
	lastLinks      map[string]string
	lastCodes      map[string]string
	stateListeners map[uuid.UUID]authrx.StateListener
	tokenListeners map[uuid.UUID]authrx.StateListener

	notifications chan notification
	done          chan struct{}
	closeOnce     sync.Once
}

// New builds a backend with an empty user table and starts its notification
// loop. Callers own the backend and must Close it.
func New(ctx context.Context) (*Backend, error) {
	store, err := newUserStore(ctx)
	if err != nil {
		return nil, err
	}

	b := &Backend{
		store:          store,
		codes:          map[string]oobCode{},
		lastLinks:      map[string]string{},
		lastCodes:      map[string]string{},
		stateListeners: map[uuid.UUID]authrx.StateListener{},
		tokenListeners: map[uuid.UUID]authrx.StateListener{},
		notifications:  make(chan notification, 64),
		done:           make(chan struct{}),
	}
	go b.dispatchLoop()

	return b, nil
}

// Close stops the notification loop and releases the store.
func (b *Backend) Close() error {
	b.closeOnce.Do(func() {
		close(b.done)
	})
	return b.store.close()
}

// dispatchLoop delivers notifications one at a time so every listener
// observes transitions in the order they happened.
func (b *Backend) dispatchLoop() {
	for {
		select {
		case n := <-b.notifications:
			for _, fn := range n.listeners {
				fn(b, n.user)
			}
		case <-b.done:
			return
		}
	}
}

// --- single-shot operations -------------------------------------------------

func (b *Backend) SignInAnonymously(ctx context.Context, done func(authrx.User, error)) {
	go func() {
		user := account{uid: uuid.NewString(), anonymous: true}

		b.mu.Lock()
		b.signInLocked(user)
		b.mu.Unlock()

		done(user, nil)
	}()
}

func (b *Backend) CreateUser(ctx context.Context, email, password string, done func(authrx.User, error)) {
	go func() { done(b.createUser(ctx, email, password)) }()
}

func (b *Backend) createUser(ctx context.Context, email, password string) (authrx.User, error) {
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.store.byEmail(ctx, email); err == nil {
		return nil, ErrEmailAlreadyInUse
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	rec := &userRecord{
		UID:          uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := b.store.insert(ctx, rec); err != nil {
		return nil, err
	}

	user := rec.principal()
	b.signInLocked(user)
	return user, nil
}

func (b *Backend) SignInWithPassword(ctx context.Context, email, password string, done func(authrx.User, error)) {
	go func() { done(b.signInWithPassword(ctx, email, password)) }()
}

func (b *Backend) signInWithPassword(ctx context.Context, email, password string) (authrx.User, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec, err := b.store.byEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if rec.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	user := rec.principal()
	b.signInLocked(user)
	return user, nil
}

func (b *Backend) SignInWithEmailLink(ctx context.Context, email, link string, done func(authrx.User, error)) {
	go func() { done(b.signInWithEmailLink(ctx, email, link)) }()
}

func (b *Backend) signInWithEmailLink(ctx context.Context, email, link string) (authrx.User, error) {
	parsed, err := url.Parse(link)
	if err != nil {
		return nil, ErrInvalidActionCode
	}
	codeID := parsed.Query().Get("oobCode")

	b.mu.Lock()
	defer b.mu.Unlock()

	code, ok := b.codes[codeID]
	if !ok || code.op != authrx.OperationEmailSignIn || code.email != email {
		return nil, ErrInvalidActionCode
	}
	delete(b.codes, codeID)

	rec, err := b.store.byEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		rec = &userRecord{UID: uuid.NewString(), Email: email, EmailLink: true, Verified: true}
		if err := b.store.insert(ctx, rec); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	} else if !rec.EmailLink {
		if err := b.store.setEmailLink(ctx, email); err != nil {
			return nil, err
		}
	}

	user := rec.principal()
	b.signInLocked(user)
	return user, nil
}

func (b *Backend) SendSignInLink(ctx context.Context, email string, settings *authrx.ActionCodeSettings, done func(error)) {
	go func() {
		if email == "" {
			done(ErrInvalidCredentials)
			return
		}

		b.mu.Lock()
		codeID := b.mintCodeLocked(authrx.OperationEmailSignIn, email, "")
		b.lastLinks[email] = "https://auth.example.test/action?oobCode=" + codeID
		b.mu.Unlock()

		done(nil)
	}()
}

func (b *Backend) FetchSignInMethods(ctx context.Context, email string, done func([]string, error)) {
	go func() {
		b.mu.Lock()
		rec, err := b.store.byEmail(ctx, email)
		b.mu.Unlock()

		// An unknown email reports no methods rather than an error, so the
		// caller cannot probe for account existence.
		if errors.Is(err, ErrUserNotFound) {
			done([]string{}, nil)
			return
		}
		if err != nil {
			done(nil, err)
			return
		}

		methods := []string{}
		if rec.PasswordHash != "" {
			methods = append(methods, "password")
		}
		if rec.EmailLink {
			methods = append(methods, "emailLink")
		}
		done(methods, nil)
	}()
}

func (b *Backend) ConfirmPasswordReset(ctx context.Context, codeID, newPassword string, done func(error)) {
	go func() { done(b.confirmPasswordReset(ctx, codeID, newPassword)) }()
}

func (b *Backend) confirmPasswordReset(ctx context.Context, codeID, newPassword string) error {
	if newPassword == "" {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	code, ok := b.codes[codeID]
	if !ok || code.op != authrx.OperationPasswordReset {
		return ErrInvalidActionCode
	}
	if err := b.store.updatePassword(ctx, code.email, string(hash)); err != nil {
		return err
	}
	delete(b.codes, codeID)
	return nil
}

func (b *Backend) VerifyPasswordResetCode(ctx context.Context, codeID string, done func(string, error)) {
	go func() {
		b.mu.Lock()
		code, ok := b.codes[codeID]
		b.mu.Unlock()

		if !ok || code.op != authrx.OperationPasswordReset {
			done("", ErrInvalidActionCode)
			return
		}
		done(code.email, nil)
	}()
}

func (b *Backend) CheckActionCode(ctx context.Context, codeID string, done func(*authrx.ActionCodeInfo, error)) {
	go func() {
		b.mu.Lock()
		code, ok := b.codes[codeID]
		b.mu.Unlock()

		if !ok {
			done(nil, ErrInvalidActionCode)
			return
		}
		done(&authrx.ActionCodeInfo{
			Operation:     code.op,
			Email:         code.email,
			PreviousEmail: code.previousEmail,
		}, nil)
	}()
}

func (b *Backend) ApplyActionCode(ctx context.Context, codeID string, done func(error)) {
	go func() { done(b.applyActionCode(ctx, codeID)) }()
}

func (b *Backend) applyActionCode(ctx context.Context, codeID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	code, ok := b.codes[codeID]
	if !ok {
		return ErrInvalidActionCode
	}
	if code.op == authrx.OperationVerifyEmail {
		if err := b.store.markVerified(ctx, code.email); err != nil {
			return err
		}
	}
	delete(b.codes, codeID)
	return nil
}

func (b *Backend) SendPasswordReset(ctx context.Context, email string, done func(error)) {
	go func() { done(b.sendPasswordReset(ctx, email)) }()
}

func (b *Backend) SendPasswordResetWithSettings(ctx context.Context, email string, settings *authrx.ActionCodeSettings, done func(error)) {
	go func() { done(b.sendPasswordReset(ctx, email)) }()
}

func (b *Backend) sendPasswordReset(ctx context.Context, email string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.store.byEmail(ctx, email); err != nil {
		return err
	}
	b.mintCodeLocked(authrx.OperationPasswordReset, email, "")
	return nil
}

// --- listener surface -------------------------------------------------------

func (b *Backend) AddStateListener(fn authrx.StateListener) authrx.ListenerHandle {
	b.mu.Lock()
	handle := uuid.New()
	b.stateListeners[handle] = fn
	// State listeners fire on registration with the current principal.
	b.enqueueLocked([]authrx.StateListener{fn}, b.currentLocked())
	b.mu.Unlock()
	return handle
}

func (b *Backend) RemoveStateListener(handle authrx.ListenerHandle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if id, ok := handle.(uuid.UUID); ok {
		delete(b.stateListeners, id)
	}
}

func (b *Backend) AddIDTokenListener(fn authrx.StateListener) authrx.ListenerHandle {
	b.mu.Lock()
	handle := uuid.New()
	b.tokenListeners[handle] = fn
	b.enqueueLocked([]authrx.StateListener{fn}, b.currentLocked())
	b.mu.Unlock()
	return handle
}

func (b *Backend) RemoveIDTokenListener(handle authrx.ListenerHandle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if id, ok := handle.(uuid.UUID); ok {
		delete(b.tokenListeners, id)
	}
}

// --- state helpers used by tests ---------------------------------------------

// SignOut clears the current principal and notifies every listener with a nil
// user.
func (b *Backend) SignOut() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.current == nil {
		return
	}
	b.current = nil
	b.token = ""
	b.enqueueLocked(b.allListenersLocked(), nil)
}

// RefreshToken re-mints the current principal's ID token and notifies only
// ID-token listeners, mirroring a real token refresh.
func (b *Backend) RefreshToken() (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.current == nil {
		return "", ErrNoCurrentUser
	}

	token, err := mintIDToken(b.current.uid, b.current.email, time.Now())
	if err != nil {
		return "", err
	}
	b.token = token
	b.enqueueLocked(b.snapshotLocked(b.tokenListeners), *b.current)
	return token, nil
}

// RequestEmailVerification mints a verify-email code for the current
// principal so ApplyActionCode has something to consume.
func (b *Backend) RequestEmailVerification() (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.current == nil {
		return "", ErrNoCurrentUser
	}
	return b.mintCodeLocked(authrx.OperationVerifyEmail, b.current.email, ""), nil
}

// CurrentUser reports the signed-in principal, nil when signed out.
func (b *Backend) CurrentUser() authrx.User {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.currentLocked()
}

// IDToken reports the current principal's ID token.
func (b *Backend) IDToken() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.token
}

// LastSignInLink reports the most recent sign-in link sent to email.
func (b *Backend) LastSignInLink(email string) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	link, ok := b.lastLinks[email]
	return link, ok
}

// LastActionCode reports the most recent out-of-band code minted for email.
func (b *Backend) LastActionCode(email string) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	code, ok := b.lastCodes[email]
	return code, ok
}

// StateListenerCount reports live auth-state registrations.
func (b *Backend) StateListenerCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.stateListeners)
}

// TokenListenerCount reports live ID-token registrations.
func (b *Backend) TokenListenerCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.tokenListeners)
}

// --- internals ---------------------------------------------------------------

// signInLocked installs user as the current principal. State listeners are
// notified only when the principal actually changed; ID-token listeners are
// notified on every sign-in because the token is re-minted regardless.
func (b *Backend) signInLocked(user account) {
	samePrincipal := b.current != nil && b.current.uid == user.uid
	b.current = &user

	if token, err := mintIDToken(user.uid, user.email, time.Now()); err == nil {
		b.token = token
	}

	if samePrincipal {
		b.enqueueLocked(b.snapshotLocked(b.tokenListeners), user)
		return
	}
	b.enqueueLocked(b.allListenersLocked(), user)
}

func (b *Backend) mintCodeLocked(op authrx.ActionCodeOperation, email, previous string) string {
	codeID := uuid.NewString()
	b.codes[codeID] = oobCode{op: op, email: email, previousEmail: previous}
	b.lastCodes[email] = codeID
	return codeID
}

func (b *Backend) currentLocked() authrx.User {
	if b.current == nil {
		return nil
	}
	return *b.current
}

func (b *Backend) snapshotLocked(m map[uuid.UUID]authrx.StateListener) []authrx.StateListener {
	fns := make([]authrx.StateListener, 0, len(m))
	for _, fn := range m {
		fns = append(fns, fn)
	}
	return fns
}

func (b *Backend) allListenersLocked() []authrx.StateListener {
	fns := b.snapshotLocked(b.stateListeners)
	return append(fns, b.snapshotLocked(b.tokenListeners)...)
}

// enqueueLocked queues a notification while b.mu is held so delivery order
// matches mutation order.
func (b *Backend) enqueueLocked(fns []authrx.StateListener, user authrx.User) {
	if len(fns) == 0 {
		return
	}
	select {
	case b.notifications <- notification{listeners: fns, user: user}:
	case <-b.done:
	}
}
