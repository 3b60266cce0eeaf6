package authrx_test

import (
	"context"
	"fmt"
	"sync"

	authrx "github.com/goliatone/go-auth-rx"
)

// stubUser implements authrx.User
type stubUser struct {
	uid   string
	email string
	anon  bool
}

func (u stubUser) UID() string     { return u.uid }
func (u stubUser) Email() string   { return u.email }
func (u stubUser) Anonymous() bool { return u.anon }

// releasedRef implements authrx.ClientRef
type releasedRef struct{}

func (releasedRef) Resolve() (authrx.Client, bool) { return nil, false }

// stubClient scripts callback outcomes and records every invocation so tests
// can assert on deferred execution, argument forwarding, and listener
// lifecycles.
type stubClient struct {
	mu    sync.Mutex
	calls []string

	user    authrx.User
	err     error
	methods []string
	email   string
	info    *authrx.ActionCodeInfo

	// fireTwice double-fires completion callbacks to simulate a misbehaving
	// library.
	fireTwice bool
	// hold suppresses synchronous completion; the test fires the captured
	// callback later.
	hold     bool
	heldUser func(authrx.User, error)
	heldErr  func(error)

	lastSettings *authrx.ActionCodeSettings

	nextHandle     int
	stateListeners map[int]authrx.StateListener
	tokenListeners map[int]authrx.StateListener
	issued         []authrx.ListenerHandle
	removed        []authrx.ListenerHandle
}

func newStubClient() *stubClient {
	return &stubClient{
		stateListeners: map[int]authrx.StateListener{},
		tokenListeners: map[int]authrx.StateListener{},
	}
}

func (s *stubClient) record(call string) {
	s.mu.Lock()
	s.calls = append(s.calls, call)
	s.mu.Unlock()
}

func (s *stubClient) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *stubClient) callLog() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *stubClient) completeUser(done func(authrx.User, error)) {
	if s.hold {
		s.mu.Lock()
		s.heldUser = done
		s.mu.Unlock()
		return
	}
	done(s.user, s.err)
	if s.fireTwice {
		done(s.user, s.err)
	}
}

func (s *stubClient) completeErr(done func(error)) {
	if s.hold {
		s.mu.Lock()
		s.heldErr = done
		s.mu.Unlock()
		return
	}
	done(s.err)
	if s.fireTwice {
		done(s.err)
	}
}

func (s *stubClient) fireHeld() {
	s.mu.Lock()
	heldUser, heldErr := s.heldUser, s.heldErr
	s.mu.Unlock()

	if heldUser != nil {
		heldUser(s.user, s.err)
	}
	if heldErr != nil {
		heldErr(s.err)
	}
}

func (s *stubClient) SignInAnonymously(ctx context.Context, done func(authrx.User, error)) {
	s.record("SignInAnonymously()")
	s.completeUser(done)
}

func (s *stubClient) CreateUser(ctx context.Context, email, password string, done func(authrx.User, error)) {
	s.record(fmt.Sprintf("CreateUser(%s,%s)", email, password))
	s.completeUser(done)
}

func (s *stubClient) SignInWithPassword(ctx context.Context, email, password string, done func(authrx.User, error)) {
	s.record(fmt.Sprintf("SignInWithPassword(%s,%s)", email, password))
	s.completeUser(done)
}

func (s *stubClient) SignInWithEmailLink(ctx context.Context, email, link string, done func(authrx.User, error)) {
	s.record(fmt.Sprintf("SignInWithEmailLink(%s,%s)", email, link))
	s.completeUser(done)
}

func (s *stubClient) SendSignInLink(ctx context.Context, email string, settings *authrx.ActionCodeSettings, done func(error)) {
	s.record(fmt.Sprintf("SendSignInLink(%s)", email))
	s.mu.Lock()
	s.lastSettings = settings
	s.mu.Unlock()
	s.completeErr(done)
}

func (s *stubClient) FetchSignInMethods(ctx context.Context, email string, done func([]string, error)) {
	s.record(fmt.Sprintf("FetchSignInMethods(%s)", email))
	if s.hold {
		return
	}
	done(s.methods, s.err)
}

func (s *stubClient) ConfirmPasswordReset(ctx context.Context, code, newPassword string, done func(error)) {
	s.record(fmt.Sprintf("ConfirmPasswordReset(%s,%s)", code, newPassword))
	s.completeErr(done)
}

func (s *stubClient) VerifyPasswordResetCode(ctx context.Context, code string, done func(string, error)) {
	s.record(fmt.Sprintf("VerifyPasswordResetCode(%s)", code))
	done(s.email, s.err)
}

func (s *stubClient) CheckActionCode(ctx context.Context, code string, done func(*authrx.ActionCodeInfo, error)) {
	s.record(fmt.Sprintf("CheckActionCode(%s)", code))
	done(s.info, s.err)
}

func (s *stubClient) ApplyActionCode(ctx context.Context, code string, done func(error)) {
	s.record(fmt.Sprintf("ApplyActionCode(%s)", code))
	s.completeErr(done)
}

func (s *stubClient) SendPasswordReset(ctx context.Context, email string, done func(error)) {
	s.record(fmt.Sprintf("SendPasswordReset(%s)", email))
	s.completeErr(done)
}

func (s *stubClient) SendPasswordResetWithSettings(ctx context.Context, email string, settings *authrx.ActionCodeSettings, done func(error)) {
	s.record(fmt.Sprintf("SendPasswordResetWithSettings(%s)", email))
	s.mu.Lock()
	s.lastSettings = settings
	s.mu.Unlock()
	s.completeErr(done)
}

func (s *stubClient) AddStateListener(fn authrx.StateListener) authrx.ListenerHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextHandle++
	handle := s.nextHandle
	s.stateListeners[handle] = fn
	s.issued = append(s.issued, handle)
	return handle
}

func (s *stubClient) RemoveStateListener(handle authrx.ListenerHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed = append(s.removed, handle)
	if id, ok := handle.(int); ok {
		delete(s.stateListeners, id)
	}
}

func (s *stubClient) AddIDTokenListener(fn authrx.StateListener) authrx.ListenerHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextHandle++
	handle := s.nextHandle
	s.tokenListeners[handle] = fn
	s.issued = append(s.issued, handle)
	return handle
}

func (s *stubClient) RemoveIDTokenListener(handle authrx.ListenerHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed = append(s.removed, handle)
	if id, ok := handle.(int); ok {
		delete(s.tokenListeners, id)
	}
}

func (s *stubClient) stateListenerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stateListeners)
}

func (s *stubClient) tokenListenerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tokenListeners)
}

func (s *stubClient) issuedHandles() []authrx.ListenerHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]authrx.ListenerHandle(nil), s.issued...)
}

func (s *stubClient) removedHandles() []authrx.ListenerHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]authrx.ListenerHandle(nil), s.removed...)
}

// emitState delivers a state notification to every registered state listener.
func (s *stubClient) emitState(user authrx.User) {
	s.mu.Lock()
	fns := make([]authrx.StateListener, 0, len(s.stateListeners))
	for _, fn := range s.stateListeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(s, user)
	}
}

// emitToken delivers a notification to every registered ID-token listener.
func (s *stubClient) emitToken(user authrx.User) {
	s.mu.Lock()
	fns := make([]authrx.StateListener, 0, len(s.tokenListeners))
	for _, fn := range s.tokenListeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(s, user)
	}
}
