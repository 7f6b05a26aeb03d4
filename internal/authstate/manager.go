package authstate

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/terraconstructs/postboard/internal/session"
	"github.com/terraconstructs/postboard/pkg/sdk"
)

// Authenticator is the account API the manager drives. *sdk.AuthService
// satisfies it.
type Authenticator interface {
	Login(ctx context.Context, email, password string) sdk.Outcome[sdk.Session]
	Signup(ctx context.Context, email, password, confirmation string) sdk.Outcome[struct{}]
	Logout(ctx context.Context) sdk.Outcome[struct{}]
	ValidateToken(ctx context.Context, token string) bool
}

// Manager is the single writer of the session store and the single owner of
// the authentication state. Create one per process and pass it to every
// consumer.
//
// Listeners registered with Subscribe run after each transition, outside any
// lock. A listener never observes an older state after a newer one, though it
// may skip an intermediate state when transitions race.
type Manager struct {
	store  session.Store
	auth   Authenticator
	logger *slog.Logger

	startOnce   sync.Once
	resolved    chan struct{}
	resolveOnce sync.Once

	mu        sync.RWMutex
	state     State
	seq       uint64
	lastErr   string
	listeners map[uint64]*subscription
	nextID    uint64
}

type subscription struct {
	fn     func(State)
	active atomic.Bool
	last   atomic.Uint64
}

func (s *subscription) deliver(seq uint64, st State) {
	for {
		last := s.last.Load()
		if seq <= last {
			return
		}
		if s.last.CompareAndSwap(last, seq) {
			break
		}
	}
	if s.active.Load() {
		s.fn(st)
	}
}

// NewManager creates a Manager in the Loading state.
func NewManager(store session.Store, auth Authenticator, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		store:     store,
		auth:      auth,
		logger:    logger,
		resolved:  make(chan struct{}),
		state:     Loading{},
		listeners: make(map[uint64]*subscription),
	}
}

// State returns the current state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// LastError returns the message of the most recent failed login or signup,
// cleared by the next successful one.
func (m *Manager) LastError() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

// CurrentUser returns the signed-in user, or nil.
func (m *Manager) CurrentUser() *sdk.UserSummary {
	if a, ok := m.State().(Authenticated); ok {
		return a.User()
	}
	return nil
}

// Resolved is closed once the state has left Loading.
func (m *Manager) Resolved() <-chan struct{} {
	return m.resolved
}

// Wait blocks until the state has left Loading or ctx is done.
func (m *Manager) Wait(ctx context.Context) (State, error) {
	select {
	case <-m.resolved:
		return m.State(), nil
	case <-ctx.Done():
		return m.State(), ctx.Err()
	}
}

// Start resolves the persisted session. It runs at most once per Manager;
// later calls return immediately. The outcome is discarded when a login or
// logout has already resolved the state.
//
// No token: Unauthenticated without a network call. Token and user present
// but one of them missing: the store is cleared, Unauthenticated. Complete
// session: validated with the server; valid means Authenticated, anything
// else clears the store and resolves Unauthenticated.
func (m *Manager) Start(ctx context.Context) {
	m.startOnce.Do(func() {
		m.startup(ctx)
	})
}

func (m *Manager) startup(ctx context.Context) {
	persisted := m.store.Load()

	switch {
	case persisted.IsZero():
		m.finishStartup(Unauthenticated{}, false)
		return
	case persisted.Partial():
		m.logger.Warn("discarding partial persisted session",
			"has_token", persisted.Token != "", "has_user", persisted.User != nil)
		m.finishStartup(Unauthenticated{}, true)
		return
	}

	if !m.auth.ValidateToken(ctx, persisted.Token) {
		m.logger.Info("persisted session rejected by server; signing out")
		m.finishStartup(Unauthenticated{}, true)
		return
	}

	next, err := NewAuthenticated(persisted)
	if err != nil {
		m.finishStartup(Unauthenticated{}, true)
		return
	}
	m.finishStartup(next, false)
}

func (m *Manager) finishStartup(next State, clear bool) {
	m.mu.Lock()
	if IsResolved(m.state) {
		m.mu.Unlock()
		m.logger.Debug("startup result superseded", "state", m.State().String(), "discarded", next.String())
		return
	}
	if clear {
		if err := m.store.Clear(); err != nil {
			m.logger.Warn("failed to clear persisted session", "error", err)
		}
	}
	m.transition(next)
}

// Login authenticates and, on success, persists the session and moves to
// Authenticated. On failure the state is left as it was.
func (m *Manager) Login(ctx context.Context, email, password string) sdk.Outcome[sdk.Session] {
	out := m.auth.Login(ctx, email, password)
	if !out.Success() {
		m.recordError(out.Error)
		return out
	}

	next, err := NewAuthenticated(out.Data)
	if err != nil {
		fail := sdk.Fail[sdk.Session]("Invalid login response", &sdk.ProtocolError{Reason: err.Error()})
		m.recordError(fail.Error)
		return fail
	}

	m.mu.Lock()
	if err := m.store.Save(out.Data); err != nil {
		m.lastErr = "Failed to save session"
		m.mu.Unlock()
		return sdk.Fail[sdk.Session]("Failed to save session", fmt.Errorf("failed to save session: %w", err))
	}
	m.lastErr = ""
	m.transition(next)

	return out
}

// Signup registers an account. It never changes the state.
func (m *Manager) Signup(ctx context.Context, email, password, confirmation string) sdk.Outcome[struct{}] {
	out := m.auth.Signup(ctx, email, password, confirmation)
	if !out.Success() {
		m.recordError(out.Error)
		return out
	}
	m.recordError("")
	return out
}

// Logout asks the server to end the session, then clears the local session
// and moves to Unauthenticated no matter what the server said. A server
// failure is logged and swallowed. The returned error only reports a local
// store that could not be cleared.
func (m *Manager) Logout(ctx context.Context) error {
	if out := m.auth.Logout(ctx); !out.Success() {
		m.logger.Warn("server logout failed; clearing local session anyway", "error", out.Error)
	}

	m.mu.Lock()
	err := m.store.Clear()
	m.transition(Unauthenticated{})

	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Subscribe registers fn to run after every transition. The returned function
// unregisters it; after it returns, fn is not called for any later transition,
// so a consumer that has gone away never sees a late result.
func (m *Manager) Subscribe(fn func(State)) (cancel func()) {
	sub := &subscription{fn: fn}
	sub.active.Store(true)

	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = sub
	m.mu.Unlock()

	return func() {
		sub.active.Store(false)
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

// transition must be called with m.mu held; it releases the lock and then
// delivers next to listeners.
func (m *Manager) transition(next State) {
	prev := m.state
	m.state = next
	m.seq++
	seq := m.seq
	if !IsResolved(prev) && IsResolved(next) {
		m.resolveOnce.Do(func() { close(m.resolved) })
	}

	subs := make([]*subscription, 0, len(m.listeners))
	for _, sub := range m.listeners {
		subs = append(subs, sub)
	}
	m.mu.Unlock()

	m.logger.Debug("auth state transition", "from", prev.String(), "to", next.String())

	for _, sub := range subs {
		sub.deliver(seq, next)
	}
}

func (m *Manager) recordError(msg string) {
	m.mu.Lock()
	m.lastErr = msg
	m.mu.Unlock()
}
