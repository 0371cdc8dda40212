// Package session owns the client's current belief about who is logged in.
// All transitions funnel through a single-writer queue so a forced logout
// racing an in-flight login resolves deterministically by queue order, never
// by network timing.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"unimart/internal/identity"
	"unimart/internal/store"
	"unimart/internal/token"
	"unimart/pkg/platform/sentinel"
)

// Phase is the lifecycle state of the session.
type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseLoading
	PhaseAuthenticated
	PhaseAnonymous
)

func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseLoading:
		return "loading"
	case PhaseAuthenticated:
		return "authenticated"
	case PhaseAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// Snapshot is an immutable view of the session at one point in time.
type Snapshot struct {
	Phase   Phase
	Token   string
	Role    identity.Role
	Profile identity.Profile
}

// IsAuthenticated reports token presence only; staleness is a separate
// question answered by the token package.
func (s Snapshot) IsAuthenticated() bool {
	return s.Token != ""
}

type transition struct {
	apply func() error
	reply chan error
}

// Manager is the process-wide session state machine. Construct one at
// application start and inject it; there is no package-level singleton.
type Manager struct {
	store  store.Store
	logger *slog.Logger

	queue chan transition

	mu   sync.RWMutex
	snap Snapshot

	hydrateOnce sync.Once

	subsMu sync.Mutex
	subs   []chan Snapshot
}

func NewManager(st store.Store, logger *slog.Logger) *Manager {
	return &Manager{
		store:  st,
		logger: logger,
		queue:  make(chan transition, 16),
		snap:   Snapshot{Phase: PhaseUninitialized},
	}
}

// Run consumes queued transitions until ctx is canceled. Exactly one Run per
// manager; it is the only goroutine that ever writes the snapshot.
func (m *Manager) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case t := <-m.queue:
			t.reply <- t.apply()
		}
	}
}

// do enqueues a transition and waits for it to apply. If ctx is canceled
// after enqueueing, the transition still applies in queue order; only the
// wait is abandoned.
func (m *Manager) do(ctx context.Context, apply func() error) error {
	t := transition{apply: apply, reply: make(chan error, 1)}
	select {
	case m.queue <- t:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-t.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Hydrate restores the session from the persistent store. It runs exactly
// once per process lifetime; later calls return immediately. Whatever the
// outcome, Loading() settles to false and never flips back.
func (m *Manager) Hydrate(ctx context.Context) error {
	var err error
	m.hydrateOnce.Do(func() {
		err = m.do(ctx, func() error { return m.hydrate(ctx) })
	})
	return err
}

func (m *Manager) hydrate(ctx context.Context) error {
	m.setSnapshot(Snapshot{Phase: PhaseLoading})

	entry, err := m.store.Load(ctx)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		m.setSnapshot(Snapshot{Phase: PhaseAnonymous})
		return nil
	case errors.Is(err, sentinel.ErrPartialState):
		// The store already purged the corrupt set.
		m.logger.WarnContext(ctx, "purged partially persisted session during hydration")
		m.setSnapshot(Snapshot{Phase: PhaseAnonymous})
		return nil
	case err != nil:
		m.setSnapshot(Snapshot{Phase: PhaseAnonymous})
		return err
	}

	role, roleOK := identity.ParseRole(entry.Role)
	if !token.Valid(entry.Token) || !roleOK || entry.Profile.IsZero() {
		m.logger.WarnContext(ctx, "cleared invalid persisted session during hydration",
			"token_valid", token.Valid(entry.Token),
			"role_known", roleOK,
		)
		if clearErr := m.store.Clear(ctx); clearErr != nil {
			m.logger.ErrorContext(ctx, "failed to clear invalid session", "error", clearErr)
		}
		m.setSnapshot(Snapshot{Phase: PhaseAnonymous})
		return nil
	}

	m.setSnapshot(Snapshot{
		Phase:   PhaseAuthenticated,
		Token:   entry.Token,
		Role:    role,
		Profile: entry.Profile,
	})
	return nil
}

// Login persists the credential set first, then updates the in-memory state.
// When persistence fails the error propagates and no partial transition
// happens. Client-side token validation is deliberately NOT a precondition:
// the backend accepted this login, so the session must too.
func (m *Manager) Login(ctx context.Context, rawToken string, role identity.Role, profile identity.Profile) error {
	return m.do(ctx, func() error {
		entry := store.Entry{Token: rawToken, Role: string(role), Profile: profile}
		if err := m.store.SetOptimistic(ctx, entry); err != nil {
			return err
		}
		m.setSnapshot(Snapshot{
			Phase:   PhaseAuthenticated,
			Token:   rawToken,
			Role:    role,
			Profile: profile,
		})
		return nil
	})
}

// Logout clears storage and settles to anonymous. Idempotent: logging out an
// already-anonymous session succeeds and clears storage again.
func (m *Manager) Logout(ctx context.Context) error {
	return m.do(ctx, func() error { return m.clear(ctx) })
}

// ForceLogout is the transition the request layer triggers on a server-side
// authentication failure. Side effects are identical to Logout.
func (m *Manager) ForceLogout(ctx context.Context, reason string) error {
	return m.do(ctx, func() error {
		m.logger.WarnContext(ctx, "forced logout", "reason", reason)
		return m.clear(ctx)
	})
}

func (m *Manager) clear(ctx context.Context) error {
	err := m.store.Clear(ctx)
	// The in-memory session goes anonymous even when the store misbehaves;
	// holding on to a credential we failed to wipe would be worse.
	m.setSnapshot(Snapshot{Phase: PhaseAnonymous})
	return err
}

// Current returns a point-in-time view of the session.
func (m *Manager) Current() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap
}

// Loading reports whether the startup hydration probe has not settled yet.
// Guards must not make redirect decisions while this is true.
func (m *Manager) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap.Phase == PhaseUninitialized || m.snap.Phase == PhaseLoading
}

// IsAuthenticated reports whether a credential is held. Expiry is not
// re-checked here; consult the token package for staleness.
func (m *Manager) IsAuthenticated() bool {
	return m.Current().IsAuthenticated()
}

// HasRole reports whether the session satisfies the required role under the
// privilege ordering. Always false without a session.
func (m *Manager) HasRole(required identity.Role) bool {
	snap := m.Current()
	if !snap.IsAuthenticated() {
		return false
	}
	return snap.Role.Satisfies(required)
}

// Subscribe returns a channel receiving every settled snapshot in transition
// order. Slow subscribers miss updates rather than blocking the writer.
func (m *Manager) Subscribe() <-chan Snapshot {
	ch := make(chan Snapshot, 8)
	m.subsMu.Lock()
	m.subs = append(m.subs, ch)
	m.subsMu.Unlock()
	return ch
}

func (m *Manager) setSnapshot(snap Snapshot) {
	m.mu.Lock()
	m.snap = snap
	m.mu.Unlock()

	m.subsMu.Lock()
	defer m.subsMu.Unlock()
	for _, ch := range m.subs {
		select {
		case ch <- snap:
		default:
		}
	}
}
