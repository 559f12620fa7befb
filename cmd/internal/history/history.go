package history

import (
	"context"
	"fmt"
	"sync"
)

type Role string

const (
	RoleHuman Role = "human"
	RoleAI    Role = "ai"
)

// Turn is one role tagged message of a conversation.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

func Human(content string) Turn {
	return Turn{Role: RoleHuman, Content: content}
}

func AI(content string) Turn {
	return Turn{Role: RoleAI, Content: content}
}

// Store persists turns per opaque session id, oldest first.
type Store interface {
	Get(ctx context.Context, sessionID string) ([]Turn, error)
	Append(ctx context.Context, sessionID string, turns ...Turn) error
	Clear(ctx context.Context, sessionID string) error
}

// StoreError marks a failure of the history backend, as opposed to a failure
// of the turn function.
type StoreError struct {
	Op        string
	SessionID string
	Err       error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s history for session %s: %v", e.Op, e.SessionID, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Manager serializes turns per session on top of a Store. Different sessions
// proceed in parallel.
type Manager struct {
	store Store
	limit int

	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// NewManager wraps store. limit caps how many recent turns are handed to a
// turn function; zero or less hands over everything.
func NewManager(store Store, limit int) *Manager {
	return &Manager{store: store, limit: limit, locks: make(map[string]*sessionLock)}
}

// Turn reads the session history, runs fn with it and appends what fn
// returns, all under the session lock. Nothing is appended when fn fails.
func (m *Manager) Turn(ctx context.Context, sessionID string, fn func(past []Turn) ([]Turn, error)) error {
	unlock := m.lock(sessionID)
	defer unlock()

	past, err := m.store.Get(ctx, sessionID)
	if err != nil {
		return &StoreError{Op: "load", SessionID: sessionID, Err: err}
	}

	added, err := fn(m.window(past))
	if err != nil {
		return err
	}
	if len(added) == 0 {
		return nil
	}

	if err := m.store.Append(ctx, sessionID, added...); err != nil {
		return &StoreError{Op: "append", SessionID: sessionID, Err: err}
	}
	return nil
}

func (m *Manager) History(ctx context.Context, sessionID string) ([]Turn, error) {
	unlock := m.lock(sessionID)
	defer unlock()

	turns, err := m.store.Get(ctx, sessionID)
	if err != nil {
		return nil, &StoreError{Op: "load", SessionID: sessionID, Err: err}
	}
	return turns, nil
}

func (m *Manager) Clear(ctx context.Context, sessionID string) error {
	unlock := m.lock(sessionID)
	defer unlock()

	if err := m.store.Clear(ctx, sessionID); err != nil {
		return &StoreError{Op: "clear", SessionID: sessionID, Err: err}
	}
	return nil
}

func (m *Manager) window(past []Turn) []Turn {
	if m.limit <= 0 || len(past) <= m.limit {
		return past
	}
	return past[len(past)-m.limit:]
}

func (m *Manager) lock(sessionID string) func() {
	m.mu.Lock()
	l, ok := m.locks[sessionID]
	if !ok {
		l = &sessionLock{}
		m.locks[sessionID] = l
	}
	l.refs++
	m.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		m.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(m.locks, sessionID)
		}
		m.mu.Unlock()
	}
}
