// Package session tracks concurrent conversations and hands each one to at
// most one active turn at a time.
package session

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"matchday/internal/conversation"
)

var (
	// ErrUnknownSession is returned for IDs the manager never issued.
	ErrUnknownSession = errors.New("unknown session")
	// ErrSessionBusy is returned when a session already has an active turn.
	ErrSessionBusy = errors.New("session has an active turn")
)

type entry struct {
	state *conversation.State
	busy  bool
}

// Manager owns the session table. Acquire gives a turn exclusive access to a
// session's state; Release returns it. States are never shared between two
// active turns.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*entry
	logger   *zap.Logger
}

func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{sessions: make(map[string]*entry), logger: logger}
}

// Create starts a new session and returns its ID.
func (m *Manager) Create() string {
	id := uuid.NewString()
	m.mu.Lock()
	m.sessions[id] = &entry{state: conversation.NewState(id)}
	m.mu.Unlock()
	m.logger.Info("session created", zap.String("session", id))
	return id
}

// Acquire claims the session for one turn. The caller must Release it.
func (m *Manager) Acquire(id string) (*conversation.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[id]
	if !ok {
		return nil, ErrUnknownSession
	}
	if e.busy {
		return nil, ErrSessionBusy
	}
	e.busy = true
	return e.state, nil
}

// Release returns the session after a turn. Releasing an unknown or idle
// session is a no-op.
func (m *Manager) Release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.sessions[id]; ok {
		e.busy = false
	}
}

// Close removes a session. Active turns keep their state pointer but the ID
// can no longer be acquired.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
