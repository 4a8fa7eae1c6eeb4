// Package session implements the session manager: binds opaque
// session ids to tasks, tracks last-activity, and expires idle
// sessions via a background sweeper.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/fyrsmithlabs/modegate/internal/task"
	"github.com/google/uuid"
)

// ErrSessionNotFound is returned when a session id does not
// resolve, whether because it never existed or because it has expired.
var ErrSessionNotFound = errors.New("session not found")

// Session is a client-facing handle bound to exactly one Task.
type Session struct {
	SessionID    string
	Task         *task.Task
	CreatedAt    time.Time
	LastActivity time.Time
}

func (s *Session) expired(now time.Time, timeout time.Duration) bool {
	return now.Sub(s.LastActivity) > timeout
}

// Manager holds the session table and its task_id secondary index under
// one mutex — the dual-index invariant needs both maps updated
// atomically, which a lock-free map cannot express without an outer
// lock anyway, so a single sync.Mutex covers both.
type Manager struct {
	mu       sync.Mutex
	byID     map[string]*Session
	byTaskID map[string]string
	timeout  time.Duration
	now      func() time.Time
}

// NewManager builds a Manager with the given idle timeout.
func NewManager(timeout time.Duration) *Manager {
	return &Manager{
		byID:     make(map[string]*Session),
		byTaskID: make(map[string]string),
		timeout:  timeout,
		now:      time.Now,
	}
}

// CreateSession allocates a new session bound to t and installs it in
// both indices.
func (m *Manager) CreateSession(t *task.Task) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	s := &Session{
		SessionID:    uuid.NewString(),
		Task:         t,
		CreatedAt:    now,
		LastActivity: now,
	}
	m.byID[s.SessionID] = s
	m.byTaskID[t.TaskID] = s.SessionID
	return s
}

// GetSession resolves a session id, touching last_activity on a hit. An
// expired session is removed from both indices and reported as not found.
func (m *Manager) GetSession(sessionID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.byID[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	now := m.now()
	if s.expired(now, m.timeout) {
		m.removeLocked(s)
		return nil, ErrSessionNotFound
	}

	s.LastActivity = now
	return s, nil
}

// GetByTaskID resolves the session bound to a task id, with the same
// expiry/touch semantics as GetSession.
func (m *Manager) GetByTaskID(taskID string) (*Session, error) {
	m.mu.Lock()
	sessionID, ok := m.byTaskID[taskID]
	m.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return m.GetSession(sessionID)
}

// RemoveSession deletes a session immediately, used by complete_task's
// grace policy: removed inside the complete_task request, before its
// response is written, rather than left for the sweeper.
func (m *Manager) RemoveSession(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.byID[sessionID]; ok {
		m.removeLocked(s)
	}
}

func (m *Manager) removeLocked(s *Session) {
	delete(m.byID, s.SessionID)
	delete(m.byTaskID, s.Task.TaskID)
}

// Sweep deletes every session idle longer than the configured timeout.
// It takes the same lock request handlers use, so it never touches a
// session mid-mutation by an in-flight request. It returns the number
// of sessions removed.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for _, s := range m.byID {
		if s.expired(now, m.timeout) {
			m.removeLocked(s)
			removed++
		}
	}
	return removed
}

// Len reports the number of live sessions, for diagnostics and tests.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}
