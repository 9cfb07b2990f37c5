package session

import (
	"fmt"
	"strings"
	"sync"
)

// DefaultMaxHistory is how many user/assistant exchanges a session keeps.
const DefaultMaxHistory = 2

type exchange struct {
	role    string
	content string
}

// Manager keeps a rolling window of conversation history per session.
type Manager struct {
	maxHistory int

	mu       sync.Mutex
	sessions map[string][]exchange
	counter  int
}

func NewManager(maxHistory int) *Manager {
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	return &Manager{
		maxHistory: maxHistory,
		sessions:   make(map[string][]exchange),
	}
}

// CreateSession returns a fresh unique session identifier.
func (m *Manager) CreateSession() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("session_%d", m.counter)
}

// AddExchange records one user message and the assistant's answer,
// trimming the window to the configured maximum.
func (m *Manager) AddExchange(sessionID, userMessage, assistantMessage string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	history := append(m.sessions[sessionID],
		exchange{role: "User", content: userMessage},
		exchange{role: "Assistant", content: assistantMessage},
	)
	if max := m.maxHistory * 2; len(history) > max {
		history = history[len(history)-max:]
	}
	m.sessions[sessionID] = history
}

// FormatHistory renders the session's history for a prompt, oldest first.
// Returns "" for unknown or empty sessions.
func (m *Manager) FormatHistory(sessionID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	history := m.sessions[sessionID]
	if len(history) == 0 {
		return ""
	}
	lines := make([]string, 0, len(history))
	for _, ex := range history {
		lines = append(lines, fmt.Sprintf("%s: %s", ex.role, ex.content))
	}
	return strings.Join(lines, "\n")
}

// ClearSession drops a session's history.
func (m *Manager) ClearSession(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
}
