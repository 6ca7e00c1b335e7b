package register

import (
	"sort"
	"strings"
	"sync"

	"github.com/sangkips/tillpoint/internal/clock"
	"github.com/sangkips/tillpoint/internal/domain/pricing"
	"github.com/sangkips/tillpoint/internal/domain/settlement"
	"go.uber.org/zap"
)

// Manager owns one Session per terminal.
type Manager struct {
	mu       sync.Mutex
	deps     *Deps
	sessions map[string]*Session
}

func NewManager(deps Deps) *Manager {
	if deps.Clock == nil {
		deps.Clock = clock.System()
	}
	if deps.Reconciler == nil {
		deps.Reconciler = settlement.NewReconciler(pricing.DefaultConfig())
	}
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	deps.Log = deps.Log.Named("register")
	return &Manager{
		deps:     &deps,
		sessions: map[string]*Session{},
	}
}

// Session returns the terminal's session, opening it on first use.
func (m *Manager) Session(terminalID string) *Session {
	terminalID = strings.TrimSpace(terminalID)

	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[terminalID]; ok {
		return s
	}
	s := newSession(terminalID, m.deps)
	m.sessions[terminalID] = s
	m.deps.Log.Info("register session opened", zap.String("terminal_id", terminalID))
	return s
}

// Terminals lists terminals with an open session.
func (m *Manager) Terminals() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Close drops a terminal's session.
func (m *Manager) Close(terminalID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, terminalID)
}
