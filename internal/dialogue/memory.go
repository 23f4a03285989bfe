package dialogue

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory holds one session's history, slot state and lifecycle state. All
// methods are safe for concurrent use; turns within a session are serialized
// by the controller.
type Memory struct {
	mu            sync.RWMutex
	sessionID     string
	turns         []Turn
	slots         Slots
	state         State
	maxTurns      int
	contextWindow int
	createdAt     time.Time
}

// MemorySnapshot is a value copy of a session for external inspection.
type MemorySnapshot struct {
	SessionID string    `json:"session_id"`
	State     State     `json:"state"`
	Slots     Slots     `json:"slots"`
	Turns     []Turn    `json:"turns"`
	CreatedAt time.Time `json:"created_at"`
}

func NewMemory(maxTurns, contextWindow int) *Memory {
	if maxTurns <= 0 {
		maxTurns = 50
	}
	if contextWindow <= 0 {
		contextWindow = 5
	}
	return &Memory{
		sessionID:     uuid.NewString(),
		state:         StateIdle,
		maxTurns:      maxTurns,
		contextWindow: contextWindow,
		createdAt:     time.Now().UTC(),
	}
}

func (m *Memory) SessionID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessionID
}

// AddTurn appends a completed exchange with a snapshot of the current slots.
// The oldest turn is evicted once the history is full.
func (m *Memory) AddTurn(userMessage, botResponse string, intent Intent, action string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = append(m.turns, Turn{
		UserMessage: userMessage,
		BotResponse: botResponse,
		Intent:      intent,
		Action:      action,
		Slots:       m.slots,
		Timestamp:   time.Now().UTC(),
	})
	if len(m.turns) > m.maxTurns {
		m.turns = m.turns[len(m.turns)-m.maxTurns:]
	}
}

// Context renders the most recent exchanges for intent fallback and
// debugging. depth <= 0 uses the configured window.
func (m *Memory) Context(depth int) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if depth <= 0 {
		depth = m.contextWindow
	}
	if len(m.turns) == 0 {
		return "No previous context."
	}
	start := len(m.turns) - depth
	if start < 0 {
		start = 0
	}
	var b strings.Builder
	b.WriteString("Recent conversation history:")
	for _, t := range m.turns[start:] {
		fmt.Fprintf(&b, "\nUser: %s\nBot: %s", t.UserMessage, t.BotResponse)
	}
	return b.String()
}

// UpdateSlots merges non-empty fields of the update into the session slots.
// There is no implicit clearing; Reset is the only way to drop a slot.
func (m *Memory) UpdateSlots(u SlotUpdate) {
	if u.IsZero() {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.Location != "" {
		m.slots.Location = u.Location
	}
	if u.OutletName != "" {
		m.slots.OutletName = u.OutletName
	}
	if u.QueryType != "" {
		m.slots.QueryType = u.QueryType
	}
	if u.CalculationExpression != "" {
		m.slots.CalculationExpression = u.CalculationExpression
	}
	if u.ProductSearchTerm != "" {
		m.slots.ProductSearchTerm = u.ProductSearchTerm
	}
	m.slots.UpdatedAt = time.Now().UTC()
}

func (m *Memory) SetState(s State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s
}

func (m *Memory) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Reset clears history and slots and issues a fresh session id.
func (m *Memory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessionID = uuid.NewString()
	m.turns = nil
	m.slots = Slots{}
	m.state = StateIdle
	m.createdAt = time.Now().UTC()
}

func (m *Memory) TurnCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.turns)
}

// LastTurn returns the most recent exchange, if any.
func (m *Memory) LastTurn() (Turn, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.turns) == 0 {
		return Turn{}, false
	}
	return m.turns[len(m.turns)-1], true
}

func (m *Memory) SlotsCopy() Slots {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.slots
}

// Snapshot copies the whole session state by value.
func (m *Memory) Snapshot() MemorySnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	turns := make([]Turn, len(m.turns))
	copy(turns, m.turns)
	return MemorySnapshot{
		SessionID: m.sessionID,
		State:     m.state,
		Slots:     m.slots,
		Turns:     turns,
		CreatedAt: m.createdAt,
	}
}
