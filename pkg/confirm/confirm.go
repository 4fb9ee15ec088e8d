// Package confirm models a pending interactive prompt: a button the user
// has some bounded time to press. The prompt is pure bookkeeping, decoupled
// from ledger and directory logic. Expiry just makes the affordance inert,
// it never unwinds state, because nothing mutates until a prompt resolves.
package confirm

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State is the lifecycle of a prompt. A prompt moves Pending→Resolved or
// Pending→Expired exactly once.
type State int

const (
	StatePending State = iota
	StateResolved
	StateExpired
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateResolved:
		return "resolved"
	case StateExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Prompt is one open confirmation.
type Prompt struct {
	ID        string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
}

// State returns the prompt's current lifecycle state.
func (p *Prompt) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Manager tracks open prompts and expires them on a timeout tied to a
// cancellation token, so a resolved prompt never fires its expiry hook.
type Manager struct {
	mu      sync.Mutex
	prompts map[string]*Prompt
}

func NewManager() *Manager {
	return &Manager{prompts: make(map[string]*Prompt)}
}

// Create opens a prompt for a user with the given time window. onExpire, if
// non-nil, runs once if the window lapses unresolved (e.g. to disable the
// button); it never runs for a resolved prompt.
func (m *Manager) Create(userID string, ttl time.Duration, onExpire func(id string)) *Prompt {
	ctx, cancel := context.WithTimeout(context.Background(), ttl)
	now := time.Now()
	p := &Prompt{
		ID:        uuid.New().String(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
		state:     StatePending,
		cancel:    cancel,
	}

	m.mu.Lock()
	m.prompts[p.ID] = p
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		if ctx.Err() != context.DeadlineExceeded {
			return
		}
		p.mu.Lock()
		if p.state != StatePending {
			p.mu.Unlock()
			return
		}
		p.state = StateExpired
		p.mu.Unlock()

		m.remove(p.ID)
		if onExpire != nil {
			onExpire(p.ID)
		}
	}()

	return p
}

// Resolve marks a pending prompt resolved and cancels its expiry timer.
// Returns false if the prompt is unknown, already resolved, or expired;
// the caller must not act on a false return.
func (m *Manager) Resolve(id string) bool {
	m.mu.Lock()
	p, ok := m.prompts[id]
	m.mu.Unlock()
	if !ok {
		return false
	}

	p.mu.Lock()
	if p.state != StatePending {
		p.mu.Unlock()
		return false
	}
	p.state = StateResolved
	p.mu.Unlock()

	p.cancel()
	m.remove(id)
	return true
}

// Get looks up an open prompt by id.
func (m *Manager) Get(id string) (*Prompt, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.prompts[id]
	return p, ok
}

// Open reports how many prompts are currently pending.
func (m *Manager) Open() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

func (m *Manager) remove(id string) {
	m.mu.Lock()
	delete(m.prompts, id)
	m.mu.Unlock()
}
