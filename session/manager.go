package session

import (
	"context"
	"errors"
	"log"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"omnibot/dispatch"
)

var ErrNotFound = errors.New("session not found")

// DefaultTTL is how long a session without a client may sit idle.
const DefaultTTL = 30 * time.Minute

type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	dispatcher *dispatch.Dispatcher
	prefs      Preferences
	ttl        time.Duration
	now        func() time.Time
	interval   time.Duration
	phrase     func() string
}

type Option func(*Manager)

// WithTTL sets the idle time after which Reap removes a session. Zero or
// negative disables reaping.
func WithTTL(d time.Duration) Option {
	return func(m *Manager) { m.ttl = d }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithPhrases sets how often the loading text changes and where the next
// phrase comes from.
func WithPhrases(interval time.Duration, next func() string) Option {
	return func(m *Manager) {
		m.interval = interval
		if next != nil {
			m.phrase = next
		}
	}
}

func NewManager(d *dispatch.Dispatcher, p Preferences, opts ...Option) *Manager {
	m := &Manager{
		sessions:   make(map[string]*Session),
		dispatcher: d,
		prefs:      p,
		ttl:        DefaultTTL,
		now:        time.Now,
		interval:   DefaultPhraseInterval,
		phrase:     randomPhrase,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) Create() *Session {
	now := m.now()
	s := &Session{
		ID:         uuid.New().String(),
		CreatedAt:  now,
		dispatcher: m.dispatcher,
		prefs:      m.prefs,
		now:        m.now,
		interval:   m.interval,
		phrase:     m.phrase,
		lastActive: now,
		done:       make(chan struct{}),
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// List returns sessions oldest first.
func (m *Manager) List() []*Session {
	m.mu.RLock()
	list := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		list = append(list, s)
	}
	m.mu.RUnlock()

	slices.SortFunc(list, func(a, b *Session) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return list
}

func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Close stops any running query and forgets the session.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	s.Close()
	return nil
}

// Broadcast pushes the current state of every session to its client.
func (m *Manager) Broadcast() {
	for _, s := range m.List() {
		s.Publish()
	}
}

// Reap closes sessions that have had no client and no activity for longer
// than the TTL. It returns the number closed.
func (m *Manager) Reap() int {
	if m.ttl <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.ttl)

	var stale []*Session
	m.mu.Lock()
	for id, s := range m.sessions {
		if s.idle(cutoff) {
			stale = append(stale, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range stale {
		s.Close()
	}
	return len(stale)
}

// RunReaper calls Reap every interval until ctx is done.
func (m *Manager) RunReaper(ctx context.Context, interval time.Duration) {
	if m.ttl <= 0 || interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := m.Reap(); n > 0 {
				log.Printf("reaped %d idle session(s)", n)
			}
		}
	}
}

// CloseAll closes every session, e.g. on shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	all := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range all {
		s.Close()
	}
}
