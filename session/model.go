package session

import (
	"context"
	"sync"
	"time"

	"omnibot/card"
	"omnibot/dispatch"
	"omnibot/model"
	"omnibot/prefs"
)

// Preferences is the slice of the preferences object a session reads.
type Preferences interface {
	SelectedModels() []string
	Layout() prefs.Layout
}

// Session is one open page: the last result set, its cards, and the loading
// state of the query in flight.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	dispatcher *dispatch.Dispatcher
	prefs      Preferences
	now        func() time.Time
	interval   time.Duration
	phrase     func() string

	mu          sync.Mutex
	lastActive  time.Time
	prompt      string
	responses   []model.Response
	ids         []string
	board       card.Board
	loading     bool
	loadingText string
	cancel      context.CancelFunc
	gen         uint64
	closed      bool

	outChan   chan Message
	kickChan  chan struct{}
	connected bool
	outMu     sync.Mutex

	done      chan struct{}
	closeOnce sync.Once
}

// Card is one rendered result.
type Card struct {
	ID       string `json:"id"`
	Model    string `json:"model"`
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
	Detail   string `json:"detail,omitempty"`
	State    string `json:"state"`
}

// Snapshot is a point-in-time copy of everything the page shows.
type Snapshot struct {
	ID          string       `json:"id"`
	Loading     bool         `json:"loading"`
	LoadingText string       `json:"loadingText,omitempty"`
	Cards       []Card       `json:"cards"`
	Maximized   string       `json:"maximized,omitempty"`
	Prompt      string       `json:"prompt,omitempty"`
	ViewLayout  prefs.Layout `json:"viewLayout"`
	Connected   bool         `json:"connected"`
	CreatedAt   time.Time    `json:"created_at"`
	LastActive  time.Time    `json:"last_active"`
}

// Message is what gets pushed to the connected client.
type Message struct {
	Type   string    `json:"type"`
	State  *Snapshot `json:"state,omitempty"`
	Notice *Notice   `json:"notice,omitempty"`
}

const (
	MessageState  = "state"
	MessageNotice = "notice"
)

// SetClient registers a channel to receive pushed messages. A previously
// connected client is kicked: its kick channel is closed so the websocket
// handler can close that connection. The returned kick channel is closed if
// this client is itself later displaced.
func (s *Session) SetClient(ch chan Message) <-chan struct{} {
	s.outMu.Lock()
	if s.kickChan != nil {
		close(s.kickChan)
	}
	kick := make(chan struct{})
	s.kickChan = kick
	s.outChan = ch
	s.connected = true
	s.outMu.Unlock()

	s.mu.Lock()
	s.lastActive = s.now()
	s.mu.Unlock()
	return kick
}

// ClearClient is called when a connection ends. Session state is only
// updated if ch is still the current client, so a displaced connection
// cannot clear a newer one. ch is always closed.
func (s *Session) ClearClient(ch chan Message) {
	s.outMu.Lock()
	if s.outChan == ch {
		s.outChan = nil
		s.connected = false
		s.kickChan = nil
	}
	s.outMu.Unlock()
	close(ch)
}

func (s *Session) Connected() bool {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	return s.connected
}

// Done is closed when the session is closed.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) push(msg Message) {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	if s.outChan == nil {
		return
	}
	select {
	case s.outChan <- msg:
	default:
		// client is behind; drop
	}
}

// Caller must hold s.mu.
func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		ID:         s.ID,
		Loading:    s.loading,
		Cards:      make([]Card, 0, len(s.responses)),
		Maximized:  s.board.Maximized(),
		Prompt:     s.prompt,
		ViewLayout: s.prefs.Layout(),
		Connected:  s.Connected(),
		CreatedAt:  s.CreatedAt,
		LastActive: s.lastActive,
	}
	if s.loading {
		snap.LoadingText = s.loadingText
	}
	for i, r := range s.responses {
		id := s.ids[i]
		snap.Cards = append(snap.Cards, Card{
			ID:       id,
			Model:    r.Model,
			Response: r.Response,
			Error:    r.Error,
			Detail:   r.Detail,
			State:    s.board.State(id).String(),
		})
	}
	return snap
}

// Caller must hold s.mu.
func (s *Session) publishLocked() {
	snap := s.snapshotLocked()
	s.push(Message{Type: MessageState, State: &snap})
}

// Caller must hold s.mu.
func (s *Session) notifyLocked(n Notice) {
	s.push(Message{Type: MessageNotice, Notice: &n})
}
