package session

import (
	"context"
	"errors"
	"log"
	"slices"
	"time"
)

var (
	ErrBusy        = errors.New("a query is already running")
	ErrIdle        = errors.New("no query is running")
	ErrUnknownCard = errors.New("no such card")
	ErrClosed      = errors.New("session is closed")
	ErrNoPrompt    = errors.New("no previous query to refresh")
)

// Submit starts a query with the current selection and returns at once.
// Previous results and the maximized card are cleared. A submit while a
// query is running fails with ErrBusy; dispatch preconditions are checked
// before anything changes.
func (s *Session) Submit(prompt string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitLocked(prompt)
}

// Refresh runs the last submitted prompt again with the current selection.
func (s *Session) Refresh() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed && s.prompt == "" {
		return ErrNoPrompt
	}
	return s.submitLocked(s.prompt)
}

// Caller must hold s.mu.
func (s *Session) submitLocked(prompt string) error {
	if s.closed {
		return ErrClosed
	}
	if s.loading {
		return ErrBusy
	}
	selection := s.prefs.SelectedModels()
	if err := s.dispatcher.Validate(prompt, selection); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.gen++
	gen := s.gen
	s.cancel = cancel
	s.loading = true
	s.loadingText = InitialLoadingText
	s.prompt = prompt
	s.responses = nil
	s.ids = nil
	s.board.Clear()
	s.lastActive = s.now()

	go s.run(ctx, gen, prompt, selection)
	go s.rotate(ctx, gen)

	s.publishLocked()
	return nil
}

func (s *Session) run(ctx context.Context, gen uint64, prompt string, selection []string) {
	results, err := s.dispatcher.Dispatch(ctx, prompt, selection)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen || !s.loading {
		// stopped or closed; results are discarded
		return
	}
	s.cancel()
	s.cancel = nil
	s.loading = false

	if err != nil {
		log.Printf("session %s: query failed: %v", s.ID, err)
		s.notifyLocked(QueryFailed)
		s.publishLocked()
		return
	}
	s.responses = results
	s.ids = slices.Clone(selection)
	s.board.Reset(s.ids)
	s.publishLocked()
}

// Stop cancels the running query. Loading clears immediately and whatever
// the providers still return is ignored.
func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loading {
		return ErrIdle
	}
	s.stopLocked()
	s.lastActive = s.now()
	s.notifyLocked(Stopped)
	s.publishLocked()
	return nil
}

// Caller must hold s.mu.
func (s *Session) stopLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.gen++
	s.loading = false
}

// ToggleExpand flips a result card between collapsed and expanded.
func (s *Session) ToggleExpand(id string) (Snapshot, error) {
	return s.cardOp(id, func() { s.board.ToggleExpand(id) })
}

// ToggleMaximize maximizes or restores an expanded result card.
func (s *Session) ToggleMaximize(id string) (Snapshot, error) {
	return s.cardOp(id, func() { s.board.ToggleMaximize(id) })
}

func (s *Session) cardOp(id string, op func()) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !slices.Contains(s.ids, id) {
		return Snapshot{}, ErrUnknownCard
	}
	op()
	s.lastActive = s.now()
	s.publishLocked()
	return s.snapshotLocked(), nil
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Loading reports whether a query is in flight.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Publish pushes the current state to the client, e.g. after the shared
// preferences changed.
func (s *Session) Publish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publishLocked()
}

// Close cancels any running query and releases the client.
func (s *Session) Close() {
	s.mu.Lock()
	if s.loading {
		s.stopLocked()
	}
	s.closed = true
	s.mu.Unlock()
	s.closeOnce.Do(func() { close(s.done) })
}

// idle reports whether the session has been untouched since before cutoff
// with no client and no query running.
func (s *Session) idle(cutoff time.Time) bool {
	if s.Connected() {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.loading && s.lastActive.Before(cutoff)
}
