package api

import (
	"errors"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"omnibot/session"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// clientMessage is what the page sends over the socket.
type clientMessage struct {
	Type   string `json:"type"`
	Prompt string `json:"prompt,omitempty"`
	Model  string `json:"model,omitempty"`
}

func (h *handler) handleWS(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WS upgrade error: %v", err)
		return
	}
	defer conn.Close()

	// gorilla/websocket forbids concurrent writes.
	var writeMu sync.Mutex
	writeMsg := func(msg any) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteJSON(msg)
	}

	outChan := make(chan session.Message, 64)
	kick := s.SetClient(outChan)
	defer s.ClearClient(outChan)

	snap := s.Snapshot()
	if err := writeMsg(session.Message{Type: session.MessageState, State: &snap}); err != nil {
		log.Printf("WS initial state error: %v", err)
		return
	}

	// Exits when ClearClient closes outChan.
	go func() {
		for msg := range outChan {
			if err := writeMsg(msg); err != nil {
				return
			}
		}
	}()

	// Close the connection on session end or displacement so ReadJSON
	// below unblocks.
	connDone := make(chan struct{})
	go func() {
		select {
		case <-s.Done():
			writeMsg(session.Message{Type: "closed"}) //nolint:errcheck
			conn.Close()
		case <-kick:
			// No "closed" message: the page shows the disconnected overlay
			// rather than session-ended.
			conn.Close()
		case <-connDone:
		}
	}()
	defer close(connDone)

	for {
		var msg clientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}

		var opErr error
		switch msg.Type {
		case "query":
			h.retryReadiness(r.Context())
			opErr = s.Submit(msg.Prompt)
		case "refresh":
			h.retryReadiness(r.Context())
			opErr = s.Refresh()
		case "stop":
			if err := s.Stop(); err != nil && !errors.Is(err, session.ErrIdle) {
				opErr = err
			}
		case "expand":
			_, opErr = s.ToggleExpand(msg.Model)
		case "maximize":
			_, opErr = s.ToggleMaximize(msg.Model)
		default:
			continue
		}
		if opErr != nil {
			n := session.NoticeFor(opErr)
			if err := writeMsg(session.Message{Type: session.MessageNotice, Notice: &n}); err != nil {
				return
			}
		}
	}
}
