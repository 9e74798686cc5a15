package api_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"omnibot/session"
)

type wsOut struct {
	Type   string `json:"type"`
	Prompt string `json:"prompt,omitempty"`
	Model  string `json:"model,omitempty"`
}

func dialWS(t *testing.T, srv *httptest.Server, path string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	return websocket.DefaultDialer.Dial(wsURL, nil)
}

// readUntil reads messages until match returns true or the deadline passes.
func readUntil(t *testing.T, conn *websocket.Conn, match func(session.Message) bool) session.Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var msg session.Message
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("ReadJSON: %v", err)
		}
		if match(msg) {
			return msg
		}
	}
}

func TestWSNotFound(t *testing.T) {
	env := newTestEnv(t, 0)

	_, resp, err := dialWS(t, env.srv, "/api/sessions/nonexistent/ws")
	if err == nil {
		t.Fatal("expected error connecting to nonexistent session")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", resp)
	}
}

func TestWSInitialState(t *testing.T) {
	env := newTestEnv(t, 0)
	s := env.sessions.Create()

	conn, _, err := dialWS(t, env.srv, "/api/sessions/"+s.ID+"/ws")
	if err != nil {
		t.Fatalf("WS dial: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg session.Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if msg.Type != session.MessageState || msg.State == nil || msg.State.ID != s.ID {
		t.Fatalf("expected initial state for %s, got %+v", s.ID, msg)
	}
}

func TestWSQueryPushesResults(t *testing.T) {
	env := newTestEnv(t, 0)
	env.prefs.SetSelection([]string{"gemini", "gpt4"}) //nolint:errcheck
	s := env.sessions.Create()

	conn, _, err := dialWS(t, env.srv, "/api/sessions/"+s.ID+"/ws")
	if err != nil {
		t.Fatalf("WS dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(wsOut{Type: "query", Prompt: "ping"}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	msg := readUntil(t, conn, func(m session.Message) bool {
		return m.Type == session.MessageState && !m.State.Loading && len(m.State.Cards) == 2
	})
	if msg.State.Cards[0].Model != "Gemini" || msg.State.Cards[1].Response != "echo: ping" {
		t.Fatalf("unexpected cards %+v", msg.State.Cards)
	}
}

func TestWSRejectedQueryGetsNotice(t *testing.T) {
	env := newTestEnv(t, 0)
	s := env.sessions.Create()

	conn, _, err := dialWS(t, env.srv, "/api/sessions/"+s.ID+"/ws")
	if err != nil {
		t.Fatalf("WS dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(wsOut{Type: "query", Prompt: "ping"}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	msg := readUntil(t, conn, func(m session.Message) bool { return m.Type == session.MessageNotice })
	if msg.Notice.Description != "Please select at least one AI model" {
		t.Fatalf("unexpected notice %+v", msg.Notice)
	}
}

func TestWSStopSendsStoppedNotice(t *testing.T) {
	env := newTestEnv(t, time.Second)
	env.prefs.SetSelection([]string{"gpt4"}) //nolint:errcheck
	s := env.sessions.Create()

	conn, _, err := dialWS(t, env.srv, "/api/sessions/"+s.ID+"/ws")
	if err != nil {
		t.Fatalf("WS dial: %v", err)
	}
	defer conn.Close()

	conn.WriteJSON(wsOut{Type: "query", Prompt: "ping"}) //nolint:errcheck
	readUntil(t, conn, func(m session.Message) bool { return m.Type == session.MessageState && m.State.Loading })

	conn.WriteJSON(wsOut{Type: "stop"}) //nolint:errcheck
	msg := readUntil(t, conn, func(m session.Message) bool { return m.Type == session.MessageNotice })
	if *msg.Notice != session.Stopped {
		t.Fatalf("expected stopped notice, got %+v", msg.Notice)
	}
}

func TestWSClosedOnSessionEnd(t *testing.T) {
	env := newTestEnv(t, 0)
	s := env.sessions.Create()

	conn, _, err := dialWS(t, env.srv, "/api/sessions/"+s.ID+"/ws")
	if err != nil {
		t.Fatalf("WS dial: %v", err)
	}
	defer conn.Close()

	var initial session.Message
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&initial); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}

	env.sessions.Close(s.ID) //nolint:errcheck

	var msg session.Message
	if err := conn.ReadJSON(&msg); err != nil {
		// Closed without a JSON message is acceptable.
		return
	}
	if msg.Type != "closed" {
		t.Fatalf("expected 'closed' message, got %q", msg.Type)
	}
}

func TestWSClientDisplacement(t *testing.T) {
	env := newTestEnv(t, 0)
	s := env.sessions.Create()

	conn1, _, err := dialWS(t, env.srv, "/api/sessions/"+s.ID+"/ws")
	if err != nil {
		t.Fatalf("conn1 dial: %v", err)
	}
	defer conn1.Close()
	var initial session.Message
	conn1.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn1.ReadJSON(&initial); err != nil {
		t.Fatalf("conn1 initial read: %v", err)
	}

	conn2, _, err := dialWS(t, env.srv, "/api/sessions/"+s.ID+"/ws")
	if err != nil {
		t.Fatalf("conn2 dial: %v", err)
	}
	defer conn2.Close()

	// conn1 is closed by the server; every read eventually fails.
	for {
		var msg session.Message
		if err := conn1.ReadJSON(&msg); err != nil {
			break
		}
	}
	if !s.Connected() {
		t.Fatal("session lost its newer client")
	}
}
