package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func chatReply(content string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "test-model",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
	}
}

func TestClient_Complete_Success(t *testing.T) {
	t.Parallel()

	var gotModel, gotPrompt, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" || r.Method != http.MethodPost {
			http.Error(w, "unexpected path", http.StatusNotFound)
			return
		}
		gotAuth = r.Header.Get("Authorization")
		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		json.NewDecoder(r.Body).Decode(&body) //nolint:errcheck
		gotModel = body.Model
		if len(body.Messages) == 1 {
			gotPrompt = body.Messages[0].Content
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatReply("Hello from the gateway")) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, APIKey: "sk-test"})
	got, err := c.Complete(context.Background(), "openai/gpt-4o", "hi there")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if got != "Hello from the gateway" {
		t.Errorf("unexpected content %q", got)
	}
	if gotModel != "openai/gpt-4o" {
		t.Errorf("expected upstream model in request, got %q", gotModel)
	}
	if gotPrompt != "hi there" {
		t.Errorf("expected prompt as single user message, got %q", gotPrompt)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("expected bearer auth, got %q", gotAuth)
	}
}

func TestClient_Complete_EmptyChoices_ReturnsError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		reply := chatReply("")
		reply["choices"] = []any{}
		json.NewEncoder(w).Encode(reply) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL + "/", APIKey: "k"})
	_, err := c.Complete(context.Background(), "m", "hi")
	if !errors.Is(err, ErrEmptyCompletion) {
		t.Fatalf("expected ErrEmptyCompletion, got %v", err)
	}
}

func TestClient_Complete_RateLimited_NoRetry(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit"}}`)) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, APIKey: "k"})
	_, err := c.Complete(context.Background(), "m", "hi")
	if err == nil {
		t.Fatal("expected error for 429 response, got nil")
	}
	if !strings.Contains(err.Error(), "HTTP 429") {
		t.Errorf("expected status in error, got %v", err)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("expected exactly one call, got %d", n)
	}
}

func TestClient_Complete_Timeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := New(Config{BaseURL: srv.URL, APIKey: "k", Timeout: 50 * time.Millisecond})
	_, err := c.Complete(context.Background(), "m", "hi")
	if err == nil {
		t.Fatal("expected timeout error, got nil")
	}
}

func TestClient_Ping(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"object":"list","data":[{"id":"openai/gpt-4o","object":"model","created":1,"owned_by":"openai"}]}`)) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, APIKey: "k"})
	if err := c.Ping(context.Background()); err != nil {
		t.Errorf("expected healthy, got error: %v", err)
	}
}

func TestClient_Ping_Down_ReturnsError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := New(Config{BaseURL: srv.URL, APIKey: "k"})
	if err := c.Ping(context.Background()); err == nil {
		t.Error("expected error when gateway is down, got nil")
	}
}
