package model

import (
	"context"
	"errors"
	"testing"
)

type stubCompleter struct {
	gotUpstream string
	reply       string
	err         error
}

func (s *stubCompleter) Complete(_ context.Context, upstream, _ string) (string, error) {
	s.gotUpstream = upstream
	return s.reply, s.err
}

func TestRegistry_PreservesDeclarationOrder(t *testing.T) {
	reg, err := FromCatalog(DefaultCatalog, &stubCompleter{}, nil)
	if err != nil {
		t.Fatalf("FromCatalog: %v", err)
	}
	want := []string{"gpt4", "gemini", "claude", "deepseek", "grok", "llama", "mistral", "gemma"}
	got := reg.IDs()
	if len(got) != len(want) {
		t.Fatalf("expected %d ids, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestRegistry_DuplicateID(t *testing.T) {
	a := NewFunc("x", "X", nil)
	b := NewFunc("x", "X again", nil)
	if _, err := NewRegistry(a, b); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
}

func TestRegistry_EmptyID(t *testing.T) {
	if _, err := NewRegistry(NewFunc("", "X", nil)); !errors.Is(err, ErrEmptyID) {
		t.Fatalf("expected ErrEmptyID, got %v", err)
	}
}

func TestRegistry_NameUnknown(t *testing.T) {
	reg, _ := NewRegistry(NewFunc("gpt4", "GPT-4", nil))
	if got := reg.Name("gpt4"); got != "GPT-4" {
		t.Fatalf("expected GPT-4, got %q", got)
	}
	if got := reg.Name("nope"); got != UnknownName {
		t.Fatalf("expected %q, got %q", UnknownName, got)
	}
}

func TestRegistry_AllIsCopy(t *testing.T) {
	reg, _ := NewRegistry(NewFunc("a", "A", nil), NewFunc("b", "B", nil))
	all := reg.All()
	all[0] = NewFunc("z", "Z", nil)
	if reg.All()[0].ID() != "a" {
		t.Fatal("All returned the internal slice")
	}
}

func TestFromCatalog_Overrides(t *testing.T) {
	c := &stubCompleter{reply: "hello"}
	reg, err := FromCatalog(DefaultCatalog, c, map[string]string{"claude": "anthropic/claude-3.7-sonnet"})
	if err != nil {
		t.Fatalf("FromCatalog: %v", err)
	}
	p, _ := reg.Get("claude")
	resp, err := p.Invoke(context.Background(), "hi")
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if c.gotUpstream != "anthropic/claude-3.7-sonnet" {
		t.Fatalf("override not applied, upstream %q", c.gotUpstream)
	}
	if resp.Model != "Claude" || resp.Response != "hello" || resp.Failed() {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestGatewayProvider_WrapsError(t *testing.T) {
	boom := errors.New("boom")
	p := NewGatewayProvider(Entry{ID: "gpt4", Name: "GPT-4", Upstream: "m"}, &stubCompleter{err: boom})
	if _, err := p.Invoke(context.Background(), "hi"); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}
}
