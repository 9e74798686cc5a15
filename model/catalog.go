package model

import (
	"context"
	"fmt"
)

// Completer sends a single user prompt to an upstream model and returns the
// assistant text.
type Completer interface {
	Complete(ctx context.Context, upstream, prompt string) (string, error)
}

// Entry describes one catalogue model: the id used by clients, the display
// name, and the model name understood by the gateway.
type Entry struct {
	ID       string
	Name     string
	Upstream string
}

// DefaultCatalog is the built-in model list in display order.
var DefaultCatalog = []Entry{
	{ID: "gpt4", Name: "GPT-4", Upstream: "openai/gpt-4o"},
	{ID: "gemini", Name: "Gemini", Upstream: "google/gemini-2.0-flash-001"},
	{ID: "claude", Name: "Claude", Upstream: "anthropic/claude-3.5-sonnet"},
	{ID: "deepseek", Name: "Deepseek", Upstream: "deepseek/deepseek-chat"},
	{ID: "grok", Name: "Grok", Upstream: "x-ai/grok-2-1212"},
	{ID: "llama", Name: "Llama", Upstream: "meta-llama/llama-3.3-70b-instruct"},
	{ID: "mistral", Name: "Mistral", Upstream: "mistralai/mistral-large"},
	{ID: "gemma", Name: "Gemma", Upstream: "google/gemma-2-27b-it"},
}

// GatewayProvider routes one catalogue entry through a shared Completer.
type GatewayProvider struct {
	entry Entry
	c     Completer
}

func NewGatewayProvider(e Entry, c Completer) *GatewayProvider {
	return &GatewayProvider{entry: e, c: c}
}

func (p *GatewayProvider) ID() string       { return p.entry.ID }
func (p *GatewayProvider) Name() string     { return p.entry.Name }
func (p *GatewayProvider) Upstream() string { return p.entry.Upstream }

func (p *GatewayProvider) Invoke(ctx context.Context, prompt string) (Response, error) {
	text, err := p.c.Complete(ctx, p.entry.Upstream, prompt)
	if err != nil {
		return Response{}, fmt.Errorf("%s: %w", p.entry.ID, err)
	}
	return Response{Model: p.entry.Name, Response: text}, nil
}

// FromCatalog builds a registry from entries, replacing upstream model names
// with the ones found in overrides (keyed by id).
func FromCatalog(entries []Entry, c Completer, overrides map[string]string) (*Registry, error) {
	providers := make([]Provider, 0, len(entries))
	for _, e := range entries {
		if up, ok := overrides[e.ID]; ok && up != "" {
			e.Upstream = up
		}
		providers = append(providers, NewGatewayProvider(e, c))
	}
	return NewRegistry(providers...)
}

// Func adapts a plain function to Provider.
type Func struct {
	id, name string
	fn       func(ctx context.Context, prompt string) (Response, error)
}

func NewFunc(id, name string, fn func(ctx context.Context, prompt string) (Response, error)) *Func {
	return &Func{id: id, name: name, fn: fn}
}

func (f *Func) ID() string   { return f.id }
func (f *Func) Name() string { return f.name }

func (f *Func) Invoke(ctx context.Context, prompt string) (Response, error) {
	return f.fn(ctx, prompt)
}
