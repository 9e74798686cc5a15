// Package task holds named shortcuts that preselect a subset of models suited
// to a kind of job.
package task

import (
	"slices"
	"strings"

	"omnibot/model"
)

// Matcher decides whether a provider belongs to a preset.
type Matcher func(p model.Provider) bool

// Preset is a named template mapping to a subset of providers.
type Preset struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Match       Matcher `json:"-"`
}

// IDs matches providers whose id is listed.
func IDs(ids ...string) Matcher {
	return func(p model.Provider) bool {
		return slices.Contains(ids, p.ID())
	}
}

// Keywords matches providers whose id or name contains any of words,
// case-insensitively.
func Keywords(words ...string) Matcher {
	return func(p model.Provider) bool {
		id := strings.ToLower(p.ID())
		name := strings.ToLower(p.Name())
		for _, w := range words {
			w = strings.ToLower(w)
			if w == "" {
				continue
			}
			if strings.Contains(id, w) || strings.Contains(name, w) {
				return true
			}
		}
		return false
	}
}

// Any matches when at least one of ms matches.
func Any(ms ...Matcher) Matcher {
	return func(p model.Provider) bool {
		for _, m := range ms {
			if m != nil && m(p) {
				return true
			}
		}
		return false
	}
}

// All matches every provider.
func All() Matcher {
	return func(model.Provider) bool { return true }
}

// Catalog is an ordered list of presets.
type Catalog struct {
	presets []Preset
}

func NewCatalog(presets ...Preset) *Catalog {
	ps := make([]Preset, len(presets))
	copy(ps, presets)
	return &Catalog{presets: ps}
}

// Builtin returns the default preset list.
func Builtin() *Catalog {
	return NewCatalog(
		Preset{Name: "Summarize", Description: "Condense long text into key points", Match: IDs("gpt4", "claude", "gemini")},
		Preset{Name: "Code", Description: "Write, review and debug code", Match: IDs("gpt4", "claude", "deepseek", "mistral")},
		Preset{Name: "Creative Writing", Description: "Stories, poems and copy", Match: IDs("claude", "gpt4", "llama", "grok")},
		Preset{Name: "Research", Description: "Explain topics and gather facts", Match: IDs("gemini", "gpt4", "deepseek", "claude")},
		Preset{Name: "Translate", Description: "Translate between languages", Match: IDs("gpt4", "gemini", "mistral")},
		Preset{Name: "Brainstorm", Description: "Generate lots of ideas quickly", Match: IDs("grok", "llama", "gemma", "gpt4")},
		Preset{Name: "Math", Description: "Step-by-step reasoning and calculation", Match: IDs("deepseek", "gpt4", "gemini")},
		Preset{Name: "Compare All", Description: "Ask every available model", Match: All()},
	)
}

// Presets returns the presets in declaration order.
func (c *Catalog) Presets() []Preset {
	out := make([]Preset, len(c.presets))
	copy(out, c.presets)
	return out
}

// Lookup finds a preset by name, ignoring case.
func (c *Catalog) Lookup(name string) (Preset, bool) {
	name = strings.TrimSpace(name)
	for _, p := range c.presets {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Preset{}, false
}

// Resolve returns the ids of providers matching the named preset, in provider
// order. Unknown names resolve to an empty selection.
func (c *Catalog) Resolve(name string, providers []model.Provider) []string {
	ids := []string{}
	p, ok := c.Lookup(name)
	if !ok || p.Match == nil {
		return ids
	}
	for _, prov := range providers {
		if p.Match(prov) {
			ids = append(ids, prov.ID())
		}
	}
	return ids
}
