package model

import "fmt"

// Registry is the immutable, ordered list of available providers.
type Registry struct {
	providers []Provider
	index     map[string]int
}

// NewRegistry builds a registry in the given declaration order. Ids must be
// non-empty and unique.
func NewRegistry(providers ...Provider) (*Registry, error) {
	r := &Registry{
		providers: make([]Provider, 0, len(providers)),
		index:     make(map[string]int, len(providers)),
	}
	for _, p := range providers {
		id := p.ID()
		if id == "" {
			return nil, ErrEmptyID
		}
		if _, dup := r.index[id]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, id)
		}
		r.index[id] = len(r.providers)
		r.providers = append(r.providers, p)
	}
	return r, nil
}

// All returns the providers in declaration order. The slice is a copy.
func (r *Registry) All() []Provider {
	out := make([]Provider, len(r.providers))
	copy(out, r.providers)
	return out
}

// IDs returns the provider ids in declaration order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.providers))
	for i, p := range r.providers {
		ids[i] = p.ID()
	}
	return ids
}

func (r *Registry) Get(id string) (Provider, bool) {
	i, ok := r.index[id]
	if !ok {
		return nil, false
	}
	return r.providers[i], true
}

func (r *Registry) Has(id string) bool {
	_, ok := r.index[id]
	return ok
}

// Name returns the display name for id, or UnknownName.
func (r *Registry) Name(id string) string {
	if p, ok := r.Get(id); ok {
		return p.Name()
	}
	return UnknownName
}

func (r *Registry) Len() int {
	return len(r.providers)
}
