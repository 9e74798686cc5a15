package prefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"omnibot/model"
)

// Manager owns the selected models and the view layout. Reads return copies;
// writes go through the injected SaveFunc before the in-memory state changes.
type Manager struct {
	mu    sync.RWMutex
	save  SaveFunc
	prefs Preferences
}

// NewManager loads both keys through load, falling back to an empty selection
// and the columns layout for missing values.
func NewManager(load LoadFunc, save SaveFunc) (*Manager, error) {
	m := &Manager{save: save, prefs: defaults()}

	raw, err := load(KeySelectedModels)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", KeySelectedModels, err)
	}
	if raw != nil {
		var ids []string
		if err := json.Unmarshal(raw, &ids); err != nil {
			return nil, fmt.Errorf("decode %s: %w", KeySelectedModels, err)
		}
		if ids != nil {
			m.prefs.SelectedModels = Dedupe(ids)
		}
	}

	raw, err = load(KeyViewLayout)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", KeyViewLayout, err)
	}
	if raw != nil {
		var l Layout
		if err := json.Unmarshal(raw, &l); err != nil {
			return nil, fmt.Errorf("decode %s: %w", KeyViewLayout, err)
		}
		if l.Valid() {
			m.prefs.ViewLayout = l
		}
	}
	return m, nil
}

// Get returns a snapshot of the current preferences.
func (m *Manager) Get() Preferences {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyPrefs(m.prefs)
}

func (m *Manager) SelectedModels() []string {
	return m.Get().SelectedModels
}

func (m *Manager) Layout() Layout {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.prefs.ViewLayout
}

// ToggleModel appends id to the selection when absent and removes it when
// present.
func (m *Manager) ToggleModel(id string) (Preferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur := m.prefs.SelectedModels
	var next []string
	if i := slices.Index(cur, id); i >= 0 {
		next = make([]string, 0, len(cur)-1)
		next = append(next, cur[:i]...)
		next = append(next, cur[i+1:]...)
	} else {
		next = make([]string, 0, len(cur)+1)
		next = append(next, cur...)
		next = append(next, id)
	}
	if err := m.writeSelection(next); err != nil {
		return Preferences{}, err
	}
	return copyPrefs(m.prefs), nil
}

// SetSelection replaces the selection, e.g. with a resolved task preset.
func (m *Manager) SetSelection(ids []string) (Preferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.writeSelection(Dedupe(ids)); err != nil {
		return Preferences{}, err
	}
	return copyPrefs(m.prefs), nil
}

func (m *Manager) SetLayout(l Layout) (Preferences, error) {
	if !l.Valid() {
		return Preferences{}, fmt.Errorf("%w: %q", ErrInvalidLayout, l)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.writeLayout(l); err != nil {
		return Preferences{}, err
	}
	return copyPrefs(m.prefs), nil
}

// Replace validates and stores both keys. Either both keys change or
// neither does: a failed layout save restores the saved selection.
func (m *Manager) Replace(p Preferences) (Preferences, error) {
	if p.ViewLayout == "" {
		p.ViewLayout = Columns
	}
	if !p.ViewLayout.Valid() {
		return Preferences{}, fmt.Errorf("%w: %q", ErrInvalidLayout, p.ViewLayout)
	}
	ids := Dedupe(p.SelectedModels)
	selData, err := json.Marshal(ids)
	if err != nil {
		return Preferences{}, err
	}
	layoutData, err := json.Marshal(p.ViewLayout)
	if err != nil {
		return Preferences{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	prevData, err := json.Marshal(m.prefs.SelectedModels)
	if err != nil {
		return Preferences{}, err
	}
	if err := m.save(KeySelectedModels, selData); err != nil {
		return Preferences{}, fmt.Errorf("save %s: %w", KeySelectedModels, err)
	}
	if err := m.save(KeyViewLayout, layoutData); err != nil {
		if rbErr := m.save(KeySelectedModels, prevData); rbErr != nil {
			err = errors.Join(err, fmt.Errorf("restore %s: %w", KeySelectedModels, rbErr))
		}
		return Preferences{}, fmt.Errorf("save %s: %w", KeyViewLayout, err)
	}
	m.prefs = Preferences{SelectedModels: ids, ViewLayout: p.ViewLayout}
	return copyPrefs(m.prefs), nil
}

// SortModels orders providers selected-first, keeping declaration order
// within each group.
func (m *Manager) SortModels(providers []model.Provider) []model.Provider {
	selected := m.SelectedModels()
	out := make([]model.Provider, len(providers))
	copy(out, providers)
	slices.SortStableFunc(out, func(a, b model.Provider) int {
		as := slices.Contains(selected, a.ID())
		bs := slices.Contains(selected, b.ID())
		switch {
		case as && !bs:
			return -1
		case !as && bs:
			return 1
		default:
			return 0
		}
	})
	return out
}

// Caller must hold m.mu.
func (m *Manager) writeSelection(ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	if err := m.save(KeySelectedModels, data); err != nil {
		return fmt.Errorf("save %s: %w", KeySelectedModels, err)
	}
	m.prefs.SelectedModels = ids
	return nil
}

// Caller must hold m.mu.
func (m *Manager) writeLayout(l Layout) error {
	data, err := json.Marshal(l)
	if err != nil {
		return err
	}
	if err := m.save(KeyViewLayout, data); err != nil {
		return fmt.Errorf("save %s: %w", KeyViewLayout, err)
	}
	m.prefs.ViewLayout = l
	return nil
}

// Dedupe drops empty and repeated ids, keeping first-seen order.
func Dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
