package prefs

import "errors"

// Layout is how result cards are arranged.
type Layout string

const (
	Columns Layout = "columns"
	Rows    Layout = "rows"
)

func (l Layout) Valid() bool {
	return l == Columns || l == Rows
}

// Persisted keys.
const (
	KeySelectedModels = "selectedModels"
	KeyViewLayout     = "viewLayout"
)

// Preferences is the durable per-user state.
type Preferences struct {
	SelectedModels []string `json:"selectedModels"`
	ViewLayout     Layout   `json:"viewLayout"`
}

// LoadFunc returns the stored JSON value for key, or nil when absent.
type LoadFunc func(key string) ([]byte, error)

// SaveFunc stores the JSON value for key.
type SaveFunc func(key string, value []byte) error

var ErrInvalidLayout = errors.New("invalid view layout")

func defaults() Preferences {
	return Preferences{SelectedModels: []string{}, ViewLayout: Columns}
}

func copyPrefs(p Preferences) Preferences {
	ids := make([]string, len(p.SelectedModels))
	copy(ids, p.SelectedModels)
	return Preferences{SelectedModels: ids, ViewLayout: p.ViewLayout}
}
