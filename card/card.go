// Package card tracks which result cards are expanded and which single card,
// if any, is maximized. A maximized card is always expanded.
package card

import "slices"

type State int

const (
	Collapsed State = iota
	Expanded
	Maximized
)

func (s State) String() string {
	switch s {
	case Collapsed:
		return "collapsed"
	case Expanded:
		return "expanded"
	case Maximized:
		return "maximized"
	default:
		return "unknown"
	}
}

// Board holds the card state for one result set. It is not safe for
// concurrent use; the owning session serializes access.
type Board struct {
	expanded  []string
	maximized string
}

// Reset expands every id and clears the maximized card.
func (b *Board) Reset(ids []string) {
	b.expanded = make([]string, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(b.expanded, id) {
			b.expanded = append(b.expanded, id)
		}
	}
	b.maximized = ""
}

// Clear collapses everything.
func (b *Board) Clear() {
	b.expanded = nil
	b.maximized = ""
}

// ToggleExpand flips id between collapsed and expanded. Collapsing the
// maximized card clears the maximize first.
func (b *Board) ToggleExpand(id string) State {
	if i := slices.Index(b.expanded, id); i >= 0 {
		if b.maximized == id {
			b.maximized = ""
		}
		b.expanded = slices.Delete(b.expanded, i, i+1)
		return Collapsed
	}
	b.expanded = append(b.expanded, id)
	return Expanded
}

// ToggleMaximize maximizes an expanded card, displacing any other maximized
// card, or restores it if it is already maximized. Collapsed cards are left
// alone.
func (b *Board) ToggleMaximize(id string) State {
	if !slices.Contains(b.expanded, id) {
		return Collapsed
	}
	if b.maximized == id {
		b.maximized = ""
		return Expanded
	}
	b.maximized = id
	return Maximized
}

func (b *Board) State(id string) State {
	switch {
	case b.maximized == id && id != "":
		return Maximized
	case slices.Contains(b.expanded, id):
		return Expanded
	default:
		return Collapsed
	}
}

func (b *Board) IsExpanded(id string) bool {
	return slices.Contains(b.expanded, id)
}

func (b *Board) IsMaximized(id string) bool {
	return id != "" && b.maximized == id
}

// Maximized returns the maximized card id, or "".
func (b *Board) Maximized() string {
	return b.maximized
}

// Expanded returns the expanded ids in the order they were expanded.
func (b *Board) Expanded() []string {
	return slices.Clone(b.expanded)
}
