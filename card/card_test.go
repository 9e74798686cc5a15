package card

import (
	"slices"
	"testing"
)

func TestResetExpandsAllNoneMaximized(t *testing.T) {
	var b Board
	b.Reset([]string{"gpt4", "claude", "gemini"})
	for _, id := range []string{"gpt4", "claude", "gemini"} {
		if b.State(id) != Expanded {
			t.Fatalf("%s: expected expanded, got %s", id, b.State(id))
		}
	}
	if b.Maximized() != "" {
		t.Fatalf("expected nothing maximized, got %q", b.Maximized())
	}
}

func TestToggleExpand(t *testing.T) {
	var b Board
	if got := b.ToggleExpand("a"); got != Expanded {
		t.Fatalf("collapsed -> expected expanded, got %s", got)
	}
	if got := b.ToggleExpand("a"); got != Collapsed {
		t.Fatalf("expanded -> expected collapsed, got %s", got)
	}
}

func TestMaximizeIsExclusive(t *testing.T) {
	var b Board
	b.Reset([]string{"a", "b"})

	b.ToggleMaximize("a")
	if !b.IsMaximized("a") {
		t.Fatal("expected a maximized")
	}
	b.ToggleMaximize("b")
	if b.IsMaximized("a") {
		t.Fatal("a still maximized after maximizing b")
	}
	if !b.IsMaximized("b") {
		t.Fatal("expected b maximized")
	}
	if !b.IsExpanded("a") || !b.IsExpanded("b") {
		t.Fatal("both cards should remain expanded")
	}
}

func TestToggleMaximizeTwiceRestores(t *testing.T) {
	var b Board
	b.Reset([]string{"a"})
	b.ToggleMaximize("a")
	if got := b.ToggleMaximize("a"); got != Expanded {
		t.Fatalf("expected expanded after second toggle, got %s", got)
	}
	if b.Maximized() != "" {
		t.Fatalf("expected nothing maximized, got %q", b.Maximized())
	}
}

func TestCollapseMaximizedClearsBoth(t *testing.T) {
	var b Board
	b.Reset([]string{"a", "b"})
	b.ToggleMaximize("a")

	if got := b.ToggleExpand("a"); got != Collapsed {
		t.Fatalf("expected collapsed, got %s", got)
	}
	if b.IsMaximized("a") || b.Maximized() != "" {
		t.Fatal("maximized flag survived collapse")
	}
	if b.IsExpanded("a") {
		t.Fatal("a still expanded")
	}
}

func TestMaximizeCollapsedIsNoop(t *testing.T) {
	var b Board
	b.Reset([]string{"a"})
	b.ToggleExpand("a")
	if got := b.ToggleMaximize("a"); got != Collapsed {
		t.Fatalf("expected collapsed, got %s", got)
	}
	if b.Maximized() != "" {
		t.Fatalf("collapsed card became maximized")
	}
}

func TestMaximizedImpliesExpanded(t *testing.T) {
	var b Board
	ids := []string{"a", "b", "c"}
	b.Reset(ids)
	ops := []func(){
		func() { b.ToggleMaximize("a") },
		func() { b.ToggleExpand("b") },
		func() { b.ToggleMaximize("b") },
		func() { b.ToggleMaximize("c") },
		func() { b.ToggleExpand("c") },
		func() { b.ToggleExpand("b") },
		func() { b.ToggleMaximize("b") },
		func() { b.ToggleExpand("a") },
	}
	for i, op := range ops {
		op()
		if m := b.Maximized(); m != "" && !b.IsExpanded(m) {
			t.Fatalf("after op %d: %q maximized but not expanded", i, m)
		}
	}
}

func TestClear(t *testing.T) {
	var b Board
	b.Reset([]string{"a", "b"})
	b.ToggleMaximize("b")
	b.Clear()
	if len(b.Expanded()) != 0 || b.Maximized() != "" {
		t.Fatalf("expected empty board, got %v / %q", b.Expanded(), b.Maximized())
	}
}

func TestExpandedIsCopy(t *testing.T) {
	var b Board
	b.Reset([]string{"a", "b"})
	got := b.Expanded()
	got[0] = "z"
	if !slices.Equal(b.Expanded(), []string{"a", "b"}) {
		t.Fatal("Expanded leaked internal slice")
	}
}

func TestStateString(t *testing.T) {
	if Maximized.String() != "maximized" || State(42).String() != "unknown" {
		t.Fatal("unexpected State strings")
	}
}
