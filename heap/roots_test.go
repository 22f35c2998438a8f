package heap

import "testing"

// TestBuildRootSetIncludesScopeAncestors verifies that listing an inner
// scope pulls in its whole ancestor chain.
func TestBuildRootSetIncludesScopeAncestors(t *testing.T) {
	h := New()
	global := h.NewScope(nil)
	mid := h.NewScope(global)
	inner := h.NewScope(mid)

	roots := BuildRootSet(&RuntimeState{Scopes: []*Scope{inner}})

	for _, sc := range []*Scope{inner, mid, global} {
		if _, ok := roots[sc]; !ok {
			t.Errorf("root set missing scope in ancestor chain")
		}
	}
	if len(roots) != 3 {
		t.Errorf("root set has %d entries, want 3", len(roots))
	}
}

// TestBuildRootSetCoroutinesAndAnchors verifies coroutines and explicit
// anchors are included and duplicates collapse.
func TestBuildRootSetCoroutinesAndAnchors(t *testing.T) {
	h := New()
	scope := h.NewScope(nil)
	co := h.NewCoroutine(scope)
	anchor := h.NewTable()

	roots := BuildRootSet(&RuntimeState{
		Scopes:     []*Scope{scope, scope}, // duplicate is harmless
		Coroutines: []*Coroutine{co, nil},
		Anchors:    []Object{anchor, anchor, nil},
	})

	if _, ok := roots[co]; !ok {
		t.Error("root set missing coroutine")
	}
	if _, ok := roots[anchor]; !ok {
		t.Error("root set missing anchor")
	}
	if _, ok := roots[scope]; !ok {
		t.Error("root set missing scope")
	}
	if len(roots) != 3 {
		t.Errorf("root set has %d entries, want 3", len(roots))
	}
}

// TestBuildRootSetNilState verifies a nil state yields an empty set.
func TestBuildRootSetNilState(t *testing.T) {
	roots := BuildRootSet(nil)
	if len(roots) != 0 {
		t.Errorf("root set from nil state has %d entries, want 0", len(roots))
	}
}

// TestRootList flattens the set form into the slice the collectors take.
func TestRootList(t *testing.T) {
	h := New()
	a := h.NewTable()
	b := h.NewTable()

	list := RootList(map[Object]struct{}{a: {}, b: {}})
	if len(list) != 2 {
		t.Fatalf("RootList returned %d entries, want 2", len(list))
	}
	seen := map[Object]bool{}
	for _, obj := range list {
		seen[obj] = true
	}
	if !seen[a] || !seen[b] {
		t.Error("RootList lost an object")
	}
}
