package heap

// ---------------------------------------------------------------------------
// Root set construction
// ---------------------------------------------------------------------------

// RuntimeState is the interpreter-side view the collector derives its
// roots from: the scopes currently on some call stack, the coroutines
// that still exist, and any ad hoc anchors supplied by embedding code or
// tests.
type RuntimeState struct {
	// Scopes are the active scopes. Ancestor chains are included
	// automatically; callers only list the innermost scopes they hold.
	Scopes []*Scope

	// Coroutines are the live coroutines, regardless of status.
	Coroutines []*Coroutine

	// Anchors are extra objects the caller wants pinned for this cycle.
	Anchors []Object
}

// BuildRootSet derives the initial definitely-alive set from state.
// Duplicates collapse in the returned set and enumeration order carries
// no meaning. Nil entries are ignored.
func BuildRootSet(state *RuntimeState) map[Object]struct{} {
	roots := make(map[Object]struct{})
	if state == nil {
		return roots
	}
	for _, sc := range state.Scopes {
		for s := sc; s != nil; s = s.Parent() {
			if _, seen := roots[s]; seen {
				break // ancestors already walked
			}
			roots[s] = struct{}{}
		}
	}
	for _, co := range state.Coroutines {
		if co != nil {
			roots[co] = struct{}{}
		}
	}
	for _, obj := range state.Anchors {
		if obj != nil {
			roots[obj] = struct{}{}
		}
	}
	return roots
}

// RootList flattens a root set into the slice form the collection entry
// points take.
func RootList(roots map[Object]struct{}) []Object {
	list := make([]Object, 0, len(roots))
	for obj := range roots {
		list = append(list, obj)
	}
	return list
}
