package heap

// ---------------------------------------------------------------------------
// Object: the contract every collectible runtime entity implements
// ---------------------------------------------------------------------------

// Kind identifies the runtime type of a heap object.
type Kind int

const (
	KindTable Kind = iota
	KindScope
	KindCell
	KindUpvalue
	KindCoroutine
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindTable:
		return "table"
	case KindScope:
		return "scope"
	case KindCell:
		return "cell"
	case KindUpvalue:
		return "upvalue"
	case KindCoroutine:
		return "coroutine"
	default:
		return "unknown"
	}
}

// Object is implemented by every entity that participates in collection:
// tables, scopes, shared cells, upvalues, and coroutines.
//
// The mark flag is transient trace state owned by the collector; it is
// cleared at the end of every collection cycle.
type Object interface {
	// Kind reports the runtime type of the object.
	Kind() Kind

	// Marked reports whether the object was reached by the current trace.
	Marked() bool

	// SetMarked sets or clears the transient mark flag.
	SetMarked(marked bool)

	// References returns every object this one points to. It must never
	// panic: an object in an inconsistent or freed state reports no
	// references instead, because a traversal-time failure would abort
	// marking mid-graph and corrupt the live set.
	References() []Object

	// Free releases the object's internal state. It is idempotent: a
	// second call is a no-op, so reference cycles between freed objects
	// cannot double-free or recurse.
	Free()
}

// gcState carries the per-object collector bookkeeping. Every concrete
// object type embeds it.
type gcState struct {
	marked bool
	freed  bool
}

// Marked reports whether the object is marked in the current trace.
func (s *gcState) Marked() bool { return s.marked }

// SetMarked sets or clears the transient mark flag.
func (s *gcState) SetMarked(marked bool) { s.marked = marked }

// Freed reports whether the object has been released.
func (s *gcState) Freed() bool { return s.freed }

// beginFree flips the freed flag and reports whether this call is the
// first. Concrete Free implementations bail out when it returns false.
func (s *gcState) beginFree() bool {
	if s.freed {
		return false
	}
	s.freed = true
	return true
}
