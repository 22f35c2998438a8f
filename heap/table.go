package heap

// ---------------------------------------------------------------------------
// Table: the Vela mapping type, with metatable-driven weak modes
// ---------------------------------------------------------------------------

// WeakModeKey is the metatable entry examined to derive a table's weak
// mode.
const WeakModeKey = "__mode"

// WeakMode describes which halves of a table's entries are weak edges.
// It is a bitmask: values, keys, or both.
type WeakMode int

const (
	// WeakNone is an ordinary strong table.
	WeakNone WeakMode = 0
	// WeakValues marks the table's values as weak ("v").
	WeakValues WeakMode = 1 << iota
	// WeakKeys marks the table's keys as weak ("k", ephemeron semantics).
	WeakKeys
	// WeakAll marks both keys and values as weak ("kv").
	WeakAll = WeakValues | WeakKeys
)

// Values reports whether the mode treats values as weak edges.
func (m WeakMode) Values() bool { return m&WeakValues != 0 }

// Keys reports whether the mode treats keys as weak edges.
func (m WeakMode) Keys() bool { return m&WeakKeys != 0 }

// String returns the normalized mode string: "", "v", "k", or "kv".
func (m WeakMode) String() string {
	switch m {
	case WeakValues:
		return "v"
	case WeakKeys:
		return "k"
	case WeakAll:
		return "kv"
	default:
		return ""
	}
}

// NormalizeWeakMode derives a weak mode from a user-supplied __mode
// string. Only lowercase 'k' and 'v' are recognized; every other
// character is ignored, order does not matter, and duplicates are
// harmless. "vk" and "kvx" both normalize to WeakAll; "K" and "" to
// WeakNone.
func NormalizeWeakMode(mode string) WeakMode {
	m := WeakNone
	for _, r := range mode {
		switch r {
		case 'k':
			m |= WeakKeys
		case 'v':
			m |= WeakValues
		}
	}
	return m
}

// Table is a Vela table: a mapping with unique keys plus an optional
// metatable. Keys and values are Values; heap objects key by identity.
type Table struct {
	gcState
	entries map[Value]Value
	meta    *Table
}

// NewTable creates an empty table. The caller is responsible for
// registering it with a Heap; Heap.NewTable does both.
func NewTable() *Table {
	return &Table{entries: make(map[Value]Value)}
}

// Kind returns KindTable.
func (t *Table) Kind() Kind { return KindTable }

// Set stores value under key. Storing nil removes the entry, matching
// the language-level semantics.
func (t *Table) Set(key, value Value) {
	if t.freed {
		return
	}
	if value == nil {
		delete(t.entries, key)
		return
	}
	t.entries[key] = value
}

// Get returns the value stored under key, or nil if absent.
func (t *Table) Get(key Value) Value {
	if t.freed {
		return nil
	}
	return t.entries[key]
}

// Has reports whether key is present.
func (t *Table) Has(key Value) bool {
	if t.freed {
		return false
	}
	_, ok := t.entries[key]
	return ok
}

// Len returns the number of entries.
func (t *Table) Len() int { return len(t.entries) }

// ForEach calls fn for every entry. fn must not add or remove entries.
func (t *Table) ForEach(fn func(key, value Value)) {
	for k, v := range t.entries {
		fn(k, v)
	}
}

// SetMetatable attaches (or, with nil, detaches) the table's metatable.
func (t *Table) SetMetatable(meta *Table) {
	if t.freed {
		return
	}
	t.meta = meta
}

// Metatable returns the table's metatable, or nil.
func (t *Table) Metatable() *Table { return t.meta }

// weakMode derives the table's weak mode from its metatable's __mode
// entry. It is re-derived at trace time because the metatable (or the
// entry) can change between collections.
func (t *Table) weakMode() WeakMode {
	if t.meta == nil {
		return WeakNone
	}
	mode, ok := t.meta.Get(WeakModeKey).(string)
	if !ok {
		return WeakNone
	}
	return NormalizeWeakMode(mode)
}

// WeakMode returns the table's current weak mode.
func (t *Table) WeakMode() WeakMode { return t.weakMode() }

// References returns the table's full strong view: the metatable plus
// every key and value object. The marker applies weak-mode exclusions
// itself during a weak-aware trace; everything else (minor collections,
// diagnostics) sees all edges.
func (t *Table) References() []Object {
	if t.freed {
		return nil
	}
	refs := make([]Object, 0, 2*len(t.entries)+1)
	if t.meta != nil {
		refs = append(refs, t.meta)
	}
	for k, v := range t.entries {
		refs = appendValueRef(refs, k)
		refs = appendValueRef(refs, v)
	}
	return refs
}

// Free releases the table's entries and metatable link. Idempotent.
func (t *Table) Free() {
	if !t.beginFree() {
		return
	}
	t.entries = nil
	t.meta = nil
}
