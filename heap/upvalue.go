package heap

// ---------------------------------------------------------------------------
// Upvalue: a closure's captured-variable handle
// ---------------------------------------------------------------------------

// Upvalue wraps a shared cell captured by a closure. While open it reads
// and writes through the cell; once its defining scope ends it is closed
// and owns a detached copy of the value. Two upvalues capturing the same
// variable from different closures may be joined, after which both
// delegate to a single canonical upvalue.
type Upvalue struct {
	gcState
	name     string
	cell     *Cell
	closed   bool
	detached Value
	join     *Upvalue
}

// NewUpvalue creates an open upvalue named name over cell.
func NewUpvalue(name string, cell *Cell) *Upvalue {
	return &Upvalue{name: name, cell: cell}
}

// Kind returns KindUpvalue.
func (u *Upvalue) Kind() Kind { return KindUpvalue }

// Name returns the captured variable's name.
func (u *Upvalue) Name() string { return u.name }

// resolve follows join links to the canonical upvalue.
func (u *Upvalue) resolve() *Upvalue {
	for u.join != nil {
		u = u.join
	}
	return u
}

// Get returns the captured value, following joins and honoring closure.
func (u *Upvalue) Get() Value {
	if u.freed {
		return nil
	}
	r := u.resolve()
	if r.closed {
		return r.detached
	}
	if r.cell == nil {
		return nil
	}
	return r.cell.Get()
}

// Set writes the captured value, following joins and honoring closure.
func (u *Upvalue) Set(value Value) {
	if u.freed {
		return
	}
	r := u.resolve()
	if r.closed {
		r.detached = value
		return
	}
	if r.cell != nil {
		r.cell.Set(value)
	}
}

// Close detaches the upvalue from its cell, copying the current value.
// Called when the defining scope ends. No-op if already closed.
func (u *Upvalue) Close() {
	r := u.resolve()
	if r.closed {
		return
	}
	if r.cell != nil {
		r.detached = r.cell.Get()
		r.cell = nil
	}
	r.closed = true
}

// IsClosed reports whether the (canonical) upvalue has been closed.
func (u *Upvalue) IsClosed() bool { return u.resolve().closed }

// Join makes u an alias for other: reads and writes delegate to other's
// canonical upvalue, and u keeps other alive through its references.
// Joining an upvalue to itself (directly or through an existing chain)
// is rejected to keep resolve finite.
func (u *Upvalue) Join(other *Upvalue) {
	if other == nil {
		return
	}
	// Setting u.join = other creates a cycle exactly when u already sits
	// somewhere on other's join chain, not only at its end.
	for o := other; o != nil; o = o.join {
		if o == u {
			return
		}
	}
	u.cell = nil
	u.detached = nil
	u.join = other
}

// IsJoined reports whether u delegates to another upvalue.
func (u *Upvalue) IsJoined() bool { return u.join != nil }

// References returns the cell (while open), the object in the detached
// copy (once closed), and the join target (when joined).
func (u *Upvalue) References() []Object {
	if u.freed {
		return nil
	}
	var refs []Object
	if u.cell != nil {
		refs = append(refs, u.cell)
	}
	refs = appendValueRef(refs, u.detached)
	if u.join != nil {
		refs = append(refs, u.join)
	}
	return refs
}

// Free releases the upvalue's links. Idempotent.
func (u *Upvalue) Free() {
	if !u.beginFree() {
		return
	}
	u.cell = nil
	u.detached = nil
	u.join = nil
}
