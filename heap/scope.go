package heap

// ---------------------------------------------------------------------------
// Scope and Cell: lexical environments and shared variable slots
// ---------------------------------------------------------------------------

// Cell is a single mutable variable slot. Scopes name cells, and any
// number of upvalues may share one, so closures that capture the same
// variable observe each other's writes.
type Cell struct {
	gcState
	value Value
}

// NewCell creates a cell holding value.
func NewCell(value Value) *Cell {
	return &Cell{value: value}
}

// Kind returns KindCell.
func (c *Cell) Kind() Kind { return KindCell }

// Get returns the cell's current value.
func (c *Cell) Get() Value {
	if c.freed {
		return nil
	}
	return c.value
}

// Set replaces the cell's value.
func (c *Cell) Set(value Value) {
	if c.freed {
		return
	}
	c.value = value
}

// References returns the object held by the cell, if any.
func (c *Cell) References() []Object {
	if c.freed {
		return nil
	}
	return appendValueRef(nil, c.value)
}

// Free releases the cell. Idempotent.
func (c *Cell) Free() {
	if !c.beginFree() {
		return
	}
	c.value = nil
}

// Scope is a lexical environment: a mapping from variable name to cell,
// with a parent link for nesting. The root-set builder includes every
// active scope and its full ancestor chain.
type Scope struct {
	gcState
	vars   map[string]*Cell
	parent *Scope
}

// NewScope creates a scope nested under parent (nil for a top-level
// scope).
func NewScope(parent *Scope) *Scope {
	return &Scope{
		vars:   make(map[string]*Cell),
		parent: parent,
	}
}

// Kind returns KindScope.
func (s *Scope) Kind() Kind { return KindScope }

// Parent returns the enclosing scope, or nil.
func (s *Scope) Parent() *Scope { return s.parent }

// Define binds name to cell in this scope, shadowing any outer binding.
func (s *Scope) Define(name string, cell *Cell) {
	if s.freed {
		return
	}
	s.vars[name] = cell
}

// Lookup resolves name in this scope or the nearest ancestor that binds
// it.
func (s *Scope) Lookup(name string) (*Cell, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if sc.freed {
			return nil, false
		}
		if c, ok := sc.vars[name]; ok {
			return c, true
		}
	}
	return nil, false
}

// Len returns the number of bindings declared directly in this scope.
func (s *Scope) Len() int { return len(s.vars) }

// References returns the parent scope and every bound cell.
func (s *Scope) References() []Object {
	if s.freed {
		return nil
	}
	refs := make([]Object, 0, len(s.vars)+1)
	if s.parent != nil {
		refs = append(refs, s.parent)
	}
	for _, c := range s.vars {
		refs = append(refs, c)
	}
	return refs
}

// Free releases the scope's bindings and parent link. Idempotent.
func (s *Scope) Free() {
	if !s.beginFree() {
		return
	}
	s.vars = nil
	s.parent = nil
}
