package heap

// ---------------------------------------------------------------------------
// marker: worklist-based reachability tracer
// ---------------------------------------------------------------------------

// marker walks the object graph from a set of roots and sets the mark
// flag on everything reachable through strong edges. It uses an explicit
// worklist rather than recursion so arbitrarily deep structures (long
// scope chains, nested tables) cannot overflow the Go stack.
//
// With weakAware set, table edges excluded by the table's weak mode are
// not followed; instead the table is appended to the owning heap's
// transient weak lists for the resolver to process after the trace. With
// weakAware clear (minor collections) every edge is strong.
type marker struct {
	heap      *Heap
	weakAware bool
	work      []Object
	marked    int
}

func newMarker(h *Heap, weakAware bool) *marker {
	return &marker{heap: h, weakAware: weakAware}
}

// markRoots seeds the worklist with the root set and drains it.
func (m *marker) markRoots(roots []Object) {
	for _, obj := range roots {
		if obj != nil {
			m.work = append(m.work, obj)
		}
	}
	m.drain()
}

// markFrom marks obj and everything strongly reachable from it. The
// ephemeron resolver re-enters the marker through this during fixpoint
// iteration.
func (m *marker) markFrom(obj Object) {
	if obj == nil {
		return
	}
	m.work = append(m.work, obj)
	m.drain()
}

// drain pops objects until the worklist is empty, marking each unmarked
// object and pushing its strong successors.
func (m *marker) drain() {
	for len(m.work) > 0 {
		obj := m.work[len(m.work)-1]
		m.work = m.work[:len(m.work)-1]

		if obj.Marked() {
			continue
		}
		obj.SetMarked(true)
		m.marked++

		if t, ok := obj.(*Table); ok && m.weakAware {
			m.traceTable(t)
			continue
		}
		m.work = append(m.work, obj.References()...)
	}
}

// traceTable pushes a table's strong edges, deferring the weak-designated
// halves of its entries to the resolver. The metatable is always a strong
// edge regardless of mode: weak clearing removes entries, never the
// metatable mapping. A table reached over a strong path from elsewhere
// does not propagate that strength into its own weak keys or values.
func (m *marker) traceTable(t *Table) {
	if mt := t.Metatable(); mt != nil {
		m.work = append(m.work, mt)
	}

	switch mode := t.weakMode(); mode {
	case WeakNone:
		for k, v := range t.entries {
			m.pushValue(k)
			m.pushValue(v)
		}

	case WeakValues:
		// Keys of a weak-values table are strong; values wait for the
		// Phase A filter.
		for k := range t.entries {
			m.pushValue(k)
		}
		m.heap.weakValueTables = append(m.heap.weakValueTables, t)

	case WeakKeys:
		// Ephemeron: neither half is traced now. A value is marked during
		// Phase B once its key proves reachable from outside the table.
		m.heap.ephemeronTables = append(m.heap.ephemeronTables, t)

	case WeakAll:
		// Entries survive only if both halves are reachable elsewhere;
		// nothing to trace until Phase C checks them.
		m.heap.allWeakTables = append(m.heap.allWeakTables, t)
	}
}

// pushValue pushes the object component of v onto the worklist.
func (m *marker) pushValue(v Value) {
	if o, ok := objectOf(v); ok {
		m.work = append(m.work, o)
	}
}
