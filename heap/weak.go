package heap

// ---------------------------------------------------------------------------
// Weak table resolution: three ordered phases over the post-mark state
// ---------------------------------------------------------------------------

// resolveWeakTables clears dead entries from the weak tables discovered
// during a weak-aware trace. It runs only inside a major collection,
// after the marker and before the sweep. Returns the number of entries
// removed.
//
// Phase A filters weak-values tables against the mark state. Phase B
// converges the ephemeron fixpoint and then deletes entries with dead
// keys; marking during the fixpoint can discover additional weak tables,
// so the Phase A filter is re-applied afterwards (clearing is idempotent)
// before Phase C drops all-weak entries whose key or value is unmarked.
func (h *Heap) resolveWeakTables(m *marker) int {
	cleared := clearWeakValueTables(h.weakValueTables)

	h.convergeEphemerons(m)
	cleared += clearEphemeronTables(h.ephemeronTables)

	cleared += clearWeakValueTables(h.weakValueTables)
	cleared += clearAllWeakTables(h.allWeakTables)
	return cleared
}

// clearWeakValueTables implements Phase A: in a weak-values table the
// keys were already marked strong by the trace, so an entry dies exactly
// when its value is an unmarked object. Pure filter, no iteration.
func clearWeakValueTables(tables []*Table) int {
	cleared := 0
	for _, t := range tables {
		for k, v := range t.entries {
			if !valueAlive(v) {
				delete(t.entries, k)
				cleared++
			}
		}
	}
	return cleared
}

// convergeEphemerons implements the Phase B fixpoint: repeatedly, for
// every ephemeron entry whose key is reachable but whose value is not yet
// marked, mark the value and everything reachable from it. Marking a
// value can make some object the now-live key of another ephemeron entry
// (or discover new weak tables, growing the lists), so passes repeat
// until one completes with no new marks.
func (h *Heap) convergeEphemerons(m *marker) {
	for {
		changed := false
		// Index loop: marking may append newly discovered ephemeron
		// tables to the list mid-pass.
		for i := 0; i < len(h.ephemeronTables); i++ {
			t := h.ephemeronTables[i]
			for k, v := range t.entries {
				if !valueAlive(k) {
					continue
				}
				if o, ok := objectOf(v); ok && !o.Marked() {
					m.markFrom(o)
					changed = true
				}
			}
		}
		if !changed {
			return
		}
	}
}

// clearEphemeronTables deletes, after convergence, every ephemeron entry
// whose key ended up unmarked. Two ephemeron tables referencing each
// other's keys with no external anchor converge to empty here.
func clearEphemeronTables(tables []*Table) int {
	cleared := 0
	for _, t := range tables {
		for k := range t.entries {
			if !valueAlive(k) {
				delete(t.entries, k)
				cleared++
			}
		}
	}
	return cleared
}

// clearAllWeakTables implements Phase C: an all-weak entry survives only
// if both its key and its value are independently reachable. All-weak
// tables take no part in the ephemeron fixpoint; an entry drops even when
// its counterpart is reachable only through another weak table's excluded
// edges.
func clearAllWeakTables(tables []*Table) int {
	cleared := 0
	for _, t := range tables {
		for k, v := range t.entries {
			if !valueAlive(k) || !valueAlive(v) {
				delete(t.entries, k)
				cleared++
			}
		}
	}
	return cleared
}
