package heap

import (
	"sync/atomic"
	"time"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("vela.heap")

// ---------------------------------------------------------------------------
// Heap: one collector instance per runtime
// ---------------------------------------------------------------------------

// Heap is the collector for a single Vela runtime instance. There is no
// implicit global heap: the interpreter threads its Heap through
// explicitly, so independent runtimes never share object state.
//
// Collections assume a quiescent mutator (see the package comment); the
// Heap itself is not safe for concurrent use.
type Heap struct {
	young *Generation
	old   *Generation

	// Transient weak-table lists, rebuilt from scratch by every
	// weak-aware trace and cleared when resolution completes.
	weakValueTables []*Table
	ephemeronTables []*Table
	allWeakTables   []*Table

	weakRefs *WeakRefRegistry

	cycleCount atomic.Uint64
	lastStats  atomic.Value // *CollectionStats
}

// CollectionKind distinguishes minor from major cycles in stats.
type CollectionKind string

const (
	// MinorCycle is a young-generation-only collection.
	MinorCycle CollectionKind = "minor"
	// MajorCycle is a whole-heap collection with weak resolution.
	MajorCycle CollectionKind = "major"
)

// CollectionStats holds the counters from a single collection cycle.
type CollectionStats struct {
	Kind               CollectionKind
	Marked             int
	Freed              int
	Promoted           int
	WeakEntriesCleared int
	WeakRefsCleared    int
	Duration           time.Duration
	Timestamp          time.Time
}

// New creates an empty heap with fresh young and old generations.
func New() *Heap {
	return &Heap{
		young:    NewGeneration("young"),
		old:      NewGeneration("old"),
		weakRefs: NewWeakRefRegistry(),
	}
}

// Register adds a freshly allocated object to the young generation. The
// interpreter and stdlib call this on every table, scope, cell, upvalue,
// and coroutine construction. Registering an object twice is a
// programming error and panics.
func (h *Heap) Register(obj Object) {
	if obj == nil {
		panic("heap.Register: nil object")
	}
	if h.young.Contains(obj) || h.old.Contains(obj) {
		panic("heap.Register: duplicate registration")
	}
	h.young.Add(obj)
}

// Contains reports whether obj is registered in either generation.
func (h *Heap) Contains(obj Object) bool {
	return h.young.Contains(obj) || h.old.Contains(obj)
}

// InYoung reports whether obj is currently in the young generation.
func (h *Heap) InYoung(obj Object) bool { return h.young.Contains(obj) }

// InOld reports whether obj is currently in the old generation.
func (h *Heap) InOld(obj Object) bool { return h.old.Contains(obj) }

// Live returns the total number of registered objects.
func (h *Heap) Live() int { return h.young.Len() + h.old.Len() }

// Objects returns a snapshot of every registered object, young then old.
func (h *Heap) Objects() []Object {
	objs := h.young.Objects()
	return append(objs, h.old.Objects()...)
}

// WeakRefs returns the heap's explicit weak-reference registry.
func (h *Heap) WeakRefs() *WeakRefRegistry { return h.weakRefs }

// CycleCount returns the total number of collection cycles performed.
func (h *Heap) CycleCount() uint64 { return h.cycleCount.Load() }

// LastStats returns the stats of the most recent cycle, or nil if no
// collection has run yet.
func (h *Heap) LastStats() *CollectionStats {
	v := h.lastStats.Load()
	if v == nil {
		return nil
	}
	return v.(*CollectionStats)
}

// ---------------------------------------------------------------------------
// Registering constructors
// ---------------------------------------------------------------------------

// NewTable creates a table and registers it.
func (h *Heap) NewTable() *Table {
	t := NewTable()
	h.Register(t)
	return t
}

// NewScope creates a scope under parent and registers it.
func (h *Heap) NewScope(parent *Scope) *Scope {
	s := NewScope(parent)
	h.Register(s)
	return s
}

// NewCell creates a cell holding value and registers it.
func (h *Heap) NewCell(value Value) *Cell {
	c := NewCell(value)
	h.Register(c)
	return c
}

// NewUpvalue creates an open upvalue over cell and registers it.
func (h *Heap) NewUpvalue(name string, cell *Cell) *Upvalue {
	u := NewUpvalue(name, cell)
	h.Register(u)
	return u
}

// NewCoroutine creates a suspended coroutine rooted at scope and
// registers it.
func (h *Heap) NewCoroutine(scope *Scope) *Coroutine {
	co := NewCoroutine(scope)
	h.Register(co)
	return co
}

// ---------------------------------------------------------------------------
// Collections
// ---------------------------------------------------------------------------

// MinorCollect runs a young-generation collection. The trace covers the
// whole reachable graph (old objects must be crossed to find live young
// ones) but weak handling is disabled: every edge, including those a
// table's mode would exclude, is treated as strong, so no weak,
// ephemeron, or all-weak entry is ever cleared by a minor cycle. Unmarked
// young objects are freed; marked young objects are promoted to the old
// generation. The old generation itself is untouched, and all marks are
// cleared before returning.
func (h *Heap) MinorCollect(roots []Object) *CollectionStats {
	start := time.Now()
	stats := &CollectionStats{Kind: MinorCycle, Timestamp: start}

	m := newMarker(h, false)
	m.markRoots(roots)
	stats.Marked = m.marked

	for _, obj := range h.young.Objects() {
		if obj.Marked() {
			Promote(obj, h.young, h.old)
			stats.Promoted++
		} else {
			h.young.Remove(obj)
			obj.Free()
			stats.Freed++
		}
	}

	stats.WeakRefsCleared = h.weakRefs.Sweep(h.Contains)
	h.clearMarks()

	stats.Duration = time.Since(start)
	h.finishCycle(stats)
	return stats
}

// MajorCollect runs a whole-heap collection: a weak-aware trace over both
// generations, the three weak-resolution phases, then a sweep that frees
// every object left unmarked. Marks and the transient weak lists are
// cleared before returning. The cycle is logically atomic; it must not
// overlap mutator activity.
func (h *Heap) MajorCollect(roots []Object) *CollectionStats {
	start := time.Now()
	stats := &CollectionStats{Kind: MajorCycle, Timestamp: start}

	h.resetWeakLists()
	m := newMarker(h, true)
	m.markRoots(roots)

	stats.WeakEntriesCleared = h.resolveWeakTables(m)
	stats.Marked = m.marked

	for _, gen := range []*Generation{h.young, h.old} {
		for _, obj := range gen.Objects() {
			if obj.Marked() {
				continue
			}
			gen.Remove(obj)
			obj.Free()
			stats.Freed++
		}
	}

	stats.WeakRefsCleared = h.weakRefs.Sweep(h.Contains)
	h.clearMarks()
	h.resetWeakLists()

	stats.Duration = time.Since(start)
	h.finishCycle(stats)
	return stats
}

// MajorCollectAsync runs MajorCollect on its own goroutine so a long
// sweep does not block a surrounding event loop, and delivers the stats
// on the returned channel. The collection is still atomic with respect to
// the heap: the mutator must stay quiescent until the channel yields.
func (h *Heap) MajorCollectAsync(roots []Object) <-chan *CollectionStats {
	done := make(chan *CollectionStats, 1)
	go func() {
		done <- h.MajorCollect(roots)
		close(done)
	}()
	return done
}

// clearMarks clears the transient mark flag on every survivor. Runs at
// the end of every cycle, success or failure paths alike.
func (h *Heap) clearMarks() {
	for obj := range h.young.objects {
		obj.SetMarked(false)
	}
	for obj := range h.old.objects {
		obj.SetMarked(false)
	}
}

// resetWeakLists drops the transient weak-table tracking lists.
func (h *Heap) resetWeakLists() {
	h.weakValueTables = nil
	h.ephemeronTables = nil
	h.allWeakTables = nil
}

// finishCycle records stats and logs a cycle summary.
func (h *Heap) finishCycle(stats *CollectionStats) {
	h.cycleCount.Add(1)
	h.lastStats.Store(stats)
	log.Debugf("%s collection: marked=%d freed=%d promoted=%d weakCleared=%d weakRefs=%d live=%d in %s",
		stats.Kind, stats.Marked, stats.Freed, stats.Promoted,
		stats.WeakEntriesCleared, stats.WeakRefsCleared, h.Live(), stats.Duration)
}
