package heap

import (
	"testing"
	"time"
)

// TestMinorCollectPromotesSurvivors verifies that every marked young
// object moves to the old generation and unmarked ones are freed.
func TestMinorCollectPromotesSurvivors(t *testing.T) {
	h := New()
	root := h.NewTable()
	child := h.NewCell(nil)
	garbage := h.NewTable()
	root.Set("c", child)

	stats := h.MinorCollect([]Object{root})

	if !h.InOld(root) || !h.InOld(child) {
		t.Error("survivors should be promoted to the old generation")
	}
	if h.Contains(garbage) {
		t.Error("unreachable young object survived a minor collection")
	}
	if stats.Promoted != 2 {
		t.Errorf("stats.Promoted = %d, want 2", stats.Promoted)
	}
	if stats.Freed != 1 {
		t.Errorf("stats.Freed = %d, want 1", stats.Freed)
	}
	if h.young.Len() != 0 {
		t.Errorf("young generation should be empty after a minor cycle, len = %d", h.young.Len())
	}
}

// TestMinorCollectLeavesOldUntouched verifies that unreachable old
// objects are not freed by a minor cycle.
func TestMinorCollectLeavesOldUntouched(t *testing.T) {
	h := New()
	oldObj := h.NewTable()
	h.MinorCollect([]Object{oldObj}) // promote it

	if !h.InOld(oldObj) {
		t.Fatal("setup: object should be old")
	}

	// Now unreachable, but minor collections never touch the old
	// generation.
	h.MinorCollect(nil)
	if !h.InOld(oldObj) {
		t.Error("minor collection freed an old object")
	}

	h.MajorCollect(nil)
	if h.Contains(oldObj) {
		t.Error("major collection should free the unreachable old object")
	}
}

// TestMinorCollectNeverClearsWeakEntries verifies minor-collection
// purity: weak handling is disabled, so every edge is strong and no
// weak, ephemeron, or all-weak entry is removed regardless of
// reachability.
func TestMinorCollectNeverClearsWeakEntries(t *testing.T) {
	h := New()
	weakV := newWeakTable(h, "v")
	eph := newWeakTable(h, "k")
	allWeak := newWeakTable(h, "kv")

	v1 := h.NewTable()
	v2 := h.NewTable()
	v3 := h.NewTable()
	weakV.Set("x", v1)
	eph.Set(v2, v2)
	allWeak.Set(v3, v3)

	h.MinorCollect([]Object{weakV, eph, allWeak})

	if !weakV.Has("x") || eph.Len() != 1 || allWeak.Len() != 1 {
		t.Error("minor collection cleared a weak table entry")
	}
	// The weak-designated objects were reachable only through weak
	// tables, yet minor treats those edges as strong: all survive, and
	// all are promoted.
	for i, obj := range []Object{v1, v2, v3} {
		if !h.InOld(obj) {
			t.Errorf("weakly held object %d not promoted by minor collection", i)
		}
	}
}

// TestMajorCollectSweepsBothGenerations verifies a major cycle frees
// unmarked objects wherever they live.
func TestMajorCollectSweepsBothGenerations(t *testing.T) {
	h := New()
	oldGarbage := h.NewTable()
	h.MinorCollect([]Object{oldGarbage})
	youngGarbage := h.NewTable()
	kept := h.NewTable()

	stats := h.MajorCollect([]Object{kept})

	if h.Contains(oldGarbage) || h.Contains(youngGarbage) {
		t.Error("major collection left unreachable objects registered")
	}
	if !h.Contains(kept) {
		t.Error("rooted object freed")
	}
	if stats.Freed != 2 {
		t.Errorf("stats.Freed = %d, want 2", stats.Freed)
	}
	if stats.Kind != MajorCycle {
		t.Errorf("stats.Kind = %q, want %q", stats.Kind, MajorCycle)
	}
}

// TestMajorCollectAsync verifies the asynchronous call surface delivers
// the same atomic collection.
func TestMajorCollectAsync(t *testing.T) {
	h := New()
	kept := h.NewTable()
	h.NewTable() // garbage

	var stats *CollectionStats
	select {
	case stats = <-h.MajorCollectAsync([]Object{kept}):
	case <-time.After(5 * time.Second):
		t.Fatal("async major collection did not complete")
	}

	if stats == nil || stats.Kind != MajorCycle {
		t.Fatalf("unexpected stats from async collection: %+v", stats)
	}
	if stats.Freed != 1 {
		t.Errorf("stats.Freed = %d, want 1", stats.Freed)
	}
	if !h.Contains(kept) {
		t.Error("rooted object freed by async collection")
	}
}

// TestCycleBookkeeping verifies the heap records cycle counts and last
// stats.
func TestCycleBookkeeping(t *testing.T) {
	h := New()
	if h.LastStats() != nil {
		t.Error("LastStats should be nil before any collection")
	}

	h.MinorCollect(nil)
	h.MajorCollect(nil)

	if h.CycleCount() != 2 {
		t.Errorf("CycleCount() = %d, want 2", h.CycleCount())
	}
	last := h.LastStats()
	if last == nil || last.Kind != MajorCycle {
		t.Errorf("LastStats() = %+v, want a major cycle", last)
	}
	if last.Timestamp.IsZero() {
		t.Error("stats should carry a timestamp")
	}
}

// TestWeakListsAreTransient verifies the weak-table tracking lists are
// rebuilt per major cycle and cleared afterwards.
func TestWeakListsAreTransient(t *testing.T) {
	h := New()
	weak := newWeakTable(h, "v")
	weak.Set("x", h.NewTable())

	h.MajorCollect([]Object{weak})

	if h.weakValueTables != nil || h.ephemeronTables != nil || h.allWeakTables != nil {
		t.Error("transient weak lists not cleared after major collection")
	}
}
