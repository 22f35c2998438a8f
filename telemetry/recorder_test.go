package telemetry

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/velalang/vela/heap"
)

func openTestRecorder(t *testing.T) *Recorder {
	t.Helper()
	r, err := Open(filepath.Join(t.TempDir(), "gc.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestRecordAndReadBack(t *testing.T) {
	r := openTestRecorder(t)

	stats := &heap.CollectionStats{
		Kind:               heap.MajorCycle,
		Marked:             12,
		Freed:              3,
		WeakEntriesCleared: 2,
		Duration:           450 * time.Microsecond,
		Timestamp:          time.Now(),
	}
	if err := r.Record(stats); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	cycles, err := r.Recent(10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(cycles) != 1 {
		t.Fatalf("Recent returned %d cycles, want 1", len(cycles))
	}

	c := cycles[0]
	if c.Kind != heap.MajorCycle {
		t.Errorf("kind = %q, want %q", c.Kind, heap.MajorCycle)
	}
	if c.Marked != 12 || c.Freed != 3 || c.WeakCleared != 2 {
		t.Errorf("counters = %d/%d/%d, want 12/3/2", c.Marked, c.Freed, c.WeakCleared)
	}
	if c.Duration != 450*time.Microsecond {
		t.Errorf("duration = %v, want 450µs", c.Duration)
	}
}

func TestRecentOrdersNewestFirst(t *testing.T) {
	r := openTestRecorder(t)

	for i, kind := range []heap.CollectionKind{heap.MinorCycle, heap.MajorCycle} {
		err := r.Record(&heap.CollectionStats{
			Kind:      kind,
			Marked:    i,
			Timestamp: time.Now(),
		})
		if err != nil {
			t.Fatalf("Record %d failed: %v", i, err)
		}
	}

	cycles, err := r.Recent(1)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(cycles) != 1 || cycles[0].Kind != heap.MajorCycle {
		t.Errorf("Recent(1) should return the latest cycle, got %+v", cycles)
	}

	n, err := r.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Count() = %d, want 2", n)
	}
}

func TestRecordFromLiveHeap(t *testing.T) {
	r := openTestRecorder(t)

	h := heap.New()
	kept := h.NewTable()
	h.NewTable() // garbage

	if err := r.Record(h.MajorCollect([]heap.Object{kept})); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	cycles, err := r.Recent(1)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(cycles) != 1 || cycles[0].Freed != 1 {
		t.Errorf("recorded cycle = %+v, want one cycle with Freed=1", cycles)
	}
}
