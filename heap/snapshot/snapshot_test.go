package snapshot

import (
	"testing"

	"github.com/velalang/vela/heap"
)

// TestCaptureRecordsGraph verifies a capture covers every registered
// object with its generation, kind, and edges.
func TestCaptureRecordsGraph(t *testing.T) {
	h := heap.New()
	oldObj := h.NewTable()
	h.MinorCollect([]heap.Object{oldObj}) // promote

	tbl := h.NewTable()
	cell := h.NewCell(nil)
	tbl.Set("c", cell)

	snap := Capture(h)

	if len(snap.Objects) != 3 {
		t.Fatalf("captured %d objects, want 3", len(snap.Objects))
	}
	if snap.TakenAt.IsZero() {
		t.Error("snapshot should carry a timestamp")
	}

	var tableRefs, oldCount int
	kinds := map[string]int{}
	for _, rec := range snap.Objects {
		kinds[rec.Kind]++
		if rec.Gen == "old" {
			oldCount++
		}
		if rec.Kind == "table" && len(rec.Refs) > 0 {
			tableRefs += len(rec.Refs)
		}
		if rec.Size <= 0 {
			t.Errorf("object %d has non-positive size %d", rec.ID, rec.Size)
		}
	}
	if kinds["table"] != 2 || kinds["cell"] != 1 {
		t.Errorf("unexpected kind counts: %v", kinds)
	}
	if oldCount != 1 {
		t.Errorf("old-generation records = %d, want 1", oldCount)
	}
	if tableRefs != 1 {
		t.Errorf("table edge records = %d, want 1", tableRefs)
	}
	if snap.TotalSize() != h.EstimateMemoryUse() {
		t.Errorf("TotalSize() = %d, want heap estimate %d",
			snap.TotalSize(), h.EstimateMemoryUse())
	}
}

// TestWireRoundTrip verifies CBOR encoding round-trips a capture.
func TestWireRoundTrip(t *testing.T) {
	h := heap.New()
	tbl := h.NewTable()
	tbl.Set("x", h.NewCell("payload"))

	snap := Capture(h)

	data, err := Marshal(snap)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if len(got.Objects) != len(snap.Objects) {
		t.Fatalf("round trip lost objects: %d != %d", len(got.Objects), len(snap.Objects))
	}
	if got.TotalSize() != snap.TotalSize() {
		t.Errorf("round trip changed total size: %d != %d", got.TotalSize(), snap.TotalSize())
	}
}

// TestUnmarshalRejectsGarbage verifies decode errors are surfaced.
func TestUnmarshalRejectsGarbage(t *testing.T) {
	if _, err := Unmarshal([]byte{0xff, 0x00, 0x13}); err == nil {
		t.Error("Unmarshal of garbage bytes should fail")
	}
}
