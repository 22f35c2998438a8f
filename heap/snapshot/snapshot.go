// Package snapshot captures a heap's object graph in a compact wire form
// for offline diagnosis: leak hunting, graph diffing between collections,
// and bug reports from embedders.
package snapshot

import (
	"time"

	"github.com/velalang/vela/heap"
)

// ObjectRecord describes one heap object in a snapshot. Edges reference
// other records by ID; weak-mode exclusions are not applied — a snapshot
// shows the full strong view the way a minor collection sees it.
type ObjectRecord struct {
	ID   uint32   `cbor:"id"`
	Kind string   `cbor:"kind"`
	Gen  string   `cbor:"gen"`
	Size int      `cbor:"size"`
	Refs []uint32 `cbor:"refs,omitempty"`
}

// Snapshot is a point-in-time capture of every registered object.
type Snapshot struct {
	TakenAt time.Time      `cbor:"taken_at"`
	Objects []ObjectRecord `cbor:"objects"`
}

// Capture records the current state of h. It must run while the mutator
// is quiescent, like a collection.
func Capture(h *heap.Heap) *Snapshot {
	objs := h.Objects()

	ids := make(map[heap.Object]uint32, len(objs))
	for i, obj := range objs {
		ids[obj] = uint32(i + 1)
	}

	snap := &Snapshot{
		TakenAt: time.Now().UTC(),
		Objects: make([]ObjectRecord, 0, len(objs)),
	}
	for _, obj := range objs {
		rec := ObjectRecord{
			ID:   ids[obj],
			Kind: obj.Kind().String(),
			Size: heap.EstimateObject(obj),
		}
		if h.InOld(obj) {
			rec.Gen = "old"
		} else {
			rec.Gen = "young"
		}
		for _, ref := range obj.References() {
			if id, ok := ids[ref]; ok {
				rec.Refs = append(rec.Refs, id)
			}
		}
		snap.Objects = append(snap.Objects, rec)
	}
	return snap
}

// TotalSize sums the per-object size estimates.
func (s *Snapshot) TotalSize() int {
	total := 0
	for _, rec := range s.Objects {
		total += rec.Size
	}
	return total
}
