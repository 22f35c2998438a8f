package heap

import "testing"

// TestUpvalueOpenCloseSemantics verifies reads and writes go through the
// cell while open and through the detached copy once closed.
func TestUpvalueOpenCloseSemantics(t *testing.T) {
	cell := NewCell("initial")
	uv := NewUpvalue("x", cell)

	if uv.IsClosed() {
		t.Fatal("fresh upvalue should be open")
	}
	uv.Set("written")
	if got := cell.Get(); got != "written" {
		t.Fatalf("open upvalue write not visible in cell: %v", got)
	}

	uv.Close()
	if !uv.IsClosed() {
		t.Fatal("upvalue should report closed after Close")
	}
	uv.Close() // second close is a no-op

	// Writes after closing touch the detached copy, not the cell.
	uv.Set("detached")
	if got := uv.Get(); got != "detached" {
		t.Errorf("closed upvalue read = %v, want detached", got)
	}
	if got := cell.Get(); got != "written" {
		t.Errorf("closed upvalue wrote through to the cell: %v", got)
	}
}

// TestJoinRejectsCycles verifies Join refuses any target whose chain
// already passes through the receiver, so resolve always terminates.
func TestJoinRejectsCycles(t *testing.T) {
	canonical := NewUpvalue("x", NewCell("base"))

	a := NewUpvalue("x", nil)
	a.Join(canonical)
	mid := NewUpvalue("x", nil)
	mid.Join(a)

	// a sits mid-chain in mid -> a -> canonical: joining a to mid would
	// close the loop a -> mid -> a.
	a.Join(mid)
	if a.IsJoined() && a.join == mid {
		t.Fatal("Join accepted a target whose chain passes through the receiver")
	}
	if got := a.Get(); got != "base" {
		t.Errorf("a.Get() = %v, want base", got)
	}

	// Direct self-join and a back-join from the chain's end are rejected
	// the same way.
	a.Join(a)
	canonical.Join(mid)
	if canonical.IsJoined() {
		t.Error("Join closed a loop from the canonical end of a chain")
	}
	if got := mid.Get(); got != "base" {
		t.Errorf("mid.Get() = %v, want base", got)
	}

	// Joining to nil stays a no-op and does not detach the receiver.
	open := NewUpvalue("y", NewCell("held"))
	open.Join(nil)
	if got := open.Get(); got != "held" {
		t.Errorf("Join(nil) detached the upvalue: got %v", got)
	}
}
