package heap

// ---------------------------------------------------------------------------
// Memory-use estimation
// ---------------------------------------------------------------------------

// Per-kind base costs and size-dependent terms, in abstract bytes. The
// estimate is a monotone heuristic for reporting pressure to an external
// collection policy; it does not decide cadence and does not try to match
// Go's real allocation sizes.
const (
	tableBaseCost      = 48
	tableEntryCost     = 32
	metatableSurcharge = 16

	scopeBaseCost    = 40
	scopeBindingCost = 24

	cellBaseCost = 16

	upvalueBaseCost        = 24
	upvalueClosedSurcharge = 8
	upvalueJoinSurcharge   = 8

	coroutineBaseCost       = 64
	coroutinePendingCost    = 16
	coroutineScopeSurcharge = 16
)

// EstimateMemoryUse sums a per-object cost over every live object in both
// generations. Deterministic for a fixed heap.
func (h *Heap) EstimateMemoryUse() int {
	total := 0
	for obj := range h.young.objects {
		total += EstimateObject(obj)
	}
	for obj := range h.old.objects {
		total += EstimateObject(obj)
	}
	return total
}

// EstimateObject returns the abstract cost of a single object: a per-kind
// base plus size-dependent terms (entry count for tables, name length and
// joined/closed status for upvalues, surcharges for a metatable or a held
// continuation).
func EstimateObject(obj Object) int {
	switch o := obj.(type) {
	case *Table:
		cost := tableBaseCost + tableEntryCost*o.Len()
		if o.Metatable() != nil {
			cost += metatableSurcharge
		}
		return cost
	case *Scope:
		return scopeBaseCost + scopeBindingCost*o.Len()
	case *Cell:
		return cellBaseCost
	case *Upvalue:
		cost := upvalueBaseCost + len(o.Name())
		if o.IsClosed() {
			cost += upvalueClosedSurcharge
		}
		if o.IsJoined() {
			cost += upvalueJoinSurcharge
		}
		return cost
	case *Coroutine:
		cost := coroutineBaseCost + coroutinePendingCost*len(o.Pending())
		if o.Scope() != nil {
			cost += coroutineScopeSurcharge
		}
		return cost
	default:
		return 0
	}
}
