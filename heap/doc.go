// Package heap implements the Vela runtime's generational garbage
// collector.
//
// The collector is explicit: Go's own memory management knows nothing
// about the reference graph between Vela tables, scopes, cells, upvalues,
// and coroutines, so reachability is traced over a registry of heap
// objects rather than inferred from Go pointers. Objects are registered
// into the young generation at allocation time, promoted to the old
// generation when they survive a minor collection, and freed when a major
// collection finds them unreachable.
//
// Major collections additionally honor Vela's weak-table semantics: a
// table whose metatable carries a "__mode" entry containing "k" and/or
// "v" does not keep the corresponding halves of its entries alive on its
// own. Weak-value tables are filtered directly against the mark state,
// weak-key tables are resolved as ephemerons by fixpoint iteration, and
// all-weak tables drop every entry whose key or value is not reachable
// elsewhere. Minor collections disable weak handling entirely and never
// clear a weak entry.
//
// Exactly one mutator is active at a time (Vela coroutines are
// cooperative), so collections assume a quiescent graph: no allocation or
// reference mutation may happen while a collection runs, and every
// collection runs to completion before control returns.
package heap
