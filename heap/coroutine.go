package heap

// ---------------------------------------------------------------------------
// Coroutine: a cooperatively scheduled execution strand
// ---------------------------------------------------------------------------

// CoroutineStatus tracks where a coroutine is in its lifecycle.
type CoroutineStatus int

const (
	// StatusSuspended means the coroutine is waiting to be resumed.
	StatusSuspended CoroutineStatus = iota
	// StatusRunning means the coroutine is the active strand.
	StatusRunning
	// StatusDead means the coroutine has finished and holds no
	// continuation.
	StatusDead
)

// String returns the lowercase status name.
func (s CoroutineStatus) String() string {
	switch s {
	case StatusSuspended:
		return "suspended"
	case StatusRunning:
		return "running"
	case StatusDead:
		return "dead"
	default:
		return "unknown"
	}
}

// Coroutine owns its own scope chain and the values pending for its next
// resume. It stays alive only while something references it: another
// coroutine, a captured value, or an explicit handle in the root set.
type Coroutine struct {
	gcState
	scope   *Scope
	pending []Value
	status  CoroutineStatus
}

// NewCoroutine creates a suspended coroutine rooted at scope.
func NewCoroutine(scope *Scope) *Coroutine {
	return &Coroutine{scope: scope, status: StatusSuspended}
}

// Kind returns KindCoroutine.
func (co *Coroutine) Kind() Kind { return KindCoroutine }

// Scope returns the coroutine's own scope chain root.
func (co *Coroutine) Scope() *Scope { return co.scope }

// Status returns the coroutine's lifecycle state.
func (co *Coroutine) Status() CoroutineStatus { return co.status }

// SetStatus updates the coroutine's lifecycle state.
func (co *Coroutine) SetStatus(status CoroutineStatus) {
	if co.freed {
		return
	}
	co.status = status
}

// SetPending replaces the pending-resume continuation values.
func (co *Coroutine) SetPending(values []Value) {
	if co.freed {
		return
	}
	co.pending = values
}

// Pending returns the values pending for the next resume.
func (co *Coroutine) Pending() []Value { return co.pending }

// Complete marks the coroutine dead and drops its continuation so the
// values it was holding become collectible.
func (co *Coroutine) Complete() {
	if co.freed {
		return
	}
	co.status = StatusDead
	co.pending = nil
}

// References returns the scope chain root and every object held by the
// pending continuation.
func (co *Coroutine) References() []Object {
	if co.freed {
		return nil
	}
	refs := make([]Object, 0, len(co.pending)+1)
	if co.scope != nil {
		refs = append(refs, co.scope)
	}
	for _, v := range co.pending {
		refs = appendValueRef(refs, v)
	}
	return refs
}

// Free releases the coroutine's scope link and continuation. Idempotent.
func (co *Coroutine) Free() {
	if !co.beginFree() {
		return
	}
	co.scope = nil
	co.pending = nil
	co.status = StatusDead
}
