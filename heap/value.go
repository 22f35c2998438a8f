package heap

// Value is anything a table slot, a cell, or a coroutine continuation can
// hold. Scalars (nil, booleans, numbers, strings) do not participate in
// collection; anything implementing Object does.
//
// Scalar values must be comparable so they can serve as table keys; heap
// objects are compared by pointer identity.
type Value any

// objectOf extracts the heap object behind v, if any.
func objectOf(v Value) (Object, bool) {
	o, ok := v.(Object)
	return o, ok
}

// valueAlive reports whether v counts as reachable under the current mark
// state. Scalars are never collectible and always count as alive; objects
// count only when marked.
func valueAlive(v Value) bool {
	if o, ok := objectOf(v); ok {
		return o.Marked()
	}
	return true
}

// appendValueRef appends the object component of v to refs, if v has one.
func appendValueRef(refs []Object, v Value) []Object {
	if o, ok := objectOf(v); ok {
		refs = append(refs, o)
	}
	return refs
}
