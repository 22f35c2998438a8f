package heap

// ---------------------------------------------------------------------------
// Generation: a young/old partition of the registered heap
// ---------------------------------------------------------------------------

// Generation is a disjoint set of heap objects. Every live object belongs
// to exactly one generation at any time; Heap.Register and Promote are
// the only operations that move objects between them.
type Generation struct {
	name    string
	objects map[Object]struct{}
}

// NewGeneration creates an empty generation with a diagnostic name.
func NewGeneration(name string) *Generation {
	return &Generation{
		name:    name,
		objects: make(map[Object]struct{}),
	}
}

// Name returns the generation's diagnostic name ("young" or "old").
func (g *Generation) Name() string { return g.name }

// Add inserts obj into the generation.
func (g *Generation) Add(obj Object) {
	g.objects[obj] = struct{}{}
}

// Remove deletes obj from the generation. No-op if absent.
func (g *Generation) Remove(obj Object) {
	delete(g.objects, obj)
}

// Contains reports whether obj is a member.
func (g *Generation) Contains(obj Object) bool {
	_, ok := g.objects[obj]
	return ok
}

// Len returns the number of members.
func (g *Generation) Len() int { return len(g.objects) }

// Objects returns a snapshot of the current membership. The sweep
// iterates over the snapshot so it can remove members as it goes.
func (g *Generation) Objects() []Object {
	objs := make([]Object, 0, len(g.objects))
	for obj := range g.objects {
		objs = append(objs, obj)
	}
	return objs
}

// Promote moves obj from one generation to another without breaking
// identity. Panics if obj is not a member of from: an object outside its
// supposed generation is a programming error, not a recoverable state.
func Promote(obj Object, from, to *Generation) {
	if !from.Contains(obj) {
		panic("heap.Promote: object not in source generation")
	}
	from.Remove(obj)
	to.Add(obj)
}
