package observe

import (
	"reflect"
	"sync"
)

// Observable is implemented by values that always want to be tracked.
type Observable interface {
	Observable() bool
}

// Change reports that a value became rooted or stopped being rooted.
type Change struct {
	Value  any
	Rooted bool
}

// Registry is a reactive host. It is safe for concurrent use; batches
// started from different goroutines share one publication phase.
type Registry struct {
	mu      sync.Mutex
	marked  map[any]bool
	roots   map[any]int
	depth   int
	initial map[any]int
	order   []any

	subMu  sync.Mutex
	nextID uint64
	subs   []subscriber
}

type subscriber struct {
	id uint64
	fn func([]Change)
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		marked: make(map[any]bool),
		roots:  make(map[any]int),
	}
}

func trackable(v any) bool {
	return v != nil && reflect.TypeOf(v).Comparable()
}

// Track marks v as observed. It reports false when v cannot be tracked.
func (r *Registry) Track(v any) bool {
	if !trackable(v) {
		return false
	}
	r.mu.Lock()
	r.marked[v] = true
	r.mu.Unlock()
	return true
}

// Untrack removes a mark set by Track.
func (r *Registry) Untrack(v any) {
	if !trackable(v) {
		return
	}
	r.mu.Lock()
	delete(r.marked, v)
	r.mu.Unlock()
}

// IsObserved reports whether v is tracked.
func (r *Registry) IsObserved(v any) bool {
	if !trackable(v) {
		return false
	}
	if o, ok := v.(Observable); ok && o.Observable() {
		return true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.marked[v]
}

// Root adds a reference to v. Untracked values are ignored.
func (r *Registry) Root(v any) {
	if !r.IsObserved(v) {
		return
	}
	r.Batch(func() {
		r.mu.Lock()
		r.touch(v)
		r.roots[v]++
		r.mu.Unlock()
	})
}

// Unroot drops a reference to v. Extra calls are ignored.
func (r *Registry) Unroot(v any) {
	if !trackable(v) {
		return
	}
	r.Batch(func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.roots[v] == 0 {
			return
		}
		r.touch(v)
		r.roots[v]--
		if r.roots[v] == 0 {
			delete(r.roots, v)
		}
	})
}

// touch records the root count of v before the current batch changed it.
// Callers hold r.mu.
func (r *Registry) touch(v any) {
	if _, ok := r.initial[v]; ok {
		return
	}
	r.initial[v] = r.roots[v]
	r.order = append(r.order, v)
}

// RootCount returns the number of references held on v.
func (r *Registry) RootCount(v any) int {
	if !trackable(v) {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.roots[v]
}

// Rooted returns the number of values with at least one reference.
func (r *Registry) Rooted() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.roots)
}

// Batch runs fn and publishes the changes it made once the outermost batch
// completes. Batches can be nested.
func (r *Registry) Batch(fn func()) {
	r.mu.Lock()
	if r.depth == 0 {
		r.initial = make(map[any]int)
		r.order = nil
	}
	r.depth++
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.depth--
		if r.depth > 0 {
			r.mu.Unlock()
			return
		}
		changes := r.drain()
		r.mu.Unlock()
		r.publish(changes)
	}()

	fn()
}

// drain returns the net changes of the finished batch. Callers hold r.mu.
func (r *Registry) drain() []Change {
	var changes []Change
	for _, v := range r.order {
		before := r.initial[v] > 0
		after := r.roots[v] > 0
		if before != after {
			changes = append(changes, Change{Value: v, Rooted: after})
		}
	}
	r.initial = nil
	r.order = nil
	return changes
}

// Subscribe registers fn for published changes and returns a function that
// removes it.
func (r *Registry) Subscribe(fn func([]Change)) func() {
	if fn == nil {
		panic("observe: nil subscriber")
	}
	r.subMu.Lock()
	r.nextID++
	id := r.nextID
	r.subs = append(r.subs, subscriber{id: id, fn: fn})
	r.subMu.Unlock()

	return func() {
		r.subMu.Lock()
		defer r.subMu.Unlock()
		for i, s := range r.subs {
			if s.id == id {
				r.subs = append(r.subs[:i:i], r.subs[i+1:]...)
				return
			}
		}
	}
}

func (r *Registry) publish(changes []Change) {
	if len(changes) == 0 {
		return
	}
	r.subMu.Lock()
	subs := append([]subscriber(nil), r.subs...)
	r.subMu.Unlock()

	for _, s := range subs {
		s.fn(changes)
	}
}
