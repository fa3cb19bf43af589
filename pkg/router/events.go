package router

import (
	"net/url"
	"slices"
	"sync"
)

// BeforeChangeEvent is published when a transition is about to change the
// active chain.
type BeforeChangeEvent struct {
	Router  *Router
	Current *Fragment
	Target  *Fragment
}

// ChangeEvent is published after a transition changed the active chain.
type ChangeEvent struct {
	Router  *Router
	Old     *Fragment
	Current *Fragment
}

// URLHandledEvent is published after every transition attempt settles.
type URLHandledEvent struct {
	Router *Router
	Old    *url.URL
	New    *url.URL
}

// Observer gives a notification handler an identity. Adding the same
// Observer to a router more than once has no effect.
type Observer[E any] struct {
	fn func(E)
}

// NewObserver wraps fn. It panics when fn is nil.
func NewObserver[E any](fn func(E)) *Observer[E] {
	if fn == nil {
		panic("router: nil listener")
	}
	return &Observer[E]{fn: fn}
}

// listenerSet keeps observers in registration order.
type listenerSet[E any] struct {
	entries []*Observer[E]
}

func (s *listenerSet[E]) add(o *Observer[E]) {
	if !slices.Contains(s.entries, o) {
		s.entries = append(s.entries, o)
	}
}

func (s *listenerSet[E]) remove(o *Observer[E]) {
	if i := slices.Index(s.entries, o); i >= 0 {
		s.entries = slices.Delete(s.entries, i, i+1)
	}
}

func (s *listenerSet[E]) snapshot() []func(E) {
	out := make([]func(E), len(s.entries))
	for i, o := range s.entries {
		out[i] = o.fn
	}
	return out
}

// observe adds o to set and returns a function that removes it again.
func observe[E any](r *Router, set *listenerSet[E], o *Observer[E]) func() {
	if o == nil || o.fn == nil {
		panic("router: nil listener")
	}
	r.mu.Lock()
	set.add(o)
	r.mu.Unlock()

	return sync.OnceFunc(func() {
		r.mu.Lock()
		set.remove(o)
		r.mu.Unlock()
	})
}

// subscribe registers fn as a fresh observer on set.
func subscribe[E any](r *Router, set *listenerSet[E], fn func(E)) func() {
	return observe(r, set, NewObserver(fn))
}

func emit[E any](r *Router, set *listenerSet[E], ev E) {
	r.mu.Lock()
	fns := set.snapshot()
	r.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// OnBeforeChange registers fn for before-change notifications.
func (r *Router) OnBeforeChange(fn func(BeforeChangeEvent)) (unsubscribe func()) {
	return subscribe(r, &r.beforeChange, fn)
}

// OnChange registers fn for change notifications.
func (r *Router) OnChange(fn func(ChangeEvent)) (unsubscribe func()) {
	return subscribe(r, &r.change, fn)
}

// OnURLHandled registers fn for url-handled notifications.
func (r *Router) OnURLHandled(fn func(URLHandledEvent)) (unsubscribe func()) {
	return subscribe(r, &r.urlHandled, fn)
}

// OnAsyncError registers fn to receive errors raised after a transition
// suspended. Observers run in registration order. Every call adds a new
// observer; use AddAsyncErrorObserver to register a handler idempotently.
func (r *Router) OnAsyncError(fn func(error)) (unsubscribe func()) {
	return subscribe(r, &r.asyncError, fn)
}

// AddAsyncErrorObserver adds o to the async-error observers. Adding an
// observer that is already registered is a no-op.
func (r *Router) AddAsyncErrorObserver(o *Observer[error]) (unsubscribe func()) {
	return observe(r, &r.asyncError, o)
}

// RemoveAsyncErrorObserver removes o. Removing an unknown observer is a no-op.
func (r *Router) RemoveAsyncErrorObserver(o *Observer[error]) {
	r.mu.Lock()
	r.asyncError.remove(o)
	r.mu.Unlock()
}

// reportAsync delivers err to the async-error observers, or to the
// unhandled-error handler when there are none.
func (r *Router) reportAsync(err error) {
	r.mu.Lock()
	fns := r.asyncError.snapshot()
	r.mu.Unlock()

	if len(fns) == 0 {
		r.unhandled(err)
		return
	}
	for _, fn := range fns {
		fn(err)
	}
}
