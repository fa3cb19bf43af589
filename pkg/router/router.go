package router

import (
	"context"
	"log/slog"
	"net/url"
	"sync"

	"github.com/vango-dev/viewrouter/pkg/history"
)

// Router matches URLs from a history source against the route tree and
// drives the enter/leave lifecycle of the matched chain.
type Router struct {
	tree      *Tree
	history   history.Source
	host      Host
	logger    *slog.Logger
	instr     Instrumentation
	basePath  string
	unhandled func(error)

	mu            sync.Mutex
	mounted       bool
	unsubscribe   func()
	current       []*Fragment
	target        *Fragment
	transitioning bool
	url           *url.URL
	params        Params

	// next is the most recent URL received while transitioning.
	next *url.URL

	tasks int
	idle  chan struct{}

	beforeChange listenerSet[BeforeChangeEvent]
	change       listenerSet[ChangeEvent]
	urlHandled   listenerSet[URLHandledEvent]
	asyncError   listenerSet[error]
}

// New compiles and validates routes. Structural errors abort construction.
func New(routes []RouteDef, opts ...Option) (*Router, error) {
	idle := make(chan struct{})
	close(idle)

	r := &Router{
		tree:   &Tree{},
		host:   noopHost{},
		logger: slog.Default(),
		instr:  noopInstrumentation{},
		idle:   idle,
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.history == nil {
		h, err := history.NewMemory("http://localhost/")
		if err != nil {
			return nil, err
		}
		r.history = h
	}
	if r.unhandled == nil {
		logger := r.logger
		r.unhandled = func(err error) {
			logger.Error("unhandled router error", "error", err)
		}
	}

	if _, err := r.tree.compile(routes, nil); err != nil {
		return nil, err
	}
	if err := r.tree.validateTree(); err != nil {
		return nil, err
	}
	return r, nil
}

// Mount subscribes to the history source and transitions to its current
// URL. Errors raised before the first suspension are returned.
func (r *Router) Mount() error {
	r.mu.Lock()
	if r.mounted {
		r.mu.Unlock()
		return nil
	}
	r.mounted = true
	r.mu.Unlock()

	unsubscribe := r.history.Subscribe(r.onURL)

	r.mu.Lock()
	r.unsubscribe = unsubscribe
	r.mu.Unlock()

	return r.handleURL(r.history.URL())
}

// Unmount stops listening to the history source. Entered fragments stay
// entered.
func (r *Router) Unmount() {
	r.mu.Lock()
	if !r.mounted {
		r.mu.Unlock()
		return
	}
	r.mounted = false
	unsubscribe := r.unsubscribe
	r.unsubscribe = nil
	r.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// IsMounted reports whether the router listens to its history source.
func (r *Router) IsMounted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mounted
}

func (r *Router) onURL(u *url.URL, _ history.PushOptions) error {
	return r.handleURL(u)
}

// CurrentFragments returns the active chain from the top level down.
func (r *Router) CurrentFragments() []*Fragment {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Fragment(nil), r.current...)
}

// CurrentFragment returns the innermost active fragment, or nil.
func (r *Router) CurrentFragment() *Fragment {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.leaf()
}

func (r *Router) leaf() *Fragment {
	if len(r.current) == 0 {
		return nil
	}
	return r.current[len(r.current)-1]
}

// TargetFragment returns the leaf being transitioned to, or nil when idle.
func (r *Router) TargetFragment() *Fragment {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.target
}

// URL returns the most recently matched URL, or nil before the first match.
func (r *Router) URL() *url.URL {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.url == nil {
		return nil
	}
	u := *r.url
	return &u
}

// Params returns the path parameters of the most recent match.
func (r *Router) Params() Params {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append(Params(nil), r.params...)
}

// IsTransitioning reports whether a transition is in flight.
func (r *Router) IsTransitioning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.transitioning
}

// BasePath returns the normalized base path, or "".
func (r *Router) BasePath() string {
	return r.basePath
}

// History returns the URL source the router listens to.
func (r *Router) History() history.Source {
	return r.history
}

// Tree returns the route tree.
func (r *Router) Tree() *Tree {
	return r.tree
}

// WaitIdle blocks until no transition work is running. A transition left
// stuck by an error does not keep WaitIdle blocked.
func (r *Router) WaitIdle(ctx context.Context) error {
	r.mu.Lock()
	idle := r.idle
	r.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// beginTask must be called with r.mu held.
func (r *Router) beginTask() {
	if r.tasks == 0 {
		r.idle = make(chan struct{})
	}
	r.tasks++
}

func (r *Router) endTask() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks--
	if r.tasks == 0 {
		close(r.idle)
	}
}
