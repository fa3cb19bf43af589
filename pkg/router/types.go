package router

import (
	"github.com/vango-dev/viewrouter/pkg/async"
)

// Component renders one route fragment. Children holds what the nested
// fragments rendered, or nil for the innermost one.
type Component func(props Props) any

// Props is what a Component receives.
type Props struct {
	// Controller is the controller instance attached to the fragment, if any.
	Controller any

	// Fragment is the route fragment being rendered.
	Fragment *Fragment

	// Children is the rendered output of the nested fragments.
	Children any
}

// RouteDef declares a route. Paths may span several segments ("a/b");
// the payload then belongs to the last one. Each segment is one of:
//
//	literal    "users"
//	parameter  ":id"
//	pattern    "^[0-9]+$"
//	fallback   "*"
//	empty      "" (pass-through, consumes nothing)
type RouteDef struct {
	Path            string
	Component       Component
	Controller      ControllerDef
	Resolve         Resolver
	CaseInsensitive bool
	Children        []RouteDef
}

// Resolver supplies part of a route definition later. It must return a
// non-nil future; it is called at most once per route fragment.
type Resolver func() *async.Future[Resolution]

// Resolution is the payload a Resolver settles with.
type Resolution struct {
	Component  Component
	Controller ControllerDef
	Children   []ResolvedChild
}

// ResolvedChild fills a child that was declared as a placeholder.
type ResolvedChild struct {
	Path       string
	Component  Component
	Controller ControllerDef
	Children   []ResolvedChild
}

// Verdict is the outcome of a lifecycle hook.
type Verdict int

const (
	// Proceed lets the transition continue.
	Proceed Verdict = iota

	// Refuse stops the transition at this fragment.
	Refuse
)

func (v Verdict) String() string {
	if v == Refuse {
		return "refuse"
	}
	return "proceed"
}

// Result is returned by lifecycle hooks. The zero Result proceeds.
type Result = async.Value[Verdict]

// Allow returns a Result that lets the transition continue.
func Allow() Result {
	return async.Now(Proceed)
}

// Deny returns a Result that refuses the transition.
func Deny() Result {
	return async.Now(Refuse)
}

// Pending returns a Result that settles with f.
func Pending(f *async.Future[Verdict]) Result {
	return async.Later(f)
}

// Failed returns a Result carrying err.
func Failed(err error) Result {
	return async.Fail[Verdict](err)
}

// HookContext is passed to lifecycle hooks.
type HookContext struct {
	Router   *Router
	Fragment *Fragment
}

// Enterer is implemented by controllers that want to run code when their
// fragment becomes active.
type Enterer interface {
	OnEnter(ctx HookContext) Result
}

// Leaver is implemented by controllers that want to run code when their
// fragment is about to become inactive.
type Leaver interface {
	OnLeave(ctx HookContext) Result
}

// Host is the reactive observation host controllers are registered with.
type Host interface {
	// IsObserved reports whether v is tracked by the host.
	IsObserved(v any) bool

	// Root registers v with the host's dependency graph.
	Root(v any)

	// Unroot removes v from the host's dependency graph.
	Unroot(v any)

	// Batch runs fn so that its effects are published together.
	Batch(fn func())
}

type noopHost struct{}

func (noopHost) IsObserved(any) bool { return false }
func (noopHost) Root(any)            {}
func (noopHost) Unroot(any)          {}
func (noopHost) Batch(fn func())     { fn() }
