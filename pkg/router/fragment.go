package router

import (
	"strings"
	"sync"

	"github.com/vango-dev/viewrouter/pkg/routepath"
)

// Fragment is one position of a matched chain. It mirrors the URL prefix
// consumed up to and including its route node.
type Fragment struct {
	node   *routeNode
	parent *Fragment

	path    string
	value   string
	urlPath string

	component  Component
	controller ControllerDef

	mu       sync.RWMutex
	instance any
}

func newFragment(n *routeNode, consumed []routepath.Segment, parent *Fragment) *Fragment {
	f := &Fragment{
		node:       n,
		parent:     parent,
		component:  n.component,
		controller: n.controller,
	}
	if len(consumed) > 0 {
		raw := make([]string, len(consumed))
		val := make([]string, len(consumed))
		for i, s := range consumed {
			raw[i] = s.Raw
			val[i] = s.Value
		}
		f.path = strings.Join(raw, "/")
		f.value = strings.Join(val, "/")
	}
	parentURL := ""
	if parent != nil {
		parentURL = parent.urlPath
	}
	f.urlPath = routepath.Join(parentURL, f.path)
	return f
}

// Path returns the URL segments consumed by the fragment, still escaped.
// It is empty when nothing was consumed.
func (f *Fragment) Path() string { return f.path }

// Value returns the decoded form of Path.
func (f *Fragment) Value() string { return f.value }

// AbstractPath returns the declared segment of the route node.
func (f *Fragment) AbstractPath() string { return f.node.segment }

// Kind returns the segment kind of the route node.
func (f *Fragment) Kind() SegmentKind { return f.node.kind }

// URLPath returns the absolute URL path up to this fragment.
func (f *Fragment) URLPath() string { return f.urlPath }

// ReadablePath returns the declared path of the route node.
func (f *Fragment) ReadablePath() string { return f.node.readablePath() }

// Parent returns the enclosing fragment, or nil at the top level.
func (f *Fragment) Parent() *Fragment { return f.parent }

// Component returns the component rendered for this fragment.
func (f *Fragment) Component() Component { return f.component }

// HasController reports whether a controller is declared.
func (f *Fragment) HasController() bool { return !f.controller.IsZero() }

// Controller returns the controller instance attached while the fragment
// is entered.
func (f *Fragment) Controller() any {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.instance
}

func (f *Fragment) setController(v any) {
	f.mu.Lock()
	f.instance = v
	f.mu.Unlock()
}

// sameAs reports whether two fragments stand for the same route node
// consuming the same URL segments.
func (f *Fragment) sameAs(o *Fragment) bool {
	if f == nil || o == nil {
		return f == o
	}
	return f.node == o.node && f.path == o.path
}

// chainOf returns the fragments from the top level down to leaf.
func chainOf(leaf *Fragment) []*Fragment {
	var chain []*Fragment
	for f := leaf; f != nil; f = f.parent {
		chain = append(chain, f)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// diffChains splits two chains at their longest common prefix. It returns
// the kept prefix of current, the tail of current and the tail of target.
func diffChains(current, target []*Fragment) (kept, exit, enter []*Fragment) {
	i := 0
	for i < len(current) && i < len(target) && current[i].sameAs(target[i]) {
		i++
	}
	return current[:i], current[i:], target[i:]
}

// sameChain compares two chains by fragment identity.
func sameChain(a, b []*Fragment) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
