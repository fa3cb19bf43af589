package router

import (
	"regexp"
	"strings"
	"sync"

	"golang.org/x/text/cases"

	"github.com/vango-dev/viewrouter/pkg/async"
	"github.com/vango-dev/viewrouter/pkg/routepath"
)

const (
	fallbackSegment = "*"
	emptyPathSignal = "{*empty*}"
)

var identifierRegex = regexp.MustCompile(`^\w+$`)

// SegmentKind classifies the path segment of a route node.
type SegmentKind uint8

const (
	KindPassThrough SegmentKind = iota
	KindLiteral
	KindParam
	KindPattern
	KindFallback
)

func (k SegmentKind) String() string {
	switch k {
	case KindLiteral:
		return "literal"
	case KindParam:
		return "param"
	case KindPattern:
		return "pattern"
	case KindFallback:
		return "fallback"
	}
	return "pass-through"
}

// classify returns the kind of a raw path segment.
func classify(segment string) SegmentKind {
	switch {
	case segment == "":
		return KindPassThrough
	case segment == fallbackSegment:
		return KindFallback
	case segment[0] == ':' && identifierRegex.MatchString(segment[1:]):
		return KindParam
	case len(segment) > 1 && segment[0] == '^' && segment[len(segment)-1] == '$':
		return KindPattern
	}
	return KindLiteral
}

// fold case-folds a literal segment for case-insensitive comparison.
func fold(s string) string {
	return cases.Fold().String(s)
}

// routeNode is a static node of the declared route tree.
type routeNode struct {
	segment string
	kind    SegmentKind
	parent  *routeNode

	children childSet

	component  Component
	controller ControllerDef
	resolve    Resolver

	// resolved is false while resolve has not merged its payload.
	resolved bool

	// pending is the in-flight or settled resolution. A failed resolution
	// stays cached so resolve is never invoked twice.
	pending *async.Future[struct{}]

	caseInsensitive bool
	caseDefined     bool

	pattern    *regexp.Regexp
	patternErr error
}

func newRouteNode(segment string, parent *routeNode) *routeNode {
	return &routeNode{
		segment:  segment,
		kind:     classify(segment),
		parent:   parent,
		resolved: true,
	}
}

// compilePattern (re)compiles the pattern of a pattern node, honoring
// case-insensitivity.
func (n *routeNode) compilePattern() {
	if n.kind != KindPattern {
		return
	}
	expr := n.segment
	if n.caseInsensitive {
		expr = "(?i)" + expr
	}
	n.pattern, n.patternErr = regexp.Compile(expr)
}

// hasPayload reports whether a component, controller or resolver is set.
func (n *routeNode) hasPayload() bool {
	return n.component != nil || !n.controller.IsZero() || n.resolve != nil
}

// unresolved reports whether the node still waits for its resolver.
func (n *routeNode) unresolved() bool {
	return n.resolve != nil && !n.resolved
}

// resolvable reports whether n or one of its ancestors still waits for
// a resolver.
func (n *routeNode) resolvable() bool {
	for cur := n; cur != nil; cur = cur.parent {
		if cur.unresolved() {
			return true
		}
	}
	return false
}

// readablePath joins the segments from the top level down to n, spelling
// empty segments as {*empty*}.
func (n *routeNode) readablePath() string {
	var parts []string
	for cur := n; cur != nil; cur = cur.parent {
		seg := cur.segment
		if seg == "" {
			seg = emptyPathSignal
		}
		parts = append(parts, seg)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "/")
}

// score returns the specificity digit for matching seg, or 0 when the
// node does not match it.
func (n *routeNode) score(seg routepath.Segment) byte {
	switch n.kind {
	case KindLiteral:
		if n.segment == seg.Value {
			return '3'
		}
		if n.caseInsensitive && fold(n.segment) == fold(seg.Value) {
			return '3'
		}
	case KindParam:
		return '2'
	case KindPattern:
		if n.pattern != nil && n.pattern.MatchString(seg.Value) {
			return '1'
		}
	}
	return 0
}

// childSet is an insertion-ordered map of child nodes keyed by segment.
type childSet struct {
	keys  []string
	nodes map[string]*routeNode
}

func (c *childSet) get(segment string) *routeNode {
	return c.nodes[segment]
}

func (c *childSet) put(n *routeNode) {
	if c.nodes == nil {
		c.nodes = make(map[string]*routeNode)
	}
	if _, ok := c.nodes[n.segment]; !ok {
		c.keys = append(c.keys, n.segment)
	}
	c.nodes[n.segment] = n
}

// insertAt puts n back at position i, used when undoing a removal.
func (c *childSet) insertAt(i int, n *routeNode) {
	if c.nodes == nil {
		c.nodes = make(map[string]*routeNode)
	}
	if i > len(c.keys) {
		i = len(c.keys)
	}
	c.keys = append(c.keys, "")
	copy(c.keys[i+1:], c.keys[i:])
	c.keys[i] = n.segment
	c.nodes[n.segment] = n
}

// remove deletes the child with segment and returns its former position.
func (c *childSet) remove(segment string) int {
	if _, ok := c.nodes[segment]; !ok {
		return -1
	}
	delete(c.nodes, segment)
	for i, k := range c.keys {
		if k == segment {
			c.keys = append(c.keys[:i], c.keys[i+1:]...)
			return i
		}
	}
	return -1
}

func (c *childSet) len() int {
	return len(c.keys)
}

// list returns the children in insertion order.
func (c *childSet) list() []*routeNode {
	out := make([]*routeNode, 0, len(c.keys))
	for _, k := range c.keys {
		out = append(out, c.nodes[k])
	}
	return out
}

// journal records undo steps so a failed mutation can be rolled back.
type journal struct {
	undo []func()
}

func (j *journal) record(fn func()) {
	if j != nil {
		j.undo = append(j.undo, fn)
	}
}

func (j *journal) rollback() {
	for i := len(j.undo) - 1; i >= 0; i-- {
		j.undo[i]()
	}
	j.undo = nil
}

// Tree is the static route tree. It is safe for concurrent use.
type Tree struct {
	mu  sync.RWMutex
	top childSet

	// resolveMu serializes starting resolvers so each runs at most once.
	resolveMu sync.Mutex
}

// compile turns declarations into tree nodes. Touched nodes are appended
// to touched so the caller can validate them.
func (t *Tree) compile(defs []RouteDef, j *journal) ([]*routeNode, error) {
	var touched []*routeNode
	for _, def := range defs {
		if _, err := t.compileDef(def, nil, &t.top, j, &touched); err != nil {
			return touched, err
		}
	}
	return touched, nil
}

func (t *Tree) compileDef(def RouteDef, parent *routeNode, level *childSet, j *journal, touched *[]*routeNode) (*routeNode, error) {
	segments := routepath.Split(def.Path)
	if len(segments) == 0 {
		segments = []string{""}
	}

	last := len(segments) - 1
	var n *routeNode
	for i, seg := range segments {
		var err error
		if i == last {
			n, err = t.defineNode(seg, parent, level, def, j, touched)
		} else {
			n = t.ensureNode(seg, parent, level, j, touched)
		}
		if err != nil {
			return nil, err
		}
		parent = n
		level = &n.children
	}

	for _, child := range def.Children {
		if _, err := t.compileDef(child, n, level, j, touched); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// ensureNode returns the node for seg under level, creating a structural
// node when there is none.
func (t *Tree) ensureNode(seg string, parent *routeNode, level *childSet, j *journal, touched *[]*routeNode) *routeNode {
	if n := level.get(seg); n != nil {
		return n
	}
	n := newRouteNode(seg, parent)
	n.compilePattern()
	level.put(n)
	j.record(func() { level.remove(seg) })
	*touched = append(*touched, n)
	return n
}

// defineNode merges the payload of def into the node for seg.
func (t *Tree) defineNode(seg string, parent *routeNode, level *childSet, def RouteDef, j *journal, touched *[]*routeNode) (*routeNode, error) {
	n := t.ensureNode(seg, parent, level, j, touched)

	defining := def.Component != nil || !def.Controller.IsZero() || def.Resolve != nil
	if defining {
		if n.hasPayload() {
			return nil, newRouteError("R001", n)
		}
		prev := *n
		n.component = def.Component
		n.controller = def.Controller
		n.resolve = def.Resolve
		n.resolved = def.Resolve == nil
		j.record(func() {
			n.component = prev.component
			n.controller = prev.controller
			n.resolve = prev.resolve
			n.resolved = prev.resolved
		})
		*touched = append(*touched, n)
	}

	if def.CaseInsensitive {
		if n.caseDefined {
			return nil, newRouteError("R001", n).WithDetail("case-insensitivity is already defined")
		}
		n.caseInsensitive = true
		n.caseDefined = true
		n.compilePattern()
		j.record(func() {
			n.caseInsensitive = false
			n.caseDefined = false
			n.compilePattern()
		})
		*touched = append(*touched, n)
	}

	return n, nil
}

// lookup returns the node reached by following the segments of path.
func (t *Tree) lookup(path string) *routeNode {
	segments := routepath.Split(path)
	if len(segments) == 0 {
		segments = []string{""}
	}
	level := &t.top
	var n *routeNode
	for _, seg := range segments {
		n = level.get(seg)
		if n == nil {
			return nil
		}
		level = &n.children
	}
	return n
}

// childFromPath follows path below n the way resolved children address
// their placeholders.
func (n *routeNode) childFromPath(path string) (*routeNode, *routeNode, string) {
	segments := routepath.Split(path)
	if len(segments) == 0 {
		segments = []string{""}
	}
	cur := n
	for _, seg := range segments {
		child := cur.children.get(seg)
		if child == nil {
			return nil, cur, seg
		}
		cur = child
	}
	return cur, nil, ""
}
