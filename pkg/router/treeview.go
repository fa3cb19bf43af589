package router

import (
	"fmt"
	"io"
	"strings"

	"github.com/xlab/treeprint"
)

// RouteInfo is a read-only view of a route node.
type RouteInfo struct {
	// Path is the readable path from the top level, e.g. "parent/{*empty*}".
	Path string

	// Segment is the declared path segment.
	Segment string

	Kind            SegmentKind
	Depth           int
	HasComponent    bool
	HasController   bool
	HasResolver     bool
	Resolved        bool
	CaseInsensitive bool
	Children        int
}

func infoOf(n *routeNode, depth int) RouteInfo {
	return RouteInfo{
		Path:            n.readablePath(),
		Segment:         n.segment,
		Kind:            n.kind,
		Depth:           depth,
		HasComponent:    n.component != nil,
		HasController:   !n.controller.IsZero(),
		HasResolver:     n.resolve != nil,
		Resolved:        n.resolved,
		CaseInsensitive: n.caseInsensitive,
		Children:        n.children.len(),
	}
}

// Walk visits every route node depth first in declaration order. Returning
// false from fn skips the node's subtree.
func (t *Tree) Walk(fn func(RouteInfo) bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var visit func(nodes []*routeNode, depth int)
	visit = func(nodes []*routeNode, depth int) {
		for _, n := range nodes {
			if fn(infoOf(n, depth)) {
				visit(n.children.list(), depth+1)
			}
		}
	}
	visit(t.top.list(), 0)
}

// Lookup returns the node declared at path.
func (t *Tree) Lookup(path string) (RouteInfo, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n := t.lookup(path)
	if n == nil {
		return RouteInfo{}, false
	}
	depth := 0
	for p := n.parent; p != nil; p = p.parent {
		depth++
	}
	return infoOf(n, depth), true
}

// Print writes the tree as an indented outline.
func (t *Tree) Print(w io.Writer) error {
	t.mu.RLock()
	defer t.mu.RUnlock()

	root := treeprint.NewWithRoot("routes")
	var add func(branch treeprint.Tree, nodes []*routeNode)
	add = func(branch treeprint.Tree, nodes []*routeNode) {
		for _, n := range nodes {
			label := n.segment
			if label == "" {
				label = emptyPathSignal
			}
			meta := describe(n)
			if n.children.len() == 0 {
				branch.AddMetaNode(meta, label)
				continue
			}
			add(branch.AddMetaBranch(meta, label), n.children.list())
		}
	}
	add(root, t.top.list())

	_, err := io.WriteString(w, root.String())
	return err
}

// describe summarizes what a node declares, for Print.
func describe(n *routeNode) string {
	var parts []string
	parts = append(parts, n.kind.String())
	if n.component != nil {
		parts = append(parts, "component")
	}
	if !n.controller.IsZero() {
		parts = append(parts, "controller")
	}
	if n.resolve != nil {
		state := "pending"
		if n.resolved {
			state = "resolved"
		}
		parts = append(parts, fmt.Sprintf("resolve:%s", state))
	}
	if n.caseInsensitive {
		parts = append(parts, "case-insensitive")
	}
	return strings.Join(parts, " ")
}
