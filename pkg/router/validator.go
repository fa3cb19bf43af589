package router

import (
	"fmt"
	"strings"
)

// =============================================================================
// Tree Validation
// =============================================================================

// validateTree checks every level of the tree.
func (t *Tree) validateTree() error {
	var errs ValidationErrors
	validateLevel(t.top.list(), &errs)
	for _, n := range t.top.list() {
		validateNode(n, false, &errs)
	}
	return errs.err()
}

// validateFrom checks the sibling level of each node in roots together
// with its subtree. Resolvability is inherited from the ancestors.
func (t *Tree) validateFrom(roots []*routeNode) error {
	var errs ValidationErrors
	seenLevel := make(map[*childSet]bool)
	seenNode := make(map[*routeNode]bool)

	for _, n := range topmost(roots) {
		level := &t.top
		if n.parent != nil {
			level = &n.parent.children
		}
		if !seenLevel[level] {
			seenLevel[level] = true
			validateLevel(level.list(), &errs)
		}
		if !seenNode[n] {
			seenNode[n] = true
			inherited := n.parent != nil && n.parent.resolvable()
			validateNode(n, inherited, &errs)
		}
	}
	return errs.err()
}

// topmost drops every node that has an ancestor in nodes.
func topmost(nodes []*routeNode) []*routeNode {
	in := make(map[*routeNode]bool, len(nodes))
	for _, n := range nodes {
		in[n] = true
	}
	var out []*routeNode
	seen := make(map[*routeNode]bool)
	for _, n := range nodes {
		covered := false
		for p := n.parent; p != nil; p = p.parent {
			if in[p] {
				covered = true
				break
			}
		}
		if !covered && !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

// validateNode checks n and its subtree.
func validateNode(n *routeNode, parentResolvable bool, errs *ValidationErrors) {
	hasChildren := n.children.len() > 0
	resolvable := n.unresolved() || parentResolvable

	if !hasChildren && n.component != nil && !n.controller.IsZero() && n.unresolved() {
		errs.add(newRouteError("R004", n).
			WithDetail("a route without children cannot have all three: component, controller and resolve"))
	}

	if n.patternErr != nil {
		errs.add(newRouteError("R004", n).
			WithDetailf("invalid pattern: %v", n.patternErr))
	}

	if n.kind == KindFallback {
		if hasChildren {
			errs.add(newRouteError("R004", n).WithDetail("a fallback route must not have children"))
		}
		if n.component == nil && !resolvable {
			errs.add(newRouteError("R003", n).WithDetail("a fallback route must have a component"))
		}
	} else if !resolvable && n.component == nil &&
		(!hasChildren || (n.segment == "" && n.controller.IsZero())) {
		errs.add(newRouteError("R003", n).
			WithDetail("a route must have either a component or (a path and children) or (a controller and children)"))
	}

	children := n.children.list()
	validateLevel(children, errs)
	for _, child := range children {
		validateNode(child, resolvable, errs)
	}
}

// validateLevel checks a set of siblings for ambiguity.
func validateLevel(siblings []*routeNode, errs *ValidationErrors) {
	var params []*routeNode
	literals := make(map[string][]*routeNode)
	var order []string

	for _, n := range siblings {
		switch n.kind {
		case KindParam:
			params = append(params, n)
		case KindLiteral:
			key := fold(n.segment)
			if _, ok := literals[key]; !ok {
				order = append(order, key)
			}
			literals[key] = append(literals[key], n)
		}
	}

	if len(params) > 1 {
		errs.add(newRouteError("R002", params[1]).
			WithDetailf("parameter siblings %s", segmentList(params)))
	}

	for _, key := range order {
		group := literals[key]
		if len(group) < 2 {
			continue
		}
		for _, n := range group {
			if n.caseInsensitive {
				errs.add(newRouteError("R002", n).
					WithDetailf("case-insensitive siblings %s", segmentList(group)))
				break
			}
		}
	}
}

func segmentList(nodes []*routeNode) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = fmt.Sprintf("%q", n.segment)
	}
	return strings.Join(parts, ", ")
}
