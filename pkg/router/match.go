package router

import (
	"github.com/vango-dev/viewrouter/pkg/routepath"
)

// candidate is a matching chain ending at leaf, with its specificity score.
type candidate struct {
	leaf  *Fragment
	score string
}

// candidates walks the tree against segs and returns every matching chain
// in walk order.
func (t *Tree) candidates(segs []routepath.Segment) []candidate {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []candidate
	for _, n := range t.top.list() {
		walk(n, segs, "", nil, &out)
	}
	return out
}

// walk matches n against the remaining segments. Score digits are
// '3' literal, '2' parameter, '1' pattern and '0' pass-through; a fallback
// adds nothing.
func walk(n *routeNode, segs []routepath.Segment, score string, parent *Fragment, out *[]candidate) {
	var f *Fragment
	rest := segs

	switch n.kind {
	case KindFallback:
		*out = append(*out, candidate{leaf: newFragment(n, segs, parent), score: score})
		return

	case KindPassThrough:
		f = newFragment(n, nil, parent)
		score += "0"
		if len(segs) == 0 {
			*out = append(*out, candidate{leaf: f, score: score})
		}

	default:
		if len(segs) == 0 {
			return
		}
		code := n.score(segs[0])
		if code == 0 {
			return
		}
		f = newFragment(n, segs[:1], parent)
		score += string(code)
		if len(segs) == 1 {
			*out = append(*out, candidate{leaf: f, score: score})
		}
		rest = segs[1:]
	}

	for _, child := range n.children.list() {
		walk(child, rest, score, f, out)
	}
}

// best picks the candidate with the greatest score among those that have
// a component. The first one wins ties.
func best(cands []candidate) *Fragment {
	var winner *candidate
	for i := range cands {
		c := &cands[i]
		if c.leaf.component == nil {
			continue
		}
		if winner == nil || c.score > winner.score {
			winner = c
		}
	}
	if winner == nil {
		return nil
	}
	return winner.leaf
}

// chainMembers returns the distinct fragments and route nodes of every
// candidate chain, in walk order.
func chainMembers(cands []candidate) ([]*Fragment, []*routeNode) {
	seenFrag := make(map[*Fragment]bool)
	seenNode := make(map[*routeNode]bool)
	var frags []*Fragment
	var nodes []*routeNode

	for _, c := range cands {
		for f := c.leaf; f != nil; f = f.parent {
			if seenFrag[f] {
				break
			}
			seenFrag[f] = true
			frags = append(frags, f)
			if !seenNode[f.node] {
				seenNode[f.node] = true
				nodes = append(nodes, f.node)
			}
		}
	}
	return frags, nodes
}

// match finds the winning chain for path, resolving every route node the
// candidate chains touch first.
func (r *Router) match(tk *task, path string) (*Fragment, error) {
	segs, err := routepath.SplitSegments(path)
	if err != nil {
		return nil, newRouteError("R020", nil).WithURL(path).WithDetail("invalid percent escape").Wrap(err)
	}
	cands := r.tree.candidates(segs)
	frags, nodes := chainMembers(cands)

	if err := r.resolveAll(tk, nodes, path); err != nil {
		return nil, err
	}
	if err := r.tree.refresh(frags, nodes, path); err != nil {
		return nil, err
	}

	leaf := best(cands)
	if leaf == nil {
		return nil, newRouteError("R020", nil).WithURL(path)
	}
	return leaf, nil
}
