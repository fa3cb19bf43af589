package router

import (
	"time"

	"github.com/vango-dev/viewrouter/pkg/async"
)

// resolveAll starts the resolver of every unresolved node and waits for
// all of them. Waiting is a suspension point.
func (r *Router) resolveAll(tk *task, nodes []*routeNode, url string) error {
	var pending []*async.Future[struct{}]
	for _, n := range nodes {
		f, err := r.tree.startResolve(n, url, r.instr.ResolveFinished)
		if err != nil {
			return err
		}
		if f != nil {
			pending = append(pending, f)
		}
	}
	if len(pending) == 0 {
		return nil
	}

	tk.suspend()
	_, err := async.WaitAll(pending...)
	return err
}

// startResolve returns the resolution future of n, invoking its resolver
// the first time. It returns nil when n needs no resolution.
func (t *Tree) startResolve(n *routeNode, url string, done func(route string, d time.Duration, err error)) (*async.Future[struct{}], error) {
	t.resolveMu.Lock()
	defer t.resolveMu.Unlock()

	t.mu.RLock()
	resolved, pending, resolve := n.resolved, n.pending, n.resolve
	t.mu.RUnlock()

	if resolved || resolve == nil {
		return nil, nil
	}
	if pending != nil {
		return pending, nil
	}

	route := n.readablePath()
	started := time.Now()
	payload := resolve()
	if payload == nil {
		err := newRouteError("R010", n).WithURL(url)
		done(route, time.Since(started), err)
		t.mu.Lock()
		n.pending = async.Rejected[struct{}](err)
		t.mu.Unlock()
		return nil, err
	}

	merged, settle, fail := async.NewPromise[struct{}]()
	go func() {
		res, err := payload.Await()
		if err == nil {
			err = t.merge(n, res, url)
		}
		done(route, time.Since(started), err)
		if err != nil {
			fail(err)
			return
		}
		settle(struct{}{})
	}()

	t.mu.Lock()
	n.pending = merged
	t.mu.Unlock()

	return merged, nil
}

// merge applies a resolution payload to n atomically and re-validates the
// affected subtree. On failure the tree is left untouched.
func (t *Tree) merge(n *routeNode, res Resolution, url string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	j := &journal{}
	if err := mergeInto(n, res.Component, res.Controller, res.Children, url, j); err != nil {
		j.rollback()
		return err
	}

	n.resolved = true
	j.record(func() { n.resolved = false })

	if err := t.validateFrom([]*routeNode{n}); err != nil {
		j.rollback()
		return err
	}
	return nil
}

func mergeInto(n *routeNode, component Component, controller ControllerDef, children []ResolvedChild, url string, j *journal) error {
	if component == nil && controller.IsZero() && len(children) == 0 {
		return newRouteError("R013", n).WithURL(url)
	}

	if component != nil {
		if n.component != nil {
			return newRouteError("R011", n).WithURL(url).WithDetail("component")
		}
		n.component = component
		j.record(func() { n.component = nil })
	}

	if !controller.IsZero() {
		if !n.controller.IsZero() {
			return newRouteError("R011", n).WithURL(url).WithDetail("controller")
		}
		n.controller = controller
		j.record(func() { n.controller = ControllerDef{} })
	}

	for _, child := range children {
		target, at, seg := n.childFromPath(child.Path)
		if target == nil {
			if seg == "" {
				seg = emptyPathSignal
			}
			return newRouteError("R012", at).WithURL(url).WithDetailf("no child with path %s", seg)
		}
		if err := mergeInto(target, child.Component, child.Controller, child.Children, url, j); err != nil {
			return err
		}
	}
	return nil
}

// refresh copies the now-resolved definitions onto the candidate
// fragments and checks that every touched node can be rendered.
func (t *Tree) refresh(frags []*Fragment, nodes []*routeNode, url string) error {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, f := range frags {
		f.component = f.node.component
		f.controller = f.node.controller
	}

	for _, n := range nodes {
		if n.component != nil {
			continue
		}
		switch {
		case n.kind == KindFallback:
			return newRouteError("R003", n).WithURL(url).WithDetail("route must have a component")
		case n.children.len() == 0:
			return newRouteError("R003", n).WithURL(url).WithDetail("route with no children must have a component")
		case n.segment == "" && n.controller.IsZero():
			return newRouteError("R003", n).WithURL(url).WithDetail("route with no component and no path must have a controller")
		}
	}
	return nil
}
