package router

// Add declares more routes. The result is validated before it becomes
// visible to matching; on failure the tree is left unchanged.
func (r *Router) Add(defs ...RouteDef) error {
	return r.tree.Add(defs...)
}

// Remove deletes the route node at path together with its subtree.
// Active fragments stay entered until the next transition.
func (r *Router) Remove(path string) error {
	return r.tree.Remove(path)
}

// Add declares more routes. See Router.Add.
func (t *Tree) Add(defs ...RouteDef) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	j := &journal{}
	touched, err := t.compile(defs, j)
	if err != nil {
		j.rollback()
		return err
	}
	if err := t.validateFrom(touched); err != nil {
		j.rollback()
		return err
	}
	return nil
}

// Remove deletes the node at path. See Router.Remove.
func (t *Tree) Remove(path string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := t.lookup(path)
	if n == nil {
		return newRouteError("R005", nil).WithRoute(path)
	}

	level := &t.top
	if n.parent != nil {
		level = &n.parent.children
	}
	pos := level.remove(n.segment)

	if err := t.validateAfterRemoval(n.parent); err != nil {
		level.insertAt(pos, n)
		return err
	}
	return nil
}

// validateAfterRemoval checks what a removal below parent can break.
func (t *Tree) validateAfterRemoval(parent *routeNode) error {
	if parent == nil {
		return t.validateTree()
	}
	return t.validateFrom([]*routeNode{parent})
}
