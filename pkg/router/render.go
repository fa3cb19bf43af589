package router

// RootElement composes the components of the active chain from the
// innermost fragment outwards. Fragments without a component pass their
// children through. It returns nil when nothing is active.
func (r *Router) RootElement() any {
	return compose(r.CurrentFragment(), nil)
}

func compose(f *Fragment, children any) any {
	for ; f != nil; f = f.parent {
		if f.component == nil {
			continue
		}
		children = f.component(Props{
			Controller: f.Controller(),
			Fragment:   f,
			Children:   children,
		})
	}
	return children
}
