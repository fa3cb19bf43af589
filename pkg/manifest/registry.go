package manifest

import (
	stderrors "errors"
	"strings"
	"sync"

	"github.com/vango-dev/viewrouter/internal/errors"
	"github.com/vango-dev/viewrouter/pkg/async"
	"github.com/vango-dev/viewrouter/pkg/router"
)

// Registry maps manifest names to components, controllers and resolvers.
type Registry struct {
	mu          sync.RWMutex
	components  map[string]router.Component
	controllers map[string]router.ControllerDef
	resolvers   map[string]router.Resolver

	// placeholders, when set, stands in for unregistered names.
	placeholders bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		components:  make(map[string]router.Component),
		controllers: make(map[string]router.ControllerDef),
		resolvers:   make(map[string]router.Resolver),
	}
}

// NewPlaceholderRegistry creates a registry that synthesizes a stand-in for
// every name it does not know. Placeholder components render their name,
// placeholder controllers are the name itself, and placeholder resolvers
// supply whatever the route did not declare. Tools use it to work with a
// manifest without the application code behind it.
func NewPlaceholderRegistry() *Registry {
	r := NewRegistry()
	r.placeholders = true
	return r
}

// RegisterComponent binds name to c.
func (r *Registry) RegisterComponent(name string, c router.Component) *Registry {
	r.mu.Lock()
	r.components[name] = c
	r.mu.Unlock()
	return r
}

// RegisterController binds name to d.
func (r *Registry) RegisterController(name string, d router.ControllerDef) *Registry {
	r.mu.Lock()
	r.controllers[name] = d
	r.mu.Unlock()
	return r
}

// RegisterResolver binds name to fn.
func (r *Registry) RegisterResolver(name string, fn router.Resolver) *Registry {
	r.mu.Lock()
	r.resolvers[name] = fn
	r.mu.Unlock()
	return r
}

func (r *Registry) component(name string) (router.Component, bool) {
	r.mu.RLock()
	c, ok := r.components[name]
	r.mu.RUnlock()
	if !ok && r.placeholders {
		return Placeholder(name), true
	}
	return c, ok
}

func (r *Registry) controller(name string) (router.ControllerDef, bool) {
	r.mu.RLock()
	d, ok := r.controllers[name]
	r.mu.RUnlock()
	if !ok && r.placeholders {
		return router.Static(name), true
	}
	return d, ok
}

func (r *Registry) resolver(name string, declared Route) (router.Resolver, bool) {
	r.mu.RLock()
	fn, ok := r.resolvers[name]
	r.mu.RUnlock()
	if !ok && r.placeholders {
		return placeholderResolver(name, declared), true
	}
	return fn, ok
}

// Placeholder returns a component rendering name, wrapping the children
// when there are any.
func Placeholder(name string) router.Component {
	return func(p router.Props) any {
		if p.Children == nil {
			return name
		}
		return map[string]any{name: p.Children}
	}
}

func placeholderResolver(name string, declared Route) router.Resolver {
	return func() *async.Future[router.Resolution] {
		var res router.Resolution
		if declared.Component == "" {
			res.Component = Placeholder(name)
		}
		if declared.Controller == "" {
			res.Controller = router.Static(name)
		}
		return async.Resolved(res)
	}
}

// Build binds every name in m and returns the route definitions. All
// unknown names are reported together.
func (m *Manifest) Build(reg *Registry) ([]router.RouteDef, error) {
	var errs []error
	defs := buildRoutes(reg, m.Routes, "", &errs)
	if len(errs) > 0 {
		return nil, stderrors.Join(errs...)
	}
	return defs, nil
}

func buildRoutes(reg *Registry, routes []Route, parent string, errs *[]error) []router.RouteDef {
	if len(routes) == 0 {
		return nil
	}
	defs := make([]router.RouteDef, 0, len(routes))
	for _, rt := range routes {
		where := strings.TrimSuffix(parent, "/") + "/" + rt.Path
		def := router.RouteDef{
			Path:            rt.Path,
			CaseInsensitive: rt.CaseInsensitive,
		}

		if rt.Component != "" {
			c, ok := reg.component(rt.Component)
			if !ok {
				*errs = append(*errs, unknownName("component", rt.Component, where))
			}
			def.Component = c
		}
		if rt.Controller != "" {
			d, ok := reg.controller(rt.Controller)
			if !ok {
				*errs = append(*errs, unknownName("controller", rt.Controller, where))
			}
			def.Controller = d
		}
		if rt.Resolve != "" {
			fn, ok := reg.resolver(rt.Resolve, rt)
			if !ok {
				*errs = append(*errs, unknownName("resolver", rt.Resolve, where))
			}
			def.Resolve = fn
		}

		def.Children = buildRoutes(reg, rt.Children, where, errs)
		defs = append(defs, def)
	}
	return defs
}

func unknownName(kind, name, where string) error {
	return errors.New("M002").
		WithRoute(where).
		WithDetailf("unknown %s %q", kind, name).
		WithSuggestion("Register it before building the manifest")
}

// NewRouter builds m and creates a router for it. The manifest's base
// path applies unless opts set one.
func (m *Manifest) NewRouter(reg *Registry, opts ...router.Option) (*router.Router, error) {
	defs, err := m.Build(reg)
	if err != nil {
		return nil, err
	}
	if m.BasePath != "" {
		opts = append([]router.Option{router.WithBasePath(m.BasePath)}, opts...)
	}
	return router.New(defs, opts...)
}
