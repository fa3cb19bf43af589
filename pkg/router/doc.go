// Package router implements a client-side view router.
//
// The router provides:
//   - A route tree compiled from nested declarations
//   - Scored matching with parameters, patterns and fallbacks
//   - Lazy route definitions resolved at most once
//   - An enter/leave lifecycle on per-fragment controllers
//   - Supersede of in-flight transitions by newer URLs
//
// # Route Declarations
//
// Routes are declared as nested RouteDef values. A path may span several
// segments; each segment is a literal, a ":name" parameter, a "^...$"
// pattern, the "*" fallback, or empty:
//
//	routes := []router.RouteDef{
//	    {Component: home},
//	    {Path: "users/:id", Component: user, Controller: router.Constructor(newUserController)},
//	    {Path: "admin", Resolve: loadAdmin, Children: []router.RouteDef{{Path: "settings"}}},
//	    router.FallbackRoute("/"),
//	}
//
// # Matching
//
// Every chain that covers the URL scores one digit per segment:
// 3 literal, 2 parameter, 1 pattern, 0 empty. A fallback adds nothing.
// The greatest score wins among chains whose leaf has a component.
//
// # Transitions
//
// URL changes come from a history source. The router diffs the matched
// chain against the active one, calls OnLeave deepest first and OnEnter
// shallowest first. A hook that returns Deny stops the transition and the
// URL is restored. A URL arriving while a transition is in flight replaces
// any URL already waiting; only the newest one is handled.
//
// # Usage
//
//	r, err := router.New(routes, router.WithBasePath("/app"))
//	if err != nil {
//	    return err
//	}
//	if err := r.Mount(); err != nil {
//	    return err
//	}
//	r.TransitionTo("/users/42")
package router
