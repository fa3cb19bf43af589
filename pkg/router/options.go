package router

import (
	"log/slog"

	"github.com/vango-dev/viewrouter/pkg/history"
	"github.com/vango-dev/viewrouter/pkg/routepath"
)

// Option configures a Router.
type Option func(*Router)

// WithBasePath makes the router handle only URLs below base. Matching
// operates on the remainder and Href prefixes absolute paths with it.
func WithBasePath(base string) Option {
	return func(r *Router) {
		if base == "" {
			r.basePath = ""
			return
		}
		r.basePath = routepath.NormalizeAbsolute(base)
	}
}

// WithHistory sets the URL source. The default is an in-memory history
// starting at "/".
func WithHistory(h history.Source) Option {
	return func(r *Router) {
		r.history = h
	}
}

// WithHost sets the reactive host controllers are registered with.
func WithHost(h Host) Option {
	return func(r *Router) {
		r.host = h
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Router) {
		r.logger = l
	}
}

// WithInstrumentation sets the transition and resolution observer.
func WithInstrumentation(i Instrumentation) Option {
	return func(r *Router) {
		r.instr = i
	}
}

// WithUnhandledErrorHandler sets the function that receives asynchronous
// errors while no OnAsyncError observer is registered. The default logs
// them at error level.
func WithUnhandledErrorHandler(fn func(error)) Option {
	return func(r *Router) {
		r.unhandled = fn
	}
}
