package router

import (
	"fmt"
	"net/url"

	"github.com/vango-dev/viewrouter/pkg/history"
	"github.com/vango-dev/viewrouter/pkg/routepath"
)

// NavigateOptions configures TransitionTo.
type NavigateOptions struct {
	// Replace replaces the current history entry instead of pushing.
	Replace bool

	// Query are query parameters to add to the URL.
	Query map[string]any
}

// NavigateOption is a functional option for TransitionTo.
type NavigateOption func(*NavigateOptions)

// WithReplace replaces the current history entry instead of pushing.
func WithReplace() NavigateOption {
	return func(o *NavigateOptions) {
		o.Replace = true
	}
}

// WithQuery adds query parameters to the navigation URL.
func WithQuery(query map[string]any) NavigateOption {
	return func(o *NavigateOptions) {
		o.Query = query
	}
}

// TransitionTo pushes path into the history source. Absolute paths are
// prefixed with the base path; relative ones resolve against the current
// URL. When the router is mounted, the push starts a transition and any
// error raised before its first suspension is returned.
func (r *Router) TransitionTo(path string, opts ...NavigateOption) error {
	var options NavigateOptions
	for _, opt := range opts {
		opt(&options)
	}

	target, err := buildTarget(path, options.Query)
	if err != nil {
		return err
	}

	return r.history.Push(routepath.WithBase(target, r.basePath), history.PushOptions{
		Replace: options.Replace,
	})
}

// buildTarget adds query parameters to path.
func buildTarget(path string, query map[string]any) (string, error) {
	if len(query) == 0 {
		return path, nil
	}

	u, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("invalid path: %s", path)
	}

	q := u.Query()
	for k, v := range query {
		q.Set(k, fmt.Sprintf("%v", v))
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}
