package router

import (
	"strings"

	"github.com/vango-dev/viewrouter/pkg/routepath"
)

// Href returns the URL a link to path should point at.
func (r *Router) Href(path string) string {
	return routepath.WithBase(path, r.basePath)
}

// IsPathActive reports whether path is the URL path of the innermost
// active fragment.
func (r *Router) IsPathActive(path string) bool {
	cur := r.CurrentFragment()
	if cur == nil {
		return false
	}
	return routepath.NormalizeAbsolute(path) == routepath.NormalizeAbsolute(cur.urlPath)
}

// IsDescendantPathActive reports whether the innermost active fragment lies
// strictly below path.
func (r *Router) IsDescendantPathActive(path string) bool {
	cur := r.CurrentFragment()
	if cur == nil {
		return false
	}
	p := routepath.NormalizeAbsolute(path)
	active := routepath.NormalizeAbsolute(cur.urlPath)
	return strings.HasPrefix(active, p) && len(active) > len(p) && active[len(p)] == '/'
}

// LinkState describes how a link to a path should be rendered.
type LinkState struct {
	Href             string
	Active           bool
	DescendantActive bool
}

// ClassName returns the CSS classes for the link, appended to base.
func (s LinkState) ClassName(base string) string {
	classes := base
	if s.Active {
		classes += "is-active "
	}
	if s.DescendantActive {
		classes += "is-descendant-active"
	}
	return classes
}

// Link returns the rendering state of a link to path.
func (r *Router) Link(to string) LinkState {
	return LinkState{
		Href:             r.Href(to),
		Active:           r.IsPathActive(to),
		DescendantActive: r.IsDescendantPathActive(to),
	}
}
