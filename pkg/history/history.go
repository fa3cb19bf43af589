// Package history provides the URL sources a router listens to.
//
// A Source holds a current URL, accepts pushes and notifies subscribers
// when the URL changes. Memory keeps a linear back/forward stack in
// process; Remote mirrors a Memory to WebSocket peers.
package history

import "net/url"

// PushOptions controls how a URL is recorded.
type PushOptions struct {
	// Replace overwrites the current entry instead of adding one.
	Replace bool
}

// Listener is notified after the current URL changed. Errors returned by
// listeners are handed back to the caller of Push.
type Listener func(u *url.URL, opts PushOptions) error

// Source is a stream of URLs.
type Source interface {
	// Push navigates to target, resolved relative to the current URL.
	Push(target string, opts PushOptions) error

	// Subscribe registers fn and returns a function that removes it.
	Subscribe(fn Listener) func()

	// URL returns a copy of the current URL.
	URL() *url.URL
}
