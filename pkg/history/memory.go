package history

import (
	"errors"
	"fmt"
	"net/url"
	"sync"
)

var (
	// ErrNoEntry is returned by Back and Forward at either end of the stack.
	ErrNoEntry = errors.New("history: no entry")

	// ErrCrossOrigin is returned by Push when the target resolves to a
	// different scheme or host.
	ErrCrossOrigin = errors.New("history: cross-origin target")
)

// Memory is an in-process Source with a back/forward stack.
type Memory struct {
	mu        sync.Mutex
	entries   []*url.URL
	index     int
	listeners []*subscription
}

type subscription struct {
	fn Listener
}

// NewMemory returns a Memory positioned at start, which must be absolute.
func NewMemory(start string) (*Memory, error) {
	u, err := url.Parse(start)
	if err != nil {
		return nil, fmt.Errorf("history: parse %q: %w", start, err)
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("history: start url %q is not absolute", start)
	}
	return &Memory{entries: []*url.URL{u}}, nil
}

// Push resolves target against the current URL and records it. Listeners
// run synchronously, and only when the URL actually changed. Targets on
// another origin are rejected and leave the stack untouched.
func (m *Memory) Push(target string, opts PushOptions) error {
	ref, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("history: parse %q: %w", target, err)
	}

	m.mu.Lock()
	cur := m.entries[m.index]
	next := cur.ResolveReference(ref)
	if next.Scheme != cur.Scheme || next.Host != cur.Host {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrCrossOrigin, next.Redacted())
	}
	if next.String() == cur.String() {
		m.mu.Unlock()
		return nil
	}
	if opts.Replace {
		m.entries[m.index] = next
	} else {
		m.entries = append(m.entries[:m.index+1], next)
		m.index++
	}
	m.mu.Unlock()

	return m.notify(next, opts)
}

// Back moves one entry back.
func (m *Memory) Back() error {
	return m.Go(-1)
}

// Forward moves one entry forward.
func (m *Memory) Forward() error {
	return m.Go(1)
}

// Go moves delta entries through the stack.
func (m *Memory) Go(delta int) error {
	m.mu.Lock()
	i := m.index + delta
	if i < 0 || i >= len(m.entries) {
		m.mu.Unlock()
		return ErrNoEntry
	}
	m.index = i
	u := m.entries[i]
	m.mu.Unlock()

	if delta == 0 {
		return nil
	}
	return m.notify(u, PushOptions{Replace: true})
}

// Len returns the number of recorded entries.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// URL returns a copy of the current URL.
func (m *Memory) URL() *url.URL {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := *m.entries[m.index]
	return &u
}

// Subscribe registers fn. The returned function removes it and may be
// called more than once.
func (m *Memory) Subscribe(fn Listener) func() {
	if fn == nil {
		panic("history: nil listener")
	}
	s := &subscription{fn: fn}

	m.mu.Lock()
	m.listeners = append(m.listeners, s)
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, l := range m.listeners {
			if l == s {
				m.listeners = append(m.listeners[:i:i], m.listeners[i+1:]...)
				return
			}
		}
	}
}

func (m *Memory) notify(u *url.URL, opts PushOptions) error {
	m.mu.Lock()
	listeners := append([]*subscription(nil), m.listeners...)
	m.mu.Unlock()

	var errs []error
	for _, l := range listeners {
		c := *u
		if err := l.fn(&c, opts); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
