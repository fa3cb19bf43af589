package router

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vango-dev/viewrouter/pkg/async"
	"github.com/vango-dev/viewrouter/pkg/history"
)

// recorder collects events from any goroutine.
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(ev string) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *recorder) count(ev string) int {
	n := 0
	for _, e := range r.list() {
		if e == ev {
			n++
		}
	}
	return n
}

// hooks is a controller that records its lifecycle calls.
type hooks struct {
	name  string
	rec   *recorder
	enter func() Result
	leave func() Result
}

func (h *hooks) OnEnter(HookContext) Result {
	h.rec.add("enter:" + h.name)
	if h.enter != nil {
		return h.enter()
	}
	return Allow()
}

func (h *hooks) OnLeave(HookContext) Result {
	h.rec.add("leave:" + h.name)
	if h.leave != nil {
		return h.leave()
	}
	return Allow()
}

func comp(name string) Component {
	return func(p Props) any {
		if p.Children == nil {
			return name
		}
		return name + ">" + p.Children.(string)
	}
}

func newTestRouter(t *testing.T, start string, routes []RouteDef, opts ...Option) (*Router, *history.Memory) {
	t.Helper()
	mem, err := history.NewMemory("http://localhost" + start)
	require.NoError(t, err)
	r, err := New(routes, append([]Option{WithHistory(mem)}, opts...)...)
	require.NoError(t, err)
	return r, mem
}

func mount(t *testing.T, r *Router) {
	t.Helper()
	require.NoError(t, r.Mount())
	waitIdle(t, r)
}

func waitIdle(t *testing.T, r *Router) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, r.WaitIdle(ctx))
}

func leafPath(r *Router) string {
	f := r.CurrentFragment()
	if f == nil {
		return ""
	}
	return f.ReadablePath()
}

func chainPaths(r *Router) []string {
	var out []string
	for _, f := range r.CurrentFragments() {
		out = append(out, f.AbstractPath())
	}
	return out
}

// resolved returns a resolver that counts its calls and settles at once.
func resolved(calls *atomic.Int32, res Resolution) Resolver {
	return func() *async.Future[Resolution] {
		calls.Add(1)
		return async.Resolved(res)
	}
}

// fakeInstrumentation records transition outcomes and resolutions.
type fakeInstrumentation struct {
	mu       sync.Mutex
	started  []string
	outcomes []Outcome
	resolves []string
}

func (f *fakeInstrumentation) TransitionStarted(_, url string) {
	f.mu.Lock()
	f.started = append(f.started, url)
	f.mu.Unlock()
}

func (f *fakeInstrumentation) TransitionFinished(_ string, outcome Outcome, _ time.Duration, _ error) {
	f.mu.Lock()
	f.outcomes = append(f.outcomes, outcome)
	f.mu.Unlock()
}

func (f *fakeInstrumentation) ResolveFinished(route string, _ time.Duration, _ error) {
	f.mu.Lock()
	f.resolves = append(f.resolves, route)
	f.mu.Unlock()
}

func (f *fakeInstrumentation) snapshot() ([]string, []Outcome, []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.started...), append([]Outcome(nil), f.outcomes...), append([]string(nil), f.resolves...)
}
