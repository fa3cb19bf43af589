package router

import (
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/vango-dev/viewrouter/pkg/async"
	"github.com/vango-dev/viewrouter/pkg/history"
	"github.com/vango-dev/viewrouter/pkg/routepath"
)

// task runs one chain of transitions on its own goroutine. The goroutine
// that started it blocks until the task first suspends or finishes, so
// everything up to the first pending result happens synchronously for the
// caller.
type task struct {
	sync      chan error
	suspended bool
}

func newTask() *task {
	return &task{sync: make(chan error, 1)}
}

// suspend releases the caller. Later errors go to the async-error observers.
func (tk *task) suspend() {
	if !tk.suspended {
		tk.suspended = true
		tk.sync <- nil
	}
}

// await returns the result of v, suspending the task first when v is pending.
func await[T any](tk *task, v async.Value[T]) (T, error) {
	if v.IsAsync() {
		tk.suspend()
	}
	return v.Get()
}

// handleURL is the entry point for every URL change.
func (r *Router) handleURL(u *url.URL) error {
	r.mu.Lock()
	if r.transitioning {
		r.next = u
		r.mu.Unlock()
		r.logger.Debug("transition buffered", "url", u.String())
		return nil
	}
	path, err := r.stripBase(u)
	if err != nil {
		r.mu.Unlock()
		return err
	}
	r.transitioning = true
	r.beginTask()
	r.mu.Unlock()

	tk := newTask()
	go func() {
		defer r.endTask()
		err := r.run(tk, u, path)
		if !tk.suspended {
			tk.sync <- err
			return
		}
		if err != nil {
			r.reportAsync(err)
		}
	}()
	return <-tk.sync
}

func (r *Router) stripBase(u *url.URL) (string, error) {
	p := u.EscapedPath()
	if p == "" {
		p = "/"
	}
	path, ok := routepath.StripBase(p, r.basePath)
	if !ok {
		return "", newRouteError("R023", nil).WithURL(u.String()).WithDetailf("base path: %s", r.basePath)
	}
	return path, nil
}

// run transitions to u and to every URL that supersedes it.
func (r *Router) run(tk *task, u *url.URL, path string) error {
	for {
		id := uuid.NewString()
		started := time.Now()
		r.instr.TransitionStarted(id, u.String())
		r.logger.Debug("transition started", "id", id, "url", u.String())

		res, err := r.step(tk, u, path)

		outcome := res.outcome
		if err != nil {
			outcome = OutcomeFailed
		}
		r.instr.TransitionFinished(id, outcome, time.Since(started), err)
		r.logger.Debug("transition finished", "id", id, "url", u.String(), "outcome", string(outcome))

		if err != nil {
			return err
		}

		if res.next != nil {
			u = res.next
			if path, err = r.stripBase(u); err != nil {
				r.mu.Lock()
				r.transitioning = false
				r.mu.Unlock()
				return err
			}
			continue
		}

		if outcome == OutcomeRefused {
			return r.restore(res.leaf)
		}
		return nil
	}
}

type stepResult struct {
	outcome Outcome
	leaf    *Fragment
	next    *url.URL
}

// step performs a single transition attempt.
func (r *Router) step(tk *task, u *url.URL, path string) (stepResult, error) {
	leaf, err := r.match(tk, path)
	if err != nil {
		return stepResult{}, err
	}

	r.mu.Lock()
	if r.next != nil {
		next := r.next
		r.next = nil
		r.mu.Unlock()
		return stepResult{outcome: OutcomeSuperseded, next: next}, nil
	}

	target := chainOf(leaf)
	oldURL := r.url
	r.url = u
	r.params = paramsOf(target)
	r.target = leaf

	before := append([]*Fragment(nil), r.current...)
	kept, exitTail, enterTail := diffChains(before, target)
	exit := append([]*Fragment(nil), exitTail...)
	enter := append([]*Fragment(nil), enterTail...)
	if len(enter) > 0 {
		enter[0].parent = lastOf(kept)
	}
	current := r.leaf()
	r.mu.Unlock()

	if len(exit) > 0 || len(enter) > 0 {
		emit(r, &r.beforeChange, BeforeChangeEvent{Router: r, Current: current, Target: leaf})
	}

	refused := false
	for i := len(exit) - 1; i >= 0; i-- {
		ok, err := r.leave(tk, exit[i])
		if err != nil {
			return stepResult{}, err
		}
		if !ok {
			refused = true
			break
		}
		r.pop(exit[i])
		if r.hasNext() {
			break
		}
	}

	if !refused && !r.hasNext() {
		for _, f := range enter {
			ok, err := r.enter(tk, f)
			if err != nil {
				return stepResult{}, err
			}
			if !ok {
				refused = true
				break
			}
			r.push(f)
			if r.hasNext() {
				break
			}
		}
	}

	r.mu.Lock()
	next := r.next
	r.next = nil
	if next == nil {
		r.transitioning = false
	}
	r.target = nil
	after := append([]*Fragment(nil), r.current...)
	newURL := r.url
	r.mu.Unlock()

	if !sameChain(before, after) {
		emit(r, &r.change, ChangeEvent{Router: r, Old: lastOf(before), Current: lastOf(after)})
	}
	emit(r, &r.urlHandled, URLHandledEvent{Router: r, Old: oldURL, New: newURL})

	switch {
	case next != nil:
		return stepResult{outcome: OutcomeSuperseded, leaf: leaf, next: next}, nil
	case refused:
		r.logger.Info("transition refused", "url", u.String(), "route", leaf.ReadablePath())
		return stepResult{outcome: OutcomeRefused, leaf: leaf}, nil
	}
	return stepResult{outcome: OutcomeCompleted, leaf: leaf}, nil
}

// restore pushes the URL of the active chain after a refusal. With no
// active chain the refusal is fatal.
func (r *Router) restore(leaf *Fragment) error {
	cur := r.CurrentFragment()
	if cur == nil {
		return newRouteError("R022", leaf.node).WithURL(leaf.urlPath)
	}
	return r.history.Push(routepath.WithBase(cur.urlPath, r.basePath), history.PushOptions{})
}

func (r *Router) hasNext() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.next != nil
}

// enter builds the controller of f and runs its OnEnter hook. It reports
// false when the hook refused.
func (r *Router) enter(tk *task, f *Fragment) (bool, error) {
	if f.controller.IsZero() {
		return true, nil
	}

	instance, err := await(tk, f.controller.build())
	if err != nil {
		return false, err
	}
	if isNil(instance) {
		return false, newRouteError("R021", f.node).WithURL(f.urlPath)
	}

	f.setController(instance)
	rootController(r.host, instance)

	if e, ok := instance.(Enterer); ok {
		verdict, err := await(tk, e.OnEnter(HookContext{Router: r, Fragment: f}))
		if err != nil {
			return false, err
		}
		if verdict == Refuse {
			unrootController(r.host, instance)
			f.setController(nil)
			return false, nil
		}
	}
	return true, nil
}

// leave runs the OnLeave hook of the controller attached to f. It reports
// false when the hook refused.
func (r *Router) leave(tk *task, f *Fragment) (bool, error) {
	instance := f.Controller()
	if l, ok := instance.(Leaver); ok {
		verdict, err := await(tk, l.OnLeave(HookContext{Router: r, Fragment: f}))
		if err != nil {
			return false, err
		}
		if verdict == Refuse {
			return false, nil
		}
	}
	unrootController(r.host, instance)
	return true, nil
}

func (r *Router) push(f *Fragment) {
	r.host.Batch(func() {
		r.mu.Lock()
		r.current = append(r.current, f)
		r.mu.Unlock()
	})
}

func (r *Router) pop(f *Fragment) {
	r.host.Batch(func() {
		r.mu.Lock()
		if n := len(r.current); n > 0 && r.current[n-1] == f {
			r.current = r.current[:n-1]
		}
		r.mu.Unlock()
	})
	f.setController(nil)
}

func lastOf(chain []*Fragment) *Fragment {
	if len(chain) == 0 {
		return nil
	}
	return chain[len(chain)-1]
}
