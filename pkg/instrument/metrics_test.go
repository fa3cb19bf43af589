package instrument

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/viewrouter/internal/errors"
	"github.com/vango-dev/viewrouter/pkg/router"
)

func TestMetricsTransitions(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg), WithNamespace("test"))

	m.TransitionStarted("1", "/a")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.inFlight))

	m.TransitionFinished("1", router.OutcomeCompleted, 10*time.Millisecond, nil)
	m.TransitionStarted("2", "/b")
	m.TransitionFinished("2", router.OutcomeFailed, time.Millisecond, errors.New("R020"))
	m.TransitionStarted("3", "/c")
	m.TransitionFinished("3", router.OutcomeFailed, time.Millisecond, assert.AnError)

	assert.Equal(t, 0.0, testutil.ToFloat64(m.inFlight))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues("completed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.transitions.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitionErrors.WithLabelValues("R020")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitionErrors.WithLabelValues("unknown")))

	count, err := testutil.GatherAndCount(reg, "test_transition_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestMetricsResolves(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg), WithSubsystem("router"), WithBuckets([]float64{0.1, 1}))

	m.ResolveFinished("lazy", 50*time.Millisecond, nil)
	m.ResolveFinished("lazy", 50*time.Millisecond, assert.AnError)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.resolves.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.resolves.WithLabelValues("error")))

	count, err := testutil.GatherAndCount(reg, "viewrouter_router_resolve_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMetricsDoubleRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(WithRegistry(reg))
	assert.Panics(t, func() { NewMetrics(WithRegistry(reg)) })
}

func TestMetricsWithRouter(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg), WithConstLabels(prometheus.Labels{"app": "test"}))

	r, err := router.New([]router.RouteDef{
		{Component: func(router.Props) any { return "home" }},
		{Path: "about", Component: func(router.Props) any { return "about" }},
	}, router.WithInstrumentation(m))
	require.NoError(t, err)
	require.NoError(t, r.Mount())
	require.NoError(t, r.TransitionTo("/about"))
	assert.Error(t, r.TransitionTo("/missing"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.transitions.WithLabelValues("completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitionErrors.WithLabelValues("R020")))
}

type countingInstrumentation struct {
	started, finished, resolved int
}

func (c *countingInstrumentation) TransitionStarted(string, string) { c.started++ }
func (c *countingInstrumentation) TransitionFinished(string, router.Outcome, time.Duration, error) {
	c.finished++
}
func (c *countingInstrumentation) ResolveFinished(string, time.Duration, error) { c.resolved++ }

func TestMulti(t *testing.T) {
	a := &countingInstrumentation{}
	b := &countingInstrumentation{}
	m := Multi(a, nil, b)

	m.TransitionStarted("1", "/")
	m.TransitionFinished("1", router.OutcomeCompleted, 0, nil)
	m.ResolveFinished("x", 0, nil)

	for _, c := range []*countingInstrumentation{a, b} {
		assert.Equal(t, 1, c.started)
		assert.Equal(t, 1, c.finished)
		assert.Equal(t, 1, c.resolved)
	}
}
