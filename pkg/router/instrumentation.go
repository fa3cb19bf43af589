package router

import "time"

// Outcome is how a transition attempt ended.
type Outcome string

const (
	OutcomeCompleted  Outcome = "completed"
	OutcomeRefused    Outcome = "refused"
	OutcomeSuperseded Outcome = "superseded"
	OutcomeFailed     Outcome = "failed"
)

// Instrumentation observes transitions and resolutions.
// Implementations must be safe for concurrent use.
type Instrumentation interface {
	TransitionStarted(id, url string)
	TransitionFinished(id string, outcome Outcome, d time.Duration, err error)
	ResolveFinished(route string, d time.Duration, err error)
}

type noopInstrumentation struct{}

func (noopInstrumentation) TransitionStarted(string, string)                          {}
func (noopInstrumentation) TransitionFinished(string, Outcome, time.Duration, error) {}
func (noopInstrumentation) ResolveFinished(string, time.Duration, error)              {}
