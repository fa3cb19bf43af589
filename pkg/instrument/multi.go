package instrument

import (
	"time"

	"github.com/vango-dev/viewrouter/pkg/router"
)

type multi []router.Instrumentation

// Multi fans every call out to instrs in order. Nil entries are skipped.
func Multi(instrs ...router.Instrumentation) router.Instrumentation {
	var m multi
	for _, i := range instrs {
		if i != nil {
			m = append(m, i)
		}
	}
	return m
}

func (m multi) TransitionStarted(id, url string) {
	for _, i := range m {
		i.TransitionStarted(id, url)
	}
}

func (m multi) TransitionFinished(id string, outcome router.Outcome, d time.Duration, err error) {
	for _, i := range m {
		i.TransitionFinished(id, outcome, d, err)
	}
}

func (m multi) ResolveFinished(route string, d time.Duration, err error) {
	for _, i := range m {
		i.ResolveFinished(route, d, err)
	}
}
