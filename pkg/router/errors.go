package router

import (
	"fmt"
	"strings"

	"github.com/vango-dev/viewrouter/internal/errors"
)

// Sentinel errors. Compare with errors.Is; the returned errors carry the
// readable route path and URL involved.
var (
	ErrDuplicateRouteDefinition    = errors.Sentinel("R001")
	ErrAmbiguousRoute              = errors.Sentinel("R002")
	ErrIncompleteRoute             = errors.Sentinel("R003")
	ErrInvalidRouteDefinition      = errors.Sentinel("R004")
	ErrRouteNotFound               = errors.Sentinel("R005")
	ErrResolveContractViolation    = errors.Sentinel("R010")
	ErrAlreadyResolved             = errors.Sentinel("R011")
	ErrUnknownResolvedChild        = errors.Sentinel("R012")
	ErrEmptyResolution             = errors.Sentinel("R013")
	ErrRouteNotMatched             = errors.Sentinel("R020")
	ErrControllerContractViolation = errors.Sentinel("R021")
	ErrTopLevelRouteRefused        = errors.Sentinel("R022")
	ErrBasePathMismatch            = errors.Sentinel("R023")
)

// newRouteError builds a coded error about node n.
func newRouteError(code string, n *routeNode) *errors.RouteError {
	e := errors.New(code)
	if n != nil {
		e.WithRoute(n.readablePath())
	}
	return e
}

// ValidationErrors collects every structural problem found in one pass.
type ValidationErrors struct {
	Errs []error
}

func (e *ValidationErrors) Error() string {
	switch len(e.Errs) {
	case 0:
		return "no validation errors"
	case 1:
		return e.Errs[0].Error()
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d route validation errors:", len(e.Errs)))
	for _, err := range e.Errs {
		sb.WriteString("\n  - ")
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// Unwrap exposes the individual errors to errors.Is and errors.As.
func (e *ValidationErrors) Unwrap() []error {
	return e.Errs
}

func (e *ValidationErrors) add(err error) {
	e.Errs = append(e.Errs, err)
}

// err returns e when it holds errors, nil otherwise.
func (e *ValidationErrors) err() error {
	if len(e.Errs) == 0 {
		return nil
	}
	return e
}
