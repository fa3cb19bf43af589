package router

import (
	"reflect"

	"github.com/vango-dev/viewrouter/pkg/async"
)

type controllerKind uint8

const (
	controllerNone controllerKind = iota
	controllerStatic
	controllerConstructor
	controllerAsyncConstructor
	controllerDeferred
)

// ControllerDef declares how a fragment's controller is obtained.
// The zero ControllerDef declares no controller.
type ControllerDef struct {
	kind      controllerKind
	value     any
	construct func() (any, error)
	start     func() *async.Future[any]
	future    *async.Future[any]
}

// Static uses v itself as the controller every time the fragment is entered.
func Static(v any) ControllerDef {
	return ControllerDef{kind: controllerStatic, value: v}
}

// Constructor builds a new controller on every enter.
func Constructor(fn func() (any, error)) ControllerDef {
	return ControllerDef{kind: controllerConstructor, construct: fn}
}

// AsyncConstructor builds a new controller on every enter, asynchronously.
func AsyncConstructor(fn func() *async.Future[any]) ControllerDef {
	return ControllerDef{kind: controllerAsyncConstructor, start: fn}
}

// Deferred uses the value f settles with as the controller.
func Deferred(f *async.Future[any]) ControllerDef {
	return ControllerDef{kind: controllerDeferred, future: f}
}

// IsZero reports whether no controller is declared.
func (d ControllerDef) IsZero() bool {
	return d.kind == controllerNone
}

// build normalizes every declaration shape into a single pending-or-settled
// instance.
func (d ControllerDef) build() async.Value[any] {
	switch d.kind {
	case controllerStatic:
		return async.Now(d.value)
	case controllerConstructor:
		v, err := d.construct()
		if err != nil {
			return async.Fail[any](err)
		}
		return async.Now(v)
	case controllerAsyncConstructor:
		f := d.start()
		if f == nil {
			return async.Now[any](nil)
		}
		return async.Later(f)
	case controllerDeferred:
		if d.future == nil {
			return async.Now[any](nil)
		}
		return async.Later(d.future)
	}
	return async.Now[any](nil)
}

// isNil reports whether v carries no controller.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// rootController registers an eligible controller with the host.
func rootController(h Host, c any) {
	if !isNil(c) && h.IsObserved(c) {
		h.Root(c)
	}
}

// unrootController removes an eligible controller from the host.
func unrootController(h Host, c any) {
	if !isNil(c) && h.IsObserved(c) {
		h.Unroot(c)
	}
}
