package async

import "errors"

var (
	// ErrTimeout is returned by AwaitTimeout when the future does not settle in time.
	ErrTimeout = errors.New("async: timeout waiting for future")

	// ErrNilFuture is returned when a nil future is awaited.
	ErrNilFuture = errors.New("async: nil future")
)
