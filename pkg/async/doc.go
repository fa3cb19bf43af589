// Package async provides the pending-result primitives used by the router.
//
// A Future is a single-assignment result that is settled exactly once,
// either by a goroutine started with Go or manually through the resolve and
// reject functions returned by NewPromise.
//
// A Value is what lifecycle hooks and controller constructors return: it
// either carries a result that is available now, or wraps a Future that
// settles later. Consumers branch on IsAsync to decide whether they must
// suspend.
//
//	fut, resolve, _ := async.NewPromise[int]()
//	v := async.Later(fut)
//	go func() { resolve(42) }()
//	n, err := v.Get() // blocks until resolve is called
package async
