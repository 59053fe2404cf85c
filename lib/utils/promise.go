package utils

import "github.com/chebyrash/promise"

// PromiseResolve returns a promise already settled with val. Plugins
// without background work return it from Start.
func PromiseResolve[T any](val T) *promise.Promise[T] {
	return promise.New(func(resolve func(T), reject func(error)) {
		resolve(val)
	})
}
