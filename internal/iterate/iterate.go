// Package iterate provides the sequential walk used for every list the
// processor visits. Items are handled strictly in order, one at a time,
// and a per-item failure either aborts the walk or is routed to an
// error handler that lets the walk continue.
package iterate

import (
	"context"
	"errors"
	"fmt"
)

// ErrNilWorker is returned when Each is given no worker function.
var ErrNilWorker = errors.New("no worker function")

// ErrorHandler receives a per-item failure together with the offending
// item and its index. When a handler is installed the walk continues
// past the failure.
type ErrorHandler[T any] func(err error, item T, index int)

// Iterator walks slices sequentially. The zero value aborts on the
// first per-item failure; New installs an error handler instead.
type Iterator[T any] struct {
	onError ErrorHandler[T]
}

// New returns an Iterator routing per-item failures to handler.
// A nil handler yields abort-on-error behavior.
func New[T any](handler ErrorHandler[T]) *Iterator[T] {
	return &Iterator[T]{onError: handler}
}

// Each visits every item of items in order, invoking fn once per item.
// Worker panics and returned errors are treated identically: without a
// handler the walk stops and the failure is returned, with a handler it
// is reported and the walk continues. An empty slice succeeds
// immediately. Cancellation of ctx between steps aborts the walk.
func (it *Iterator[T]) Each(ctx context.Context, items []T, fn func(T) error) error {
	if fn == nil {
		return ErrNilWorker
	}

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := call(fn, item)
		if err == nil {
			continue
		}
		if it.onError == nil {
			return err
		}
		it.onError(err, item, i)
	}
	return nil
}

// call invokes fn converting a panic into the error it would have
// reported through its return value.
func call[T any](fn func(T) error, item T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				return
			}
			err = fmt.Errorf("worker panic: %v", r)
		}
	}()
	return fn(item)
}
