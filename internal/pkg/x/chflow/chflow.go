// Package chflow sends to and receives from channels without outliving a
// context.
package chflow

import "context"

// Receive returns the next value of ch. ok is false when ch is closed or
// ctx is done first.
func Receive[T any](ctx context.Context, ch <-chan T) (v T, ok bool) {
	select {
	case <-ctx.Done():
		return v, false
	case v, ok = <-ch:
		return v, ok
	}
}

// Send delivers v on ch and reports false if ctx is done before a
// receiver takes it.
func Send[T any](ctx context.Context, ch chan<- T, v T) bool {
	select {
	case <-ctx.Done():
		return false
	case ch <- v:
		return true
	}
}
