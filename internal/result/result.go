// Package result provides a tagged success/failure value for the outcome of
// a single remote step.
//
// A Result is either Ok or Err. Consumers branch on it with Match (or a type
// switch over the two variants) instead of inspecting flags:
//
//	r := result.Of(client.CloseCard(ctx, slug, 42))
//	msg := result.Match(r,
//		func(c *fizzy.Card) string { return "closed " + c.Title },
//		func(err error) string { return err.Error() },
//	)
package result

import "fmt"

// Result is the outcome of an operation producing a T.
// The only implementations are Ok[T] and Err[T].
type Result[T any] interface {
	isResult()
}

// Ok is the success variant.
type Ok[T any] struct {
	Value T
}

// Err is the failure variant.
type Err[T any] struct {
	Cause error
}

func (Ok[T]) isResult()  {}
func (Err[T]) isResult() {}

// Error implements error so an Err can be returned or wrapped directly.
func (e Err[T]) Error() string {
	if e.Cause == nil {
		return "unknown error"
	}
	return e.Cause.Error()
}

// Unwrap returns the underlying cause.
func (e Err[T]) Unwrap() error {
	return e.Cause
}

// Of converts a conventional (value, error) pair into a Result.
func Of[T any](v T, err error) Result[T] {
	if err != nil {
		return Err[T]{Cause: err}
	}
	return Ok[T]{Value: v}
}

// Success wraps v in Ok.
func Success[T any](v T) Result[T] {
	return Ok[T]{Value: v}
}

// Failure wraps err in Err.
func Failure[T any](err error) Result[T] {
	return Err[T]{Cause: err}
}

// Match calls onOk or onErr depending on the variant of r.
// It panics on a nil Result, which can only come from a zero-value interface.
func Match[T, R any](r Result[T], onOk func(T) R, onErr func(error) R) R {
	switch v := r.(type) {
	case Ok[T]:
		return onOk(v.Value)
	case Err[T]:
		return onErr(v.Cause)
	default:
		panic(fmt.Sprintf("result: unexpected variant %T", r))
	}
}

// Get unpacks r back into a (value, error) pair.
func Get[T any](r Result[T]) (T, error) {
	var zero T
	switch v := r.(type) {
	case Ok[T]:
		return v.Value, nil
	case Err[T]:
		return zero, v.Cause
	default:
		panic(fmt.Sprintf("result: unexpected variant %T", r))
	}
}

// IsOk reports whether r is the success variant.
func IsOk[T any](r Result[T]) bool {
	_, ok := r.(Ok[T])
	return ok
}
