// Package result provides a tagged outcome type for pipeline stages that
// either succeed, succeed in a degraded mode, or fail.
package result

// Status tags a Result.
type Status uint8

const (
	// StatusOK marks a fully successful result.
	StatusOK Status = iota
	// StatusDegraded marks a usable value produced by a fallback path.
	StatusDegraded
	// StatusErr marks a failure with no usable value.
	StatusErr
)

// String returns the lowercase status name.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusDegraded:
		return "degraded"
	default:
		return "error"
	}
}

// Result is Ok(value), Degraded(value, reason) or Err(err).
type Result[T any] struct {
	value  T
	status Status
	reason string
	err    error
}

// Ok returns a successful result.
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v, status: StatusOK}
}

// Degraded returns a best-effort value along with why it is degraded.
// The optional cause is kept for logging and is not treated as a failure.
func Degraded[T any](v T, reason string, cause error) Result[T] {
	return Result[T]{value: v, status: StatusDegraded, reason: reason, err: cause}
}

// Err returns a failed result.
func Err[T any](err error) Result[T] {
	return Result[T]{status: StatusErr, err: err}
}

// Status returns the result's tag.
func (r Result[T]) Status() Status { return r.status }

// IsOK reports whether the result is Ok.
func (r Result[T]) IsOK() bool { return r.status == StatusOK }

// IsDegraded reports whether the result is Degraded.
func (r Result[T]) IsDegraded() bool { return r.status == StatusDegraded }

// IsErr reports whether the result is Err.
func (r Result[T]) IsErr() bool { return r.status == StatusErr }

// Value returns the carried value. It is the zero value for Err results.
func (r Result[T]) Value() T { return r.value }

// Reason returns the degradation reason, empty unless Degraded.
func (r Result[T]) Reason() string { return r.reason }

// Cause returns the failure for Err results, or the underlying cause of a
// Degraded result if one was recorded.
func (r Result[T]) Cause() error { return r.err }

// Unwrap converts the result into Go's (value, error) form.
// Degraded results are returned without error.
func (r Result[T]) Unwrap() (T, error) {
	if r.status == StatusErr {
		var zero T
		return zero, r.err
	}
	return r.value, nil
}
