package dispatch

// Outcome is the result of a step that may be downgraded instead of failing
// the run. When Err is set, Value holds the designated fallback.
type Outcome[T any] struct {
	Value T
	Err   error
}

// Ok is a successful outcome.
func Ok[T any](v T) Outcome[T] {
	return Outcome[T]{Value: v}
}

// Degrade is a failed outcome carrying fallback as its value.
func Degrade[T any](fallback T, err error) Outcome[T] {
	return Outcome[T]{Value: fallback, Err: err}
}

// Recover picks Ok(v) or Degrade(fallback, err) depending on err.
func Recover[T any](v T, err error, fallback T) Outcome[T] {
	if err != nil {
		return Degrade(fallback, err)
	}
	return Ok(v)
}

// Degraded reports whether the fallback is in use.
func (o Outcome[T]) Degraded() bool {
	return o.Err != nil
}
