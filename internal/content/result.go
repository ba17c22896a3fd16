package content

// result is a value-or-error produced by one step of a best-effort chain.
type result[T any] struct {
	val T
	err error
}

func attempt[T any](val T, err error) result[T] {
	return result[T]{val: val, err: err}
}

// then runs f only when r succeeded.
func then[T, U any](r result[T], f func(T) (U, error)) result[U] {
	if r.err != nil {
		return result[U]{err: r.err}
	}
	return attempt(f(r.val))
}

// orElse unwraps r, or hands its error to fallback.
func (r result[T]) orElse(fallback func(error) T) T {
	if r.err != nil {
		return fallback(r.err)
	}
	return r.val
}
