package domain

// Result is a pipeline outcome as seen by outer surfaces: either a value
// or a classified error, never both.
type Result[T any] struct {
	OK    bool         `json:"ok"`
	Value *T           `json:"value,omitempty"`
	Error *ResultError `json:"error,omitempty"`
}

type ResultError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func Ok[T any](v T) Result[T] {
	return Result[T]{OK: true, Value: &v}
}

func Err[T any](err error) Result[T] {
	return Result[T]{Error: &ResultError{Kind: KindOf(err), Message: UserMessage(err)}}
}

// ResultOf builds a Result from a conventional (value, error) pair.
func ResultOf[T any](v T, err error) Result[T] {
	if err != nil {
		return Err[T](err)
	}
	return Ok(v)
}
