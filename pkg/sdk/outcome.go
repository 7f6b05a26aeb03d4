package sdk

// Outcome is the result of an auth operation. Failures carry a message that is
// safe to show to the user and the underlying cause for errors.As checks.
type Outcome[T any] struct {
	Data  T
	Error string
	Cause error
	ok    bool
}

// Succeed wraps data in a successful Outcome.
func Succeed[T any](data T) Outcome[T] {
	return Outcome[T]{Data: data, ok: true}
}

// Fail builds a failed Outcome with a user-facing message.
func Fail[T any](message string, cause error) Outcome[T] {
	if message == "" && cause != nil {
		message = cause.Error()
	}
	return Outcome[T]{Error: message, Cause: cause}
}

// Success reports whether the operation succeeded.
func (o Outcome[T]) Success() bool {
	return o.ok
}

// Err returns nil on success, otherwise an error whose text is the user-facing
// message and which unwraps to Cause.
func (o Outcome[T]) Err() error {
	if o.ok {
		return nil
	}
	return &outcomeError{message: o.Error, cause: o.Cause}
}

type outcomeError struct {
	message string
	cause   error
}

func (e *outcomeError) Error() string { return e.message }

func (e *outcomeError) Unwrap() error { return e.cause }
