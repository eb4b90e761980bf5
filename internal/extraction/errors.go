package extraction

import "fmt"

// DecodeError is returned when an extraction response cannot be used.
type DecodeError struct {
	Message string
	Cause   error
}

func (e *DecodeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}
