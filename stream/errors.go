package stream

import "fmt"

// ReadError reports stream corruption: a short read mid-message or an
// impossible length field. It is distinct from a clean end-of-stream, which
// surfaces as io.EOF.
type ReadError struct {
	Message    string
	Underlying error
}

// Error implements the error interface.
func (e *ReadError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("stream read error: %s: %v", e.Message, e.Underlying)
	}
	return fmt.Sprintf("stream read error: %s", e.Message)
}

// Unwrap returns the underlying error, if any.
func (e *ReadError) Unwrap() error {
	return e.Underlying
}
