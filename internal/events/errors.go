package events

import "fmt"

// FetchError classifies the recoverable failures of the data layer. No error of
// this type ever reaches the rendering layer as a crash; handlers translate
// every one of them into the soft "pending" fallback.
type FetchError struct {
	Type    string
	Message string
	Err     error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

const (
	ErrTypeConfigAbsent   = "CONFIG_ABSENT"
	ErrTypeEndpoint       = "ENDPOINT_UNREACHABLE"
	ErrTypeMalformedCache = "MALFORMED_CACHE"
	ErrTypePartialSchema  = "PARTIAL_SCHEMA"
)

// WrapFetchError wraps an underlying failure with its taxonomy type.
func WrapFetchError(errType, message string, err error) *FetchError {
	return &FetchError{Type: errType, Message: message, Err: err}
}
