package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error surfaced by the data layer matches exactly one
// of these with errors.Is.
var (
	ErrNetwork           = errors.New("network error")
	ErrService           = errors.New("service error")
	ErrAuth              = errors.New("authentication error")
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("not found")
	ErrInvalidURL        = errors.New("invalid url")
	ErrMalformedResponse = errors.New("malformed response")
)

// APIError describes a failed call to the remote story service.
type APIError struct {
	Op      string // client operation, e.g. "create_story"
	Status  int    // HTTP status, 0 for transport failures
	Message string // message reported by the service, if any
	Kind    error  // one of the Err* kinds above
	Err     error  // underlying transport error, if any
}

func (e *APIError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %v (status %d): %s", e.Op, e.Kind, e.Status, e.Message)
	default:
		return fmt.Sprintf("%s: %v (status %d)", e.Op, e.Kind, e.Status)
	}
}

// Unwrap exposes both the kind and the transport cause to errors.Is/As.
func (e *APIError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// SchemaError reports a response body that decoded but did not have the
// expected shape.
type SchemaError struct {
	Op     string
	Fields []string
	Err    error
}

func (e *SchemaError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("%s: %v: invalid fields %v", e.Op, ErrMalformedResponse, e.Fields)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, ErrMalformedResponse, e.Err)
}

func (e *SchemaError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrMalformedResponse, e.Err}
	}
	return []error{ErrMalformedResponse}
}

// KindOf returns the error kind carried by err, or nil if err is not one
// of ours.
func KindOf(err error) error {
	for _, kind := range []error{
		ErrAuth, ErrValidation, ErrNotFound, ErrInvalidURL,
		ErrMalformedResponse, ErrNetwork, ErrService,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
