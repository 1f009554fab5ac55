package gateway

import (
	"errors"
	"fmt"
)

// Kind classifies why a prediction request failed.
type Kind int

const (
	KindServiceUnavailable Kind = iota + 1
	KindMalformedInput
	KindSchemaViolation
	KindShapeMismatch
	KindInference
)

func (k Kind) String() string {
	switch k {
	case KindServiceUnavailable:
		return "service_unavailable"
	case KindMalformedInput:
		return "malformed_input"
	case KindSchemaViolation:
		return "schema_violation"
	case KindShapeMismatch:
		return "shape_mismatch"
	case KindInference:
		return "internal_inference_error"
	default:
		return "unknown"
	}
}

// Error is the tagged failure returned by Classify. Expected and Received are
// only set for KindShapeMismatch.
type Error struct {
	Kind     Kind
	Expected int
	Received int
	Detail   string
	Err      error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindShapeMismatch:
		return fmt.Sprintf("%s: expected %d features, received %d", e.Kind, e.Expected, e.Received)
	case e.Detail != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf reports the Kind carried by err, or 0 when err is not a gateway error.
func KindOf(err error) Kind {
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr.Kind
	}
	return 0
}
