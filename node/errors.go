package node

import (
	"errors"
	"fmt"
)

// ErrConstructionFailed is matched by every error Build returns.
var ErrConstructionFailed = errors.New("class node construction failed")

// ConstructionError reports a type definition that could not be introspected.
type ConstructionError struct {
	Type string
	Err  error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("%v: %s: %v", ErrConstructionFailed, e.Type, e.Err)
}

func (e *ConstructionError) Unwrap() []error {
	return []error{ErrConstructionFailed, e.Err}
}
