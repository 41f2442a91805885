package dict

import (
	"errors"
	"fmt"
)

// KeyError reports a lookup that found no entry at the given key.
type KeyError struct {
	Key string
}

func (e *KeyError) Error() string {
	if e.Key == "" {
		return "dictionary is empty"
	}
	return fmt.Sprintf("no entry at key %q", e.Key)
}

// TypeError reports a type mismatch at a typed boundary: reading a
// leaf as the wrong type, indexing into a value as if it were a map,
// or decoding a wire payload whose shape is incompatible with the
// target type.
type TypeError struct {
	Message string
}

func (e *TypeError) Error() string {
	return e.Message
}

func typeErrorf(format string, args ...interface{}) *TypeError {
	return &TypeError{Message: fmt.Sprintf(format, args...)}
}

// InternalError reports malformed or truncated wire data, as opposed
// to well-formed data of an incompatible type.
type InternalError struct {
	Message string
	Err     error
}

func (e *InternalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// ErrNotImplemented is returned by operations whose semantics are
// deliberately left open.  The tree-to-tree Update currently has
// none; the sentinel is kept so an alternate Update interpretation
// can reject calls without changing the API.
var ErrNotImplemented = errors.New("not implemented")
