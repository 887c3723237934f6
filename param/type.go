// Package param is the type-directed codec between JSON values and typed Go
// parameter values.
//
// Every Go type that may appear in the signature of a wrapped function is
// described by exactly one *Type held in a Registry. A Type knows how to
// decode a JSON value into that Go type and carries the human-readable
// example string used in help output ("integer", "integer reference", ...).
//
// There are two kinds of Type:
//   - KindValue types decode the caller-supplied JSON value.
//   - KindState types ignore the caller-supplied JSON value entirely and yield
//     the *state.Cell bound to the parameter at registration time.
//
// The mapping is closed: a Go type missing from the registry is reported when
// a jsonrpc.Request is constructed, never when it is invoked.
package param

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// Kind distinguishes caller-supplied parameters from state parameters.
type Kind int

const (
	// KindValue parameters are decoded from the caller's JSON.
	KindValue Kind = iota
	// KindState parameters are bound to a shared state cell and never read the
	// caller's JSON.
	KindState
)

func (k Kind) String() string {
	switch k {
	case KindValue:
		return "value"
	case KindState:
		return "state"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Type describes how one Go type is decoded and documented.
//
// Types are created by Register and RegisterState and are immutable.
type Type struct {
	kind     Kind
	goType   reflect.Type
	example  string
	jsonType string
	decode   func(raw json.RawMessage) (reflect.Value, error)
}

// Kind reports whether the type is a value or a state type.
func (t *Type) Kind() Kind { return t.kind }

// GoType returns the Go type this Type decodes into.
func (t *Type) GoType() reflect.Type { return t.goType }

// Describe returns the example string shown in help output.
func (t *Type) Describe() string { return t.example }

// JSONType returns the JSON Schema type name accepted by the type, or "" if
// any JSON value is accepted. State types return "".
func (t *Type) JSONType() string { return t.jsonType }

// IsState reports whether the type binds to a state cell.
func (t *Type) IsState() bool { return t.kind == KindState }

// Decode converts raw into a value of the type's Go type.
//
// For value types, binding is ignored and raw must hold a JSON value of the
// expected shape; otherwise a *DecodeError is returned.
//
// For state types, raw is ignored and binding (the cell handed over at
// registration) is returned. binding must have exactly the type's Go type.
func (t *Type) Decode(raw json.RawMessage, binding any) (reflect.Value, error) {
	if t.kind == KindState {
		if binding == nil {
			return reflect.Value{}, fmt.Errorf("param: state parameter of type %s has no bound cell", t.goType)
		}
		v := reflect.ValueOf(binding)
		if v.Type() != t.goType {
			return reflect.Value{}, fmt.Errorf("param: bound cell has type %s, want %s", v.Type(), t.goType)
		}
		return v, nil
	}
	v, err := t.decode(raw)
	if err != nil {
		return reflect.Value{}, &DecodeError{Type: t.example, Cause: err}
	}
	return v, nil
}

func (t *Type) String() string {
	return fmt.Sprintf("%s (%s)", t.goType, t.example)
}

// DecodeError reports a JSON value that could not be converted to the
// declared Go type.
type DecodeError struct {
	// Type is the example string of the expected type, e.g. "integer".
	Type  string
	Cause error
}

func (e *DecodeError) Error() string {
	msg := "expected " + e.Type
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}
