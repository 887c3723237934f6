package param

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/mnehpets/jsonreq/state"
)

// ErrUnsupportedType is returned by Lookup for Go types that have no
// registered Type.
var ErrUnsupportedType = errors.New("param: unsupported parameter type")

// Registry maps Go types to their Type.
//
// Registry is safe for concurrent use, although registration normally happens
// once during program start-up.
type Registry struct {
	mu    sync.RWMutex
	types map[reflect.Type]*Type
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[reflect.Type]*Type)}
}

// Default is the registry used by jsonrpc.NewRequest unless another is
// supplied. It holds the built-in types:
//
//	int, int32, int64     "integer"
//	uint                  "unsigned integer"
//	float64               "number"
//	string                "string"
//	bool                  "boolean"
//	json.RawMessage       "any JSON value"
//	*state.Cell[int]      "integer reference"
//	*state.Cell[float64]  "number reference"
//	*state.Cell[string]   "string reference"
//	*state.Cell[bool]     "boolean reference"
var Default = NewDefaultRegistry()

// NewDefaultRegistry returns a new registry holding the built-in types. Use it
// to extend the built-ins without modifying Default.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	Register(r, "integer", "integer", signed[int])
	Register(r, "integer", "integer", signed[int32])
	Register(r, "integer", "integer", signed[int64])
	Register(r, "unsigned integer", "integer", unsigned[uint])
	Register(r, "number", "number", decodeFloat)
	Register(r, "string", "string", decodeString)
	Register(r, "boolean", "boolean", decodeBool)
	Register(r, "any JSON value", "", decodeRaw)
	RegisterState[int](r, "integer reference")
	RegisterState[float64](r, "number reference")
	RegisterState[string](r, "string reference")
	RegisterState[bool](r, "boolean reference")
	return r
}

// Register adds a value type for T to r. jsonType is the JSON Schema type
// name accepted by decode ("" for any).
//
// Register panics if T is already registered.
func Register[T any](r *Registry, example, jsonType string, decode func(raw json.RawMessage) (T, error)) *Type {
	t := &Type{
		kind:     KindValue,
		goType:   reflect.TypeFor[T](),
		example:  example,
		jsonType: jsonType,
		decode: func(raw json.RawMessage) (reflect.Value, error) {
			v, err := decode(raw)
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(&v).Elem(), nil
		},
	}
	r.add(t)
	return t
}

// RegisterState adds a state type for *state.Cell[T] to r.
//
// Register panics if *state.Cell[T] is already registered.
func RegisterState[T any](r *Registry, example string) *Type {
	t := &Type{
		kind:    KindState,
		goType:  reflect.TypeFor[*state.Cell[T]](),
		example: example,
	}
	r.add(t)
	return t
}

func (r *Registry) add(t *Type) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.types[t.goType]; exists {
		panic("param: type already registered: " + t.goType.String())
	}
	r.types[t.goType] = t
}

// Lookup returns the Type registered for goType.
func (r *Registry) Lookup(goType reflect.Type) (*Type, error) {
	r.mu.RLock()
	t, ok := r.types[goType]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, goType)
	}
	return t, nil
}

// Clone returns a copy of r that can be extended independently.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c := &Registry{types: make(map[reflect.Type]*Type, len(r.types))}
	for k, v := range r.types {
		c.types[k] = v
	}
	return c
}
