package jsonrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/rs/zerolog"

	"github.com/mnehpets/jsonreq/param"
)

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// Request is one callable exposed through the uniform JSON-in, result-out
// interface. It wraps a Go function together with one param.Spec per
// function parameter.
//
// A Request is immutable after NewRequest and safe for concurrent use. Any
// shared mutable state is reached only through the state cells bound to its
// state parameters.
type Request struct {
	description string
	fn          reflect.Value
	withContext bool
	params      []param.Spec
	// inputs is the number of caller-supplied (non-state) parameters.
	inputs int
	log    zerolog.Logger
}

type options struct {
	registry *param.Registry
	logger   zerolog.Logger
}

// Option configures NewRequest and NewEndpoint.
type Option func(*options)

// WithRegistry resolves parameter types in r instead of param.Default.
func WithRegistry(r *param.Registry) Option {
	return func(o *options) {
		o.registry = r
	}
}

// WithLogger sets the logger used for debug and panic logging. The default
// discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func newOptions(opts []Option) options {
	o := options{registry: param.Default, logger: zerolog.Nop()}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.registry == nil {
		o.registry = param.Default
	}
	return o
}

// NewRequest wraps fn, which must have the signature
//
//	func([ctx context.Context,] p1 T1, ..., pn Tn) (R, error)
//
// specs declares p1..pn in order. Each Ti must be registered in the
// registry; a Ti of a state type requires a param.Bound spec holding a cell of
// exactly that type, and any other Ti requires a param.Named spec.
//
// Every mismatch between specs and fn is reported as a KindConfiguration
// error; nothing is deferred until invocation.
func NewRequest(description string, fn any, specs []param.Spec, opts ...Option) (*Request, error) {
	o := newOptions(opts)

	if fn == nil {
		return nil, configError("", "nil function")
	}
	fv := reflect.ValueOf(fn)
	ft := fv.Type()
	if ft.Kind() != reflect.Func {
		return nil, configError("", "%s is not a function", ft)
	}
	if fv.IsNil() {
		return nil, configError("", "nil function")
	}
	if ft.IsVariadic() {
		return nil, configError("", "variadic functions are not supported")
	}
	if ft.NumOut() != 2 || ft.Out(1) != errorType {
		return nil, configError("", "function must return (result, error)")
	}

	first := 0
	if ft.NumIn() > 0 && ft.In(0) == contextType {
		first = 1
	}
	arity := ft.NumIn() - first
	if len(specs) != arity {
		return nil, configError("", "got %d parameter descriptions for %d parameters", len(specs), arity)
	}

	r := &Request{
		description: description,
		fn:          fv,
		withContext: first == 1,
		params:      make([]param.Spec, arity),
		log:         o.logger,
	}
	seen := make(map[string]bool, arity)
	for i, s := range specs {
		if s.Name == "" {
			return nil, configError("", "parameter %d has no name", i)
		}
		if seen[s.Name] {
			return nil, configError(s.Name, "duplicate parameter name %q", s.Name)
		}
		seen[s.Name] = true

		t, err := o.registry.Lookup(ft.In(first + i))
		if err != nil {
			e := configError(s.Name, "parameter %q", s.Name)
			e.Cause = err
			return nil, e
		}
		if t.IsState() {
			if err := checkBinding(t, s.Binding); err != nil {
				e := configError(s.Name, "state parameter %q", s.Name)
				e.Cause = err
				return nil, e
			}
		} else {
			if s.Binding != nil {
				return nil, configError(s.Name, "value parameter %q cannot be bound to state", s.Name)
			}
			r.inputs++
		}
		s.Index = i
		s.Type = t
		r.params[i] = s
	}
	return r, nil
}

// MustRequest is like NewRequest but panics on error. It is intended for
// package-level registration.
func MustRequest(description string, fn any, specs []param.Spec, opts ...Option) *Request {
	r, err := NewRequest(description, fn, specs, opts...)
	if err != nil {
		panic(err)
	}
	return r
}

func checkBinding(t *param.Type, binding any) error {
	if binding == nil {
		return fmt.Errorf("no bound cell")
	}
	v := reflect.ValueOf(binding)
	if v.Type() != t.GoType() {
		return fmt.Errorf("bound cell has type %s, want %s", v.Type(), t.GoType())
	}
	if v.Kind() == reflect.Pointer && v.IsNil() {
		return fmt.Errorf("nil cell")
	}
	return nil
}

// Description returns the callable's description.
func (r *Request) Description() string {
	return r.description
}

// Params returns a copy of the resolved parameter specs in declaration order.
func (r *Request) Params() []param.Spec {
	return append([]param.Spec(nil), r.params...)
}

// Invoke decodes params and calls the wrapped function.
//
// params must be a JSON array (positional form) or a JSON object (named
// form). Its size must equal the number of declared parameters, or the
// number of non-state parameters. In the first case the slots of state
// parameters must be present, but their values are ignored; in the second
// they are omitted. Either way, state parameters receive their bound cell.
//
// All parameters are decoded before the function runs; on any failure the
// function is not called. The function's result is returned unchanged.
func (r *Request) Invoke(ctx context.Context, params json.RawMessage) (any, error) {
	args, err := r.decode(params)
	if err != nil {
		r.log.Debug().Err(err).Str("request", r.description).Msg("jsonrpc: rejected params")
		return nil, err
	}
	r.log.Debug().Str("request", r.description).Int("args", len(args)).Msg("jsonrpc: invoke")
	return r.call(ctx, args)
}

// InvokeJSON is like Invoke but marshals the result.
func (r *Request) InvokeJSON(ctx context.Context, params json.RawMessage) (json.RawMessage, error) {
	result, err := r.Invoke(ctx, params)
	if err != nil {
		return nil, err
	}
	return json.Marshal(result)
}

// slots resolves a bundle to one raw value per declared parameter, in
// declaration order. State slots may be nil.
func (r *Request) slots(params json.RawMessage) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(params)
	if len(trimmed) == 0 {
		return nil, &Error{Kind: KindInvalidParameterShape, Message: "invalid parameter shape: parameters must be an array or an object"}
	}
	switch trimmed[0] {
	case '[':
		var list []json.RawMessage
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, &Error{Kind: KindInvalidParameterShape, Message: "invalid parameter shape", Cause: err}
		}
		return r.positional(list)
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return nil, &Error{Kind: KindInvalidParameterShape, Message: "invalid parameter shape", Cause: err}
		}
		return r.named(obj)
	default:
		return nil, &Error{Kind: KindInvalidParameterShape, Message: "invalid parameter shape: parameters must be an array or an object"}
	}
}

func (r *Request) countError(got int) *Error {
	want := fmt.Sprint(len(r.params))
	if r.inputs != len(r.params) {
		want = fmt.Sprintf("%d or %d", len(r.params), r.inputs)
	}
	return &Error{
		Kind:    KindParameterCount,
		Message: fmt.Sprintf("parameter count mismatch: got %d, want %s", got, want),
	}
}

func (r *Request) positional(list []json.RawMessage) ([]json.RawMessage, error) {
	switch len(list) {
	case len(r.params):
		return list, nil
	case r.inputs:
		slots := make([]json.RawMessage, len(r.params))
		j := 0
		for i, p := range r.params {
			if p.IsState() {
				continue
			}
			slots[i] = list[j]
			j++
		}
		return slots, nil
	}
	return nil, r.countError(len(list))
}

func (r *Request) named(obj map[string]json.RawMessage) ([]json.RawMessage, error) {
	full := len(obj) == len(r.params)
	if !full && len(obj) != r.inputs {
		return nil, r.countError(len(obj))
	}
	slots := make([]json.RawMessage, len(r.params))
	for i, p := range r.params {
		v, ok := obj[p.Name]
		if !ok {
			if p.IsState() && !full {
				continue
			}
			return nil, &Error{Kind: KindMissingParameter, Param: p.Name, Message: "missing parameter: " + p.Name}
		}
		slots[i] = v
	}
	return slots, nil
}

func (r *Request) decode(params json.RawMessage) ([]reflect.Value, error) {
	slots, err := r.slots(params)
	if err != nil {
		return nil, err
	}
	args := make([]reflect.Value, len(r.params))
	for i, p := range r.params {
		v, err := p.Type.Decode(slots[i], p.Binding)
		if err != nil {
			return nil, &Error{Kind: KindDecode, Param: p.Name, Message: "invalid parameter " + p.Name, Cause: err}
		}
		args[i] = v
	}
	return args, nil
}

func (r *Request) call(ctx context.Context, args []reflect.Value) (result any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error().Str("request", r.description).Interface("panic", rec).Msg("jsonrpc: panic in wrapped function")
			result = nil
			err = &Error{Kind: KindInternal, Cause: fmt.Errorf("panic: %v", rec)}
		}
	}()

	in := args
	if r.withContext {
		if ctx == nil {
			ctx = context.Background()
		}
		in = append([]reflect.Value{reflect.ValueOf(&ctx).Elem()}, args...)
	}
	out := r.fn.Call(in)

	if !out[1].IsNil() {
		fnErr := out[1].Interface().(error)
		var e *Error
		if errors.As(fnErr, &e) {
			return nil, fnErr
		}
		return nil, &Error{Kind: KindInvocation, Cause: fnErr}
	}
	return out[0].Interface(), nil
}
