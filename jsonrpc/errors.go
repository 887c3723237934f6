package jsonrpc

import (
	"errors"
	"fmt"
)

const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
	// CodeServerError is used for errors returned by a wrapped function.
	CodeServerError = -32000
)

// Kind classifies why a construction or invocation failed.
type Kind int

const (
	// KindConfiguration: the parameter descriptions do not fit the function.
	KindConfiguration Kind = iota + 1
	// KindInvalidParameterShape: the parameter bundle is neither an array nor an object.
	KindInvalidParameterShape
	// KindParameterCount: the bundle holds the wrong number of parameters.
	KindParameterCount
	// KindMissingParameter: the object form omits a declared parameter.
	KindMissingParameter
	// KindDecode: a parameter value does not match its declared type.
	KindDecode
	// KindInvocation: the wrapped function returned an error.
	KindInvocation
	// KindInternal: the wrapped function panicked.
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration error"
	case KindInvalidParameterShape:
		return "invalid parameter shape"
	case KindParameterCount:
		return "parameter count mismatch"
	case KindMissingParameter:
		return "missing parameter"
	case KindDecode:
		return "decode error"
	case KindInvocation:
		return "invocation failed"
	case KindInternal:
		return "internal error"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Code returns the JSON-RPC 2.0 error code used when an error of this kind
// is sent over the wire.
func (k Kind) Code() int {
	switch k {
	case KindInvalidParameterShape, KindParameterCount, KindMissingParameter, KindDecode:
		return CodeInvalidParams
	case KindInvocation:
		return CodeServerError
	default:
		return CodeInternalError
	}
}

// Sentinels for errors.Is. An *Error matches the sentinel of its Kind:
//
//	if errors.Is(err, jsonrpc.ErrMissingParameter) { ... }
var (
	ErrConfiguration         = &Error{Kind: KindConfiguration}
	ErrInvalidParameterShape = &Error{Kind: KindInvalidParameterShape}
	ErrParameterCount        = &Error{Kind: KindParameterCount}
	ErrMissingParameter      = &Error{Kind: KindMissingParameter}
	ErrDecode                = &Error{Kind: KindDecode}
	ErrInvocation            = &Error{Kind: KindInvocation}
	ErrInternal              = &Error{Kind: KindInternal}
)

// Error is returned by NewRequest and Request.Invoke.
type Error struct {
	Kind Kind
	// Message is a short description; when empty, the kind is used.
	Message string
	// Param names the offending parameter, if any.
	Param string
	Cause error
}

func (e *Error) Error() string {
	if e == nil {
		return "jsonrpc: error: <nil>"
	}
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e != nil && t != nil && t.Kind == e.Kind
}

func configError(param, format string, args ...any) *Error {
	return &Error{
		Kind:    KindConfiguration,
		Param:   param,
		Message: "configuration error: " + fmt.Sprintf(format, args...),
	}
}

// ResponseError is the "error" member of a JSON-RPC 2.0 response.
//
// A wrapped function that returns a *ResponseError (directly or wrapped)
// picks the code and message the client sees:
//
//	return nil, jsonrpc.Errorf(-1000, "quota exceeded for %s", user)
type ResponseError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Errorf returns a *ResponseError with the given code and a formatted
// message.
func Errorf(code int, format string, args ...any) *ResponseError {
	return &ResponseError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("jsonrpc error %d: %s", e.Code, e.Message)
}

// errorData is the Data member attached to errors produced by this package.
type errorData struct {
	Kind  string `json:"kind"`
	Param string `json:"param,omitempty"`
}

// toResponseError picks the error object sent for err. A *ResponseError in
// the chain is sent as is, an *Error uses its Kind's code, and anything else
// is an internal error.
func toResponseError(err error) *ResponseError {
	var re *ResponseError
	if errors.As(err, &re) {
		return re
	}
	var e *Error
	if errors.As(err, &e) {
		msg := e.Error()
		if e.Kind == KindInternal {
			// Panic values stay in the logs.
			msg = KindInternal.String()
		}
		return &ResponseError{
			Code:    e.Kind.Code(),
			Message: msg,
			Data:    errorData{Kind: e.Kind.String(), Param: e.Param},
		}
	}
	return &ResponseError{
		Code:    CodeInternalError,
		Message: err.Error(),
	}
}
