// Package demo registers the example callable test_request.
//
// test_request takes a caller-supplied integer x and a state parameter y
// bound to a shared integer cell, and returns {"result": (x / y) * 2} using
// integer division.
package demo

import (
	"errors"

	"github.com/mnehpets/jsonreq/jsonrpc"
	"github.com/mnehpets/jsonreq/param"
	"github.com/mnehpets/jsonreq/state"
)

const (
	// Method is the name test_request is registered under.
	Method = "test_request"
	// DefaultY is the initial value of the shared cell bound to y.
	DefaultY = 123
)

// ErrDivisionByZero is returned by test_request when the shared cell holds 0.
var ErrDivisionByZero = errors.New("division by zero")

// Result is the value returned by test_request.
type Result struct {
	Result int `json:"result" yaml:"result" cbor:"result"`
}

func testRequest(x int, y *state.Cell[int]) (any, error) {
	d := y.Load()
	if d == 0 {
		return nil, ErrDivisionByZero
	}
	sum := x / d
	sum *= 2
	return Result{Result: sum}, nil
}

// NewTestRequest builds test_request with y bound to cell.
func NewTestRequest(cell *state.Cell[int], opts ...jsonrpc.Option) (*jsonrpc.Request, error) {
	return jsonrpc.NewRequest("Test request", testRequest, []param.Spec{
		param.Named("x", "First integer parameter"),
		param.Bound("y", "Second integer parameter", cell),
	}, opts...)
}

// Register adds test_request, bound to cell, to e under Method.
func Register(e *jsonrpc.Endpoint, cell *state.Cell[int], opts ...jsonrpc.Option) error {
	r, err := NewTestRequest(cell, opts...)
	if err != nil {
		return err
	}
	e.Register(Method, r)
	return nil
}
