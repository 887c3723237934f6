// Package jsonrpc binds JSON parameter bundles to typed Go functions.
//
// A Request wraps a Go function and a description of each of its
// parameters. Callers invoke it with a JSON array (positional form) or a JSON
// object (named form); the parameters are decoded into the function's Go
// types by the param package and the function's result is returned unchanged.
//
// # Basic Usage
//
// Declare the function and its parameters, then invoke with JSON:
//
//	add := jsonrpc.MustRequest("Add two integers",
//	    func(a, b int) (any, error) { return a + b, nil },
//	    []param.Spec{
//	        param.Named("a", "First operand"),
//	        param.Named("b", "Second operand"),
//	    })
//
//	add.Invoke(ctx, json.RawMessage(`[2, 3]`))         // 5
//	add.Invoke(ctx, json.RawMessage(`{"a":2,"b":3}`))  // 5
//
// The function may take a context.Context as its first parameter; it is not
// described by a Spec and receives the context passed to Invoke.
//
// # Function Signatures
//
// Functions must have this signature:
//
//	func([ctx context.Context,] p1 T1, ..., pn Tn) (result, error)
//
// Every Ti must be registered in the param.Registry (param.Default unless
// WithRegistry is given). Unsupported types, a spec count that differs from
// n, or misbound state parameters make NewRequest fail; they never surface at
// invocation time.
//
// # State Parameters
//
// A parameter of type *state.Cell[T] is a state parameter. It is declared
// with param.Bound and receives that cell on every invocation instead of a
// value decoded from the caller's JSON:
//
//	y := state.NewCell("global_y", 123)
//	div := jsonrpc.MustRequest("Divide", divide, []param.Spec{
//	    param.Named("x", "Dividend"),
//	    param.Bound("y", "Divisor", y),
//	})
//
//	div.Invoke(ctx, json.RawMessage(`[200]`))             // y omitted
//	div.Invoke(ctx, json.RawMessage(`{"x":200,"y":null}`)) // y present, ignored
//
// This is the only way a Request reaches shared mutable state, and the cell
// guards it with a lock.
//
// # Help
//
// Help returns the description document:
//
//	{"description": "...",
//	 "params": {"x": {"type_example": "integer", "description": "...", "index": 0}}}
//
// Schema returns a JSON Schema for the named form and ValidateParams checks a
// bundle against it without invoking the function.
//
// # Error Handling
//
// Every failure is an *Error whose Kind names the violated rule:
//   - KindConfiguration: specs do not fit the function (NewRequest only)
//   - KindInvalidParameterShape: bundle is neither array nor object
//   - KindParameterCount: bundle has the wrong number of members
//   - KindMissingParameter: named form lacks a parameter (Param names it)
//   - KindDecode: a value does not match its type (Param names it)
//   - KindInvocation: the function returned an error (Cause holds it)
//   - KindInternal: the function panicked
//
// Use errors.Is with the Err* sentinels to test the kind. The function is
// called only when every parameter decoded successfully.
//
// # Endpoint
//
// Endpoint groups Requests under method names and handles the JSON-RPC 2.0
// envelope (https://www.jsonrpc.org/specification) without any transport:
//
//	e := jsonrpc.NewEndpoint()
//	e.Register("test_request", req)
//	out, err := e.Handle(ctx, []byte(`{"jsonrpc":"2.0","method":"test_request","params":[200],"id":1}`))
//
// "<name>.help" returns the Help of a registered method. Standard error codes
// are defined as constants:
//   - CodeParseError (-32700)
//   - CodeInvalidRequest (-32600)
//   - CodeMethodNotFound (-32601)
//   - CodeInvalidParams (-32602)
//   - CodeInternalError (-32603)
//   - CodeServerError (-32000)
package jsonrpc
