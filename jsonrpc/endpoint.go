package jsonrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// HelpSuffix is appended to a registered name to address its help method:
// "test_request.help" returns the Help of "test_request". Help methods
// ignore their params member. A help request for an unregistered name fails
// with CodeMethodNotFound naming the base method.
const HelpSuffix = ".help"

// Endpoint is an in-memory table of named Requests that speaks the JSON-RPC
// 2.0 envelope: single and batch requests, notifications and error objects.
//
// Endpoint does no I/O; Handle takes and returns the raw bytes, and moving
// them is up to the caller.
type Endpoint struct {
	mu       sync.RWMutex
	requests map[string]*Request
	log      zerolog.Logger
}

// NewEndpoint creates an empty endpoint. Only WithLogger is used.
func NewEndpoint(opts ...Option) *Endpoint {
	o := newOptions(opts)
	return &Endpoint{
		requests: make(map[string]*Request),
		log:      o.logger,
	}
}

// Register adds r under name.
//
// Register panics if name is empty, ends in HelpSuffix, or is already taken.
func (e *Endpoint) Register(name string, r *Request) {
	if name == "" || strings.HasSuffix(name, HelpSuffix) {
		panic("jsonrpc: invalid method name: " + name)
	}
	if r == nil {
		panic("jsonrpc: nil request for method " + name)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.requests[name]; exists {
		panic("jsonrpc: method name collision: " + name)
	}
	e.requests[name] = r
}

// Lookup returns the request registered under name.
func (e *Endpoint) Lookup(name string) (*Request, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	r, ok := e.requests[name]
	return r, ok
}

// Names returns the registered method names, in no particular order.
func (e *Endpoint) Names() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, 0, len(e.requests))
	for name := range e.requests {
		names = append(names, name)
	}
	return names
}

// envelope is one request object. ID is kept raw so that a missing id
// (a notification) can be told apart from "id": null.
type envelope struct {
	Version string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
	ID      json.RawMessage `json:"id"`
}

// response always carries "id", and exactly one of "result" and "error".
type response struct {
	Version string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *ResponseError  `json:"error,omitempty"`
	ID      json.RawMessage `json:"id"`
}

var nullID = json.RawMessage("null")

func failure(id json.RawMessage, err *ResponseError) response {
	if len(id) == 0 {
		id = nullID
	}
	return response{Version: "2.0", Error: err, ID: id}
}

// Handle processes a JSON-RPC 2.0 request or batch and returns the encoded
// response. It returns nil bytes when every request was a notification.
//
// Protocol errors are reported inside the response; the returned error is
// non-nil only if the response could not be encoded.
func (e *Endpoint) Handle(ctx context.Context, body []byte) ([]byte, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '[' {
		resp, ok := e.handleOne(ctx, body)
		if !ok {
			return nil, nil
		}
		return json.Marshal(resp)
	}

	var batch []json.RawMessage
	if err := json.Unmarshal(body, &batch); err != nil {
		return json.Marshal(failure(nil, Errorf(CodeParseError, "parse error")))
	}
	if len(batch) == 0 {
		return json.Marshal(failure(nil, Errorf(CodeInvalidRequest, "invalid request: empty batch")))
	}

	var out []response
	for _, raw := range batch {
		if resp, ok := e.handleOne(ctx, raw); ok {
			out = append(out, resp)
		}
	}
	if len(out) == 0 {
		return nil, nil
	}
	return json.Marshal(out)
}

// handleOne processes a single request object. It reports false when the
// request was a notification and no response must be sent.
func (e *Endpoint) handleOne(ctx context.Context, raw json.RawMessage) (response, bool) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return failure(nil, Errorf(CodeInvalidRequest, "invalid request: %v", err)), true
		}
		return failure(nil, Errorf(CodeParseError, "parse error")), true
	}

	switch {
	case !validID(env.ID):
		return failure(nil, Errorf(CodeInvalidRequest, "invalid request: id must be a string, number or null")), true
	case env.Version != "2.0":
		return failure(env.ID, Errorf(CodeInvalidRequest, "invalid request: jsonrpc must be \"2.0\"")), true
	case env.Method == "":
		return failure(env.ID, Errorf(CodeInvalidRequest, "invalid request: method required")), true
	}

	result, err := e.invokeMethod(ctx, env.Method, env.Params)
	if len(env.ID) == 0 {
		if err != nil {
			e.log.Debug().Err(err).Str("method", env.Method).Msg("jsonrpc: notification failed")
		}
		return response{}, false
	}
	if err != nil {
		return failure(env.ID, toResponseError(err)), true
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		e.log.Error().Err(err).Str("method", env.Method).Msg("jsonrpc: encode result")
		return failure(env.ID, Errorf(CodeInternalError, "internal error")), true
	}
	return response{Version: "2.0", Result: encoded, ID: env.ID}, true
}

// validID reports whether id is absent or a string, number or null.
func validID(id json.RawMessage) bool {
	if len(id) == 0 {
		return true
	}
	switch id[0] {
	case '{', '[', 't', 'f':
		return false
	}
	return true
}

func (e *Endpoint) invokeMethod(ctx context.Context, name string, params json.RawMessage) (any, error) {
	if base, ok := strings.CutSuffix(name, HelpSuffix); ok {
		r, ok := e.Lookup(base)
		if !ok {
			return nil, Errorf(CodeMethodNotFound, "method not found: %s", base)
		}
		return r.Help(), nil
	}

	r, ok := e.Lookup(name)
	if !ok {
		return nil, Errorf(CodeMethodNotFound, "method not found: %s", name)
	}

	// Omitted params are an empty positional list.
	if len(params) == 0 {
		params = json.RawMessage("[]")
	}
	e.log.Debug().Str("method", name).Msg("jsonrpc: dispatch")
	return r.Invoke(ctx, params)
}
