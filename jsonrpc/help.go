package jsonrpc

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Help is the machine-readable description of a Request.
type Help struct {
	Description string               `json:"description" yaml:"description"`
	Params      map[string]ParamHelp `json:"params" yaml:"params"`
}

// ParamHelp describes one parameter in Help.
type ParamHelp struct {
	TypeExample string `json:"type_example" yaml:"type_example"`
	Description string `json:"description" yaml:"description"`
	Index       int    `json:"index" yaml:"index"`
}

// Help returns the description of r and of each of its parameters, keyed by
// parameter name. It does not depend on any prior invocation.
func (r *Request) Help() Help {
	h := Help{
		Description: r.description,
		Params:      make(map[string]ParamHelp, len(r.params)),
	}
	for _, p := range r.params {
		h.Params[p.Name] = ParamHelp{
			TypeExample: p.Type.Describe(),
			Description: p.Description,
			Index:       p.Index,
		}
	}
	return h
}

// Schema returns a JSON Schema (draft-07) for the named form of r's
// parameters. State parameters are listed as optional properties without a
// type, since their values are ignored.
func (r *Request) Schema() map[string]any {
	props := make(map[string]any, len(r.params))
	required := make([]string, 0, r.inputs)
	for _, p := range r.params {
		prop := map[string]any{"description": p.Description}
		if !p.IsState() {
			if jt := p.Type.JSONType(); jt != "" {
				prop["type"] = jt
			}
			required = append(required, p.Name)
		}
		props[p.Name] = prop
	}
	schema := map[string]any{
		"$schema":              "http://json-schema.org/draft-07/schema#",
		"description":          r.description,
		"type":                 "object",
		"properties":           props,
		"additionalProperties": false,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// ValidateParams checks params against Schema without invoking r. A
// positional bundle is first mapped to names the same way Invoke does.
//
// Shape and count problems are reported as by Invoke; schema violations are
// reported as KindDecode errors naming the first offending field.
func (r *Request) ValidateParams(params json.RawMessage) error {
	slots, err := r.slots(params)
	if err != nil {
		return err
	}
	obj := make(map[string]json.RawMessage, len(slots))
	for i, p := range r.params {
		if slots[i] != nil {
			obj[p.Name] = slots[i]
		}
	}
	doc, err := json.Marshal(obj)
	if err != nil {
		return &Error{Kind: KindInvalidParameterShape, Message: "invalid parameter shape", Cause: err}
	}

	res, err := gojsonschema.Validate(gojsonschema.NewGoLoader(r.Schema()), gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return &Error{Kind: KindInternal, Message: "schema validation failed", Cause: err}
	}
	if res.Valid() {
		return nil
	}
	errs := res.Errors()
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.String()
	}
	return &Error{
		Kind:    KindDecode,
		Param:   errs[0].Field(),
		Message: "invalid parameters",
		Cause:   fmt.Errorf("%s", strings.Join(msgs, "; ")),
	}
}
