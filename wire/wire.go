// Package wire converts parameter bundles and results between JSON and the
// other formats accepted by the command line: YAML and CBOR.
//
// Bundles are always normalised to JSON before they reach a jsonrpc.Request,
// so the dispatcher only ever sees JSON arrays and objects.
package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"
)

// Format names an encoding.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
	CBOR Format = "cbor"
)

// ParseFormat parses a case-insensitive format name. "yml" is accepted for
// YAML.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json", "":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "cbor":
		return CBOR, nil
	default:
		return "", fmt.Errorf("wire: unknown format %q", s)
	}
}

var cborDec = func() cbor.DecMode {
	dm, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic(err)
	}
	return dm
}()

// Decode converts data in format f to JSON.
func Decode(f Format, data []byte) (json.RawMessage, error) {
	switch f {
	case JSON:
		data = bytes.TrimSpace(data)
		if !json.Valid(data) {
			return nil, fmt.Errorf("wire: invalid JSON")
		}
		return json.RawMessage(data), nil
	case YAML:
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("wire: decode yaml: %w", err)
		}
		return marshalJSON(v)
	case CBOR:
		var v any
		if err := cborDec.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("wire: decode cbor: %w", err)
		}
		return marshalJSON(v)
	default:
		return nil, fmt.Errorf("wire: unknown format %q", f)
	}
}

// Encode encodes v in format f. JSON and YAML output ends with a newline.
func Encode(f Format, v any) ([]byte, error) {
	switch f {
	case JSON:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return nil, fmt.Errorf("wire: encode json: %w", err)
		}
		return buf.Bytes(), nil
	case YAML:
		// Round-trip through JSON so json tags and json.RawMessage values are
		// honoured.
		generic, err := toGeneric(v)
		if err != nil {
			return nil, err
		}
		out, err := yaml.Marshal(generic)
		if err != nil {
			return nil, fmt.Errorf("wire: encode yaml: %w", err)
		}
		return out, nil
	case CBOR:
		generic, err := toGeneric(v)
		if err != nil {
			return nil, err
		}
		out, err := cbor.Marshal(generic)
		if err != nil {
			return nil, fmt.Errorf("wire: encode cbor: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("wire: unknown format %q", f)
	}
}

func toGeneric(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("wire: encode json: %w", err)
	}
	var generic any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&generic); err != nil {
		return nil, fmt.Errorf("wire: decode json: %w", err)
	}
	return numbers(generic), nil
}

// numbers replaces json.Number with int64 or float64 so YAML and CBOR encode
// them as numbers rather than strings.
func numbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	case []any:
		for i := range t {
			t[i] = numbers(t[i])
		}
		return t
	case map[string]any:
		for k := range t {
			t[k] = numbers(t[k])
		}
		return t
	default:
		return v
	}
}

func marshalJSON(v any) (json.RawMessage, error) {
	out, err := json.Marshal(normalize(v))
	if err != nil {
		return nil, fmt.Errorf("wire: encode json: %w", err)
	}
	return out, nil
}

// normalize converts maps with non-string keys, as produced by YAML, into
// JSON-compatible maps.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = normalize(e)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			ks, ok := k.(string)
			if !ok {
				ks = fmt.Sprint(k)
			}
			m[ks] = normalize(e)
		}
		return m
	case []any:
		for i := range t {
			t[i] = normalize(t[i])
		}
		return t
	default:
		return v
	}
}
