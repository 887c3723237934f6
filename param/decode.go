package param

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
)

var (
	errFraction   = errors.New("number has a fractional part")
	errOutOfRange = errors.New("number out of range")
)

// leaf decodes a single JSON value, keeping numbers as json.Number so no
// precision is lost before the target type is known.
func leaf(raw json.RawMessage) (any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, errors.New("empty value")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("trailing data after value")
	}
	return v, nil
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case json.Number:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func number(raw json.RawMessage) (json.Number, error) {
	v, err := leaf(raw)
	if err != nil {
		return "", err
	}
	n, ok := v.(json.Number)
	if !ok {
		return "", fmt.Errorf("got %s", jsonKind(v))
	}
	return n, nil
}

// integral parses n as an integer of the given bit size. Numbers written with
// an exponent or a zero fraction ("2e2", "200.0") are accepted as long as
// they are integral and in range.
func integral(n json.Number, bits int, signed bool) (float64, error) {
	f, err := strconv.ParseFloat(n.String(), 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, errFraction
	}
	lo, hi := -math.Ldexp(1, bits-1), math.Ldexp(1, bits-1)
	if !signed {
		lo, hi = 0, math.Ldexp(1, bits)
	}
	if f < lo || f >= hi {
		return 0, errOutOfRange
	}
	return f, nil
}

func signed[T ~int | ~int8 | ~int16 | ~int32 | ~int64](raw json.RawMessage) (T, error) {
	n, err := number(raw)
	if err != nil {
		return 0, err
	}
	bits := reflect.TypeFor[T]().Bits()
	if i, err := strconv.ParseInt(n.String(), 10, bits); err == nil {
		return T(i), nil
	} else if errors.Is(err, strconv.ErrRange) {
		return 0, errOutOfRange
	}
	f, err := integral(n, bits, true)
	if err != nil {
		return 0, err
	}
	return T(f), nil
}

func unsigned[T ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64](raw json.RawMessage) (T, error) {
	n, err := number(raw)
	if err != nil {
		return 0, err
	}
	bits := reflect.TypeFor[T]().Bits()
	if u, err := strconv.ParseUint(n.String(), 10, bits); err == nil {
		return T(u), nil
	} else if errors.Is(err, strconv.ErrRange) {
		return 0, errOutOfRange
	}
	f, err := integral(n, bits, false)
	if err != nil {
		return 0, err
	}
	return T(f), nil
}

func decodeFloat(raw json.RawMessage) (float64, error) {
	n, err := number(raw)
	if err != nil {
		return 0, err
	}
	return n.Float64()
}

func decodeString(raw json.RawMessage) (string, error) {
	v, err := leaf(raw)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("got %s", jsonKind(v))
	}
	return s, nil
}

func decodeBool(raw json.RawMessage) (bool, error) {
	v, err := leaf(raw)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("got %s", jsonKind(v))
	}
	return b, nil
}

func decodeRaw(raw json.RawMessage) (json.RawMessage, error) {
	if !json.Valid(raw) {
		return nil, errors.New("invalid JSON")
	}
	return append(json.RawMessage(nil), bytes.TrimSpace(raw)...), nil
}
