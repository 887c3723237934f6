package wire

import (
	"encoding/json"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", JSON, false},
		{"json", JSON, false},
		{"YAML", YAML, false},
		{"yml", YAML, false},
		{" cbor ", CBOR, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	got, err := Decode(JSON, []byte(" [200]\n"))
	require.NoError(t, err)
	assert.Equal(t, `[200]`, string(got))

	_, err = Decode(JSON, []byte(`[200`))
	assert.Error(t, err)
}

func TestDecodeYAML(t *testing.T) {
	got, err := Decode(YAML, []byte("x: 200\ny: null\n"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"x": 200, "y": null}`, string(got))

	got, err = Decode(YAML, []byte("- 200\n- nested:\n    1: one\n"))
	require.NoError(t, err)
	assert.JSONEq(t, `[200, {"nested": {"1": "one"}}]`, string(got))

	_, err = Decode(YAML, []byte("x: [unterminated"))
	assert.Error(t, err)
}

func TestDecodeCBOR(t *testing.T) {
	data, err := cbor.Marshal(map[string]any{"x": 200, "tags": []string{"a"}})
	require.NoError(t, err)

	got, err := Decode(CBOR, data)
	require.NoError(t, err)
	assert.JSONEq(t, `{"x": 200, "tags": ["a"]}`, string(got))

	data, err = cbor.Marshal([]any{200, nil})
	require.NoError(t, err)
	got, err = Decode(CBOR, data)
	require.NoError(t, err)
	assert.JSONEq(t, `[200, null]`, string(got))

	_, err = Decode(CBOR, []byte{0xff, 0x00})
	assert.Error(t, err)
}

type sample struct {
	Name  string          `json:"name"`
	Count int             `json:"count"`
	Raw   json.RawMessage `json:"raw"`
}

func TestEncode(t *testing.T) {
	v := sample{Name: "a<b", Count: 3, Raw: json.RawMessage(`{"k":[1,2]}`)}

	out, err := Encode(JSON, v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"a<b","count":3,"raw":{"k":[1,2]}}`, string(out))
	assert.Contains(t, string(out), "a<b", "HTML is not escaped")

	out, err = Encode(YAML, v)
	require.NoError(t, err)
	var y map[string]any
	require.NoError(t, yaml.Unmarshal(out, &y))
	assert.Equal(t, "a<b", y["name"])
	assert.Equal(t, 3, y["count"])
	assert.Equal(t, map[string]any{"k": []any{1, 2}}, y["raw"])

	out, err = Encode(CBOR, v)
	require.NoError(t, err)
	back, err := Decode(CBOR, out)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"a<b","count":3,"raw":{"k":[1,2]}}`, string(back))

	_, err = Encode(Format("xml"), v)
	assert.Error(t, err)
}
