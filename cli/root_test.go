package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the command line in an empty working directory so no .env or
// jsonreq.yaml from the package directory is picked up.
func run(t *testing.T, stdin io.Reader, args ...string) (string, string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	if stdin == nil {
		stdin = strings.NewReader("")
	}
	var stdout, stderr bytes.Buffer
	root := NewRootCommand("test", stdin, &stdout, &stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestCallPositionalAndNamed(t *testing.T) {
	for _, params := range []string{`[200]`, `{"x":200}`, `[200,null]`, `{"x":200,"y":null}`} {
		t.Run(params, func(t *testing.T) {
			out, _, err := run(t, nil, "call", params)
			require.NoError(t, err)
			assert.JSONEq(t, `{"result":2}`, out)
		})
	}
}

func TestCallReadsStdin(t *testing.T) {
	out, _, err := run(t, strings.NewReader(`{"x": 1230}`), "call")
	require.NoError(t, err)
	assert.JSONEq(t, `{"result":20}`, out)
}

func TestCallStateFlag(t *testing.T) {
	out, _, err := run(t, nil, "call", "--state-y", "10", "[205]")
	require.NoError(t, err)
	assert.JSONEq(t, `{"result":40}`, out)

	_, _, err = run(t, nil, "call", "--state-y", "0", "[205]")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "division by zero")
}

func TestCallStateFromEnvironment(t *testing.T) {
	t.Setenv("JSONREQ_STATE_Y", "50")
	out, _, err := run(t, nil, "call", "[200]")
	require.NoError(t, err)
	assert.JSONEq(t, `{"result":8}`, out)
}

func TestCallErrors(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"call", `["200"]`}, "invalid parameter x: expected integer"},
		{[]string{"call", `[1,2,3]`}, "parameter count mismatch"},
		{[]string{"call", `{"y":1}`}, "missing parameter: x"},
		{[]string{"call", `[1`}, "invalid JSON"},
		{[]string{"call", "--method", "nope", `[1]`}, `unknown method "nope"`},
		{[]string{"call", "--validate", `{"x":"a"}`}, "invalid parameters"},
		{[]string{"call", "--input", "xml", `[1]`}, "unknown format"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			_, _, err := run(t, nil, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCallYAMLAndCBOR(t *testing.T) {
	out, _, err := run(t, strings.NewReader("x: 200\n"), "call", "--input", "yaml", "--output", "yaml")
	require.NoError(t, err)
	assert.Equal(t, "result: 2\n", out)

	data, err := cbor.Marshal([]int{200})
	require.NoError(t, err)
	out, _, err = run(t, bytes.NewReader(data), "call", "-i", "cbor")
	require.NoError(t, err)
	assert.JSONEq(t, `{"result":2}`, out)
}

func TestCallFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"x": 246}`), 0o600))

	out, _, err := run(t, nil, "call", "-f", path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"result":4}`, out)
}

func TestDescribe(t *testing.T) {
	out, _, err := run(t, nil, "describe")
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"description": "Test request",
		"params": {
			"x": {"type_example": "integer", "description": "First integer parameter", "index": 0},
			"y": {"type_example": "integer reference", "description": "Second integer parameter", "index": 1}
		}
	}`, out)
}

func TestDescribeTable(t *testing.T) {
	out, _, err := run(t, nil, "describe", "--output", "table")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Test request\n"))
	assert.Contains(t, out, "integer reference")
	assert.Contains(t, out, "First integer parameter")
	assert.Less(t, strings.Index(out, "First integer parameter"), strings.Index(out, "Second integer parameter"))
}

func TestSchema(t *testing.T) {
	out, _, err := run(t, nil, "schema")
	require.NoError(t, err)
	var schema map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &schema))
	assert.Equal(t, []any{"x"}, schema["required"])
}

func TestRPC(t *testing.T) {
	body := `[
		{"jsonrpc":"2.0","method":"test_request","params":[200],"id":1},
		{"jsonrpc":"2.0","method":"test_request.help","id":2}
	]`
	out, _, err := run(t, strings.NewReader(body), "rpc")
	require.NoError(t, err)

	var resp []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, map[string]any{"result": float64(2)}, resp[0]["result"])
	help := resp[1]["result"].(map[string]any)
	assert.Equal(t, "Test request", help["description"])
}

func TestRPCNotificationWritesNothing(t *testing.T) {
	out, _, err := run(t, strings.NewReader(`{"jsonrpc":"2.0","method":"test_request","params":[1]}`), "rpc")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestDebugLogging(t *testing.T) {
	_, stderr, err := run(t, nil, "call", "--log-level", "debug", "--log-format", "json", "[200]")
	require.NoError(t, err)
	assert.Contains(t, stderr, `"message":"jsonrpc: invoke"`)
}

func TestCommandReuseFollowsConfig(t *testing.T) {
	t.Chdir(t.TempDir())
	var stdout bytes.Buffer
	root := NewRootCommand("test", strings.NewReader(""), &stdout, io.Discard)

	t.Setenv("JSONREQ_OUTPUT_FORMAT", "yaml")
	for _, args := range [][]string{{"describe"}, {"call", "[200]"}} {
		root.SetArgs(args)
		require.NoError(t, root.ExecuteContext(context.Background()))
	}
	assert.Contains(t, stdout.String(), "description: Test request\n")
	assert.Contains(t, stdout.String(), "result: 2\n")

	t.Setenv("JSONREQ_OUTPUT_FORMAT", "json")
	stdout.Reset()
	root.SetArgs([]string{"describe"})
	require.NoError(t, root.ExecuteContext(context.Background()))
	assert.True(t, json.Valid(stdout.Bytes()), stdout.String())

	stdout.Reset()
	root.SetArgs([]string{"call", "[200]"})
	require.NoError(t, root.ExecuteContext(context.Background()))
	assert.JSONEq(t, `{"result":2}`, stdout.String())
}
