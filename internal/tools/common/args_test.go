package common

import (
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringArgs(t *testing.T) {
	args := map[string]any{"title": "  Report ", "n": 3.0}

	assert.Equal(t, "Report", StringArg(args, "title"))
	assert.Equal(t, "", StringArg(args, "n"))

	v, err := RequiredString(args, "title")
	require.NoError(t, err)
	assert.Equal(t, "Report", v)

	_, err = RequiredString(args, "missing")
	assert.EqualError(t, err, "missing is required")
}

func TestIntArg(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		want    int
		wantErr bool
	}{
		{name: "absent uses default", value: nil, want: 7},
		{name: "json number", value: 25.0, want: 25},
		{name: "int", value: 4, want: 4},
		{name: "numeric string", value: " 12 ", want: 12},
		{name: "blank string uses default", value: "", want: 7},
		{name: "fraction", value: 2.5, wantErr: true},
		{name: "word", value: "ten", wantErr: true},
		{name: "bool", value: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := map[string]any{}
			if tt.value != nil {
				args["limit"] = tt.value
			}
			got, err := IntArg(args, "limit", 7)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBoolArg(t *testing.T) {
	assert.True(t, BoolArg(map[string]any{"x": true}, "x", false))
	assert.True(t, BoolArg(map[string]any{"x": "true"}, "x", false))
	assert.False(t, BoolArg(map[string]any{"x": "nope"}, "x", false))
	assert.True(t, BoolArg(map[string]any{}, "x", true))
}

func TestStringList(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  []string
	}{
		{name: "absent", value: nil, want: nil},
		{name: "comma separated", value: "a@example.com, b@example.com,", want: []string{"a@example.com", "b@example.com"}},
		{name: "json array", value: []any{"x", " y ", ""}, want: []string{"x", "y"}},
		{name: "string slice", value: []string{"one"}, want: []string{"one"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StringList(map[string]any{"list": tt.value}, "list"))
		})
	}
}

func TestObjectArg(t *testing.T) {
	var out map[string]any

	ok, err := ObjectArg(map[string]any{"data": map[string]any{"Status": "done"}}, "data", &out)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "done", out["Status"])

	out = nil
	ok, err = ObjectArg(map[string]any{"data": `{"Amount": 5}`}, "data", &out)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 5.0, out["Amount"])

	ok, err = ObjectArg(map[string]any{}, "data", &out)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = ObjectArg(map[string]any{"data": "{broken"}, "data", &out)
	assert.ErrorContains(t, err, "invalid data")
}

func TestJSONResult(t *testing.T) {
	result, err := JSONResult(map[string]int{"rows": 2})
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, "{\n  \"rows\": 2\n}", result.Content[0].(mcp.TextContent).Text)

	result = ErrorResult("failed: %d", 3)
	assert.True(t, result.IsError)
	assert.Equal(t, "failed: 3", resultText(result))
}
