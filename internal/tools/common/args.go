package common

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// StringArg returns args[key] trimmed, or "" when absent or not a string.
func StringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return strings.TrimSpace(s)
}

// RequiredString returns args[key] or an error naming the argument.
func RequiredString(args map[string]any, key string) (string, error) {
	s := StringArg(args, key)
	if s == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return s, nil
}

// IntArg returns args[key] as an int. JSON numbers arrive as float64; numeric
// strings are accepted too.
func IntArg(args map[string]any, key string, def int) (int, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return def, nil
	}
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("%s must be a whole number", key)
		}
		return int(n), nil
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case string:
		if strings.TrimSpace(n) == "" {
			return def, nil
		}
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, fmt.Errorf("%s must be a number: %q", key, n)
		}
		return i, nil
	}
	return 0, fmt.Errorf("%s must be a number", key)
}

// BoolArg returns args[key] as a bool, accepting "true"/"false" strings.
func BoolArg(args map[string]any, key string, def bool) bool {
	switch b := args[key].(type) {
	case bool:
		return b
	case string:
		if v, err := strconv.ParseBool(b); err == nil {
			return v
		}
	}
	return def
}

// StringList returns args[key] as a list. It accepts a JSON array or a
// comma-separated string; blank entries are dropped.
func StringList(args map[string]any, key string) []string {
	var raw []string
	switch v := args[key].(type) {
	case []any:
		for _, item := range v {
			raw = append(raw, fmt.Sprint(item))
		}
	case []string:
		raw = v
	case string:
		raw = strings.Split(v, ",")
	}

	var out []string
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ObjectArg decodes args[key] into out. The value may be a JSON object or a
// string holding one. It reports whether the key was present.
func ObjectArg(args map[string]any, key string, out any) (bool, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return false, nil
	}
	var raw []byte
	if s, isString := v.(string); isString {
		if strings.TrimSpace(s) == "" {
			return false, nil
		}
		raw = []byte(s)
	} else {
		var err error
		if raw, err = json.Marshal(v); err != nil {
			return true, fmt.Errorf("invalid %s: %w", key, err)
		}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return true, fmt.Errorf("invalid %s: %w", key, err)
	}
	return true, nil
}

// JSONResult returns v as indented JSON text.
func JSONResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

// ErrorResult formats a tool error.
func ErrorResult(format string, a ...any) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf(format, a...))
}
