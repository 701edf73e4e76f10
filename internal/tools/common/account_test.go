package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetAccountFromArgs(t *testing.T) {
	tests := []struct {
		name     string
		args     map[string]any
		expected string
	}{
		{name: "no account specified returns default", args: map[string]any{}, expected: "default"},
		{name: "account specified returns account", args: map[string]any{"account": "work"}, expected: "work"},
		{name: "empty account returns default", args: map[string]any{"account": ""}, expected: "default"},
		{name: "account with other params", args: map[string]any{"account": "personal", "other": "value"}, expected: "personal"},
		{name: "nil args returns default", args: nil, expected: "default"},
		{name: "non-string account type returns default", args: map[string]any{"account": 123}, expected: "default"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetAccountFromArgs(tt.args))
		})
	}
}
