package common

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAccountFromArgs(t *testing.T) {
	tests := []struct {
		name     string
		args     map[string]interface{}
		expected string
	}{
		{name: "no account specified", args: map[string]interface{}{}, expected: ""},
		{name: "account specified", args: map[string]interface{}{"account": "897362094"}, expected: "897362094"},
		{name: "leading slash stripped", args: map[string]interface{}{"account": "/897362094"}, expected: "897362094"},
		{name: "blank account", args: map[string]interface{}{"account": "  "}, expected: ""},
		{name: "nil args", args: nil, expected: ""},
		{name: "non-string account type", args: map[string]interface{}{"account": 123}, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetAccountFromArgs(tt.args))
		})
	}
}

func TestResolveAccount(t *testing.T) {
	sc := newTestServerContext(t)
	ctx := context.Background()

	slug, err := ResolveAccount(ctx, sc, map[string]interface{}{"account": "/111"})
	require.NoError(t, err)
	assert.Equal(t, "111", slug)

	// explicit resolution leaves no session behind
	assert.Equal(t, "", accountLabel(sc, nil))

	slug, err = ResolveAccount(ctx, sc, nil)
	require.NoError(t, err)
	assert.Equal(t, "897362094", slug)
	assert.Equal(t, "897362094", accountLabel(sc, nil))
	assert.Equal(t, "222", accountLabel(sc, map[string]interface{}{"account": "222"}))
}
