package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptFingerprint(t *testing.T) {
	a := PromptFingerprint("a fox runs through snow")
	b := PromptFingerprint("a fox runs through snow")
	c := PromptFingerprint("a fox runs through rain")

	assert.Len(t, a, 16)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)

	// The prompt text itself must not appear in the fingerprint.
	assert.NotContains(t, a, "fox")
}

func TestDecodeJSON(t *testing.T) {
	var out struct {
		Name string `json:"name"`
	}
	require.NoError(t, DecodeJSON(strings.NewReader(`{"name":"scene-1"}`), &out))
	assert.Equal(t, "scene-1", out.Name)
}
