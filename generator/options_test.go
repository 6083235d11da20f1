package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPromptWithoutPrefix(t *testing.T) {
	options := NewOptions()

	assert.Equal(t, "hello", options.Prompt("hello"))
}

func TestPromptWithPrefix(t *testing.T) {
	options := NewOptions(WithPromptPrefix("You are terse."))

	assert.Equal(t, "You are terse.\nhello", options.Prompt("hello"))
}

func TestMaxTokensDefault(t *testing.T) {
	options := NewOptions()
	assert.Equal(t, 1024, options.MaxTokens)

	options = NewOptions(WithMaxTokens(256))
	assert.Equal(t, 256, options.MaxTokens)
}
