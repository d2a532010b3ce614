package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	assert.Equal(t, "hello world", cleanText("hello\u0000  world"))
	assert.Equal(t, "line one\nline two", cleanText("line one\fline two\r"))
	assert.Equal(t, "no control chars", cleanText("no\u001b  control chars\ufffd"))
	assert.Equal(t, "trimmed", cleanText("  trimmed \n"))
}

func TestCleanTextReplacementOrder(t *testing.T) {
	// Removing the carriage return leaves a double space that the final
	// collapse must still catch.
	assert.Equal(t, "a b", cleanText("a \r b"))
}
