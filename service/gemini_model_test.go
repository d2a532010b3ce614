package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/docchat-be/types"
)

func TestGeminiPrepareKeepsConfigAcrossRotation(t *testing.T) {
	model, err := NewGeminiModel([]string{"key-a", "key-b"}, "gemini-test")
	require.NoError(t, err)

	req := CompletionRequest{
		Messages: []types.Message{
			{Role: "system", Content: "be terse"},
			{Role: "user", Content: "hi"},
			{Role: "assistant", Content: "hello"},
			{Role: "user", Content: "the question"},
		},
		MaxTokens: 123,
	}

	gm, history, prompt := model.prepare(model.snapshotClient(), req)
	require.NotNil(t, gm.SystemInstruction)
	require.NotNil(t, gm.MaxOutputTokens)
	assert.Equal(t, int32(123), *gm.MaxOutputTokens)
	assert.Equal(t, "the question", prompt)
	require.Len(t, history, 2)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "model", history[1].Role)

	// The rebuilt model after key rotation carries the same system
	// instruction and token cap.
	require.NoError(t, model.rotateAPIKey())
	rotated, _, _ := model.prepare(model.snapshotClient(), req)
	require.NotNil(t, rotated.SystemInstruction)
	require.NotNil(t, rotated.MaxOutputTokens)
	assert.Equal(t, int32(123), *rotated.MaxOutputTokens)
}

func TestGeminiPrepareWithoutSystemMessage(t *testing.T) {
	model, err := NewGeminiModel([]string{"key-a"}, "gemini-test")
	require.NoError(t, err)

	gm, history, prompt := model.prepare(model.snapshotClient(), CompletionRequest{
		Messages: []types.Message{{Role: "user", Content: "only question"}},
	})
	assert.Nil(t, gm.SystemInstruction)
	assert.Nil(t, gm.MaxOutputTokens)
	assert.Empty(t, history)
	assert.Equal(t, "only question", prompt)
}

func TestNewGeminiModelRequiresKeys(t *testing.T) {
	_, err := NewGeminiModel(nil, "gemini-test")
	assert.Error(t, err)
}

func TestToGeminiRole(t *testing.T) {
	assert.Equal(t, "model", toGeminiRole("assistant"))
	assert.Equal(t, "user", toGeminiRole("user"))
	assert.Equal(t, "user", toGeminiRole("anything-else"))
}
