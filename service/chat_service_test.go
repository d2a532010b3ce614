package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/docchat-be/types"
)

func newTestChatService(index *fakeIndex, models ...ChatModel) *ChatService {
	router := NewRouterService(index, NewEmbeddingPipeline(&fakeEmbedder{dimension: 3}, 5))
	return NewChatService(router, NewFallbackInvoker(models))
}

func TestChatEmptyQuery(t *testing.T) {
	chat := newTestChatService(&fakeIndex{}, &fakeModel{name: "m", content: "x"})

	_, err := chat.Chat(context.Background(), types.ChatRequest{Query: "   "})
	assert.ErrorIs(t, err, types.ErrEmptyQuery)
}

func TestChatEmptyPageAnswersWithoutModel(t *testing.T) {
	model := &fakeModel{name: "m", content: "should not be used"}
	chat := newTestChatService(&fakeIndex{chunks: map[string][]types.ScoredChunk{}}, model)

	response, err := chat.Chat(context.Background(), types.ChatRequest{
		Query:  "what is on page 4?",
		FileID: "file-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "There is no content on page 4 of this document.", response.Response)
	assert.True(t, response.Context.IsPageSpecific)
	assert.Equal(t, 4, response.Context.TargetPage)
	assert.Equal(t, int32(0), model.calls.Load(), "model must not be invoked for an empty page")
}

func TestChatUsesRetrievedContext(t *testing.T) {
	index := &fakeIndex{
		similar: []types.ScoredChunk{
			{Content: "Page 1: the sky is blue", Score: 0.87},
			{Content: "Page 2: water is wet", Score: 0.61},
		},
	}
	model := &fakeModel{name: "m", content: "the answer"}
	chat := newTestChatService(index, model)

	response, err := chat.Chat(context.Background(), types.ChatRequest{Query: "what color is the sky?"})
	require.NoError(t, err)
	assert.Equal(t, "the answer", response.Response)
	assert.Equal(t, 2, response.Context.ChunksUsed)
	assert.Equal(t, float32(0.87), response.Context.Confidence)
	assert.Equal(t, "Page 1: the sky is blue", response.Context.TopChunkPreview)
}

func TestBuildMessagesHistoryWindow(t *testing.T) {
	chat := newTestChatService(&fakeIndex{})

	history := make([]types.Message, 8)
	for i := range history {
		history[i] = types.Message{Role: "user", Content: fmt.Sprintf("turn %d", i)}
	}
	messages := chat.buildMessages(types.ChatRequest{
		Query:       "latest question",
		ChatHistory: history,
	}, &RetrievalResult{})

	// system + last 5 history turns + current user turn
	require.Len(t, messages, 7)
	assert.Equal(t, "system", messages[0].Role)
	assert.Equal(t, "turn 3", messages[1].Content)
	assert.Equal(t, "turn 7", messages[5].Content)
	assert.Contains(t, messages[6].Content, "latest question")
}

func TestBuildContextBlock(t *testing.T) {
	chunks := []types.ScoredChunk{
		{Content: "Page 2: first fact"},
		{Content: "Page 2: second fact"},
	}

	block := BuildContextBlock(chunks, PageClassification{IsPageSpecific: true, PageNumber: 2})
	assert.Contains(t, block, "Based on the following information from page 2:")
	assert.Contains(t, block, "1. Page 2: first fact")
	assert.Contains(t, block, "2. Page 2: second fact")

	block = BuildContextBlock(chunks, PageClassification{})
	assert.Contains(t, block, "Based on the following information from the document:")

	assert.Equal(t, "No relevant information was found in the document.", BuildContextBlock(nil, PageClassification{}))
}

func TestChatFollowUpsParsed(t *testing.T) {
	index := &fakeIndex{
		similar: []types.ScoredChunk{{Content: "Page 1: context", Score: 0.9}},
	}
	// The same model serves both the answer and the follow-up prompt.
	model := &fakeModel{name: "m", content: "- What about X?\n2. What about Y?\n\nWhat about Z?\nWhat about W?"}
	chat := newTestChatService(index, model)

	response, err := chat.Chat(context.Background(), types.ChatRequest{Query: "anything"})
	require.NoError(t, err)
	require.Len(t, response.FollowUps, 3, "follow-ups are capped at 3")
	assert.Equal(t, "What about X?", response.FollowUps[0])
	assert.Equal(t, "What about Y?", response.FollowUps[1])
}

func TestChatFollowUpFailureIsNotFatal(t *testing.T) {
	index := &fakeIndex{
		similar: []types.ScoredChunk{{Content: "Page 1: context", Score: 0.9}},
	}
	// First call answers, second call (follow-ups) times out.
	model := &slowSecondCallModel{answer: "the answer"}
	chat := newTestChatService(index, model)

	response, err := chat.Chat(context.Background(), types.ChatRequest{Query: "anything"})
	require.NoError(t, err)
	assert.Equal(t, "the answer", response.Response)
	assert.Empty(t, response.FollowUps)
}

// slowSecondCallModel answers once, then errors on every later call.
type slowSecondCallModel struct {
	answer string
	calls  int
}

func (m *slowSecondCallModel) Name() string { return "slow-second" }

func (m *slowSecondCallModel) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	m.calls++
	if m.calls == 1 {
		return m.answer, nil
	}
	return "", fmt.Errorf("unavailable")
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", truncateString("short", 10))
	assert.Equal(t, "abcde...", truncateString("abcdefgh", 5))
}

func TestChatPropagatesModelFailure(t *testing.T) {
	index := &fakeIndex{
		similar: []types.ScoredChunk{{Content: "Page 1: context", Score: 0.9}},
	}
	model := &fakeModel{name: "m", err: fmt.Errorf("down"), delay: 0}
	chat := newTestChatService(index, model)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := chat.Chat(ctx, types.ChatRequest{Query: "anything"})
	assert.ErrorIs(t, err, types.ErrAllModelsFailed)
}
