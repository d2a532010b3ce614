package service

import (
	"context"
	"errors"

	"github.com/sashabaranov/go-openai"
)

// OpenAIModel adapts one model name on an OpenAI-compatible endpoint to
// the ChatModel interface. Several instances share one client.
type OpenAIModel struct {
	client *openai.Client
	model  string
}

func NewOpenAIClient(baseURL, apiKey string) *openai.Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL // Set this to your local LLM server URL
	}
	return openai.NewClientWithConfig(config)
}

func NewOpenAIModel(client *openai.Client, model string) *OpenAIModel {
	return &OpenAIModel{
		client: client,
		model:  model,
	}
}

func (m *OpenAIModel) Name() string {
	return m.model
}

func (m *OpenAIModel) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	openaiMessages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, msg := range req.Messages {
		openaiMessages = append(openaiMessages, openai.ChatCompletionMessage{
			Role:    toOpenAIRole(msg.Role),
			Content: msg.Content,
		})
	}

	resp, err := m.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Messages:    openaiMessages,
			Model:       m.model,
			MaxTokens:   req.MaxTokens,
			Temperature: req.Temperature,
		},
	)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no response generated")
	}

	return resp.Choices[0].Message.Content, nil
}

func toOpenAIRole(role string) string {
	switch role {
	case "system":
		return openai.ChatMessageRoleSystem
	case "assistant":
		return openai.ChatMessageRoleAssistant
	default:
		return openai.ChatMessageRoleUser
	}
}

var _ ChatModel = (*OpenAIModel)(nil)
