package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiModel is a ChatModel backed by the Gemini API. It rotates through
// its API keys when a request fails, then reports the failure so the
// fallback invoker can move on.
type GeminiModel struct {
	apiKeys    []string
	currentKey int
	client     *genai.Client
	modelName  string
	mu         sync.Mutex
}

func NewGeminiModel(apiKeys []string, modelName string) (*GeminiModel, error) {
	if len(apiKeys) == 0 {
		return nil, errors.New("no API keys provided")
	}

	m := &GeminiModel{
		apiKeys:   apiKeys,
		modelName: modelName,
	}
	if err := m.initClient(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *GeminiModel) initClient() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(m.apiKeys[m.currentKey]))
	if err != nil {
		return err
	}
	m.client = client
	return nil
}

func (m *GeminiModel) rotateAPIKey() error {
	m.mu.Lock()
	m.currentKey = (m.currentKey + 1) % len(m.apiKeys)
	if err := m.client.Close(); err != nil {
		m.mu.Unlock()
		return err
	}
	m.mu.Unlock()
	return m.initClient()
}

func (m *GeminiModel) Name() string {
	return m.modelName
}

func (m *GeminiModel) snapshotClient() *genai.Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.client
}

// prepare builds a fully configured model plus the chat history and final
// prompt from the request. The retry after key rotation goes through it
// again so the rebuilt model keeps the system instruction and token cap.
func (m *GeminiModel) prepare(client *genai.Client, req CompletionRequest) (*genai.GenerativeModel, []*genai.Content, string) {
	model := client.GenerativeModel(m.modelName)
	if req.MaxTokens > 0 {
		tokens := int32(req.MaxTokens)
		model.MaxOutputTokens = &tokens
	}

	// Gemini takes the system instruction and prior turns separately.
	var history []*genai.Content
	var prompt string
	for i, msg := range req.Messages {
		if msg.Role == "system" {
			model.SystemInstruction = &genai.Content{
				Parts: []genai.Part{genai.Text(msg.Content)},
			}
			continue
		}
		if i == len(req.Messages)-1 {
			prompt = msg.Content
			continue
		}
		history = append(history, &genai.Content{
			Parts: []genai.Part{genai.Text(msg.Content)},
			Role:  toGeminiRole(msg.Role),
		})
	}
	return model, history, prompt
}

func (m *GeminiModel) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	model, history, prompt := m.prepare(m.snapshotClient(), req)
	chat := model.StartChat()
	chat.History = history

	resp, err := chat.SendMessage(ctx, genai.Text(prompt))
	if err != nil {
		// Try rotating API key if there's an error
		if rotateErr := m.rotateAPIKey(); rotateErr != nil {
			return "", fmt.Errorf("request failed (%v) and key rotation failed: %w", err, rotateErr)
		}
		model, history, prompt = m.prepare(m.snapshotClient(), req)
		chat = model.StartChat()
		chat.History = history
		resp, err = chat.SendMessage(ctx, genai.Text(prompt))
		if err != nil {
			return "", err
		}
	}

	if len(resp.Candidates) == 0 {
		return "", errors.New("no response generated")
	}

	content := ""
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if text, ok := part.(genai.Text); ok {
					content += string(text)
				}
			}
		}
	}
	return content, nil
}

func toGeminiRole(role string) string {
	if role == "assistant" {
		return "model"
	}
	return "user"
}

var _ ChatModel = (*GeminiModel)(nil)
