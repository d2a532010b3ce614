package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tieubaoca/docchat-be/types"
)

const (
	chatTimeout      = 30 * time.Second
	chatMaxTokens    = 500
	followUpTimeout  = 20 * time.Second
	followUpTokens   = 300
	historyWindow    = 5
	chunkPreviewSize = 200
)

var systemInstruction = types.Message{
	Role: "system",
	Content: "You are a document assistant. Answer questions using only the provided document context. " +
		"If the context does not contain the answer, say so instead of guessing. Cite page numbers when they appear in the context.",
}

// ChatService answers questions about indexed documents: it routes the
// query to a retrieval strategy, assembles the retrieved chunks into a
// context block, and runs the model fallback sequence.
type ChatService struct {
	router  *RouterService
	invoker *FallbackInvoker
	log     *logrus.Entry
}

func NewChatService(router *RouterService, invoker *FallbackInvoker) *ChatService {
	return &ChatService{
		router:  router,
		invoker: invoker,
		log:     logrus.WithField("component", "chat_service"),
	}
}

func (s *ChatService) Chat(ctx context.Context, req types.ChatRequest) (*types.ChatResponse, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, types.ErrEmptyQuery
	}

	retrieval, err := s.router.Retrieve(ctx, req.Query, req.FileID)
	if err != nil {
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}

	// Defined terminal: nothing indexed for the requested page. Answer
	// directly, never let the model invent page content.
	if retrieval.NoPageContent {
		return &types.ChatResponse{
			Response: fmt.Sprintf("There is no content on page %d of this document.", retrieval.Classification.PageNumber),
			Context: types.ChatContext{
				IsPageSpecific: true,
				TargetPage:     retrieval.Classification.PageNumber,
			},
		}, nil
	}

	messages := s.buildMessages(req, retrieval)
	answer, err := s.invoker.Invoke(ctx, CompletionRequest{
		Messages:  messages,
		MaxTokens: chatMaxTokens,
	}, chatTimeout, TerminalError)
	if err != nil {
		return nil, err
	}

	response := &types.ChatResponse{
		Response: answer,
		Context:  buildChatContext(retrieval),
	}
	response.FollowUps = s.generateFollowUps(ctx, req.Query, answer)
	return response, nil
}

func (s *ChatService) buildMessages(req types.ChatRequest, retrieval *RetrievalResult) []types.Message {
	messages := make([]types.Message, 0, historyWindow+2)
	messages = append(messages, systemInstruction)

	history := req.ChatHistory
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	messages = append(messages, history...)

	userTurn := fmt.Sprintf("%s\n\n%s", req.Query, BuildContextBlock(retrieval.Chunks, retrieval.Classification))
	messages = append(messages, types.Message{Role: "user", Content: userTurn})
	return messages
}

// BuildContextBlock enumerates retrieved chunks under a preamble naming
// their origin.
func BuildContextBlock(chunks []types.ScoredChunk, classification PageClassification) string {
	if len(chunks) == 0 {
		return "No relevant information was found in the document."
	}

	var sb strings.Builder
	if classification.IsPageSpecific {
		sb.WriteString(fmt.Sprintf("Based on the following information from page %d:\n\n", classification.PageNumber))
	} else {
		sb.WriteString("Based on the following information from the document:\n\n")
	}
	for i, chunk := range chunks {
		sb.WriteString(fmt.Sprintf("%d. %s\n\n", i+1, chunk.Content))
	}
	return sb.String()
}

func buildChatContext(retrieval *RetrievalResult) types.ChatContext {
	chatContext := types.ChatContext{
		ChunksUsed:     len(retrieval.Chunks),
		IsPageSpecific: retrieval.Classification.IsPageSpecific,
		TargetPage:     retrieval.Classification.PageNumber,
	}
	if len(retrieval.Chunks) > 0 {
		chatContext.TopChunkPreview = truncateString(retrieval.Chunks[0].Content, chunkPreviewSize)
		chatContext.Confidence = retrieval.Chunks[0].Score
	}
	return chatContext
}

// generateFollowUps asks the fallback sequence for follow-up questions.
// Non-critical: every failure path yields no follow-ups, never an error.
func (s *ChatService) generateFollowUps(ctx context.Context, query, answer string) []string {
	prompt := fmt.Sprintf(
		"The user asked: %q\nThe assistant answered: %q\n\nSuggest 3 short follow-up questions the user might ask next. Return one question per line, no numbering.",
		query, answer,
	)
	raw, err := s.invoker.Invoke(ctx, CompletionRequest{
		Messages:  []types.Message{{Role: "user", Content: prompt}},
		MaxTokens: followUpTokens,
	}, followUpTimeout, TerminalEmpty)
	if err != nil || raw == "" {
		return nil
	}

	var followUps []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "-•*0123456789. "))
		if line != "" {
			followUps = append(followUps, line)
		}
	}
	if len(followUps) > 3 {
		followUps = followUps[:3]
	}
	return followUps
}

// Helper function to truncate long strings for previews
func truncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	return s[:maxLength] + "..."
}
