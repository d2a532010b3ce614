package types

// Message represents a single message in the conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Query       string    `json:"query"`
	FileID      string    `json:"file_id,omitempty"`
	ChatHistory []Message `json:"chat_history,omitempty"`
}

type ChatResponse struct {
	Response  string      `json:"response"`
	Context   ChatContext `json:"context"`
	FollowUps []string    `json:"follow_ups,omitempty"`
}

// ChatContext describes the retrieval that backed a chat answer.
type ChatContext struct {
	ChunksUsed      int     `json:"chunks_used"`
	TopChunkPreview string  `json:"top_chunk_preview,omitempty"`
	Confidence      float32 `json:"confidence"`
	IsPageSpecific  bool    `json:"is_page_specific"`
	TargetPage      int     `json:"target_page,omitempty"`
}
