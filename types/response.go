package types

type DataResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type UploadResponse struct {
	FileID       string       `json:"file_id"`
	FileName     string       `json:"file_name"`
	BlobURL      string       `json:"blob_url"`
	DocumentType DocumentType `json:"document_type"`
	TotalPages   int          `json:"total_pages"`
	SectionCount int          `json:"section_count"`
	ChunkCount   int          `json:"chunk_count"`
	Summary      string       `json:"summary"`
	Suggestions  []string     `json:"suggestions,omitempty"`
}

type ProcessingDocumentStatus struct {
	Status   string  `json:"status"`
	Message  string  `json:"message"`
	Stage    string  `json:"stage,omitempty"`
	Progress float64 `json:"progress,omitempty"`
}

// SearchResponse groups matches by file.
type SearchResponse struct {
	Groups []SearchGroup `json:"groups"`
}

type SearchGroup struct {
	FileID       string        `json:"file_id"`
	DocumentType DocumentType  `json:"document_type"`
	Matches      []SearchMatch `json:"matches"`
}

type SearchMatch struct {
	Content string  `json:"content"`
	Score   float32 `json:"score"`
	Section string  `json:"section,omitempty"`
}

type ImproveSectionResponse struct {
	SectionTitle string `json:"section_title"`
	Improved     string `json:"improved"`
}
