package types

// SourceKind identifies which part of a document a chunk was derived from.
type SourceKind string

const (
	SourceDocumentInfo   SourceKind = "document_info"
	SourcePageContent    SourceKind = "page_content"
	SourceSectionContent SourceKind = "section_content"
	SourceSuggestions    SourceKind = "suggestions"
	SourceExplanations   SourceKind = "explanations"
)

// Chunk is one retrievable unit of document content. Content always starts
// with a human-readable locator ("Page 3 (Part 2): ...") so the origin can
// be reconstructed from the chunk alone.
type Chunk struct {
	Content  string        `json:"content"`
	Metadata ChunkMetadata `json:"metadata"`
}

// ChunkMetadata carries everything needed to locate and filter a chunk.
type ChunkMetadata struct {
	SourceKind   SourceKind   `json:"source_kind"`
	FileID       string       `json:"file_id"`
	DocumentType DocumentType `json:"document_type"`
	PageNumber   int          `json:"page_number,omitempty"`
	PageIndex    int          `json:"page_index,omitempty"`
	SectionTitle string       `json:"section_title,omitempty"`
	SectionIndex int          `json:"section_index,omitempty"`
	ChunkType    string       `json:"chunk_type,omitempty"`
	ChunkPart    int          `json:"chunk_part,omitempty"`
	WordCount    int          `json:"word_count"`
	// StartWordIndex is the offset of the chunk's first word within the
	// unit it was split from. Zero for unsplit chunks.
	StartWordIndex int `json:"start_word_index,omitempty"`
}

// EmbeddedChunk pairs a chunk with its vector, ready for indexing.
type EmbeddedChunk struct {
	ID        string    `json:"id"`
	Chunk     Chunk     `json:"chunk"`
	Embedding []float32 `json:"embedding"`
}

// ScoredChunk is a retrieval result. Score is cosine similarity for
// vector searches and fixed at 1.0 for membership (file/page) searches.
type ScoredChunk struct {
	ID       string        `json:"id"`
	Score    float32       `json:"score"`
	Content  string        `json:"content"`
	Metadata ChunkMetadata `json:"metadata"`
}

// IndexStats reports the state of the vector collection.
type IndexStats struct {
	PointCount      int64  `json:"point_count"`
	VectorDimension int    `json:"vector_dimension"`
	CollectionName  string `json:"collection_name"`
}
