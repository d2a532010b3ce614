package types

// DocumentType classifies an uploaded document by its content.
type DocumentType string

const (
	DocumentTypeResume        DocumentType = "resume"
	DocumentTypeInvoice       DocumentType = "invoice"
	DocumentTypeResearchPaper DocumentType = "research_paper"
	DocumentTypeContract      DocumentType = "contract"
	DocumentTypeGeneral       DocumentType = "general"
)

// Document is the structured representation of one uploaded file.
// It is built once after extraction and never mutated; a re-upload
// produces a new Document with a new file id.
type Document struct {
	FileID       string            `json:"file_id"`
	FileName     string            `json:"file_name"`
	DocumentType DocumentType      `json:"document_type"`
	Pages        []Page            `json:"pages"`
	Sections     []Section         `json:"sections"`
	Summary      string            `json:"summary"`
	Suggestions  []string          `json:"suggestions,omitempty"`
	Explanations map[string]string `json:"explanations,omitempty"`
}

// Page holds the extracted text of a single PDF page.
// PageNumber is 1-based and equals the page's position in Pages.
type Page struct {
	PageNumber int    `json:"page_number"`
	Text       string `json:"text"`
	WordCount  int    `json:"word_count"`
}

// Section is a heuristically detected titled region of the document.
type Section struct {
	Title   string   `json:"title"`
	Content []string `json:"content"`
}

// DocumentRecord is the registry entry persisted for each upload.
type DocumentRecord struct {
	FileID       string       `bson:"_id" json:"file_id"`
	FileName     string       `bson:"file_name" json:"file_name"`
	BlobURL      string       `bson:"blob_url" json:"blob_url"`
	DocumentType DocumentType `bson:"document_type" json:"document_type"`
	TotalPages   int          `bson:"total_pages" json:"total_pages"`
	SectionCount int          `bson:"section_count" json:"section_count"`
	ChunkCount   int          `bson:"chunk_count" json:"chunk_count"`
	Summary      string       `bson:"summary" json:"summary"`
	UploadedAt   int64        `bson:"uploaded_at" json:"uploaded_at"`
}
