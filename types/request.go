package types

type SearchRequest struct {
	Query        string `json:"query"`
	DocumentType string `json:"document_type,omitempty"`
	Limit        int    `json:"limit,omitempty"`
}

type ImproveSectionRequest struct {
	SectionTitle string `json:"section_title"`
	Content      string `json:"content"`
	Instruction  string `json:"instruction,omitempty"`
}
