package service

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/tieubaoca/docchat-be/config"
	"github.com/tieubaoca/docchat-be/types"
)

// ChunkService converts a structured document into the ordered chunk
// sequence that gets embedded and indexed. Pure transformation, no I/O.
type ChunkService struct {
	maxChunkSize int // Maximum words per chunk
	overlapSize  int // Words shared between adjacent parts of a split unit
}

var DefaultChunkingConfig = config.ChunkingConfig{
	MaxChunkSize: 512,
	OverlapSize:  50,
}

func NewChunkService(cfg config.ChunkingConfig) *ChunkService {
	return &ChunkService{
		maxChunkSize: cfg.MaxChunkSize,
		overlapSize:  cfg.OverlapSize,
	}
}

// BuildChunks emits chunks in a fixed order: one document-info chunk, page
// chunks in page order, section chunks in section order, then suggestion
// and explanation chunks. Re-running on the same document yields the same
// sequence.
func (s *ChunkService) BuildChunks(doc *types.Document) []types.Chunk {
	var chunks []types.Chunk

	chunks = append(chunks, s.buildDocumentInfoChunk(doc))

	for i, page := range doc.Pages {
		if strings.TrimSpace(page.Text) == "" {
			continue
		}
		locator := fmt.Sprintf("Page %d", page.PageNumber)
		base := types.ChunkMetadata{
			SourceKind:   types.SourcePageContent,
			FileID:       doc.FileID,
			DocumentType: doc.DocumentType,
			PageNumber:   page.PageNumber,
			PageIndex:    i,
			ChunkType:    "page",
		}
		chunks = append(chunks, s.splitUnit(page.Text, locator, base)...)
	}

	for i, section := range doc.Sections {
		content := strings.Join(section.Content, "\n")
		if strings.TrimSpace(content) == "" {
			continue
		}
		base := types.ChunkMetadata{
			SourceKind:   types.SourceSectionContent,
			FileID:       doc.FileID,
			DocumentType: doc.DocumentType,
			SectionTitle: section.Title,
			SectionIndex: i,
			ChunkType:    "section",
		}
		chunks = append(chunks, s.splitUnit(content, section.Title, base)...)
	}

	if len(doc.Suggestions) > 0 {
		content := "Suggestions: " + strings.Join(doc.Suggestions, ". ")
		chunks = append(chunks, types.Chunk{
			Content: content,
			Metadata: types.ChunkMetadata{
				SourceKind:   types.SourceSuggestions,
				FileID:       doc.FileID,
				DocumentType: doc.DocumentType,
				ChunkType:    "suggestions",
				WordCount:    len(strings.Fields(content)),
			},
		})
	}

	for _, key := range sortedKeys(doc.Explanations) {
		content := fmt.Sprintf("%s: %s", capitalize(key), doc.Explanations[key])
		chunks = append(chunks, types.Chunk{
			Content: content,
			Metadata: types.ChunkMetadata{
				SourceKind:   types.SourceExplanations,
				FileID:       doc.FileID,
				DocumentType: doc.DocumentType,
				ChunkType:    "explanation",
				WordCount:    len(strings.Fields(content)),
			},
		})
	}

	return chunks
}

func (s *ChunkService) buildDocumentInfoChunk(doc *types.Document) types.Chunk {
	content := fmt.Sprintf(
		"Document overview: This is a %s document with %d pages and %d sections. Summary: %s",
		doc.DocumentType, len(doc.Pages), len(doc.Sections), doc.Summary,
	)
	return types.Chunk{
		Content: content,
		Metadata: types.ChunkMetadata{
			SourceKind:   types.SourceDocumentInfo,
			FileID:       doc.FileID,
			DocumentType: doc.DocumentType,
			ChunkType:    "document_info",
			WordCount:    len(strings.Fields(content)),
		},
	}
}

// splitUnit tokenizes content on whitespace and emits one chunk when it
// fits, otherwise overlapping parts. Every part except the last holds
// exactly maxChunkSize words; adjacent parts share overlapSize words.
func (s *ChunkService) splitUnit(content, locator string, base types.ChunkMetadata) []types.Chunk {
	words := strings.Fields(content)
	n := len(words)
	if n == 0 {
		return nil
	}

	if n <= s.maxChunkSize {
		md := base
		md.WordCount = n
		return []types.Chunk{{
			Content:  fmt.Sprintf("%s: %s", locator, strings.Join(words, " ")),
			Metadata: md,
		}}
	}

	step := s.maxChunkSize - s.overlapSize
	var chunks []types.Chunk
	for i := 0; i < n; i += step {
		end := i + s.maxChunkSize
		if end > n {
			end = n
		}
		part := i/step + 1

		md := base
		md.ChunkPart = part
		md.StartWordIndex = i
		md.WordCount = end - i
		chunks = append(chunks, types.Chunk{
			Content:  fmt.Sprintf("%s (Part %d): %s", locator, part, strings.Join(words[i:end], " ")),
			Metadata: md,
		})
	}
	return chunks
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func capitalize(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
