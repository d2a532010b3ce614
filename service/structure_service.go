package service

import (
	"strings"
	"unicode"

	"github.com/tieubaoca/docchat-be/types"
)

const maxHeaderLength = 100

// classificationRule maps content keywords to a document type. Rules are
// evaluated in order; the first rule whose threshold of keywords appears
// in the text wins.
type classificationRule struct {
	docType  types.DocumentType
	keywords []string
	minHits  int
}

var classificationRules = []classificationRule{
	{
		docType:  types.DocumentTypeResume,
		keywords: []string{"work experience", "education", "skills", "objective", "curriculum vitae"},
		minHits:  2,
	},
	{
		docType:  types.DocumentTypeInvoice,
		keywords: []string{"invoice", "bill to", "total due", "payment terms", "amount due"},
		minHits:  2,
	},
	{
		docType:  types.DocumentTypeResearchPaper,
		keywords: []string{"abstract", "references", "methodology", "related work", "doi"},
		minHits:  2,
	},
	{
		docType:  types.DocumentTypeContract,
		keywords: []string{"agreement", "whereas", "party", "hereinafter", "terms and conditions"},
		minHits:  2,
	},
}

// StructureService derives document type and sections from extracted text.
// Both derivations are pure string heuristics.
type StructureService struct{}

func NewStructureService() *StructureService {
	return &StructureService{}
}

// ClassifyDocument picks a document type from the page text. Defaults to
// general when no rule matches.
func (s *StructureService) ClassifyDocument(pages []types.Page) types.DocumentType {
	var sb strings.Builder
	for _, page := range pages {
		sb.WriteString(strings.ToLower(page.Text))
		sb.WriteString("\n")
	}
	text := sb.String()

	for _, rule := range classificationRules {
		hits := 0
		for _, keyword := range rule.keywords {
			if strings.Contains(text, keyword) {
				hits++
			}
		}
		if hits >= rule.minHits {
			return rule.docType
		}
	}
	return types.DocumentTypeGeneral
}

// DetectSections splits the document lines into titled sections. A line is
// a header candidate when it is shorter than 100 characters and either
// all-uppercase or Title-Case on every word; non-header lines accumulate
// into the current section until the next header or end of document.
func (s *StructureService) DetectSections(pages []types.Page) []types.Section {
	var sections []types.Section
	var current *types.Section

	for _, page := range pages {
		for _, line := range strings.Split(page.Text, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}

			if IsHeaderCandidate(line) {
				if current != nil && len(current.Content) > 0 {
					sections = append(sections, *current)
				}
				current = &types.Section{Title: line}
				continue
			}

			if current == nil {
				// Content before the first header falls into an untitled lead section.
				current = &types.Section{Title: "Introduction"}
			}
			current.Content = append(current.Content, line)
		}
	}

	if current != nil && len(current.Content) > 0 {
		sections = append(sections, *current)
	}
	return sections
}

// IsHeaderCandidate applies the header heuristic to a single line.
func IsHeaderCandidate(line string) bool {
	if len(line) == 0 || len(line) >= maxHeaderLength {
		return false
	}
	return isAllUpper(line) || isTitleCase(line)
}

func isAllUpper(line string) bool {
	hasLetter := false
	for _, r := range line {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}

func isTitleCase(line string) bool {
	words := strings.Fields(line)
	if len(words) == 0 {
		return false
	}
	for _, word := range words {
		first := []rune(word)[0]
		if unicode.IsLetter(first) && !unicode.IsUpper(first) {
			return false
		}
	}
	return true
}
