package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/docchat-be/types"
)

func TestClassifyDocument(t *testing.T) {
	structure := NewStructureService()

	tests := []struct {
		name string
		text string
		want types.DocumentType
	}{
		{
			name: "resume",
			text: "Work Experience\nEducation\nSkills: Go, SQL",
			want: types.DocumentTypeResume,
		},
		{
			name: "invoice",
			text: "INVOICE #42\nBill To: ACME Corp\nTotal Due: $100",
			want: types.DocumentTypeInvoice,
		},
		{
			name: "research paper",
			text: "Abstract\nWe present...\nReferences\n[1] Someone et al.",
			want: types.DocumentTypeResearchPaper,
		},
		{
			name: "contract",
			text: "This Agreement is made between Party A and Party B, hereinafter the Parties.",
			want: types.DocumentTypeContract,
		},
		{
			name: "single keyword is not enough",
			text: "Here is an invoice I mentioned in passing.",
			want: types.DocumentTypeGeneral,
		},
		{
			name: "no keywords",
			text: "Just some prose about nothing in particular.",
			want: types.DocumentTypeGeneral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pages := []types.Page{{PageNumber: 1, Text: tt.text}}
			assert.Equal(t, tt.want, structure.ClassifyDocument(pages))
		})
	}
}

func TestClassifyDocumentSpansPages(t *testing.T) {
	structure := NewStructureService()
	pages := []types.Page{
		{PageNumber: 1, Text: "Work Experience at some company"},
		{PageNumber: 2, Text: "Education: some university"},
	}
	assert.Equal(t, types.DocumentTypeResume, structure.ClassifyDocument(pages))
}

func TestIsHeaderCandidate(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"INTRODUCTION", true},
		{"Work Experience", true},
		{"1. Background", true},
		{"this is a normal sentence of body text", false},
		{"Mixed Case but one lowercase word", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsHeaderCandidate(tt.line), "line: %q", tt.line)
	}

	long := strings.Repeat("Very Long Title ", 10)
	assert.False(t, IsHeaderCandidate(long), "title-case lines over the length cap are body text")
}

func TestDetectSections(t *testing.T) {
	structure := NewStructureService()
	pages := []types.Page{
		{PageNumber: 1, Text: "ABSTRACT\nWe study things.\nIt matters.\n\nMETHODS\nWe did experiments."},
		{PageNumber: 2, Text: "More experiments here."},
	}

	sections := structure.DetectSections(pages)
	require.Len(t, sections, 2)

	assert.Equal(t, "ABSTRACT", sections[0].Title)
	assert.Equal(t, []string{"We study things.", "It matters."}, sections[0].Content)

	assert.Equal(t, "METHODS", sections[1].Title)
	// Section content crosses the page boundary.
	assert.Equal(t, []string{"We did experiments.", "More experiments here."}, sections[1].Content)
}

func TestDetectSectionsLeadContent(t *testing.T) {
	structure := NewStructureService()
	pages := []types.Page{
		{PageNumber: 1, Text: "some preamble text before any header\nOVERVIEW\nthe actual overview"},
	}

	sections := structure.DetectSections(pages)
	require.Len(t, sections, 2)
	assert.Equal(t, "Introduction", sections[0].Title)
	assert.Equal(t, []string{"some preamble text before any header"}, sections[0].Content)
	assert.Equal(t, "OVERVIEW", sections[1].Title)
}

func TestDetectSectionsEmptyHeaderDropped(t *testing.T) {
	structure := NewStructureService()
	pages := []types.Page{
		{PageNumber: 1, Text: "EMPTY HEADER\nANOTHER HEADER\ncontent under the second"},
	}

	sections := structure.DetectSections(pages)
	require.Len(t, sections, 1)
	assert.Equal(t, "ANOTHER HEADER", sections[0].Title)
}
