package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/sirupsen/logrus"
	"github.com/tieubaoca/docchat-be/types"
)

// ParserService extracts per-page text from PDF binaries.
type ParserService struct {
	log *logrus.Entry
}

func NewParserService() *ParserService {
	return &ParserService{
		log: logrus.WithField("component", "parser_service"),
	}
}

// Parse reads a PDF and returns one Page per source page, in source order.
// A page that fails extraction is kept with empty text so page numbering
// stays contiguous.
func (s *ParserService) Parse(ctx context.Context, data []byte) ([]types.Page, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	totalPages := reader.NumPage()
	if totalPages == 0 {
		return nil, fmt.Errorf("PDF has no pages")
	}
	s.log.WithField("total_pages", totalPages).Info("parsing PDF")

	pages := make([]types.Page, 0, totalPages)
	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text := ""
		page := reader.Page(pageNum)
		if !page.V.IsNull() {
			raw, err := page.GetPlainText(nil)
			if err != nil {
				s.log.WithField("page", pageNum).Warnf("failed to extract text: %v", err)
			} else {
				text = cleanText(raw)
			}
		}

		pages = append(pages, types.Page{
			PageNumber: pageNum,
			Text:       text,
			WordCount:  len(strings.Fields(text)),
		})
	}

	return pages, nil
}

// textReplacements run in declaration order; the space collapse comes
// last so it sees the output of the control-character removals.
var textReplacements = []struct {
	old string
	new string
}{
	{"\u0000", ""},   // Null character
	{"\ufffd", ""},   // Unicode replacement character
	{"\u001b", ""},   // Escape character
	{"\r", ""},       // Carriage return
	{"\f", "\n"},     // Form feed to newline
	{"  ", " "},      // Multiple spaces to single space
}

func cleanText(text string) string {
	for _, r := range textReplacements {
		text = strings.ReplaceAll(text, r.old, r.new)
	}
	return strings.TrimSpace(text)
}
