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
	analysisTimeout   = 30 * time.Second
	analysisMaxTokens = 600
	improveTimeout    = 25 * time.Second
	improveMaxTokens  = 500

	// Cap on how much document text is sent for analysis.
	analysisExcerptWords = 2000
)

// AnalysisResult is the model's read of a freshly uploaded document.
type AnalysisResult struct {
	Summary      string
	Suggestions  []string
	Explanations map[string]string
}

// AnalysisService runs model-backed document analysis and section
// improvement through the fallback sequence. Unlike follow-up
// generation, failures here propagate to the caller.
type AnalysisService struct {
	invoker *FallbackInvoker
	log     *logrus.Entry
}

func NewAnalysisService(invoker *FallbackInvoker) *AnalysisService {
	return &AnalysisService{
		invoker: invoker,
		log:     logrus.WithField("component", "analysis_service"),
	}
}

// AnalyzeDocument produces a summary, improvement suggestions and term
// explanations from the document's leading pages.
func (s *AnalysisService) AnalyzeDocument(ctx context.Context, docType types.DocumentType, pages []types.Page) (*AnalysisResult, error) {
	excerpt := buildExcerpt(pages, analysisExcerptWords)
	if excerpt == "" {
		return &AnalysisResult{Summary: "The document contains no extractable text."}, nil
	}

	prompt := fmt.Sprintf(
		"Analyze this %s document.\n\n%s\n\n"+
			"Respond in exactly this format:\n"+
			"SUMMARY: <2-3 sentence summary>\n"+
			"SUGGESTIONS:\n- <suggestion>\n- <suggestion>\n"+
			"EXPLANATIONS:\n<term>: <one-line explanation>\n<term>: <one-line explanation>",
		docType, excerpt,
	)

	raw, err := s.invoker.Invoke(ctx, CompletionRequest{
		Messages:  []types.Message{{Role: "user", Content: prompt}},
		MaxTokens: analysisMaxTokens,
	}, analysisTimeout, TerminalError)
	if err != nil {
		return nil, fmt.Errorf("document analysis failed: %w", err)
	}

	return parseAnalysis(raw), nil
}

// ImproveSection rewrites one section's content.
func (s *AnalysisService) ImproveSection(ctx context.Context, req types.ImproveSectionRequest) (string, error) {
	instruction := req.Instruction
	if instruction == "" {
		instruction = "Improve clarity and conciseness while keeping the meaning."
	}
	prompt := fmt.Sprintf(
		"Rewrite the following document section titled %q.\nInstruction: %s\n\n%s",
		req.SectionTitle, instruction, req.Content,
	)

	improved, err := s.invoker.Invoke(ctx, CompletionRequest{
		Messages:  []types.Message{{Role: "user", Content: prompt}},
		MaxTokens: improveMaxTokens,
	}, improveTimeout, TerminalError)
	if err != nil {
		return "", fmt.Errorf("section improvement failed: %w", err)
	}
	return improved, nil
}

func buildExcerpt(pages []types.Page, maxWords int) string {
	var words []string
	for _, page := range pages {
		pageWords := strings.Fields(page.Text)
		remaining := maxWords - len(words)
		if remaining <= 0 {
			break
		}
		if len(pageWords) > remaining {
			pageWords = pageWords[:remaining]
		}
		words = append(words, pageWords...)
	}
	return strings.Join(words, " ")
}

func parseAnalysis(raw string) *AnalysisResult {
	result := &AnalysisResult{
		Explanations: make(map[string]string),
	}

	section := ""
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		upper := strings.ToUpper(line)
		switch {
		case strings.HasPrefix(upper, "SUMMARY:"):
			result.Summary = strings.TrimSpace(line[len("SUMMARY:"):])
			section = "summary"
		case strings.HasPrefix(upper, "SUGGESTIONS:"):
			section = "suggestions"
		case strings.HasPrefix(upper, "EXPLANATIONS:"):
			section = "explanations"
		default:
			switch section {
			case "summary":
				result.Summary = strings.TrimSpace(result.Summary + " " + line)
			case "suggestions":
				if suggestion := strings.TrimSpace(strings.TrimLeft(line, "-•* ")); suggestion != "" {
					result.Suggestions = append(result.Suggestions, suggestion)
				}
			case "explanations":
				if key, value, found := strings.Cut(line, ":"); found {
					key = strings.ToLower(strings.TrimSpace(key))
					if key != "" && strings.TrimSpace(value) != "" {
						result.Explanations[key] = strings.TrimSpace(value)
					}
				}
			}
		}
	}

	if result.Summary == "" {
		// Model ignored the format; keep the raw text rather than nothing.
		result.Summary = truncateString(strings.TrimSpace(raw), 500)
	}
	return result
}
