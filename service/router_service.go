package service

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/tieubaoca/docchat-be/database"
	"github.com/tieubaoca/docchat-be/types"
)

const (
	pageSearchLimit   = 10
	fileSearchLimit   = 10
	corpusSearchLimit = 5
)

// pagePatterns are tried in order against the lower-cased query; the
// first match wins. The order is part of the routing contract.
var pagePatterns = []*regexp.Regexp{
	regexp.MustCompile(`page\s+(\d+)`),
	regexp.MustCompile(`the\s+(\d+)(?:st|nd|rd|th)?\s+page`),
	regexp.MustCompile(`page\s+number\s+(\d+)`),
	regexp.MustCompile(`(\d+)(?:st|nd|rd|th)?\s+page`),
}

// PageClassification says whether a query targets a specific page.
type PageClassification struct {
	IsPageSpecific bool
	PageNumber     int
}

// ClassifyQuery detects page-targeted phrasing like "page 5" or
// "the 3rd page".
func ClassifyQuery(query string) PageClassification {
	lowered := strings.ToLower(query)
	for _, pattern := range pagePatterns {
		matches := pattern.FindStringSubmatch(lowered)
		if len(matches) < 2 {
			continue
		}
		pageNumber, err := strconv.Atoi(matches[1])
		if err != nil || pageNumber <= 0 {
			continue
		}
		return PageClassification{IsPageSpecific: true, PageNumber: pageNumber}
	}
	return PageClassification{}
}

// RetrievalResult is what the router hands to the chat layer.
type RetrievalResult struct {
	Chunks         []types.ScoredChunk
	Classification PageClassification
	// NoPageContent marks the terminal case of a page-specific query
	// with nothing indexed for that page. The model must not be invoked.
	NoPageContent bool
}

// RouterService classifies queries and runs the matching retrieval
// strategy against the vector index.
type RouterService struct {
	index      database.VectorIndex
	embeddings *EmbeddingPipeline
	log        *logrus.Entry
}

func NewRouterService(index database.VectorIndex, embeddings *EmbeddingPipeline) *RouterService {
	return &RouterService{
		index:      index,
		embeddings: embeddings,
		log:        logrus.WithField("component", "router_service"),
	}
}

// Retrieve picks the retrieval strategy:
//   - page-specific query with a file id: all chunks of that page
//   - file id without page targeting: all chunks of the file
//   - otherwise: corpus-wide similarity search on the embedded query
func (s *RouterService) Retrieve(ctx context.Context, query, fileID string) (*RetrievalResult, error) {
	classification := ClassifyQuery(query)
	result := &RetrievalResult{Classification: classification}

	switch {
	case classification.IsPageSpecific && fileID != "":
		chunks, err := s.index.SearchByFileIDAndPage(ctx, fileID, classification.PageNumber, pageSearchLimit)
		if err != nil {
			return nil, err
		}
		if len(chunks) == 0 {
			s.log.WithField("page", classification.PageNumber).Info("page-specific query matched no chunks")
			result.NoPageContent = true
			return result, nil
		}
		result.Chunks = chunks

	case fileID != "":
		chunks, err := s.index.SearchByFileID(ctx, fileID, fileSearchLimit)
		if err != nil {
			return nil, err
		}
		result.Chunks = chunks

	default:
		vector := s.embeddings.EmbedQuery(ctx, query)
		chunks, err := s.index.SearchSimilar(ctx, vector, corpusSearchLimit, nil)
		if err != nil {
			return nil, err
		}
		result.Chunks = chunks
	}

	return result, nil
}

// Search runs a corpus-wide similarity search, optionally restricted to
// one document type.
func (s *RouterService) Search(ctx context.Context, query, documentType string, limit int) ([]types.ScoredChunk, error) {
	if limit <= 0 {
		limit = corpusSearchLimit
	}
	var filter *database.SearchFilter
	if documentType != "" {
		filter = &database.SearchFilter{DocumentType: documentType}
	}
	vector := s.embeddings.EmbedQuery(ctx, query)
	return s.index.SearchSimilar(ctx, vector, limit, filter)
}
