package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/docchat-be/database"
	"github.com/tieubaoca/docchat-be/types"
)

// fakeIndex records which retrieval strategy was used and serves canned
// chunks keyed by file and page.
type fakeIndex struct {
	chunks      map[string][]types.ScoredChunk // fileID -> chunks
	similar     []types.ScoredChunk
	lastCall    string
	lastFilter  *database.SearchFilter
	lastVector  []float32
	searchLimit int
}

func (f *fakeIndex) EnsureCollection(ctx context.Context) error { return nil }

func (f *fakeIndex) UpsertChunks(ctx context.Context, chunks []types.EmbeddedChunk) error {
	return nil
}

func (f *fakeIndex) SearchSimilar(ctx context.Context, vector []float32, limit int, filter *database.SearchFilter) ([]types.ScoredChunk, error) {
	f.lastCall = "similar"
	f.lastVector = vector
	f.lastFilter = filter
	f.searchLimit = limit
	return f.similar, nil
}

func (f *fakeIndex) SearchByFileID(ctx context.Context, fileID string, limit int) ([]types.ScoredChunk, error) {
	f.lastCall = "file"
	f.searchLimit = limit
	return f.chunks[fileID], nil
}

func (f *fakeIndex) SearchByFileIDAndPage(ctx context.Context, fileID string, pageNumber, limit int) ([]types.ScoredChunk, error) {
	f.lastCall = "page"
	f.searchLimit = limit
	var matched []types.ScoredChunk
	for _, chunk := range f.chunks[fileID] {
		if chunk.Metadata.PageNumber == pageNumber {
			matched = append(matched, chunk)
		}
	}
	return matched, nil
}

func (f *fakeIndex) DeleteByFileID(ctx context.Context, fileID string) error { return nil }

func (f *fakeIndex) GetStats(ctx context.Context) (*types.IndexStats, error) {
	return &types.IndexStats{}, nil
}

func (f *fakeIndex) HealthCheck(ctx context.Context) error { return nil }

func TestClassifyQuery(t *testing.T) {
	tests := []struct {
		query string
		want  PageClassification
	}{
		{"What's on page 5?", PageClassification{IsPageSpecific: true, PageNumber: 5}},
		{"Summarize Page 12 please", PageClassification{IsPageSpecific: true, PageNumber: 12}},
		{"Tell me about the 3rd page", PageClassification{IsPageSpecific: true, PageNumber: 3}},
		{"show the 1st page", PageClassification{IsPageSpecific: true, PageNumber: 1}},
		{"what does page number 7 say", PageClassification{IsPageSpecific: true, PageNumber: 7}},
		{"2nd page contents", PageClassification{IsPageSpecific: true, PageNumber: 2}},
		{"What is this document about?", PageClassification{}},
		{"page 0 should not count", PageClassification{}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyQuery(tt.query), "query: %q", tt.query)
	}
}

func TestRetrievePageSpecific(t *testing.T) {
	index := &fakeIndex{
		chunks: map[string][]types.ScoredChunk{
			"file-1": {
				{Content: "Page 2: alpha", Metadata: types.ChunkMetadata{PageNumber: 2}},
				{Content: "Page 5: beta", Metadata: types.ChunkMetadata{PageNumber: 5}},
			},
		},
	}
	router := NewRouterService(index, NewEmbeddingPipeline(&fakeEmbedder{dimension: 3}, 5))

	result, err := router.Retrieve(context.Background(), "what is on page 5?", "file-1")
	require.NoError(t, err)
	assert.Equal(t, "page", index.lastCall)
	assert.Equal(t, pageSearchLimit, index.searchLimit)
	require.Len(t, result.Chunks, 1)
	assert.Equal(t, "Page 5: beta", result.Chunks[0].Content)
	assert.True(t, result.Classification.IsPageSpecific)
	assert.False(t, result.NoPageContent)
}

func TestRetrieveEmptyPageIsTerminal(t *testing.T) {
	index := &fakeIndex{chunks: map[string][]types.ScoredChunk{}}
	router := NewRouterService(index, NewEmbeddingPipeline(&fakeEmbedder{dimension: 3}, 5))

	result, err := router.Retrieve(context.Background(), "what is on page 9?", "file-1")
	require.NoError(t, err)
	assert.True(t, result.NoPageContent)
	assert.Equal(t, 9, result.Classification.PageNumber)
	assert.Empty(t, result.Chunks)
}

func TestRetrieveFileScoped(t *testing.T) {
	index := &fakeIndex{
		chunks: map[string][]types.ScoredChunk{
			"file-1": {{Content: "anything"}},
		},
	}
	router := NewRouterService(index, NewEmbeddingPipeline(&fakeEmbedder{dimension: 3}, 5))

	result, err := router.Retrieve(context.Background(), "summarize this document", "file-1")
	require.NoError(t, err)
	assert.Equal(t, "file", index.lastCall)
	assert.Equal(t, fileSearchLimit, index.searchLimit)
	assert.Len(t, result.Chunks, 1)
	assert.False(t, result.Classification.IsPageSpecific)
}

func TestRetrieveCorpusWide(t *testing.T) {
	index := &fakeIndex{
		similar: []types.ScoredChunk{{Content: "best match", Score: 0.92}},
	}
	router := NewRouterService(index, NewEmbeddingPipeline(&fakeEmbedder{dimension: 3}, 5))

	result, err := router.Retrieve(context.Background(), "who mentions kubernetes?", "")
	require.NoError(t, err)
	assert.Equal(t, "similar", index.lastCall)
	assert.Equal(t, corpusSearchLimit, index.searchLimit)
	assert.Len(t, index.lastVector, 3, "query must be embedded for corpus search")
	assert.Nil(t, index.lastFilter)
	assert.Len(t, result.Chunks, 1)
}

func TestRetrievePageQueryWithoutFileGoesCorpusWide(t *testing.T) {
	index := &fakeIndex{}
	router := NewRouterService(index, NewEmbeddingPipeline(&fakeEmbedder{dimension: 3}, 5))

	result, err := router.Retrieve(context.Background(), "what is on page 2?", "")
	require.NoError(t, err)
	assert.Equal(t, "similar", index.lastCall)
	assert.False(t, result.NoPageContent)
	// Classification is still reported even though routing fell through.
	assert.True(t, result.Classification.IsPageSpecific)
}

func TestSearchAppliesDocumentTypeFilter(t *testing.T) {
	index := &fakeIndex{}
	router := NewRouterService(index, NewEmbeddingPipeline(&fakeEmbedder{dimension: 3}, 5))

	_, err := router.Search(context.Background(), "find invoices", "invoice", 7)
	require.NoError(t, err)
	assert.Equal(t, "similar", index.lastCall)
	assert.Equal(t, 7, index.searchLimit)
	require.NotNil(t, index.lastFilter)
	assert.Equal(t, "invoice", index.lastFilter.DocumentType)
}

func TestSearchDefaultLimit(t *testing.T) {
	index := &fakeIndex{}
	router := NewRouterService(index, NewEmbeddingPipeline(&fakeEmbedder{dimension: 3}, 5))

	_, err := router.Search(context.Background(), "anything", "", 0)
	require.NoError(t, err)
	assert.Equal(t, corpusSearchLimit, index.searchLimit)
	assert.Nil(t, index.lastFilter)
}
