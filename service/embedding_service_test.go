package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/docchat-be/types"
)

// fakeEmbedder returns a vector encoding the batch-relative position of
// each text, and fails on the batches listed in failBatches.
type fakeEmbedder struct {
	dimension   int
	batchCount  int
	failBatches map[int]bool
}

func (e *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	batch := e.batchCount
	e.batchCount++
	if e.failBatches[batch] {
		return nil, errors.New("embedding endpoint unavailable")
	}

	vectors := make([][]float32, len(texts))
	for i := range texts {
		vector := make([]float32, e.dimension)
		vector[0] = float32(batch)
		vector[1] = float32(i)
		vectors[i] = vector
	}
	return vectors, nil
}

func (e *fakeEmbedder) Dimension() int { return e.dimension }

func chunksOf(n int) []types.Chunk {
	chunks := make([]types.Chunk, n)
	for i := range chunks {
		chunks[i] = types.Chunk{Content: "chunk content"}
	}
	return chunks
}

func TestEmbedReturnsVectorPerChunk(t *testing.T) {
	embedder := &fakeEmbedder{dimension: 4}
	pipeline := NewEmbeddingPipeline(embedder, 5)

	vectors, err := pipeline.Embed(context.Background(), chunksOf(12))
	require.NoError(t, err)
	require.Len(t, vectors, 12)
	assert.Equal(t, 3, embedder.batchCount, "12 chunks at batch size 5 is 3 batches")

	// Order is preserved across batches.
	assert.Equal(t, float32(0), vectors[0][0])
	assert.Equal(t, float32(4), vectors[4][1])
	assert.Equal(t, float32(1), vectors[5][0])
	assert.Equal(t, float32(2), vectors[10][0])
}

func TestEmbedFailedBatchDegradesToFallback(t *testing.T) {
	embedder := &fakeEmbedder{dimension: 4, failBatches: map[int]bool{1: true}}
	pipeline := NewEmbeddingPipeline(embedder, 5)

	vectors, err := pipeline.Embed(context.Background(), chunksOf(15))
	require.NoError(t, err)
	require.Len(t, vectors, 15)

	fallback := []float32{0.1, 0.1, 0.1, 0.1}
	for i := 0; i < 5; i++ {
		assert.NotEqual(t, fallback, vectors[i], "batch 0 succeeded")
		assert.Equal(t, fallback, vectors[5+i], "batch 1 failed, so its vectors are fallbacks")
		assert.NotEqual(t, fallback, vectors[10+i], "batch 2 succeeded")
	}
}

func TestEmbedEmptyInput(t *testing.T) {
	pipeline := NewEmbeddingPipeline(&fakeEmbedder{dimension: 4}, 5)

	vectors, err := pipeline.Embed(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vectors)
}

func TestEmbedCanceledContext(t *testing.T) {
	pipeline := NewEmbeddingPipeline(&fakeEmbedder{dimension: 4}, 5)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := pipeline.Embed(ctx, chunksOf(3))
	assert.ErrorIs(t, err, context.Canceled)
}

// cancelingEmbedder cancels the upload while its batch is in flight.
type cancelingEmbedder struct {
	cancel context.CancelFunc
}

func (e *cancelingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	e.cancel()
	return nil, ctx.Err()
}

func (e *cancelingEmbedder) Dimension() int { return 4 }

func TestEmbedCancellationMidBatchIsNotDegraded(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pipeline := NewEmbeddingPipeline(&cancelingEmbedder{cancel: cancel}, 5)

	vectors, err := pipeline.Embed(ctx, chunksOf(3))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, vectors, "a canceled batch must not yield fallback vectors")
}

func TestEmbedQueryDegradesToFallback(t *testing.T) {
	embedder := &fakeEmbedder{dimension: 3, failBatches: map[int]bool{0: true}}
	pipeline := NewEmbeddingPipeline(embedder, 5)

	vector := pipeline.EmbedQuery(context.Background(), "some query")
	assert.Equal(t, []float32{0.1, 0.1, 0.1}, vector)
}
