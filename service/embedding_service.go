package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
	"github.com/tieubaoca/docchat-be/config"
	"github.com/tieubaoca/docchat-be/types"
)

const (
	embeddingBatchTimeout = 30 * time.Second
	interBatchDelay       = 100 * time.Millisecond
	fallbackVectorValue   = 0.1
)

// Embedder generates vector embeddings for a batch of texts.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// OpenAIEmbedder calls an OpenAI-compatible embeddings endpoint.
type OpenAIEmbedder struct {
	client    *openai.Client
	model     string
	dimension int
}

func NewOpenAIEmbedder(baseURL, apiKey string, cfg config.EmbeddingConfig) *OpenAIEmbedder {
	clientCfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientCfg.BaseURL = baseURL
	}
	return &OpenAIEmbedder{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     cfg.Model,
		dimension: cfg.Dimension,
	}
}

func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	embeddings := make([][]float32, len(resp.Data))
	for i, item := range resp.Data {
		embeddings[i] = item.Embedding
	}
	return embeddings, nil
}

func (e *OpenAIEmbedder) Dimension() int {
	return e.dimension
}

// EmbeddingPipeline batches chunk contents through an Embedder. A failed
// batch degrades to fallback vectors instead of failing the whole
// ingestion, so every chunk always ends up with a usable vector.
type EmbeddingPipeline struct {
	embedder  Embedder
	batchSize int
	log       *logrus.Entry
}

func NewEmbeddingPipeline(embedder Embedder, batchSize int) *EmbeddingPipeline {
	if batchSize <= 0 {
		batchSize = 5
	}
	return &EmbeddingPipeline{
		embedder:  embedder,
		batchSize: batchSize,
		log:       logrus.WithField("component", "embedding_pipeline"),
	}
}

// Embed returns one vector per chunk, in chunk order.
func (p *EmbeddingPipeline) Embed(ctx context.Context, chunks []types.Chunk) ([][]float32, error) {
	vectors := make([][]float32, 0, len(chunks))

	for start := 0; start < len(chunks); start += p.batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := start + p.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		texts := make([]string, 0, end-start)
		for _, chunk := range chunks[start:end] {
			texts = append(texts, chunk.Content)
		}

		batchCtx, cancel := context.WithTimeout(ctx, embeddingBatchTimeout)
		embeddings, err := p.embedder.EmbedBatch(batchCtx, texts)
		cancel()
		if err != nil {
			// A canceled upload is not an endpoint failure; surface it
			// instead of degrading.
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			p.log.WithField("batch_start", start).Warnf("embedding batch failed, using fallback vectors: %v", err)
			embeddings = p.fallbackBatch(len(texts))
		}
		vectors = append(vectors, embeddings...)

		// Throttle between batches so the embedding endpoint is not hammered.
		if end < len(chunks) {
			select {
			case <-time.After(interBatchDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	return vectors, nil
}

// EmbedQuery embeds a single query string. Failure degrades to the
// fallback vector the same way batch ingestion does.
func (p *EmbeddingPipeline) EmbedQuery(ctx context.Context, query string) []float32 {
	queryCtx, cancel := context.WithTimeout(ctx, embeddingBatchTimeout)
	defer cancel()

	embeddings, err := p.embedder.EmbedBatch(queryCtx, []string{query})
	if err != nil || len(embeddings) == 0 {
		p.log.Warnf("query embedding failed, using fallback vector: %v", err)
		return p.fallbackVector()
	}
	return embeddings[0]
}

func (p *EmbeddingPipeline) Dimension() int {
	return p.embedder.Dimension()
}

func (p *EmbeddingPipeline) fallbackBatch(size int) [][]float32 {
	batch := make([][]float32, size)
	for i := range batch {
		batch[i] = p.fallbackVector()
	}
	return batch
}

func (p *EmbeddingPipeline) fallbackVector() []float32 {
	vector := make([]float32, p.embedder.Dimension())
	for i := range vector {
		vector[i] = fallbackVectorValue
	}
	return vector
}
