package database

import (
	"context"
	"io"

	"github.com/tieubaoca/docchat-be/types"
)

// SearchFilter narrows a similarity search. Zero-value fields are ignored.
type SearchFilter struct {
	FileID       string
	DocumentType string
	PageNumber   int
}

// IsEmpty reports whether the filter constrains nothing.
func (f *SearchFilter) IsEmpty() bool {
	return f == nil || (f.FileID == "" && f.DocumentType == "" && f.PageNumber == 0)
}

// VectorIndex defines the vector-search capability the core depends on.
type VectorIndex interface {
	// EnsureCollection creates the chunk collection if it does not exist.
	// Safe to call concurrently; creation is create-if-absent.
	EnsureCollection(ctx context.Context) error

	// UpsertChunks stores embedded chunks. Idempotent on chunk id.
	UpsertChunks(ctx context.Context, chunks []types.EmbeddedChunk) error

	// SearchSimilar returns up to limit chunks ranked by descending cosine
	// similarity. An all-zero query vector with an empty filter yields an
	// empty result, never an arbitrary top-k.
	SearchSimilar(ctx context.Context, vector []float32, limit int, filter *SearchFilter) ([]types.ScoredChunk, error)

	// SearchByFileID returns chunks belonging to a file. Membership, not
	// ranking: every score is 1.0.
	SearchByFileID(ctx context.Context, fileID string, limit int) ([]types.ScoredChunk, error)

	// SearchByFileIDAndPage restricts SearchByFileID to one page.
	SearchByFileIDAndPage(ctx context.Context, fileID string, pageNumber, limit int) ([]types.ScoredChunk, error)

	// DeleteByFileID removes every chunk of a file. Idempotent.
	DeleteByFileID(ctx context.Context, fileID string) error

	GetStats(ctx context.Context) (*types.IndexStats, error)
	HealthCheck(ctx context.Context) error
}

// BlobStorage stores the original uploaded binaries.
type BlobStorage interface {
	Put(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, objectName string) error
	HealthCheck(ctx context.Context) error
}
