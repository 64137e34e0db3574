package database

import (
	"context"

	"github.com/tieubaoca/docqa-be/types"
)

// ChunkRecord is what the vector store returns for a retrieval: the chunk
// text plus the metadata the scope predicate filtered on.
type ChunkRecord struct {
	ID           string
	DocumentID   string
	SessionID    string
	DocumentType types.DocumentType
	Filename     string
	Index        int
	Text         string
	Distance     float32
}

// VectorStore is the gateway to chunk vectors. Every read and delete is
// restricted by a predicate produced by the isolation resolver; no other
// component builds storage-level filters.
type VectorStore interface {
	// BatchInsertChunks stores the document's chunks with their embeddings.
	// Chunks and embeddings correspond by index and must be the same length.
	BatchInsertChunks(ctx context.Context, doc *types.Document, chunks []types.Chunk, embeddings [][]float32) error

	// SearchSimilar returns the top-limit chunks by vector similarity
	// within the predicate.
	SearchSimilar(ctx context.Context, vector []float32, pred types.ScopePredicate, limit int) ([]ChunkRecord, error)

	// CountInScope reports how many chunks the predicate matches.
	CountInScope(ctx context.Context, pred types.ScopePredicate) (int, error)

	// DeleteInScope removes every chunk matching the predicate and returns
	// the number removed. Unscoped predicates are rejected.
	DeleteInScope(ctx context.Context, pred types.ScopePredicate) (int, error)
}
