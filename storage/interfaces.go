package storage

import (
	"context"

	"github.com/poiesic/attestor/core"
)

// CorpusReader is the read side of the corpus store used by the retrieval engine.
// Implementations must be thread-safe and support concurrent access.
type CorpusReader interface {
	// ListByCategories returns every document whose category is in categories,
	// ordered by category and then policy number. An empty category list
	// yields an empty result, not the whole corpus.
	ListByCategories(ctx context.Context, categories ...core.Category) ([]*core.PolicyDocument, error)
}

// CorpusRepository provides operations for managing policy documents.
type CorpusRepository interface {
	CorpusReader

	// AddDocuments stores one or more documents, replacing any document with
	// the same ID. Documents must carry an ID.
	// Returns the stored documents.
	AddDocuments(ctx context.Context, docs ...*core.PolicyDocument) ([]*core.PolicyDocument, error)

	// DeleteDocuments removes documents by their IDs.
	// Returns ErrNotFound if any document doesn't exist.
	DeleteDocuments(ctx context.Context, ids ...string) error

	// GetDocument retrieves a single document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id string) (*core.PolicyDocument, error)

	// ListDocuments returns the whole corpus in the same order as ListByCategories.
	ListDocuments(ctx context.Context) ([]*core.PolicyDocument, error)

	// Close releases resources held by the repository.
	Close() error
}
