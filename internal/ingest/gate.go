package ingest

import (
	"context"
	"log/slog"

	"github.com/sha1n/docindex/internal/domain"
)

// Index is the search index the batch is submitted to.
// AddDocuments upserts every document, keyed by the primaryKey field.
type Index interface {
	AddDocuments(ctx context.Context, docs []domain.SearchDocument, primaryKey string) error
}

// Gate decides whether a batch reaches the index.
type Gate struct {
	index  Index
	dryRun bool
}

// NewGate creates a submission gate. With dryRun set the index is never contacted.
func NewGate(index Index, dryRun bool) *Gate {
	return &Gate{index: index, dryRun: dryRun}
}

// Submit sends docs to the index in a single call and returns how many were indexed.
// Dry runs and empty batches return zero without contacting the index.
func (g *Gate) Submit(ctx context.Context, docs []domain.SearchDocument) (int, error) {
	if g.dryRun {
		slog.Info("Dry run, skipping index submission", "documents", len(docs))
		return 0, nil
	}
	if len(docs) == 0 {
		slog.Debug("Empty batch, nothing to index")
		return 0, nil
	}

	slog.Debug("Indexing documents", "count", len(docs))
	if err := g.index.AddDocuments(ctx, docs, domain.FieldID); err != nil {
		slog.Error("Index submission failed", "documents", len(docs), "error", err)
		return 0, err
	}
	return len(docs), nil
}
