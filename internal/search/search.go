// Package search answers knowledge-base queries for the context gatherer.
package search

import (
	"context"

	"supportflow/internal/types"
)

// Searcher returns at most topK articles ordered by descending relevance.
type Searcher interface {
	Search(ctx context.Context, query string, topK int) ([]types.KBArticle, error)
}

// Indexer accepts articles into the knowledge base.
type Indexer interface {
	Index(ctx context.Context, articles []types.KBArticle) (int, error)
}
