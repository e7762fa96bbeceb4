// Package docstore indexes documentation pages into a vector collection
// and answers similarity queries over them. One record per route: an
// upsert deletes any prior record for the route before inserting.
package docstore

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"betterauth-mcp/pkg/vectorstore"
)

// Record is a fetched documentation page ready for indexing.
type Record struct {
	Route       string
	Title       string
	Description string
	Content     string
}

// Embedder produces fixed-dimension vectors for text.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Index is the persistent vector collection the store writes to.
type Index interface {
	AddDocuments(ctx context.Context, docs []vectorstore.Document) error
	DeleteByRoute(ctx context.Context, route string) error
	SimilaritySearch(ctx context.Context, queryEmbedding []float32, topK int, routeFilter string) ([]vectorstore.SimilaritySearchResult, error)
}

const resultSeparator = "\n\n---\n\n"

// Store embeds documents and persists them keyed by route.
type Store struct {
	embedder Embedder
	index    Index
	logger   *slog.Logger
}

func New(embedder Embedder, index Index) *Store {
	return &Store{
		embedder: embedder,
		index:    index,
		logger:   slog.Default(),
	}
}

// Search embeds the query and returns the top-n matches formatted as
// "[route]\n\n<content>" blocks, optionally filtered to an exact route.
// An empty collection yields a no-context message, never an error.
func (s *Store) Search(ctx context.Context, query string, nResults int, route string) (string, error) {
	if nResults <= 0 {
		nResults = 5
	}

	queryEmbedding, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		return "", fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := s.index.SimilaritySearch(ctx, queryEmbedding, nResults, route)
	if err != nil {
		return "", fmt.Errorf("failed to search: %w", err)
	}

	if len(results) == 0 {
		return fmt.Sprintf("No relevant context found for query '%s'.", query), nil
	}

	formatted := make([]string, 0, len(results))
	for _, result := range results {
		resRoute := "unknown"
		if r, ok := result.Document.Metadata["route"].(string); ok {
			resRoute = r
		}
		formatted = append(formatted, fmt.Sprintf("[%s]\n\n%s", resRoute, result.Document.Content))
	}

	return strings.Join(formatted, resultSeparator), nil
}

// UpsertDocs embeds and stores docs, one vector per document over
// description + content. All embeddings are computed before any mutation;
// existing records for each route are deleted first, then everything is
// added in one batch. Returns the number of documents written.
func (s *Store) UpsertDocs(ctx context.Context, docs []Record) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = embeddingText(doc)
	}

	embeddings, err := s.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("failed to generate embeddings: %w", err)
	}

	timestamp := time.Now().UTC().Format(time.RFC3339)

	documents := make([]vectorstore.Document, len(docs))
	for i, doc := range docs {
		documents[i] = vectorstore.Document{
			ID:      doc.Route,
			Content: doc.Content,
			Metadata: map[string]interface{}{
				"route":       doc.Route,
				"description": doc.Description,
				"timestamp":   timestamp,
			},
			Embedding: embeddings[i],
		}
	}

	// Delete-before-insert keyed by route keeps at most one record per
	// route. A delete miss is treated as nothing to delete.
	for _, route := range distinctRoutes(docs) {
		if err := s.index.DeleteByRoute(ctx, route); err != nil {
			s.logger.Debug("Delete before upsert failed", "route", route, "error", err)
		}
	}

	if err := s.index.AddDocuments(ctx, documents); err != nil {
		return 0, fmt.Errorf("failed to add documents: %w", err)
	}

	return len(documents), nil
}

// embeddingText joins description and content, skipping either half if
// absent.
func embeddingText(doc Record) string {
	var parts []string
	if doc.Description != "" {
		parts = append(parts, doc.Description)
	}
	if doc.Content != "" {
		parts = append(parts, doc.Content)
	}
	return strings.Join(parts, "\n\n")
}

func distinctRoutes(docs []Record) []string {
	seen := make(map[string]bool, len(docs))
	routes := make([]string, 0, len(docs))
	for _, doc := range docs {
		if !seen[doc.Route] {
			seen[doc.Route] = true
			routes = append(routes, doc.Route)
		}
	}
	return routes
}
