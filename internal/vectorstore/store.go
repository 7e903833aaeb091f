// Package vectorstore defines the vector-similarity store contract the
// retrieval stage depends on, plus an in-memory implementation and a
// pgvector-backed PostgreSQL implementation.
package vectorstore

import "context"

// Document is a unit of indexed content: an identity, its embedding, the
// raw text that was embedded, and flat string metadata.
type Document struct {
	ID       string
	Vector   []float32
	Content  string
	Metadata map[string]string
}

// Match is a query result: a stored document with its similarity score,
// higher is more similar.
type Match struct {
	ID       string
	Score    float64
	Content  string
	Metadata map[string]string
}

// Store is the vector-similarity store contract: insert vector plus
// metadata, query a vector for the nearest K.
type Store interface {
	// Has reports whether a document with the given id is already stored.
	Has(ctx context.Context, id string) (bool, error)
	// Upsert stores the document. Returns false when the id was already
	// present; the existing document is kept unchanged in that case.
	Upsert(ctx context.Context, doc Document) (bool, error)
	// Query returns up to k stored documents nearest to the given vector,
	// most similar first.
	Query(ctx context.Context, vector []float32, k int) ([]Match, error)
	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)
}
