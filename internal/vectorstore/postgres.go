package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
	pgxvector "github.com/pgvector/pgvector-go/pgx"
)

// PostgresStore is a Store backed by PostgreSQL with the pgvector
// extension. Similarity search uses cosine distance.
type PostgresStore struct {
	pool *pgxpool.Pool
	dims int
}

// NewPostgresStore connects to the database and prepares the posting
// vectors table. dims is the embedding dimensionality.
func NewPostgresStore(ctx context.Context, databaseURL string, dims int) (*PostgresStore, error) {
	if dims <= 0 {
		return nil, fmt.Errorf("embedding dimensionality must be positive, got %d", dims)
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	// Register pgvector types on every new connection
	config.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvector.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &PostgresStore{pool: pool, dims: dims}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// ensureSchema creates the extension and the posting vectors table.
func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}

	_, err := s.pool.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS posting_vectors (
			id TEXT PRIMARY KEY,
			embedding vector(%d) NOT NULL,
			content TEXT NOT NULL,
			metadata JSONB NOT NULL DEFAULT '{}'
		)`, s.dims))
	if err != nil {
		return fmt.Errorf("failed to create posting_vectors table: %w", err)
	}
	return nil
}

// Has reports whether a document with the given id is already stored.
func (s *PostgresStore) Has(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM posting_vectors WHERE id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check document %s: %w", id, err)
	}
	return exists, nil
}

// Upsert inserts the document, keeping an existing row unchanged.
func (s *PostgresStore) Upsert(ctx context.Context, doc Document) (bool, error) {
	if doc.ID == "" {
		return false, fmt.Errorf("document id is empty")
	}
	if len(doc.Vector) != s.dims {
		return false, fmt.Errorf("document vector has %d dimensions, store expects %d", len(doc.Vector), s.dims)
	}

	meta, err := json.Marshal(doc.Metadata)
	if err != nil {
		return false, fmt.Errorf("failed to marshal metadata: %w", err)
	}

	tag, err := s.pool.Exec(ctx,
		`INSERT INTO posting_vectors (id, embedding, content, metadata)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO NOTHING`,
		doc.ID, pgvector.NewVector(doc.Vector), doc.Content, meta,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert document %s: %w", doc.ID, err)
	}
	return tag.RowsAffected() > 0, nil
}

// Query returns up to k documents nearest to the vector by cosine
// distance, most similar first. Scores are 1 - distance.
func (s *PostgresStore) Query(ctx context.Context, vector []float32, k int) ([]Match, error) {
	if k <= 0 {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, content, metadata, 1 - (embedding <=> $1) AS score
		 FROM posting_vectors
		 ORDER BY embedding <=> $1
		 LIMIT $2`,
		pgvector.NewVector(vector), k,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query vectors: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var m Match
		var meta []byte
		if err := rows.Scan(&m.ID, &m.Content, &meta, &m.Score); err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		if err := json.Unmarshal(meta, &m.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata for %s: %w", m.ID, err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read match rows: %w", err)
	}
	return matches, nil
}

// Count returns the number of stored documents.
func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM posting_vectors`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return count, nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}
