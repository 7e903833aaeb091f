package vectorstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// MemoryStore is an in-process Store using cosine similarity. It is the
// default when no database is configured and the backbone of tests.
type MemoryStore struct {
	mu    sync.RWMutex
	docs  map[string]Document
	order []string // insertion order, for deterministic tie-breaking
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]Document)}
}

// Has reports whether a document with the given id is already stored.
func (s *MemoryStore) Has(_ context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.docs[id]
	return ok, nil
}

// Upsert stores the document, keeping an existing one unchanged.
func (s *MemoryStore) Upsert(_ context.Context, doc Document) (bool, error) {
	if doc.ID == "" {
		return false, fmt.Errorf("document id is empty")
	}
	if len(doc.Vector) == 0 {
		return false, fmt.Errorf("document vector is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.docs[doc.ID]; exists {
		return false, nil
	}
	s.docs[doc.ID] = doc
	s.order = append(s.order, doc.ID)
	return true, nil
}

// Query returns up to k documents nearest to the vector by cosine
// similarity, most similar first. Ties break by insertion order.
func (s *MemoryStore) Query(_ context.Context, vector []float32, k int) ([]Match, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("query vector is empty")
	}
	if k <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		idx   int
		score float64
	}

	candidates := make([]scored, 0, len(s.order))
	for i, id := range s.order {
		doc := s.docs[id]
		candidates = append(candidates, scored{idx: i, score: cosineSimilarity(vector, doc.Vector)})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if k > len(candidates) {
		k = len(candidates)
	}

	matches := make([]Match, 0, k)
	for _, c := range candidates[:k] {
		doc := s.docs[s.order[c.idx]]
		matches = append(matches, Match{
			ID:       doc.ID,
			Score:    c.score,
			Content:  doc.Content,
			Metadata: doc.Metadata,
		})
	}
	return matches, nil
}

// Count returns the number of stored documents.
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs), nil
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched dimensions compare over the shorter prefix; zero vectors
// score 0.
func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
