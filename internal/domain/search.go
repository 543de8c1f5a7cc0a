package domain

import (
	"fmt"
	"strings"
)

// Retrieval defaults; overridable per request and via config.
const (
	DefaultMaxResults = 5
	DefaultThreshold  = 0.3
)

// Query is a transient retrieval request. Never persisted.
type Query struct {
	Text         string
	CollectionID string  // optional scope restriction
	MaxResults   int     // <=0 means DefaultMaxResults
	Threshold    float64 // <=0 means DefaultThreshold
}

// Normalize applies defaults and validates the query text.
func (q *Query) Normalize() error {
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("query text is empty: %w", ErrInvalidQuery)
	}
	if q.MaxResults <= 0 {
		q.MaxResults = DefaultMaxResults
	}
	if q.Threshold <= 0 {
		q.Threshold = DefaultThreshold
	}
	if q.Threshold > 1 {
		return fmt.Errorf("threshold %.2f out of range (0, 1]: %w", q.Threshold, ErrInvalidQuery)
	}
	return nil
}

// SearchResult is a request-scoped projection of a chunk produced at query
// time, enriched with source document metadata.
type SearchResult struct {
	ChunkID    string
	FileID     string
	Content    string
	Similarity float64 // in [0, 1], higher is more similar
	FileName   string
	FileSize   int64
}
