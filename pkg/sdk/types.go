package ragdex

import (
	"time"

	"github.com/kailas-cloud/ragdex/internal/domain"
	ingestuc "github.com/kailas-cloud/ragdex/internal/usecase/ingest"
)

// IngestRequest describes one document to ingest. ExtractedText, when set,
// bypasses extraction entirely.
type IngestRequest struct {
	FileID        string
	FileName      string
	MediaType     string
	CollectionID  string
	Data          []byte
	ExtractedText string
}

// IngestReport summarizes one ingestion run.
type IngestReport struct {
	FileID        string
	Strategy      string
	PagesSkipped  int
	ChunksTotal   int
	ChunksStored  int
	ChunksSkipped int
	ChunksFailed  int
}

// Query is one retrieval request. Zero MaxResults and Threshold fall back to
// the defaults (5 results, 0.3 similarity).
type Query struct {
	Text         string
	CollectionID string
	MaxResults   int
	Threshold    float64
}

// SearchResult is one retrieved chunk, enriched with source document
// metadata.
type SearchResult struct {
	ChunkID    string
	FileID     string
	Content    string
	Similarity float64
	FileName   string
	FileSize   int64
}

// AnswerRequest is one question to answer against the ingested corpus.
type AnswerRequest struct {
	Question     string
	CollectionID string
	MaxResults   int
	Threshold    float64
	Temperature  float32
	MaxTokens    int
}

// Answer carries the generated text and the chunks it was grounded in.
// Sources is empty when nothing relevant was found.
type Answer struct {
	Text    string
	Sources []SearchResult
}

// DocumentStatus is the persisted ingestion state of a document.
type DocumentStatus struct {
	FileID       string
	Name         string
	Size         int64
	MediaType    string
	CollectionID string
	ChunksTotal  int
	ChunksStored int
	CreatedAt    time.Time
}

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            // "ok" or "degraded"
	Checks map[string]string // component name -> "ok"/"error"
}

func reportFrom(r *ingestuc.Report) *IngestReport {
	return &IngestReport{
		FileID:        r.FileID,
		Strategy:      r.Strategy,
		PagesSkipped:  r.PagesSkipped,
		ChunksTotal:   r.ChunksTotal,
		ChunksStored:  r.ChunksStored,
		ChunksSkipped: r.ChunksSkipped,
		ChunksFailed:  r.ChunksFailed,
	}
}

func resultsFrom(results []domain.SearchResult) []SearchResult {
	if len(results) == 0 {
		return nil
	}
	out := make([]SearchResult, len(results))
	for i, r := range results {
		out[i] = SearchResult{
			ChunkID:    r.ChunkID,
			FileID:     r.FileID,
			Content:    r.Content,
			Similarity: r.Similarity,
			FileName:   r.FileName,
			FileSize:   r.FileSize,
		}
	}
	return out
}

func statusFrom(doc *domain.SourceDocument) *DocumentStatus {
	return &DocumentStatus{
		FileID:       doc.ID,
		Name:         doc.Name,
		Size:         doc.Size,
		MediaType:    doc.MediaType,
		CollectionID: doc.CollectionID,
		ChunksTotal:  doc.ChunksTotal,
		ChunksStored: doc.ChunksStored,
		CreatedAt:    doc.CreatedAt,
	}
}
