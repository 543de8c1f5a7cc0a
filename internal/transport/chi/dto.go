package chi

import (
	"time"

	"github.com/kailas-cloud/ragdex/internal/domain"
)

// Wire types for the hand-written JSON API.

type errorCode string

const (
	codeBadRequest        errorCode = "bad_request"
	codeInvalidQuery      errorCode = "invalid_query"
	codeUnsupportedFormat errorCode = "unsupported_format"
	codeLowReadability    errorCode = "low_readability"
	codeNoReadableText    errorCode = "no_readable_text"
	codeVectorDimMismatch errorCode = "vector_dim_mismatch"
	codeDocumentNotFound  errorCode = "document_not_found"
	codeRateLimited       errorCode = "rate_limited"
	codeProviderError     errorCode = "provider_error"
	codeUnauthorized      errorCode = "unauthorized"
	codeInternalError     errorCode = "internal_error"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

// ingestRequest carries one document. Data is base64 in JSON per encoding/json
// convention; ExtractedText, when present, skips extraction entirely.
type ingestRequest struct {
	FileName      string `json:"file_name"`
	MediaType     string `json:"media_type"`
	CollectionID  string `json:"collection_id,omitempty"`
	Data          []byte `json:"data,omitempty"`
	ExtractedText string `json:"extracted_text,omitempty"`
}

type ingestResponse struct {
	FileID        string `json:"file_id"`
	Strategy      string `json:"strategy,omitempty"`
	PagesSkipped  int    `json:"pages_skipped,omitempty"`
	ChunksTotal   int    `json:"chunks_total"`
	ChunksStored  int    `json:"chunks_stored"`
	ChunksSkipped int    `json:"chunks_skipped"`
	ChunksFailed  int    `json:"chunks_failed"`
}

type ingestStatusResponse struct {
	FileID       string    `json:"file_id"`
	State        string    `json:"state"` // "completed" | "partial" | "failed"
	ChunksTotal  int       `json:"chunks_total"`
	ChunksStored int       `json:"chunks_stored"`
	CreatedAt    time.Time `json:"created_at"`
}

type deleteResponse struct {
	FileID        string `json:"file_id"`
	ChunksDeleted int    `json:"chunks_deleted"`
}

type retrieveRequest struct {
	Query        string  `json:"query"`
	CollectionID string  `json:"collection_id,omitempty"`
	MaxResults   int     `json:"max_results,omitempty"`
	Threshold    float64 `json:"threshold,omitempty"`
}

type retrieveItem struct {
	ChunkID    string  `json:"chunk_id"`
	FileID     string  `json:"file_id"`
	FileName   string  `json:"file_name,omitempty"`
	FileSize   int64   `json:"file_size,omitempty"`
	Content    string  `json:"content"`
	Similarity float64 `json:"similarity"`
}

type retrieveResponse struct {
	Query string         `json:"query"`
	Items []retrieveItem `json:"items"`
	Total int            `json:"total"`
}

type answerRequest struct {
	Question     string  `json:"question"`
	CollectionID string  `json:"collection_id,omitempty"`
	MaxResults   int     `json:"max_results,omitempty"`
	Threshold    float64 `json:"threshold,omitempty"`
	Temperature  float32 `json:"temperature,omitempty"`
	MaxTokens    int     `json:"max_tokens,omitempty"`
}

type answerResponse struct {
	Answer   string         `json:"answer"`
	Grounded bool           `json:"grounded"`
	Sources  []retrieveItem `json:"sources"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func retrieveItemFrom(r *domain.SearchResult) retrieveItem {
	return retrieveItem{
		ChunkID:    r.ChunkID,
		FileID:     r.FileID,
		FileName:   r.FileName,
		FileSize:   r.FileSize,
		Content:    r.Content,
		Similarity: r.Similarity,
	}
}

func retrieveItemsFrom(results []domain.SearchResult) []retrieveItem {
	items := make([]retrieveItem, len(results))
	for i := range results {
		items[i] = retrieveItemFrom(&results[i])
	}
	return items
}

func statusState(doc *domain.SourceDocument) string {
	switch {
	case doc.ChunksTotal > 0 && doc.ChunksStored == 0:
		return "failed"
	case doc.ChunksStored < doc.ChunksTotal:
		return "partial"
	default:
		return "completed"
	}
}
