package domain

import (
	"fmt"
	"time"
)

// Chunk is a bounded span of a source document's sanitized text, the unit of
// embedding and retrieval. Chunks are written once at ingestion time and
// never mutated; they are deleted en masse with their owning document.
type Chunk struct {
	ID           string
	FileID       string
	CollectionID string
	Index        int // ordinal position within the document
	Total        int // total chunk count computed at chunk time
	Content      string
	Vector       []float32
	FileName     string
	FileSize     int64
	CreatedAt    time.Time
}

// Validate checks the ordinal invariant and content presence.
func (c *Chunk) Validate() error {
	if c.FileID == "" {
		return fmt.Errorf("chunk %s: file id is required", c.ID)
	}
	if c.Index < 0 || c.Index >= c.Total {
		return fmt.Errorf("chunk %s: index %d out of range [0, %d)", c.ID, c.Index, c.Total)
	}
	if c.Content == "" {
		return fmt.Errorf("chunk %s: content is empty", c.ID)
	}
	return nil
}
