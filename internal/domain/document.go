package domain

import "time"

// SourceDocument is the metadata record of an uploaded file. Immutable once
// stored except for deletion, which cascades to the document's chunks.
type SourceDocument struct {
	ID           string
	Name         string
	Size         int64
	MediaType    string
	CollectionID string
	ChunksTotal  int // computed at chunk time
	ChunksStored int // actually persisted (may be lower after per-chunk skips)
	CreatedAt    time.Time
}
