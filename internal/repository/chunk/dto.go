package chunk

import (
	"encoding/binary"
	"math"
	"strconv"
	"strings"

	"github.com/kailas-cloud/ragdex/internal/db"
	"github.com/kailas-cloud/ragdex/internal/domain"
)

const keyPrefix = domain.KeyPrefix + "chunk:"

// Hash field names, shared by the index schema and the DTO mapping.
const (
	fieldFileID       = "file_id"
	fieldCollectionID = "collection_id"
	fieldContent      = "content"
	fieldChunkIndex   = "chunk_index"
	fieldTotalChunks  = "total_chunks"
	fieldFileName     = "file_name"
	fieldFileSize     = "file_size"
	fieldCreatedAt    = "created_at"
	fieldVector       = "vector"
)

func chunkKey(fileID, chunkID string) string {
	return keyPrefix + fileID + ":" + chunkID
}

func chunkKeyPattern(fileID string) string {
	return keyPrefix + fileID + ":*"
}

func chunkFields(c *domain.Chunk) map[string]string {
	return map[string]string{
		fieldFileID:       c.FileID,
		fieldCollectionID: c.CollectionID,
		fieldContent:      c.Content,
		fieldChunkIndex:   strconv.Itoa(c.Index),
		fieldTotalChunks:  strconv.Itoa(c.Total),
		fieldFileName:     c.FileName,
		fieldFileSize:     strconv.FormatInt(c.FileSize, 10),
		fieldCreatedAt:    strconv.FormatInt(c.CreatedAt.Unix(), 10),
		fieldVector:       string(vectorToBytes(c.Vector)),
	}
}

func resultFromEntry(e *db.SearchEntry) domain.SearchResult {
	size, _ := strconv.ParseInt(e.Fields[fieldFileSize], 10, 64)
	return domain.SearchResult{
		ChunkID:    chunkIDFromKey(e.Key),
		FileID:     e.Fields[fieldFileID],
		Content:    e.Fields[fieldContent],
		Similarity: e.Score,
		FileName:   e.Fields[fieldFileName],
		FileSize:   size,
	}
}

// chunkIDFromKey strips "ragdex:chunk:<file_id>:" and keeps the chunk id.
// Chunk ids are UUIDs and never contain a colon; file ids might.
func chunkIDFromKey(key string) string {
	if i := strings.LastIndexByte(key, ':'); i >= 0 {
		return key[i+1:]
	}
	return key
}

func vectorToBytes(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// escapeTag escapes characters with syntactic meaning in FT tag queries.
func escapeTag(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case ',', '.', '<', '>', '{', '}', '[', ']', '"', '\'', ':', ';',
			'!', '@', '#', '$', '%', '^', '&', '*', '(', ')', '-', '+',
			'=', '~', '|', '/', '\\', ' ':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
