package document

import (
	"strconv"
	"time"

	"github.com/kailas-cloud/ragdex/internal/domain"
)

const keyPrefix = domain.KeyPrefix + "doc:"

const (
	fieldName         = "name"
	fieldSize         = "size"
	fieldMediaType    = "media_type"
	fieldCollectionID = "collection_id"
	fieldChunksTotal  = "chunks_total"
	fieldChunksStored = "chunks_stored"
	fieldCreatedAt    = "created_at"
)

func docKey(id string) string {
	return keyPrefix + id
}

func docFields(doc *domain.SourceDocument) map[string]string {
	return map[string]string{
		fieldName:         doc.Name,
		fieldSize:         strconv.FormatInt(doc.Size, 10),
		fieldMediaType:    doc.MediaType,
		fieldCollectionID: doc.CollectionID,
		fieldChunksTotal:  strconv.Itoa(doc.ChunksTotal),
		fieldChunksStored: strconv.Itoa(doc.ChunksStored),
		fieldCreatedAt:    strconv.FormatInt(doc.CreatedAt.Unix(), 10),
	}
}

func docFromFields(id string, fields map[string]string) *domain.SourceDocument {
	size, _ := strconv.ParseInt(fields[fieldSize], 10, 64)
	total, _ := strconv.Atoi(fields[fieldChunksTotal])
	stored, _ := strconv.Atoi(fields[fieldChunksStored])
	createdAt, _ := strconv.ParseInt(fields[fieldCreatedAt], 10, 64)

	return &domain.SourceDocument{
		ID:           id,
		Name:         fields[fieldName],
		Size:         size,
		MediaType:    fields[fieldMediaType],
		CollectionID: fields[fieldCollectionID],
		ChunksTotal:  total,
		ChunksStored: stored,
		CreatedAt:    time.Unix(createdAt, 0).UTC(),
	}
}
