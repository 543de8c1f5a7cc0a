// Package document persists source-document metadata in Redis hashes.
package document

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/ragdex/internal/domain"
)

// store is the consumer interface for the document repository (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Repo stores one hash per document under "ragdex:doc:<file_id>".
type Repo struct {
	store store
}

// New creates a document repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Save upserts document metadata. Ingestion calls it twice per run: once
// before embedding with ChunksStored=0, once after with the final count.
func (r *Repo) Save(ctx context.Context, doc *domain.SourceDocument) error {
	if doc.ID == "" {
		return fmt.Errorf("save document: id is required")
	}
	if err := r.store.HSet(ctx, docKey(doc.ID), docFields(doc)); err != nil {
		return fmt.Errorf("save document %s: %w", doc.ID, err)
	}
	return nil
}

// Get fetches one document, ErrDocumentNotFound when absent.
func (r *Repo) Get(ctx context.Context, id string) (*domain.SourceDocument, error) {
	fields, err := r.store.HGetAll(ctx, docKey(id))
	if err != nil {
		return nil, fmt.Errorf("get document %s: %w", id, err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("document %s: %w", id, domain.ErrDocumentNotFound)
	}
	return docFromFields(id, fields), nil
}

// GetMulti fetches documents in one pipelined round trip. Missing ids are
// silently absent from the result map, never an error: retrieval enrichment
// must not fail because one document's metadata is gone.
func (r *Repo) GetMulti(ctx context.Context, ids []string) (map[string]*domain.SourceDocument, error) {
	if len(ids) == 0 {
		return map[string]*domain.SourceDocument{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = docKey(id)
	}

	all, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("get %d documents: %w", len(ids), err)
	}

	docs := make(map[string]*domain.SourceDocument, len(ids))
	for i, fields := range all {
		if len(fields) == 0 {
			continue
		}
		docs[ids[i]] = docFromFields(ids[i], fields)
	}
	return docs, nil
}

// Delete removes document metadata, ErrDocumentNotFound when absent.
func (r *Repo) Delete(ctx context.Context, id string) error {
	exists, err := r.store.Exists(ctx, docKey(id))
	if err != nil {
		return fmt.Errorf("check document %s: %w", id, err)
	}
	if !exists {
		return fmt.Errorf("document %s: %w", id, domain.ErrDocumentNotFound)
	}
	if err := r.store.Del(ctx, docKey(id)); err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	return nil
}

// Exists reports whether document metadata is present.
func (r *Repo) Exists(ctx context.Context, id string) (bool, error) {
	exists, err := r.store.Exists(ctx, docKey(id))
	if err != nil {
		return false, fmt.Errorf("check document %s: %w", id, err)
	}
	return exists, nil
}
