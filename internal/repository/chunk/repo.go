// Package chunk persists embedded document chunks in Redis hashes and serves
// vector similarity search over them via an FT index.
package chunk

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ragdex/internal/db"
	"github.com/kailas-cloud/ragdex/internal/domain"
)

// IndexName is the FT index over chunk hashes.
const IndexName = "ragdex_chunks_idx"

// Default HNSW build parameters for the vector field.
const (
	defaultHNSWM           = 16
	defaultHNSWEFConstruct = 200
)

// HNSWConfig tunes the vector index build.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// store is the consumer interface for the chunk repository (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	DelMulti(ctx context.Context, keys []string) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// Repo stores chunks one hash per chunk under
// "ragdex:chunk:<file_id>:<chunk_id>" and searches them by vector similarity.
type Repo struct {
	store     store
	vectorDim int
	hnsw      HNSWConfig
	logger    *zap.Logger
}

// New creates a chunk repository. vectorDim must match the embedding model's
// output dimensionality; writes with any other width are rejected.
func New(s store, vectorDim int, logger *zap.Logger) *Repo {
	return &Repo{
		store:     s,
		vectorDim: vectorDim,
		hnsw:      HNSWConfig{M: defaultHNSWM, EFConstruct: defaultHNSWEFConstruct},
		logger:    logger,
	}
}

// WithHNSW overrides the index build parameters. Zero fields keep defaults.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	if cfg.M > 0 {
		r.hnsw.M = cfg.M
	}
	if cfg.EFConstruct > 0 {
		r.hnsw.EFConstruct = cfg.EFConstruct
	}
	return r
}

// EnsureIndex creates the FT index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, IndexName)
	if err != nil {
		return fmt.Errorf("check index %s: %w", IndexName, err)
	}
	if exists {
		return nil
	}

	def := &db.IndexDefinition{
		Name:     IndexName,
		Prefixes: []string{keyPrefix},
		Fields: []db.IndexField{
			{Name: fieldFileID, Type: db.IndexFieldTag},
			{Name: fieldCollectionID, Type: db.IndexFieldTag},
			{Name: fieldContent, Type: db.IndexFieldText},
			{Name: fieldChunkIndex, Type: db.IndexFieldNumeric},
			{Name: fieldCreatedAt, Type: db.IndexFieldNumeric},
			{
				Name:              fieldVector,
				Type:              db.IndexFieldVector,
				VectorAlgo:        db.VectorHNSW,
				VectorDim:         r.vectorDim,
				VectorDistance:    db.DistanceCosine,
				VectorM:           r.hnsw.M,
				VectorEFConstruct: r.hnsw.EFConstruct,
			},
		},
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index %s: %w", IndexName, err)
	}

	r.logger.Info("Created chunk index",
		zap.String("index", IndexName),
		zap.Int("vector_dim", r.vectorDim),
	)
	return nil
}

// Put writes chunks in a single pipelined batch. Every chunk must validate
// and carry a vector of the configured dimensionality; the batch is rejected
// whole on the first bad chunk so a document is never stored half-typed.
func (r *Repo) Put(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	items := make([]db.HashSetItem, 0, len(chunks))
	for i := range chunks {
		c := &chunks[i]
		if err := c.Validate(); err != nil {
			return fmt.Errorf("put chunks: %w", err)
		}
		if len(c.Vector) != r.vectorDim {
			return fmt.Errorf(
				"chunk %s: vector has %d dimensions, index wants %d: %w",
				c.ID, len(c.Vector), r.vectorDim, domain.ErrVectorDimMismatch,
			)
		}
		items = append(items, db.HashSetItem{
			Key:    chunkKey(c.FileID, c.ID),
			Fields: chunkFields(c),
		})
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("put %d chunks: %w", len(items), err)
	}
	return nil
}

// Search runs a KNN query and keeps hits at or above the similarity
// threshold, preserving the index's similarity ordering. An empty
// collectionID searches all collections.
func (r *Repo) Search(
	ctx context.Context, vector []float32, collectionID string, k int, threshold float64,
) ([]domain.SearchResult, error) {
	if len(vector) != r.vectorDim {
		return nil, fmt.Errorf(
			"query vector has %d dimensions, index wants %d: %w",
			len(vector), r.vectorDim, domain.ErrVectorDimMismatch,
		)
	}

	// __vector_score must be requested explicitly: with a RETURN clause the
	// server sends back only the listed attributes, and without the score
	// every hit would fall below the threshold.
	q := &db.KNNQuery{
		IndexName: IndexName,
		Vector:    vector,
		K:         k,
		ReturnFields: []string{
			"__vector_score", fieldFileID, fieldContent, fieldFileName, fieldFileSize,
		},
	}
	if collectionID != "" {
		q.Filter = "@" + fieldCollectionID + ":{" + escapeTag(collectionID) + "}"
	}

	res, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("knn search: %w", err)
	}

	results := make([]domain.SearchResult, 0, len(res.Entries))
	for i := range res.Entries {
		e := &res.Entries[i]
		if e.Score < threshold {
			continue
		}
		results = append(results, resultFromEntry(e))
	}
	return results, nil
}

// CountByFile returns the number of indexed chunks of a document. Unlike the
// persisted metadata counter this reflects what the index actually holds.
func (r *Repo) CountByFile(ctx context.Context, fileID string) (int, error) {
	query := "@" + fieldFileID + ":{" + escapeTag(fileID) + "}"
	n, err := r.store.SearchCount(ctx, IndexName, query)
	if err != nil {
		return 0, fmt.Errorf("count chunks of %s: %w", fileID, err)
	}
	return n, nil
}

// DeleteByDocument removes every chunk of a document and reports how many
// keys were deleted. Deleting a document with no chunks is not an error.
func (r *Repo) DeleteByDocument(ctx context.Context, fileID string) (int, error) {
	keys, err := r.store.Scan(ctx, chunkKeyPattern(fileID))
	if err != nil {
		return 0, fmt.Errorf("scan chunks of %s: %w", fileID, err)
	}
	if len(keys) == 0 {
		return 0, nil
	}

	if err := r.store.DelMulti(ctx, keys); err != nil {
		return 0, fmt.Errorf("delete %d chunks of %s: %w", len(keys), fileID, err)
	}
	return len(keys), nil
}
