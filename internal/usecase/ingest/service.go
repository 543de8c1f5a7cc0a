// Package ingest runs the document ingestion pipeline: extract, sanitize,
// chunk, embed, store.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/ragdex/internal/domain"
	"github.com/kailas-cloud/ragdex/internal/extract"
	"github.com/kailas-cloud/ragdex/internal/metrics"
)

// Defaults for the embedding stage.
const (
	DefaultWorkers   = 4
	DefaultRateLimit = 10 // embedding calls per second
	DefaultRateBurst = 10
)

// Config tunes the concurrent embedding stage.
type Config struct {
	Workers   int
	RateLimit float64 // embedding calls per second across all workers
	RateBurst int
}

func (c *Config) applyDefaults() {
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.RateLimit <= 0 {
		c.RateLimit = DefaultRateLimit
	}
	if c.RateBurst <= 0 {
		c.RateBurst = DefaultRateBurst
	}
}

// Request describes one document to ingest. ExtractedText, when set,
// bypasses extraction entirely (the caller already has plain text).
type Request struct {
	FileID        string
	FileName      string
	MediaType     string
	CollectionID  string
	Data          []byte
	ExtractedText string
}

// Report summarizes one ingestion run. A run succeeds as long as at least
// one chunk made it to storage; skipped and failed counts tell the rest.
type Report struct {
	FileID        string
	Strategy      string
	PagesSkipped  int
	ChunksTotal   int
	ChunksStored  int
	ChunksSkipped int
	ChunksFailed  int
}

// Service orchestrates the ingestion pipeline.
type Service struct {
	extractor Extractor
	splitter  Splitter
	embedder  Embedder
	chunks    ChunkRepository
	docs      DocumentRepository
	pool      *ants.Pool
	limiter   *rate.Limiter
	logger    *zap.Logger
}

// New creates the ingestion service and its worker pool.
func New(
	cfg Config,
	extractor Extractor,
	splitter Splitter,
	embedder Embedder,
	chunks ChunkRepository,
	docs DocumentRepository,
	logger *zap.Logger,
) (*Service, error) {
	cfg.applyDefaults()

	pool, err := ants.NewPool(cfg.Workers)
	if err != nil {
		return nil, fmt.Errorf("create embedding worker pool: %w", err)
	}

	return &Service{
		extractor: extractor,
		splitter:  splitter,
		embedder:  embedder,
		chunks:    chunks,
		docs:      docs,
		pool:      pool,
		limiter:   rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		logger:    logger,
	}, nil
}

// Close releases the worker pool.
func (s *Service) Close() {
	s.pool.Release()
}

// Ingest runs the full pipeline for one document. Re-ingesting a known
// file id deletes the previous chunks first, so the store never holds two
// generations of the same document.
//
// Per-chunk embedding failures do not abort the run: oversized chunks are
// skipped, provider failures are counted, and the run errors only when not
// a single chunk could be stored.
func (s *Service) Ingest(ctx context.Context, req *Request) (*Report, error) {
	if req.FileID == "" {
		return nil, fmt.Errorf("ingest: file id is required")
	}

	report := &Report{FileID: req.FileID}

	text := req.ExtractedText
	if text == "" {
		res, err := s.extractor.Extract(req.Data, req.MediaType)
		if err != nil {
			metrics.IngestRunsTotal.WithLabelValues("failure").Inc()
			return nil, fmt.Errorf("extract %s: %w", req.FileID, err)
		}
		text = res.Text
		report.Strategy = string(res.Strategy)
		report.PagesSkipped = res.PagesSkipped
	}

	sanitized := extract.Sanitize(text)
	if sanitized == "" {
		metrics.IngestRunsTotal.WithLabelValues("failure").Inc()
		return nil, fmt.Errorf("ingest %s: %w", req.FileID, domain.ErrNoReadableText)
	}

	pieces := s.splitter.Split(sanitized)
	report.ChunksTotal = len(pieces)

	deleted, err := s.chunks.DeleteByDocument(ctx, req.FileID)
	if err != nil {
		metrics.IngestRunsTotal.WithLabelValues("failure").Inc()
		return nil, fmt.Errorf("clear previous chunks of %s: %w", req.FileID, err)
	}
	if deleted > 0 {
		s.logger.Info("Replaced previous ingestion",
			zap.String("file_id", req.FileID),
			zap.Int("chunks_deleted", deleted),
		)
	}

	now := time.Now().UTC()
	doc := &domain.SourceDocument{
		ID:           req.FileID,
		Name:         req.FileName,
		Size:         int64(len(req.Data)),
		MediaType:    req.MediaType,
		CollectionID: req.CollectionID,
		ChunksTotal:  len(pieces),
		CreatedAt:    now,
	}
	if err = s.docs.Save(ctx, doc); err != nil {
		metrics.IngestRunsTotal.WithLabelValues("failure").Inc()
		return nil, fmt.Errorf("save document %s: %w", req.FileID, err)
	}

	stored, skipped, failed, lastErr := s.embedAll(ctx, req, doc, pieces, now)
	report.ChunksStored = len(stored)
	report.ChunksSkipped = skipped
	report.ChunksFailed = failed

	if len(stored) > 0 {
		if err = s.chunks.Put(ctx, stored); err != nil {
			metrics.IngestRunsTotal.WithLabelValues("failure").Inc()
			return nil, fmt.Errorf("store chunks of %s: %w", req.FileID, err)
		}
	}

	doc.ChunksStored = len(stored)
	if err = s.docs.Save(ctx, doc); err != nil {
		return nil, fmt.Errorf("update document %s: %w", req.FileID, err)
	}

	if len(stored) == 0 && len(pieces) > 0 {
		metrics.IngestRunsTotal.WithLabelValues("failure").Inc()
		if lastErr == nil {
			lastErr = domain.ErrChunkTooLarge
		}
		return nil, fmt.Errorf("ingest %s: no chunks stored: %w", req.FileID, lastErr)
	}

	status := "success"
	if skipped > 0 || failed > 0 {
		status = "partial"
	}
	metrics.IngestRunsTotal.WithLabelValues(status).Inc()

	s.logger.Info("Ingested document",
		zap.String("file_id", req.FileID),
		zap.String("strategy", report.Strategy),
		zap.Int("chunks_total", report.ChunksTotal),
		zap.Int("chunks_stored", report.ChunksStored),
		zap.Int("chunks_skipped", skipped),
		zap.Int("chunks_failed", failed),
	)
	return report, nil
}

// embedAll vectorizes pieces on the worker pool under the shared rate
// limiter. Order is restored afterwards; ordinals refer to the original
// piece positions even when some pieces are dropped.
func (s *Service) embedAll(
	ctx context.Context, req *Request, doc *domain.SourceDocument, pieces []string, now time.Time,
) (stored []domain.Chunk, skipped, failed int, lastErr error) {
	type outcome struct {
		vec []float32
		err error
	}
	outcomes := make([]outcome, len(pieces))

	var wg sync.WaitGroup
	for i := range pieces {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			if err := s.limiter.Wait(ctx); err != nil {
				outcomes[i].err = fmt.Errorf("rate limiter: %w", err)
				return
			}
			res, err := s.embedder.Embed(ctx, pieces[i])
			if err != nil {
				outcomes[i].err = err
				return
			}
			outcomes[i].vec = res.Embedding
		}
		// A full pool queue degrades to inline execution instead of failing.
		if err := s.pool.Submit(task); err != nil {
			task()
		}
	}
	wg.Wait()

	for i := range outcomes {
		switch {
		case outcomes[i].err == nil:
			stored = append(stored, domain.Chunk{
				ID:           uuid.NewString(),
				FileID:       req.FileID,
				CollectionID: req.CollectionID,
				Index:        i,
				Total:        len(pieces),
				Content:      pieces[i],
				Vector:       outcomes[i].vec,
				FileName:     req.FileName,
				FileSize:     doc.Size,
				CreatedAt:    now,
			})
			metrics.IngestChunksTotal.WithLabelValues("stored").Inc()
		case isSkippable(outcomes[i].err):
			skipped++
			metrics.IngestChunksTotal.WithLabelValues("skipped").Inc()
			s.logger.Warn("Skipped oversized chunk",
				zap.String("file_id", req.FileID),
				zap.Int("chunk_index", i),
				zap.Error(outcomes[i].err),
			)
		default:
			failed++
			lastErr = outcomes[i].err
			metrics.IngestChunksTotal.WithLabelValues("failed").Inc()
			s.logger.Error("Failed to embed chunk",
				zap.String("file_id", req.FileID),
				zap.Int("chunk_index", i),
				zap.Error(outcomes[i].err),
			)
		}
	}

	sort.Slice(stored, func(a, b int) bool { return stored[a].Index < stored[b].Index })
	return stored, skipped, failed, lastErr
}

// Status reports the ingestion state of a document. The stored-chunk count
// comes from the index itself; the persisted counter is the fallback when
// the count query fails.
func (s *Service) Status(ctx context.Context, fileID string) (*domain.SourceDocument, error) {
	doc, err := s.docs.Get(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("ingest status: %w", err)
	}

	if n, cerr := s.chunks.CountByFile(ctx, fileID); cerr == nil {
		doc.ChunksStored = n
	} else {
		s.logger.Warn("Failed to count chunks, using persisted counter",
			zap.String("file_id", fileID),
			zap.Error(cerr),
		)
	}
	return doc, nil
}

// Delete cascades: chunks first, then document metadata, so a crash in
// between never leaves orphaned chunks behind a deleted document.
func (s *Service) Delete(ctx context.Context, fileID string) (int, error) {
	deleted, err := s.chunks.DeleteByDocument(ctx, fileID)
	if err != nil {
		return 0, fmt.Errorf("delete chunks of %s: %w", fileID, err)
	}

	if err = s.docs.Delete(ctx, fileID); err != nil {
		if deleted > 0 {
			// Chunks existed without metadata; the cascade still did its job.
			s.logger.Warn("Deleted chunks of a document with no metadata",
				zap.String("file_id", fileID),
				zap.Int("chunks_deleted", deleted),
			)
			return deleted, nil
		}
		return 0, fmt.Errorf("delete document %s: %w", fileID, err)
	}
	return deleted, nil
}

func isSkippable(err error) bool {
	return errors.Is(err, domain.ErrChunkTooLarge)
}
