package ragdex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	chunkpkg "github.com/kailas-cloud/ragdex/internal/chunk"
	"github.com/kailas-cloud/ragdex/internal/db"
	dbRedis "github.com/kailas-cloud/ragdex/internal/db/redis"
	"github.com/kailas-cloud/ragdex/internal/domain"
	"github.com/kailas-cloud/ragdex/internal/extract"
	chunkrepo "github.com/kailas-cloud/ragdex/internal/repository/chunk"
	documentrepo "github.com/kailas-cloud/ragdex/internal/repository/document"
	"github.com/kailas-cloud/ragdex/internal/repository/embcache"
	answeruc "github.com/kailas-cloud/ragdex/internal/usecase/answer"
	healthuc "github.com/kailas-cloud/ragdex/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/ragdex/internal/usecase/ingest"
	retrieveuc "github.com/kailas-cloud/ragdex/internal/usecase/retrieve"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultVectorDimensions = 1536
)

// Internal interfaces so tests can substitute the pipeline services.
type ingestUseCase interface {
	Ingest(ctx context.Context, req *ingestuc.Request) (*ingestuc.Report, error)
	Status(ctx context.Context, fileID string) (*domain.SourceDocument, error)
	Delete(ctx context.Context, fileID string) (int, error)
	Close()
}

type retrieveUseCase interface {
	Retrieve(ctx context.Context, q domain.Query) ([]domain.SearchResult, error)
}

type answerUseCase interface {
	Answer(ctx context.Context, req *answeruc.Request) (*answeruc.Response, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the ragdex SDK entry point.
type Client struct {
	store       db.Store
	ingestSvc   ingestUseCase
	retrieveSvc retrieveUseCase
	answerSvc   answerUseCase
	healthSvc   healthUseCase
	obs         *observer
}

// New creates a ragdex Client and connects to the database. The provided
// context is used for the initial readiness check and index creation.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		vectorDimensions: defaultVectorDimensions,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("ragdex: database address required (use WithRedis)")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("ragdex: create store: %w", err)
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("ragdex: database not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		store.Close()
		return nil, err
	}

	c, err := wireClient(ctx, store, cfg, obs)
	if err != nil {
		store.Close()
		return nil, err
	}
	return c, nil
}

func wireClient(ctx context.Context, store db.Store, cfg *clientConfig, obs *observer) (*Client, error) {
	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	chunkRepo := chunkrepo.New(store, cfg.vectorDimensions, logger)
	if cfg.hnswM > 0 || cfg.hnswEFConstruct > 0 {
		chunkRepo = chunkRepo.WithHNSW(chunkrepo.HNSWConfig{
			M:           cfg.hnswM,
			EFConstruct: cfg.hnswEFConstruct,
		})
	}
	if err := chunkRepo.EnsureIndex(ctx); err != nil {
		return nil, fmt.Errorf("ragdex: ensure chunk index: %w", err)
	}
	docRepo := documentrepo.New(store)

	var emb domain.Embedder = noopEmbedder{}
	if cfg.embedder != nil {
		emb = &embedderAdapter{inner: cfg.embedder}
		if cfg.embedCache {
			emb = embcache.New(emb, store, nil, logger)
		}
	}

	extractor := extract.New(extract.Config{MaxPages: cfg.maxPages})
	splitter := chunkpkg.New(cfg.chunkSize, cfg.chunkOverlap)

	ingestSvc, err := ingestuc.New(
		ingestuc.Config{
			Workers:   cfg.workers,
			RateLimit: cfg.rateLimit,
			RateBurst: cfg.rateBurst,
		},
		extractor, splitter, emb, chunkRepo, docRepo, logger,
	)
	if err != nil {
		return nil, fmt.Errorf("ragdex: create ingest service: %w", err)
	}

	retrieveSvc := retrieveuc.New(emb, chunkRepo, docRepo, logger)

	var answerSvc answerUseCase
	if cfg.completer != nil {
		answerSvc = answeruc.New(retrieveSvc, &completerAdapter{inner: cfg.completer}, logger)
	}

	return &Client{
		store:       store,
		ingestSvc:   ingestSvc,
		retrieveSvc: retrieveSvc,
		answerSvc:   answerSvc,
		healthSvc:   healthuc.New(store, nil, nil),
		obs:         obs,
	}, nil
}

// Close releases the worker pool and the database connection.
func (c *Client) Close() {
	if c.ingestSvc != nil {
		c.ingestSvc.Close()
	}
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Health checks the health of all wired components.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{Status: string(report.Status), Checks: checks}
}

// Ingest runs the full pipeline for one document: extract, sanitize, chunk,
// embed, store. Re-ingesting a known file id replaces its previous chunks.
func (c *Client) Ingest(ctx context.Context, req IngestRequest) (rep *IngestReport, err error) {
	start := time.Now()
	defer func() { c.obs.observe("ingest", start, err) }()

	out, err := c.ingestSvc.Ingest(ctx, &ingestuc.Request{
		FileID:        req.FileID,
		FileName:      req.FileName,
		MediaType:     req.MediaType,
		CollectionID:  req.CollectionID,
		Data:          req.Data,
		ExtractedText: req.ExtractedText,
	})
	if err != nil {
		return nil, err
	}
	return reportFrom(out), nil
}

// Status reports the persisted ingestion state of a document.
func (c *Client) Status(ctx context.Context, fileID string) (st *DocumentStatus, err error) {
	start := time.Now()
	defer func() { c.obs.observe("status", start, err) }()

	doc, err := c.ingestSvc.Status(ctx, fileID)
	if err != nil {
		return nil, err
	}
	return statusFrom(doc), nil
}

// Delete removes a document and all of its chunks, returning how many
// chunks were deleted.
func (c *Client) Delete(ctx context.Context, fileID string) (deleted int, err error) {
	start := time.Now()
	defer func() { c.obs.observe("delete", start, err) }()

	return c.ingestSvc.Delete(ctx, fileID)
}

// Retrieve returns chunks similar to the query, best first. An empty result
// is a valid outcome, distinct from an error.
func (c *Client) Retrieve(ctx context.Context, q Query) (results []SearchResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("retrieve", start, err) }()

	out, err := c.retrieveSvc.Retrieve(ctx, domain.Query{
		Text:         q.Text,
		CollectionID: q.CollectionID,
		MaxResults:   q.MaxResults,
		Threshold:    q.Threshold,
	})
	if err != nil {
		return nil, err
	}
	return resultsFrom(out), nil
}

// Answer retrieves chunks for the question and asks the completion provider
// to answer from them. Requires WithCompleter.
func (c *Client) Answer(ctx context.Context, req AnswerRequest) (ans *Answer, err error) {
	start := time.Now()
	defer func() { c.obs.observe("answer", start, err) }()

	if c.answerSvc == nil {
		return nil, errors.New("ragdex: completer not configured (use WithCompleter)")
	}

	out, err := c.answerSvc.Answer(ctx, &answeruc.Request{
		Question:     req.Question,
		CollectionID: req.CollectionID,
		MaxResults:   req.MaxResults,
		Threshold:    req.Threshold,
		Temperature:  req.Temperature,
		MaxTokens:    req.MaxTokens,
	})
	if err != nil {
		return nil, err
	}
	return &Answer{Text: out.Answer, Sources: resultsFrom(out.Sources)}, nil
}

// embedderAdapter wraps the public Embedder to satisfy domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// completerAdapter wraps the public Completer to satisfy the answer
// service's contract.
type completerAdapter struct {
	inner Completer
}

func (a *completerAdapter) Complete(
	ctx context.Context, messages []domain.Message, opts domain.CompletionOptions,
) (string, error) {
	msgs := make([]Message, len(messages))
	for i, m := range messages {
		msgs[i] = Message{Role: m.Role, Content: m.Content}
	}
	return a.inner.Complete(ctx, msgs, CompletionOptions{
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	})
}

// noopEmbedder fails on use; wired when no embedder is configured so that
// metadata-only operations still work.
type noopEmbedder struct{}

func (noopEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, errors.New(
		"ragdex: embedder not configured (use WithEmbedder)",
	)
}
