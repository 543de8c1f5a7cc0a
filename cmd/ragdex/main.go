package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	chunkpkg "github.com/kailas-cloud/ragdex/internal/chunk"
	"github.com/kailas-cloud/ragdex/internal/config"
	dbRedis "github.com/kailas-cloud/ragdex/internal/db/redis"
	"github.com/kailas-cloud/ragdex/internal/domain"
	"github.com/kailas-cloud/ragdex/internal/extract"
	logpkg "github.com/kailas-cloud/ragdex/internal/logger"
	"github.com/kailas-cloud/ragdex/internal/metrics"
	chunkrepo "github.com/kailas-cloud/ragdex/internal/repository/chunk"
	documentrepo "github.com/kailas-cloud/ragdex/internal/repository/document"
	"github.com/kailas-cloud/ragdex/internal/repository/embcache"
	chiTransport "github.com/kailas-cloud/ragdex/internal/transport/chi"
	openaiTransport "github.com/kailas-cloud/ragdex/internal/transport/openai"
	answeruc "github.com/kailas-cloud/ragdex/internal/usecase/answer"
	healthuc "github.com/kailas-cloud/ragdex/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/ragdex/internal/usecase/ingest"
	retrieveuc "github.com/kailas-cloud/ragdex/internal/usecase/retrieve"
	"github.com/kailas-cloud/ragdex/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting ragdex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register pipeline metrics explicitly (no init())
	metrics.Register()

	// Build embedder chains at the composition root.
	// Document and query embedders share cache and transport but may carry
	// different instruction prefixes.
	docEmbedder := buildEmbedder(&cfg, cfg.Embedding.DocumentInstruction, store, logger)
	queryEmbedder := buildEmbedder(&cfg, cfg.Embedding.QueryInstruction, store, logger)
	logger.Info("Embedders created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	completer := openaiTransport.NewCompleter(&openaiTransport.CompleterConfig{
		APIKey:      cfg.Completion.APIKey,
		BaseURL:     cfg.Completion.BaseURL,
		Model:       cfg.Completion.Model,
		Temperature: cfg.Completion.Temperature,
		MaxTokens:   cfg.Completion.MaxTokens,
		Timeout:     time.Duration(cfg.Completion.TimeoutSec) * time.Second,
		MaxRetries:  cfg.Completion.MaxRetries,
		Provider:    cfg.Embedding.Provider,
		Logger:      logger,
	})

	// Repositories
	chunkRepo := chunkrepo.New(store, cfg.Embedding.Dimensions, logger).WithHNSW(chunkrepo.HNSWConfig{
		M:           cfg.Ingest.HNSWM,
		EFConstruct: cfg.Ingest.HNSWEF,
	})
	if err := chunkRepo.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to ensure chunk index", zap.Error(err))
	}
	docRepo := documentrepo.New(store)

	// Pipeline components
	extractor := extract.New(extract.Config{MaxPages: cfg.Ingest.MaxPages})
	splitter := chunkpkg.New(cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap)

	// Use case services
	ingestSvc, err := ingestuc.New(
		ingestuc.Config{
			Workers:   cfg.Ingest.Workers,
			RateLimit: cfg.Ingest.RateLimit,
			RateBurst: cfg.Ingest.RateBurst,
		},
		extractor, splitter, docEmbedder, chunkRepo, docRepo, logger,
	)
	if err != nil {
		logger.Fatal("Failed to create ingest service", zap.Error(err))
	}
	defer ingestSvc.Close()

	retrieveSvc := &scopedRetriever{
		inner: retrieveuc.New(queryEmbedder, chunkRepo, docRepo, logger),
		cfg:   cfg.Retrieval,
	}
	answerSvc := answeruc.New(retrieveSvc, completer, logger)
	healthSvc := healthuc.New(store, newProviderHealthChecker(docEmbedder), completer)

	// HTTP server
	server := chiTransport.NewServer(ingestSvc, retrieveSvc, answerSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Mount(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// scopedRetriever applies the configured retrieval defaults before
// delegating, so /answer requests without explicit limits follow config.
type scopedRetriever struct {
	inner *retrieveuc.Service
	cfg   config.RetrievalConfig
}

func (s *scopedRetriever) Retrieve(ctx context.Context, q domain.Query) ([]domain.SearchResult, error) {
	if q.MaxResults <= 0 {
		q.MaxResults = s.cfg.MaxResults
	}
	if q.Threshold <= 0 {
		q.Threshold = s.cfg.Threshold
	}
	return s.inner.Retrieve(ctx, q)
}

// providerHealthChecker unwraps the decorator chain to reach a transport
// that knows how to health check itself.
type providerHealthChecker struct {
	embedder domain.Embedder
}

func newProviderHealthChecker(embedder domain.Embedder) *providerHealthChecker {
	return &providerHealthChecker{embedder: embedder}
}

type healthChecker interface {
	HealthCheck(ctx context.Context) error
}

func (h *providerHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(healthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Instruction.
func buildEmbedder(
	cfg *config.Config,
	instruction string,
	store *dbRedis.Store,
	logger *zap.Logger,
) domain.Embedder {
	// Base provider (with transport metrics built-in)
	base := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:       cfg.Embedding.APIKey,
		BaseURL:      cfg.Embedding.BaseURL,
		Model:        cfg.Embedding.Model,
		Dimensions:   cfg.Embedding.Dimensions,
		TokenCeiling: cfg.Embedding.TokenCeiling,
		Timeout:      time.Duration(cfg.Embedding.TimeoutSec) * time.Second,
		MaxRetries:   cfg.Embedding.MaxRetries,
		Provider:     cfg.Embedding.Provider,
		Logger:       logger,
	})

	// Cached
	var embedder domain.Embedder = base
	if store != nil {
		embedder = embcache.New(base, store, metrics.EmbeddingCacheTotal, logger)
	}

	// Instruction prefix goes outermost so the cache key includes it.
	if instruction != "" {
		return domain.NewInstructionEmbedder(embedder, instruction)
	}

	return embedder
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
