package ragdex

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	addrs    []string
	password string

	embedder  Embedder
	completer Completer

	vectorDimensions int
	hnswM            int
	hnswEFConstruct  int

	maxPages     int
	chunkSize    int
	chunkOverlap int
	workers      int
	rateLimit    float64
	rateBurst    int
	embedCache   bool

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithRedis configures the client to connect to a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithEmbedder sets the text embedding provider. Required for Ingest,
// Retrieve, and Answer.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithCompleter sets the completion provider. Required for Answer.
func WithCompleter(p Completer) Option {
	return optionFunc(func(c *clientConfig) {
		c.completer = p
	})
}

// WithVectorDimensions sets the embedding dimensionality the index is built
// for. Defaults to 1536 (text-embedding-3-small).
func WithVectorDimensions(dim int) Option {
	return optionFunc(func(c *clientConfig) {
		c.vectorDimensions = dim
	})
}

// WithHNSW configures the vector index build parameters (M and EF
// construction). Defaults: M=16, EFConstruct=200.
func WithHNSW(m, efConstruct int) Option {
	return optionFunc(func(c *clientConfig) {
		c.hnswM = m
		c.hnswEFConstruct = efConstruct
	})
}

// WithChunking sets the chunker's size bound and overlap budget in
// characters. Defaults: 2000/200.
func WithChunking(maxSize, overlap int) Option {
	return optionFunc(func(c *clientConfig) {
		c.chunkSize = maxSize
		c.chunkOverlap = overlap
	})
}

// WithMaxPages caps how many PDF pages the extractor processes. Default: 50.
func WithMaxPages(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxPages = n
	})
}

// WithEmbeddingConcurrency sets the embedding worker pool size and the
// provider call rate (calls per second, burst). Defaults: 4 workers, 10/s.
func WithEmbeddingConcurrency(workers int, rateLimit float64, burst int) Option {
	return optionFunc(func(c *clientConfig) {
		c.workers = workers
		c.rateLimit = rateLimit
		c.rateBurst = burst
	})
}

// WithEmbeddingCache caches embeddings in the database keyed by a content
// hash, so re-ingesting unchanged text skips the provider call.
func WithEmbeddingCache() Option {
	return optionFunc(func(c *clientConfig) {
		c.embedCache = true
	})
}

// WithLogger enables structured logging for client operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers client metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
