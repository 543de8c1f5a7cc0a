package config

import "testing"

func validConfig() Config {
	return Config{
		HTTP: HTTPConfig{Port: 8080},
		Database: DatabaseConfig{
			Addrs: []string{"localhost:6379"},
		},
		Embedding: EmbeddingConfig{
			Model:      "text-embedding-3-small",
			Dimensions: 1536,
		},
		Completion: CompletionConfig{
			Model: "gpt-4o-mini",
		},
		Ingest: IngestConfig{ChunkSize: 2000, ChunkOverlap: 200},
	}
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingRedisAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Addrs = nil

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing redis addrs")
	}
}

func TestValidate_MissingEmbeddingModel(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding.Model = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing embedding model")
	}
}

func TestValidate_MissingDimensions(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding.Dimensions = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing embedding dimensions")
	}
}

func TestValidate_MissingCompletionModel(t *testing.T) {
	cfg := validConfig()
	cfg.Completion.Model = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing completion model")
	}
}

func TestValidate_OverlapExceedsChunkSize(t *testing.T) {
	cfg := validConfig()
	cfg.Ingest.ChunkSize = 100
	cfg.Ingest.ChunkOverlap = 100

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for overlap >= chunk size")
	}
}

func TestValidate_ThresholdOutOfRange(t *testing.T) {
	cfg := validConfig()
	cfg.Retrieval.Threshold = 1.5

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for threshold > 1")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 120 {
		t.Errorf("expected WriteTimeoutSec=120, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Database.ReadinessTimeout)
	}
	if cfg.Embedding.TokenCeiling != 7000 {
		t.Errorf("expected TokenCeiling=7000, got %d", cfg.Embedding.TokenCeiling)
	}
	if cfg.Completion.Temperature != 0.7 {
		t.Errorf("expected Temperature=0.7, got %v", cfg.Completion.Temperature)
	}
	if cfg.Completion.MaxTokens != 1024 {
		t.Errorf("expected MaxTokens=1024, got %d", cfg.Completion.MaxTokens)
	}
	if cfg.Ingest.ChunkSize != 2000 {
		t.Errorf("expected ChunkSize=2000, got %d", cfg.Ingest.ChunkSize)
	}
	if cfg.Ingest.ChunkOverlap != 200 {
		t.Errorf("expected ChunkOverlap=200, got %d", cfg.Ingest.ChunkOverlap)
	}
	if cfg.Ingest.MaxPages != 50 {
		t.Errorf("expected MaxPages=50, got %d", cfg.Ingest.MaxPages)
	}
	if cfg.Retrieval.MaxResults != 5 {
		t.Errorf("expected MaxResults=5, got %d", cfg.Retrieval.MaxResults)
	}
	if cfg.Retrieval.Threshold != 0.3 {
		t.Errorf("expected Threshold=0.3, got %v", cfg.Retrieval.Threshold)
	}
}

func TestApplyDefaults_CompletionFallsBackToEmbeddingCreds(t *testing.T) {
	cfg := Config{
		Embedding: EmbeddingConfig{
			APIKey:  "shared-key",
			BaseURL: "https://api.example.com/v1/",
		},
	}
	cfg.ApplyDefaults()

	if cfg.Completion.APIKey != "shared-key" {
		t.Errorf("expected completion api key to fall back, got %q", cfg.Completion.APIKey)
	}
	if cfg.Completion.BaseURL != "https://api.example.com/v1/" {
		t.Errorf("expected completion base url to fall back, got %q", cfg.Completion.BaseURL)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{ReadTimeoutSec: 5, WriteTimeoutSec: 60, ShutdownSec: 5},
		Database: DatabaseConfig{ReadinessTimeout: 15},
		Ingest:   IngestConfig{ChunkSize: 500, ChunkOverlap: 50, Workers: 8},
		Completion: CompletionConfig{
			APIKey: "own-key", Temperature: 0.1, MaxTokens: 64,
		},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 5 {
		t.Errorf("expected ReadTimeoutSec=5, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Ingest.ChunkSize != 500 {
		t.Errorf("expected ChunkSize=500, got %d", cfg.Ingest.ChunkSize)
	}
	if cfg.Ingest.Workers != 8 {
		t.Errorf("expected Workers=8, got %d", cfg.Ingest.Workers)
	}
	if cfg.Completion.APIKey != "own-key" {
		t.Errorf("expected APIKey='own-key', got %q", cfg.Completion.APIKey)
	}
	if cfg.Completion.Temperature != 0.1 {
		t.Errorf("expected Temperature=0.1, got %v", cfg.Completion.Temperature)
	}
}
