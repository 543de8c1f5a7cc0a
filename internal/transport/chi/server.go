// Package chi exposes the ingestion and retrieval pipeline over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ragdex/internal/domain"
	answeruc "github.com/kailas-cloud/ragdex/internal/usecase/answer"
	healthuc "github.com/kailas-cloud/ragdex/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/ragdex/internal/usecase/ingest"
)

// Ingester runs the ingestion pipeline and manages stored documents.
type Ingester interface {
	Ingest(ctx context.Context, req *ingestuc.Request) (*ingestuc.Report, error)
	Status(ctx context.Context, fileID string) (*domain.SourceDocument, error)
	Delete(ctx context.Context, fileID string) (int, error)
}

// Retriever answers similarity queries.
type Retriever interface {
	Retrieve(ctx context.Context, q domain.Query) ([]domain.SearchResult, error)
}

// Answerer generates grounded completions.
type Answerer interface {
	Answer(ctx context.Context, req *answeruc.Request) (*answeruc.Response, error)
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server is the HTTP API server.
type Server struct {
	ingester      Ingester
	retriever     Retriever
	answerer      Answerer
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	ingester Ingester,
	retriever Retriever,
	answerer Answerer,
	health HealthChecker,
	logger *zap.Logger,
) *Server {
	s := &Server{
		ingester:  ingester,
		retriever: retriever,
		answerer:  answerer,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		lowReadabilityHandler,
		sentinelHandler(domain.ErrUnsupportedFormat, http.StatusUnsupportedMediaType, codeUnsupportedFormat),
		sentinelHandler(domain.ErrNoReadableText, http.StatusUnprocessableEntity, codeNoReadableText),
		sentinelHandler(domain.ErrExtractionFailed, http.StatusUnprocessableEntity, codeNoReadableText),
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, codeInvalidQuery),
		sentinelHandler(domain.ErrVectorDimMismatch, http.StatusBadRequest, codeVectorDimMismatch),
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, codeDocumentNotFound),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, codeRateLimited),
		sentinelHandler(domain.ErrChunkTooLarge, http.StatusUnprocessableEntity, codeProviderError),
		sentinelHandler(domain.ErrProviderError, http.StatusBadGateway, codeProviderError),
	}
	return s
}

// Mount registers all routes on the router.
func (s *Server) Mount(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/documents/{fileID}", func(r chi.Router) {
			r.Post("/ingest", s.IngestDocument)
			r.Get("/ingest/status", s.IngestStatus)
			r.Delete("/", s.DeleteDocument)
		})
		r.Post("/retrieve", s.Retrieve)
		r.Post("/answer", s.Answer)
	})
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// IngestDocument handles POST /api/v1/documents/{fileID}/ingest.
func (s *Server) IngestDocument(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileID")

	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if len(req.Data) == 0 && req.ExtractedText == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Either data or extracted_text is required")
		return
	}

	report, err := s.ingester.Ingest(r.Context(), &ingestuc.Request{
		FileID:        fileID,
		FileName:      req.FileName,
		MediaType:     req.MediaType,
		CollectionID:  req.CollectionID,
		Data:          req.Data,
		ExtractedText: req.ExtractedText,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ingestResponse{
		FileID:        report.FileID,
		Strategy:      report.Strategy,
		PagesSkipped:  report.PagesSkipped,
		ChunksTotal:   report.ChunksTotal,
		ChunksStored:  report.ChunksStored,
		ChunksSkipped: report.ChunksSkipped,
		ChunksFailed:  report.ChunksFailed,
	})
}

// IngestStatus handles GET /api/v1/documents/{fileID}/ingest/status.
func (s *Server) IngestStatus(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileID")

	doc, err := s.ingester.Status(r.Context(), fileID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ingestStatusResponse{
		FileID:       doc.ID,
		State:        statusState(doc),
		ChunksTotal:  doc.ChunksTotal,
		ChunksStored: doc.ChunksStored,
		CreatedAt:    doc.CreatedAt,
	})
}

// DeleteDocument handles DELETE /api/v1/documents/{fileID}.
func (s *Server) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileID")

	deleted, err := s.ingester.Delete(r.Context(), fileID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, deleteResponse{
		FileID:        fileID,
		ChunksDeleted: deleted,
	})
}

// Retrieve handles POST /api/v1/retrieve.
func (s *Server) Retrieve(w http.ResponseWriter, r *http.Request) {
	var req retrieveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	results, err := s.retriever.Retrieve(r.Context(), domain.Query{
		Text:         req.Query,
		CollectionID: req.CollectionID,
		MaxResults:   req.MaxResults,
		Threshold:    req.Threshold,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, retrieveResponse{
		Query: req.Query,
		Items: retrieveItemsFrom(results),
		Total: len(results),
	})
}

// Answer handles POST /api/v1/answer.
func (s *Server) Answer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	resp, err := s.answerer.Answer(r.Context(), &answeruc.Request{
		Question:     req.Question,
		CollectionID: req.CollectionID,
		MaxResults:   req.MaxResults,
		Threshold:    req.Threshold,
		Temperature:  req.Temperature,
		MaxTokens:    req.MaxTokens,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, answerResponse{
		Answer:   resp.Answer,
		Grounded: len(resp.Sources) > 0,
		Sources:  retrieveItemsFrom(resp.Sources),
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrUnsupportedFormat,
		domain.ErrLowReadability,
		domain.ErrNoReadableText,
		domain.ErrExtractionFailed,
		domain.ErrInvalidQuery,
		domain.ErrVectorDimMismatch,
		domain.ErrDocumentNotFound,
		domain.ErrRateLimited,
		domain.ErrChunkTooLarge,
		domain.ErrProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// lowReadabilityHandler handles ErrLowReadability with the measured ratio and
// diagnostic attached, so callers can tell scanned PDFs from encoding damage.
func lowReadabilityHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrLowReadability) {
		return false
	}
	var lre *domain.LowReadabilityError
	if errors.As(err, &lre) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"code":       codeLowReadability,
			"message":    msg,
			"ratio":      lre.Ratio,
			"diagnostic": string(lre.Diagnostic),
		})
		return true
	}
	writeError(w, http.StatusUnprocessableEntity, codeLowReadability, msg)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
