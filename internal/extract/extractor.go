// Package extract converts raw document bytes into clean plain text using
// format-specific strategies with fallbacks, and provides the whitespace
// sanitizer applied to all extracted text before chunking.
package extract

import (
	"fmt"
	"mime"
	"strings"

	"github.com/kailas-cloud/ragdex/internal/domain"
)

// Defaults for extraction limits.
const (
	DefaultMaxPages        = 50
	DefaultMinPlausibleLen = 10

	// minReadabilityRatio is the floor below which extraction is unreliable.
	minReadabilityRatio = 0.5
)

// Config holds extraction limits.
type Config struct {
	MaxPages        int // page/record cap for bounded latency
	MinPlausibleLen int // shortest candidate worth keeping
}

// Extractor routes document bytes to a strategy by media type.
type Extractor struct {
	maxPages        int
	minPlausibleLen int
}

// Result carries the extracted text and diagnostics about how it was produced.
type Result struct {
	Text         string
	Strategy     Strategy
	PagesTotal   int
	PagesSkipped int
}

// New creates an extractor, filling zero config fields with defaults.
func New(cfg Config) *Extractor {
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = DefaultMaxPages
	}
	if cfg.MinPlausibleLen <= 0 {
		cfg.MinPlausibleLen = DefaultMinPlausibleLen
	}
	return &Extractor{
		maxPages:        cfg.MaxPages,
		minPlausibleLen: cfg.MinPlausibleLen,
	}
}

// Extract returns plain text from document bytes, or a typed error from the
// extraction taxonomy. The returned text is NOT sanitized; callers run
// Sanitize before chunking.
func (e *Extractor) Extract(data []byte, mediaType string) (Result, error) {
	if len(data) == 0 {
		return Result{}, fmt.Errorf("empty document: %w", domain.ErrNoReadableText)
	}

	mt := normalizeMediaType(mediaType)

	switch {
	case isPDF(mt, data):
		return e.extractPDF(data)
	case isMarkup(mt):
		return e.checked(Result{Text: stripMarkup(string(data)), Strategy: StrategyMarkup})
	case isPlainText(mt):
		return e.checked(Result{Text: string(data), Strategy: StrategyPlainText})
	default:
		return Result{}, fmt.Errorf("media type %q: %w", mediaType, domain.ErrUnsupportedFormat)
	}
}

// extractPDF runs the independent byte-stream heuristics and keeps the most
// plausible result.
func (e *Extractor) extractPDF(data []byte) (Result, error) {
	pagesTotal, pagesSkipped, bounded := boundPages(data, e.maxPages)

	cands := []candidate{
		{strategy: StrategyPDFLiteral, text: extractLiteralStrings(bounded)},
		{strategy: StrategyPDFTextObject, text: extractTextObjects(bounded)},
	}

	best, ok := selectCandidate(cands, e.minPlausibleLen)
	if !ok {
		return Result{}, fmt.Errorf("no extraction heuristic produced plausible text: %w", domain.ErrNoReadableText)
	}

	res, err := e.checked(Result{
		Text:         best.text,
		Strategy:     best.strategy,
		PagesTotal:   pagesTotal,
		PagesSkipped: pagesSkipped,
	})
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

// checked applies the readability gate to an extraction result.
func (e *Extractor) checked(res Result) (Result, error) {
	if strings.TrimSpace(res.Text) == "" {
		return Result{}, fmt.Errorf("extraction produced empty text: %w", domain.ErrNoReadableText)
	}
	if ratio := readabilityRatio(res.Text); ratio < minReadabilityRatio {
		return Result{}, domain.NewLowReadability(ratio)
	}
	return res, nil
}

// normalizeMediaType lowercases and strips parameters like charset.
func normalizeMediaType(mediaType string) string {
	mt, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(mediaType))
	}
	return mt
}

func isPDF(mt string, data []byte) bool {
	if mt == "application/pdf" {
		return true
	}
	// Declared types lie often enough that the magic header wins.
	return len(data) >= 5 && string(data[:5]) == "%PDF-"
}

func isMarkup(mt string) bool {
	switch mt {
	case "text/html", "application/xhtml+xml", "text/markdown", "text/x-markdown":
		return true
	}
	return false
}

func isPlainText(mt string) bool {
	if strings.HasPrefix(mt, "text/") {
		return true
	}
	switch mt {
	case "application/json", "application/xml", "application/x-yaml",
		"application/javascript", "application/csv":
		return true
	}
	return false
}
