package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat signals a media type no extraction strategy handles.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrExtractionFailed signals that text extraction failed outright.
	ErrExtractionFailed = errors.New("extraction failed")
	// ErrLowReadability signals extracted text that is mostly unreadable.
	ErrLowReadability = errors.New("low readability")
	// ErrNoReadableText signals that no extraction candidate was plausible.
	ErrNoReadableText = errors.New("no readable text")

	// ErrChunkTooLarge signals a chunk over the embedding token ceiling.
	// Internal skip, never fatal to an ingestion run.
	ErrChunkTooLarge = errors.New("chunk too large")

	// ErrRateLimited signals a provider rate limit hit (retryable).
	ErrRateLimited = errors.New("rate limited")
	// ErrProviderError signals an embedding/completion provider failure (retryable).
	ErrProviderError = errors.New("provider error")
	// ErrVectorDimMismatch signals a vector of unexpected dimensionality.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")

	// ErrInvalidQuery signals an empty or whitespace-only retrieval query.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrDocumentNotFound signals a missing source document.
	ErrDocumentNotFound = errors.New("document not found")
)

// ReadabilityDiagnostic distinguishes why extracted text is unreadable,
// since the two cases require different user remediation.
type ReadabilityDiagnostic string

const (
	// DiagnosticMostlyBinary: ratio < 0.1, likely a scanned or encrypted file.
	DiagnosticMostlyBinary ReadabilityDiagnostic = "mostly_binary"
	// DiagnosticMixedEncoding: ratio in [0.1, 0.5), likely an exotic encoding.
	DiagnosticMixedEncoding ReadabilityDiagnostic = "mixed_encoding"
)

// LowReadabilityError wraps ErrLowReadability with the measured ratio and diagnostic.
type LowReadabilityError struct {
	Ratio      float64
	Diagnostic ReadabilityDiagnostic
}

func (e *LowReadabilityError) Error() string {
	switch e.Diagnostic {
	case DiagnosticMostlyBinary:
		return fmt.Sprintf(
			"%s: readability ratio %.2f, content is mostly binary (likely scanned or encrypted; re-upload a text-based version)",
			ErrLowReadability.Error(), e.Ratio,
		)
	default:
		return fmt.Sprintf(
			"%s: readability ratio %.2f, content mixes text and garbage (likely an unsupported encoding)",
			ErrLowReadability.Error(), e.Ratio,
		)
	}
}

func (e *LowReadabilityError) Unwrap() error { return ErrLowReadability }

// NewLowReadability creates a low readability error for the given ratio.
func NewLowReadability(ratio float64) error {
	diag := DiagnosticMixedEncoding
	if ratio < 0.1 {
		diag = DiagnosticMostlyBinary
	}
	return &LowReadabilityError{Ratio: ratio, Diagnostic: diag}
}
