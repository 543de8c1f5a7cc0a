package extract

import (
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/ragdex/internal/domain"
)

func TestExtract_PlainText(t *testing.T) {
	e := New(Config{})

	res, err := e.Extract([]byte("Just some plain text content."), "text/plain")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Strategy != StrategyPlainText {
		t.Errorf("expected strategy %s, got %s", StrategyPlainText, res.Strategy)
	}
	if res.Text != "Just some plain text content." {
		t.Errorf("unexpected text: %q", res.Text)
	}
}

func TestExtract_StripsCharsetParameter(t *testing.T) {
	e := New(Config{})

	res, err := e.Extract([]byte("encoded but still text"), "text/plain; charset=utf-8")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Strategy != StrategyPlainText {
		t.Errorf("expected strategy %s, got %s", StrategyPlainText, res.Strategy)
	}
}

func TestExtract_TextLikeApplicationTypes(t *testing.T) {
	e := New(Config{})

	for _, mt := range []string{
		"application/json", "application/xml", "application/x-yaml", "application/csv",
	} {
		res, err := e.Extract([]byte(`{"key": "some value here"}`), mt)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", mt, err)
			continue
		}
		if res.Strategy != StrategyPlainText {
			t.Errorf("%s: expected strategy %s, got %s", mt, StrategyPlainText, res.Strategy)
		}
	}
}

func TestExtract_Markup(t *testing.T) {
	e := New(Config{})

	html := `<html><head><style>body { color: red; }</style>
<script>alert("nope");</script></head>
<body><!-- comment --><h1>Title</h1><p>Body &amp; more &lt;text&gt;</p></body></html>`

	res, err := e.Extract([]byte(html), "text/html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Strategy != StrategyMarkup {
		t.Errorf("expected strategy %s, got %s", StrategyMarkup, res.Strategy)
	}
	for _, want := range []string{"Title", "Body & more <text>"} {
		if !strings.Contains(res.Text, want) {
			t.Errorf("expected text to contain %q, got %q", want, res.Text)
		}
	}
	for _, gone := range []string{"alert", "color: red", "comment", "<h1>"} {
		if strings.Contains(res.Text, gone) {
			t.Errorf("expected %q to be stripped, got %q", gone, res.Text)
		}
	}
}

func TestExtract_PDFMagicOverridesDeclaredType(t *testing.T) {
	e := New(Config{})

	// Declared as plain text but carrying the PDF magic header.
	data := []byte("%PDF-1.4\nBT (Content drawn by a show operator) Tj ET")

	res, err := e.Extract(data, "text/plain")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Strategy != StrategyPDFLiteral && res.Strategy != StrategyPDFTextObject {
		t.Errorf("expected a PDF strategy, got %s", res.Strategy)
	}
	if !strings.Contains(res.Text, "Content drawn by a show operator") {
		t.Errorf("unexpected text: %q", res.Text)
	}
}

func TestExtract_PDFEscapeSequences(t *testing.T) {
	e := New(Config{})

	data := []byte(`%PDF-1.4
BT (Parens \(escaped\) and octal \101\102\103 here) Tj ET`)

	res, err := e.Extract(data, "application/pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(res.Text, "Parens (escaped) and octal ABC here") {
		t.Errorf("unexpected text: %q", res.Text)
	}
}

func TestExtract_PDFBoundsPages(t *testing.T) {
	e := New(Config{MaxPages: 2})

	var b strings.Builder
	b.WriteString("%PDF-1.4\n")
	b.WriteString("/Type /Page\nBT (Text on the first page) Tj ET\n")
	b.WriteString("/Type /Page\nBT (Text on the second page) Tj ET\n")
	b.WriteString("/Type /Page\nBT (Text past the page cap) Tj ET\n")

	res, err := e.Extract([]byte(b.String()), "application/pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.PagesTotal != 3 {
		t.Errorf("expected PagesTotal=3, got %d", res.PagesTotal)
	}
	if res.PagesSkipped != 1 {
		t.Errorf("expected PagesSkipped=1, got %d", res.PagesSkipped)
	}
	if !strings.Contains(res.Text, "first page") || !strings.Contains(res.Text, "second page") {
		t.Errorf("expected text from kept pages, got %q", res.Text)
	}
	if strings.Contains(res.Text, "past the page cap") {
		t.Errorf("expected truncated page to be dropped, got %q", res.Text)
	}
}

func TestExtract_PDFWithNoPlausibleText(t *testing.T) {
	e := New(Config{})

	// Compressed content streams carry no literal strings.
	_, err := e.Extract([]byte("%PDF-1.7\nstream\x00\x01\x02\x03endstream"), "application/pdf")
	if !errors.Is(err, domain.ErrNoReadableText) {
		t.Errorf("expected ErrNoReadableText, got %v", err)
	}
}

func TestExtract_EmptyData(t *testing.T) {
	e := New(Config{})

	_, err := e.Extract(nil, "text/plain")
	if !errors.Is(err, domain.ErrNoReadableText) {
		t.Errorf("expected ErrNoReadableText, got %v", err)
	}
}

func TestExtract_WhitespaceOnlyText(t *testing.T) {
	e := New(Config{})

	_, err := e.Extract([]byte("   \n\t  \n "), "text/plain")
	if !errors.Is(err, domain.ErrNoReadableText) {
		t.Errorf("expected ErrNoReadableText, got %v", err)
	}
}

func TestExtract_UnsupportedFormat(t *testing.T) {
	e := New(Config{})

	for _, mt := range []string{"image/png", "application/zip", "audio/mpeg", ""} {
		_, err := e.Extract([]byte("does not matter"), mt)
		if !errors.Is(err, domain.ErrUnsupportedFormat) {
			t.Errorf("%q: expected ErrUnsupportedFormat, got %v", mt, err)
		}
	}
}

func TestExtract_MostlyBinaryFailsReadability(t *testing.T) {
	e := New(Config{})

	text := strings.Repeat("éüßø", 24) + "abcd"
	_, err := e.Extract([]byte(text), "text/plain")
	if !errors.Is(err, domain.ErrLowReadability) {
		t.Fatalf("expected ErrLowReadability, got %v", err)
	}

	var lre *domain.LowReadabilityError
	if !errors.As(err, &lre) {
		t.Fatalf("expected LowReadabilityError, got %T", err)
	}
	if lre.Diagnostic != domain.DiagnosticMostlyBinary {
		t.Errorf("expected diagnostic %s, got %s", domain.DiagnosticMostlyBinary, lre.Diagnostic)
	}
	if lre.Ratio >= 0.1 {
		t.Errorf("expected ratio below 0.1, got %v", lre.Ratio)
	}
}

func TestExtract_MixedEncodingFailsReadability(t *testing.T) {
	e := New(Config{})

	text := strings.Repeat("é", 70) + strings.Repeat("a", 30)
	_, err := e.Extract([]byte(text), "text/plain")

	var lre *domain.LowReadabilityError
	if !errors.As(err, &lre) {
		t.Fatalf("expected LowReadabilityError, got %v", err)
	}
	if lre.Diagnostic != domain.DiagnosticMixedEncoding {
		t.Errorf("expected diagnostic %s, got %s", domain.DiagnosticMixedEncoding, lre.Diagnostic)
	}
}

func TestExtract_ReadableTextPassesGate(t *testing.T) {
	e := New(Config{})

	// Some accented characters are fine as long as most of the text reads.
	res, err := e.Extract([]byte("Café au lait is mostly readable text."), "text/plain")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text == "" {
		t.Error("expected non-empty text")
	}
}
