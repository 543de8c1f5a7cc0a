package chunk

import (
	"strings"
	"testing"
	"unicode"
)

func TestSplit_ParagraphsThatFitShareAChunk(t *testing.T) {
	s := New(100, 0)

	chunks := s.Split("One.\n\nTwo.")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d: %v", len(chunks), chunks)
	}
	if chunks[0] != "One.\n\nTwo." {
		t.Errorf("unexpected chunk: %q", chunks[0])
	}
}

func TestSplit_ParagraphBoundary(t *testing.T) {
	s := New(20, 0)

	chunks := s.Split("Alpha beta.\n\nGamma delta epsilon.")
	want := []string{"Alpha beta.", "Gamma delta epsilon."}
	if len(chunks) != len(want) {
		t.Fatalf("expected %d chunks, got %d: %v", len(want), len(chunks), chunks)
	}
	for i := range want {
		if chunks[i] != want[i] {
			t.Errorf("chunk %d: expected %q, got %q", i, want[i], chunks[i])
		}
	}
}

func TestSplit_OverlapSeedsNextChunk(t *testing.T) {
	s := New(30, 20)

	chunks := s.Split("alpha bravo charlie delta.\n\nfoo bar baz qux quux.")
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %v", len(chunks), chunks)
	}
	if chunks[0] != "alpha bravo charlie delta." {
		t.Errorf("unexpected first chunk: %q", chunks[0])
	}
	// The second chunk carries the tail of the first for context.
	if !strings.HasPrefix(chunks[1], "charlie delta.") {
		t.Errorf("expected overlap seed at the start of chunk 2, got %q", chunks[1])
	}
	if !strings.Contains(chunks[1], "foo bar baz qux quux.") {
		t.Errorf("expected second paragraph in chunk 2, got %q", chunks[1])
	}
}

func TestSplit_OversizedParagraphFallsBackToSentences(t *testing.T) {
	s := New(40, 0)

	chunks := s.Split("First sentence goes here. Second sentence is also here. Third one.")
	want := []string{
		"First sentence goes here",
		"Second sentence is also here. Third one",
	}
	if len(chunks) != len(want) {
		t.Fatalf("expected %d chunks, got %d: %v", len(want), len(chunks), chunks)
	}
	for i := range want {
		if chunks[i] != want[i] {
			t.Errorf("chunk %d: expected %q, got %q", i, want[i], chunks[i])
		}
	}
}

func TestSplit_HardSplitsBoundarylessText(t *testing.T) {
	s := New(10, 0)

	chunks := s.Split(strings.Repeat("a", 25))
	want := []string{
		strings.Repeat("a", 10),
		strings.Repeat("a", 10),
		strings.Repeat("a", 5),
	}
	if len(chunks) != len(want) {
		t.Fatalf("expected %d chunks, got %d: %v", len(want), len(chunks), chunks)
	}
	for i := range want {
		if chunks[i] != want[i] {
			t.Errorf("chunk %d: expected %q, got %q", i, want[i], chunks[i])
		}
	}
}

func TestSplit_WhitespaceOnlyFallsBackToWholeText(t *testing.T) {
	s := New(100, 0)

	in := "   \n\n   "
	chunks := s.Split(in)
	if len(chunks) != 1 || chunks[0] != in {
		t.Errorf("expected whole-text fallback, got %v", chunks)
	}
}

func TestSplit_SizeBoundHolds(t *testing.T) {
	s := New(50, 10)

	var b strings.Builder
	for i := 0; i < 40; i++ {
		b.WriteString("some words of varying length appear in this sentence. ")
		if i%5 == 0 {
			b.WriteString("\n\n")
		}
	}

	chunks := s.Split(b.String())
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len(c) > 50+10 {
			t.Errorf("chunk %d exceeds bound: %d chars", i, len(c))
		}
		if strings.TrimSpace(c) == "" {
			t.Errorf("chunk %d is blank", i)
		}
	}
}

func TestSplit_ParagraphJoinerCountsAgainstBound(t *testing.T) {
	s := New(20, 0)

	// The two paragraphs are 10+9 chars; with the "\n\n" joiner they would
	// make a 21-char chunk, one past the bound, so they must not be merged.
	chunks := s.Split("aaaa bbbbb\n\nccc ddddd")
	want := []string{"aaaa bbbbb", "ccc ddddd"}
	if len(chunks) != len(want) {
		t.Fatalf("expected %d chunks, got %d: %v", len(want), len(chunks), chunks)
	}
	for i := range want {
		if chunks[i] != want[i] {
			t.Errorf("chunk %d: expected %q, got %q", i, want[i], chunks[i])
		}
	}
	for i, c := range chunks {
		if len(c) > 20 {
			t.Errorf("chunk %d exceeds maxSize+overlap: len=%d %q", i, len(c), c)
		}
	}
}

func TestSplit_SentenceJoinerCountsAgainstBound(t *testing.T) {
	s := New(16, 0)

	// Oversized paragraph; the two 8-char sentences fit maxSize individually
	// but not once rejoined with ". ".
	chunks := s.Split("abcd efg. hij klmn. x.")
	for i, c := range chunks {
		if len(c) > 16 {
			t.Errorf("chunk %d exceeds maxSize+overlap: len=%d %q", i, len(c), c)
		}
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %v", len(chunks), chunks)
	}
	if chunks[0] != "abcd efg" || chunks[1] != "hij klmn. x" {
		t.Errorf("unexpected chunks: %v", chunks)
	}
}

// nonSpaceCounts tallies runes, skipping whitespace (chunk joins normalize
// it) and sentence punctuation (rejoining oversized paragraphs rewrites it).
func nonSpaceCounts(text string) map[rune]int {
	counts := make(map[rune]int)
	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
		case r == '.' || r == '!' || r == '?':
		default:
			counts[r]++
		}
	}
	return counts
}

func TestSplit_CoversAllInputCharacters(t *testing.T) {
	inputs := []string{
		"Alpha beta gamma delta. Epsilon zeta eta theta. Iota kappa lambda.\n\n" +
			"Mu nu xi omicron pi rho sigma! Tau upsilon phi chi psi omega?",
		"Short one.\n\nA considerably longer second paragraph that will not fit " +
			"inside a single chunk and therefore has to be broken apart. It keeps " +
			"going with more words. And ends here.",
		strings.Repeat("boundaryless", 12),
	}

	for _, sizes := range [][2]int{{30, 0}, {40, 10}, {80, 20}} {
		s := New(sizes[0], sizes[1])
		for _, in := range inputs {
			joined := strings.Join(s.Split(in), "\n")
			got := nonSpaceCounts(joined)
			// Overlap may duplicate characters, but never lose them.
			for r, n := range nonSpaceCounts(in) {
				if got[r] < n {
					t.Errorf("New(%d,%d): rune %q appears %d times in input but %d in chunks of %q",
						sizes[0], sizes[1], r, n, got[r], in)
				}
			}
		}
	}
}

func TestSplit_Deterministic(t *testing.T) {
	s := New(30, 10)
	in := "Alpha beta gamma delta. Epsilon zeta eta theta.\n\nIota kappa lambda mu nu xi."

	first := s.Split(in)
	second := s.Split(in)
	if len(first) != len(second) {
		t.Fatalf("non-deterministic chunk count: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("chunk %d differs between runs: %q vs %q", i, first[i], second[i])
		}
	}
}

func TestNew_Defaults(t *testing.T) {
	s := New(0, -1)
	if s.maxSize != DefaultMaxChunkSize {
		t.Errorf("expected maxSize=%d, got %d", DefaultMaxChunkSize, s.maxSize)
	}
	if s.overlap != DefaultOverlap {
		t.Errorf("expected overlap=%d, got %d", DefaultOverlap, s.overlap)
	}
}

func TestNew_OverlapReducedWhenTooLarge(t *testing.T) {
	s := New(100, 100)
	if s.overlap != 25 {
		t.Errorf("expected overlap=25, got %d", s.overlap)
	}
}

func TestOverlapTail(t *testing.T) {
	if got := overlapTail("one two three four five", 2, 100); got != "four five" {
		t.Errorf("expected %q, got %q", "four five", got)
	}
	if got := overlapTail("anything", 0, 100); got != "" {
		t.Errorf("expected empty seed for n=0, got %q", got)
	}
	// Word-based tail still respects the character cap.
	if got := overlapTail("supercalifragilistic word", 2, 8); len(got) > 8 {
		t.Errorf("expected seed capped at 8 chars, got %q", got)
	}
}
