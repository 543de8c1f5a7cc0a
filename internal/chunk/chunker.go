// Package chunk splits sanitized text into bounded, overlapping semantic
// units sized for embedding.
package chunk

import "strings"

// Defaults used by the ingestion pipeline; overridable via config.
const (
	DefaultMaxChunkSize = 2000 // characters
	DefaultOverlap      = 200  // characters, approximated as overlap/10 words
)

// Splitter chunks text with a size bound and inter-chunk overlap.
type Splitter struct {
	maxSize int
	overlap int
}

// New creates a splitter, filling non-positive parameters with defaults.
// An overlap at or above maxSize is reduced to a quarter of it.
func New(maxSize, overlap int) *Splitter {
	if maxSize <= 0 {
		maxSize = DefaultMaxChunkSize
	}
	if overlap < 0 {
		overlap = DefaultOverlap
	}
	if overlap >= maxSize {
		overlap = maxSize / 4
	}
	return &Splitter{maxSize: maxSize, overlap: overlap}
}

// Split returns the ordered chunk sequence for text. Deterministic for
// identical input. Every non-whitespace character of the input appears in at
// least one chunk; overlap may duplicate characters across adjacent chunks.
// A chunk's length never exceeds maxSize + overlap.
func (s *Splitter) Split(text string) []string {
	paragraphs := splitParagraphs(text)

	var chunks []string
	var buf strings.Builder

	flush := func() string {
		emitted := strings.TrimSpace(buf.String())
		buf.Reset()
		if emitted != "" {
			chunks = append(chunks, emitted)
		}
		return emitted
	}

	for _, para := range paragraphs {
		if len(para) > s.maxSize {
			// Oversized paragraph: flush pending buffer, then split it on
			// sentence boundaries under the same size rule.
			flush()
			chunks = append(chunks, s.splitSentences(para)...)
			continue
		}

		// The +2 accounts for the "\n\n" joiner written below; without it a
		// chunk could land past maxSize+overlap.
		if buf.Len() > 0 && buf.Len()+2+len(para) > s.maxSize {
			emitted := flush()
			// The seed's joiner also counts against the overlap budget.
			if seed := overlapTail(emitted, s.overlap/10, s.overlap-2); seed != "" {
				buf.WriteString(seed)
			}
		}

		if buf.Len() > 0 {
			buf.WriteString("\n\n")
		}
		buf.WriteString(para)
	}
	flush()

	// Zero chunks (e.g. whitespace-only input): fall back to the whole text.
	if len(chunks) == 0 {
		return []string{text}
	}
	return chunks
}

// splitSentences accumulates sentences of an oversized paragraph into
// size-bounded chunks, joining kept sentences with ". ".
func (s *Splitter) splitSentences(para string) []string {
	sentences := splitOnSentenceBoundaries(para)

	var chunks []string
	var buf strings.Builder

	for _, sent := range sentences {
		// A sentence with no boundaries at all still has to respect the
		// size bound; hard-split it.
		for len(sent) > s.maxSize {
			if buf.Len() > 0 {
				chunks = append(chunks, strings.TrimSpace(buf.String()))
				buf.Reset()
			}
			chunks = append(chunks, sent[:s.maxSize])
			sent = sent[s.maxSize:]
		}
		if sent == "" {
			continue
		}
		if buf.Len() > 0 && buf.Len()+2+len(sent) > s.maxSize {
			chunks = append(chunks, strings.TrimSpace(buf.String()))
			buf.Reset()
		}
		if buf.Len() > 0 {
			buf.WriteString(". ")
		}
		buf.WriteString(sent)
	}
	if buf.Len() > 0 {
		chunks = append(chunks, strings.TrimSpace(buf.String()))
	}
	return chunks
}

// splitParagraphs splits on blank-line boundaries, discarding empties.
func splitParagraphs(text string) []string {
	raw := strings.Split(text, "\n\n")
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// splitOnSentenceBoundaries breaks text after '.', '!', '?'.
func splitOnSentenceBoundaries(text string) []string {
	var sentences []string
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '.', '!', '?':
			if s := strings.TrimSpace(text[start : i+1]); s != "" {
				sentences = append(sentences, strings.TrimRight(s, ".!?"))
			}
			start = i + 1
		}
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// overlapTail returns the last n words of emitted text, capped at maxLen
// characters, seeding the next chunk so context carries across the boundary.
func overlapTail(text string, n, maxLen int) string {
	if n <= 0 || maxLen <= 0 || text == "" {
		return ""
	}
	words := strings.Fields(text)
	if len(words) > n {
		words = words[len(words)-n:]
	}
	seed := strings.Join(words, " ")
	for len(seed) > maxLen && len(words) > 1 {
		words = words[1:]
		seed = strings.Join(words, " ")
	}
	if len(seed) > maxLen {
		seed = seed[len(seed)-maxLen:]
	}
	return seed
}
