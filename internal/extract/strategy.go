package extract

// Strategy identifies which extraction heuristic produced a text candidate.
type Strategy string

const (
	// StrategyPlainText decodes the bytes directly as text.
	StrategyPlainText Strategy = "plain_text"
	// StrategyMarkup strips tags and entities from HTML/Markdown-like input.
	StrategyMarkup Strategy = "markup"
	// StrategyPDFLiteral extracts literal strings fed to PDF text-drawing operators.
	StrategyPDFLiteral Strategy = "pdf_literal"
	// StrategyPDFTextObject extracts show-operator strings inside BT/ET text objects.
	StrategyPDFTextObject Strategy = "pdf_text_object"
)

// candidate is one heuristic's output, scored by length.
type candidate struct {
	strategy Strategy
	text     string
}

func (c candidate) score() int { return len(c.text) }

// selectCandidate picks the best-scoring candidate above the plausibility
// floor. Pure function over the candidate list.
func selectCandidate(cands []candidate, minLen int) (candidate, bool) {
	best := candidate{}
	found := false
	for _, c := range cands {
		if c.score() <= minLen {
			continue
		}
		if !found || c.score() > best.score() {
			best = c
			found = true
		}
	}
	return best, found
}

// readabilityRatio is the fraction of ASCII letters, digits, and whitespace
// among all characters. Low values indicate failed or garbled extraction.
func readabilityRatio(s string) float64 {
	if s == "" {
		return 0
	}
	total := 0
	readable := 0
	for _, r := range s {
		total++
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			readable++
		case r == ' ', r == '\n', r == '\t', r == '\r':
			readable++
		}
	}
	return float64(readable) / float64(total)
}
