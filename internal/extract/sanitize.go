package extract

import (
	"regexp"
	"strings"
)

var (
	horizontalWS = regexp.MustCompile(`[ \t]+`)
	spacedNL     = regexp.MustCompile(` ?\n ?`)
	multiNL      = regexp.MustCompile(`\n{3,}`)
)

// Sanitize strips non-printable control characters, drops Unicode replacement
// characters, and normalizes whitespace. Runs of spaces and tabs collapse to
// a single space; blank lines collapse to a single blank line so paragraph
// boundaries survive for the chunker. Idempotent: Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '�' {
			continue
		}
		if r < 0x20 && r != '\n' && r != '\t' {
			continue
		}
		if r == 0x7f {
			continue
		}
		b.WriteRune(r)
	}

	out := horizontalWS.ReplaceAllString(b.String(), " ")
	out = spacedNL.ReplaceAllString(out, "\n")
	out = multiNL.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}
