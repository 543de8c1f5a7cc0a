package extract

import (
	"bytes"
	"regexp"
	"strings"
)

// PDF heuristics. Neither parses the document structure; both scan the raw
// byte stream and are expected to fail on compressed or encrypted content
// streams, which the readability gate then catches.

var pageMarkerRe = regexp.MustCompile(`/Type\s*/Page[^s]`)

// boundPages caps processing at maxPages page objects. Returns total page
// count, the number of pages cut off, and the (possibly truncated) bytes.
func boundPages(data []byte, maxPages int) (total, skipped int, bounded []byte) {
	locs := pageMarkerRe.FindAllIndex(data, -1)
	total = len(locs)
	if total <= maxPages {
		return total, 0, data
	}
	// Cut at the first marker past the cap.
	cut := locs[maxPages][0]
	return total, total - maxPages, data[:cut]
}

// extractLiteralStrings collects parenthesized literal strings from the byte
// stream, unescapes them, and joins them with spaces. PDF text-drawing
// operators (Tj, TJ, ') take their arguments in this form.
func extractLiteralStrings(data []byte) string {
	var parts []string
	depth := 0
	var cur bytes.Buffer

	for i := 0; i < len(data); i++ {
		c := data[i]
		switch {
		case c == '\\' && depth > 0 && i+1 < len(data):
			cur.WriteByte(c)
			i++
			cur.WriteByte(data[i])
		case c == '(':
			if depth > 0 {
				cur.WriteByte(c)
			}
			depth++
		case c == ')':
			depth--
			if depth > 0 {
				cur.WriteByte(c)
			} else if depth == 0 {
				if s := unescapeLiteral(cur.String()); s != "" {
					parts = append(parts, s)
				}
				cur.Reset()
			} else {
				depth = 0
			}
		case depth > 0:
			cur.WriteByte(c)
		}
	}

	return strings.Join(parts, " ")
}

var (
	textObjectRe = regexp.MustCompile(`(?s)BT(.*?)ET`)
	showOpRe     = regexp.MustCompile(`\(((?:[^()\\]|\\.)*)\)\s*(?:Tj|TJ|')`)
	tjArrayRe    = regexp.MustCompile(`\[((?:[^\[\]\\]|\\.)*)\]\s*TJ`)
	arrayItemRe  = regexp.MustCompile(`\(((?:[^()\\]|\\.)*)\)`)
)

// extractTextObjects collects strings passed to show operators inside BT/ET
// text objects.
func extractTextObjects(data []byte) string {
	var parts []string

	for _, obj := range textObjectRe.FindAllSubmatch(data, -1) {
		body := obj[1]

		for _, m := range showOpRe.FindAllSubmatch(body, -1) {
			if s := unescapeLiteral(string(m[1])); s != "" {
				parts = append(parts, s)
			}
		}
		for _, arr := range tjArrayRe.FindAllSubmatch(body, -1) {
			for _, item := range arrayItemRe.FindAllSubmatch(arr[1], -1) {
				if s := unescapeLiteral(string(item[1])); s != "" {
					parts = append(parts, s)
				}
			}
		}
	}

	return strings.Join(parts, " ")
}

// unescapeLiteral resolves the escape sequences defined for PDF literal
// strings: \n \r \t \b \f \( \) \\ and octal \ddd. A backslash before a
// newline continues the line.
func unescapeLiteral(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(s) {
			break
		}
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'b', 'f':
			// no textual value
		case '(', ')', '\\':
			b.WriteByte(s[i])
		case '\n':
			// line continuation
		case '0', '1', '2', '3', '4', '5', '6', '7':
			val := int(s[i] - '0')
			for n := 0; n < 2 && i+1 < len(s) && s[i+1] >= '0' && s[i+1] <= '7'; n++ {
				i++
				val = val*8 + int(s[i]-'0')
			}
			if val >= 0x20 && val < 0x7f {
				b.WriteByte(byte(val))
			}
		default:
			b.WriteByte(s[i])
		}
	}

	return strings.TrimSpace(b.String())
}
