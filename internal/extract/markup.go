package extract

import (
	"regexp"
	"strings"
)

var (
	scriptBlockRe = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleBlockRe  = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	tagRe         = regexp.MustCompile(`<[^>]*>`)
	commentRe     = regexp.MustCompile(`(?s)<!--.*?-->`)
)

var entityReplacer = strings.NewReplacer(
	"&nbsp;", " ",
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&apos;", "'",
)

// stripMarkup removes tags, comments, and script/style blocks from HTML or
// Markdown-flavored input. Best-effort only; the readability gate decides
// whether the remainder is usable.
func stripMarkup(s string) string {
	s = commentRe.ReplaceAllString(s, " ")
	s = scriptBlockRe.ReplaceAllString(s, " ")
	s = styleBlockRe.ReplaceAllString(s, " ")
	s = tagRe.ReplaceAllString(s, " ")
	return entityReplacer.Replace(s)
}
