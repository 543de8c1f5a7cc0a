package answer

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/ragdex/internal/domain"
)

const groundedHeader = `You are a helpful assistant that answers questions using excerpts from the user's documents.

Rules:
- Answer using only the excerpts below. Do not invent facts that are not in them.
- When the excerpts do not contain the answer, say so plainly.
- Mention the source document name when it helps the user locate the information.
- Keep a natural conversational tone with paragraph breaks.

Excerpts:`

const noContentPrompt = `You are a helpful assistant. No relevant content was found in the user's documents for this question. Tell the user you have no relevant information in their documents, and do not answer from general knowledge.`

// groundedPrompt renders the system prompt with one labelled excerpt per
// retrieved chunk, best match first.
func groundedPrompt(results []domain.SearchResult) string {
	var b strings.Builder
	b.WriteString(groundedHeader)
	for i := range results {
		r := &results[i]
		name := r.FileName
		if name == "" {
			name = r.FileID
		}
		fmt.Fprintf(&b, "\n\n[%d] %s (relevance %.2f)\n%s", i+1, name, r.Similarity, r.Content)
	}
	return b.String()
}
