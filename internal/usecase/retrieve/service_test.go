package retrieve

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ragdex/internal/domain"
)

type fakeEmbedder struct {
	vec []float32
	err error
}

func (f *fakeEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	if f.err != nil {
		return domain.EmbeddingResult{}, f.err
	}
	return domain.EmbeddingResult{Embedding: f.vec}, nil
}

type fakeSearcher struct {
	results       []domain.SearchResult
	err           error
	gotCollection string
	gotK          int
	gotThreshold  float64
}

func (f *fakeSearcher) Search(
	_ context.Context, _ []float32, collectionID string, k int, threshold float64,
) ([]domain.SearchResult, error) {
	f.gotCollection = collectionID
	f.gotK = k
	f.gotThreshold = threshold
	return f.results, f.err
}

type fakeDocReader struct {
	docs   map[string]*domain.SourceDocument
	err    error
	gotIDs []string
}

func (f *fakeDocReader) GetMulti(_ context.Context, ids []string) (map[string]*domain.SourceDocument, error) {
	f.gotIDs = ids
	return f.docs, f.err
}

func newTestService(embedder *fakeEmbedder, searcher *fakeSearcher, docs *fakeDocReader) *Service {
	if embedder.vec == nil {
		embedder.vec = []float32{1, 0, 0}
	}
	return New(embedder, searcher, docs, zap.NewNop())
}

func TestRetrieve_EnrichesFromDocuments(t *testing.T) {
	searcher := &fakeSearcher{results: []domain.SearchResult{
		{ChunkID: "c1", FileID: "f1", Content: "one", Similarity: 0.9, FileName: "stale.pdf"},
		{ChunkID: "c2", FileID: "f1", Content: "two", Similarity: 0.8},
		{ChunkID: "c3", FileID: "f2", Content: "three", Similarity: 0.7},
	}}
	docs := &fakeDocReader{docs: map[string]*domain.SourceDocument{
		"f1": {ID: "f1", Name: "fresh.pdf", Size: 4096},
	}}
	svc := newTestService(&fakeEmbedder{}, searcher, docs)

	results, err := svc.Retrieve(context.Background(), domain.Query{Text: "what is one"})
	require.NoError(t, err)
	require.Len(t, results, 3)

	// Document metadata wins over the copy stored with the chunk.
	assert.Equal(t, "fresh.pdf", results[0].FileName)
	assert.Equal(t, int64(4096), results[0].FileSize)
	assert.Equal(t, "fresh.pdf", results[1].FileName)

	// f2 has no document record; the chunk's own copy survives.
	assert.Empty(t, results[2].FileName)

	// One lookup per distinct document.
	assert.Equal(t, []string{"f1", "f2"}, docs.gotIDs)
}

func TestRetrieve_AppliesQueryDefaults(t *testing.T) {
	searcher := &fakeSearcher{}
	svc := newTestService(&fakeEmbedder{}, searcher, &fakeDocReader{})

	_, err := svc.Retrieve(context.Background(), domain.Query{Text: "q"})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultMaxResults, searcher.gotK)
	assert.InDelta(t, domain.DefaultThreshold, searcher.gotThreshold, 1e-9)
	assert.Empty(t, searcher.gotCollection)
}

func TestRetrieve_PassesScope(t *testing.T) {
	searcher := &fakeSearcher{}
	svc := newTestService(&fakeEmbedder{}, searcher, &fakeDocReader{})

	_, err := svc.Retrieve(context.Background(), domain.Query{
		Text: "q", CollectionID: "team-a", MaxResults: 10, Threshold: 0.5,
	})
	require.NoError(t, err)
	assert.Equal(t, "team-a", searcher.gotCollection)
	assert.Equal(t, 10, searcher.gotK)
	assert.InDelta(t, 0.5, searcher.gotThreshold, 1e-9)
}

func TestRetrieve_BlankQuery(t *testing.T) {
	svc := newTestService(&fakeEmbedder{}, &fakeSearcher{}, &fakeDocReader{})

	_, err := svc.Retrieve(context.Background(), domain.Query{Text: "   "})
	require.ErrorIs(t, err, domain.ErrInvalidQuery)
}

func TestRetrieve_EmbedErrorPropagates(t *testing.T) {
	embedder := &fakeEmbedder{err: domain.ErrRateLimited}
	svc := newTestService(embedder, &fakeSearcher{}, &fakeDocReader{})

	results, err := svc.Retrieve(context.Background(), domain.Query{Text: "q"})
	require.ErrorIs(t, err, domain.ErrRateLimited)
	assert.Nil(t, results, "errors must not masquerade as empty results")
}

func TestRetrieve_SearchErrorPropagates(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("index gone")}
	svc := newTestService(&fakeEmbedder{}, searcher, &fakeDocReader{})

	_, err := svc.Retrieve(context.Background(), domain.Query{Text: "q"})
	require.Error(t, err)
}

func TestRetrieve_EnrichmentErrorPropagates(t *testing.T) {
	searcher := &fakeSearcher{results: []domain.SearchResult{{ChunkID: "c1", FileID: "f1"}}}
	docs := &fakeDocReader{err: errors.New("store down")}
	svc := newTestService(&fakeEmbedder{}, searcher, docs)

	_, err := svc.Retrieve(context.Background(), domain.Query{Text: "q"})
	require.Error(t, err)
}

func TestRetrieve_NoMatches(t *testing.T) {
	docs := &fakeDocReader{}
	svc := newTestService(&fakeEmbedder{}, &fakeSearcher{}, docs)

	results, err := svc.Retrieve(context.Background(), domain.Query{Text: "q"})
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Nil(t, docs.gotIDs, "no enrichment round trip for zero hits")
}
