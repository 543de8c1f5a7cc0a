package db

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName    string
	Filter       string // optional FT filter expression prepended to the KNN clause
	Vector       []float32
	K            int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64 // KNN: cosine similarity in [0, 1]
	Fields map[string]string
}
