package domain

// Record is a single corpus row normalized to the two fields the retrieval
// pipeline needs. Records are read-only once loaded.
type Record struct {
	ID   string
	Text string
}

// SearchResult is one ranked similar-report match returned by the retrieval
// engine. Score is exact cosine similarity in [-1, 1].
type SearchResult struct {
	ID      string
	Report  string
	Disease string
	Score   float32
}
