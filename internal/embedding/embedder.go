// Package embedding defines the text embedding provider contract.
package embedding

import "context"

// Embedder converts free text into a fixed-dimension dense vector. For a
// given model version the mapping is deterministic and the dimension fixed.
type Embedder interface {
	// Embed returns the embedding vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns embedding vectors for multiple texts in one call.
	// More efficient than calling Embed in a loop.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the dimensionality of produced vectors.
	Dimension() int

	// ModelInfo identifies the model name and version.
	ModelInfo() string
}
