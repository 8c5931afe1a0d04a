// Package local provides a deterministic, corpus-independent embedder that
// hashes tokens into a fixed-dimension bag-of-words vector. It stands in for
// a remote model when running offline and in tests.
package local

import (
	"context"
	"hash/fnv"
	"regexp"
	"strings"

	"xrayrag/internal/embedding"
	"xrayrag/internal/index"
)

// Ensure Embedder implements the provider interface.
var _ embedding.Embedder = (*Embedder)(nil)

// DefaultDimension is used when no dimension is configured.
const DefaultDimension = 256

var tokenPattern = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)

// Embedder hashes each token into a vector slot and L2-normalizes the
// result. Texts sharing tokens land close under cosine similarity; the
// mapping depends only on the text and the dimension.
type Embedder struct {
	dim int
}

// New creates a local embedder with the given dimension.
func New(dimension int) *Embedder {
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	return &Embedder{dim: dimension}
}

// Embed returns the token-hash embedding of text. Text with no tokens yields
// the zero vector, which scores 0 against every query.
func (e *Embedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dim)
	for _, tok := range tokenPattern.FindAllString(strings.ToLower(text), -1) {
		h := fnv.New32a()
		h.Write([]byte(tok))
		vec[int(h.Sum32())%e.dim]++
	}
	index.Normalize(vec)
	return vec, nil
}

// EmbedBatch embeds every text in order.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

// Dimension returns the configured vector dimensionality.
func (e *Embedder) Dimension() int { return e.dim }

// ModelInfo identifies this embedder.
func (e *Embedder) ModelInfo() string { return "local-token-hash-v1" }
