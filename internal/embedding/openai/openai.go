// Package openai implements the embedding provider on the OpenAI API.
package openai

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"xrayrag/internal/embedding"
	"xrayrag/internal/index"
	"xrayrag/internal/ragerrors"
)

// Ensure Client implements the provider interface.
var _ embedding.Embedder = (*Client)(nil)

// Config configures the OpenAI embeddings client.
type Config struct {
	BaseURL           string
	APIKeyEnv         string
	Model             string
	Timeout           time.Duration
	RequestsPerMinute int
}

// Client is an OpenAI-backed embedder. All returned vectors are
// L2-normalized so inner product equals cosine similarity downstream.
// The dimension is fixed per model at construction and never changes, so a
// Client is safe for concurrent use.
type Client struct {
	api     *openai.Client
	model   openai.EmbeddingModel
	dim     int
	limiter *rate.Limiter
}

// New creates an embeddings client from the configuration. The API key is
// read from the environment variable named by APIKeyEnv.
func New(cfg Config) (*Client, error) {
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "OPENAI_API_KEY"
	}
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.Model == "" {
		cfg.Model = string(openai.SmallEmbedding3)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RequestsPerMinute == 0 {
		cfg.RequestsPerMinute = 60
	}

	apiCfg := openai.DefaultConfig(key)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}
	apiCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	dim := 1536 // text-embedding-3-small
	if cfg.Model == string(openai.LargeEmbedding3) {
		dim = 3072
	}

	return &Client{
		api:     openai.NewClientWithConfig(apiCfg),
		model:   openai.EmbeddingModel(cfg.Model),
		dim:     dim,
		limiter: rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), 1),
	}, nil
}

// Embed returns the normalized embedding for a single text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch returns normalized embeddings for all texts in one request.
// Empty inputs are substituted with a single space so the request stays
// valid; their positional slot is preserved.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ragerrors.NewEmbeddingError("batch", fmt.Errorf("no texts to embed"))
	}
	input := make([]string, len(texts))
	for i, t := range texts {
		if t == "" {
			t = " "
		}
		input[i] = t
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, ragerrors.NewEmbeddingError("batch", err)
	}
	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: input,
		Model: c.model,
	})
	if err != nil {
		return nil, ragerrors.NewEmbeddingError("batch", err)
	}
	if len(resp.Data) != len(input) {
		return nil, ragerrors.NewEmbeddingError("batch",
			fmt.Errorf("expected %d embeddings, got %d", len(input), len(resp.Data)))
	}

	out := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		if len(d.Embedding) != c.dim {
			return nil, ragerrors.NewEmbeddingError("batch",
				fmt.Errorf("model returned dimension %d, expected %d", len(d.Embedding), c.dim))
		}
		vec := make([]float32, len(d.Embedding))
		copy(vec, d.Embedding)
		index.Normalize(vec)
		out[i] = vec
	}
	return out, nil
}

// Dimension returns the vector dimensionality for the configured model.
func (c *Client) Dimension() int { return c.dim }

// ModelInfo identifies the remote model.
func (c *Client) ModelInfo() string { return "openai-" + string(c.model) }
