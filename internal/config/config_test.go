package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("missing file returns defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, "local", cfg.Embedder.Type)
		assert.Equal(t, 256, cfg.Embedder.Dimension)
		assert.Equal(t, 100, cfg.Index.BatchSize)
		assert.Equal(t, 5, cfg.Search.TopK)
		assert.NotEmpty(t, cfg.Index.DataPath)
		assert.NotEmpty(t, cfg.Index.IndexPath)
		assert.NotEmpty(t, cfg.Index.MetadataPath)
	})

	t.Run("partial file gets defaults applied", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := "embedder:\n  type: openai\n  openai:\n    model: text-embedding-3-large\nindex:\n  data_path: reports.csv\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "openai", cfg.Embedder.Type)
		assert.Equal(t, "text-embedding-3-large", cfg.Embedder.OpenAI.Model)
		assert.Equal(t, "OPENAI_API_KEY", cfg.Embedder.OpenAI.APIKeyEnv)
		assert.Equal(t, 30, cfg.Embedder.OpenAI.TimeoutSecs)
		assert.Equal(t, 60, cfg.Embedder.OpenAI.RequestsPerMinute)
		assert.Equal(t, "reports.csv", cfg.Index.DataPath)
		assert.Equal(t, 100, cfg.Index.BatchSize)
	})

	t.Run("invalid yaml errors", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("::not yaml::"), 0o644))
		_, err := Load(path)
		assert.Error(t, err)
	})
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := defaultConfig()
	cfg.Search.TopK = 12

	require.NoError(t, Save(path, cfg))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
