package ragerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDataSourceError(t *testing.T) {
	err := NewDataSourceError("data/cxr_df.csv", "")
	assert.ErrorIs(t, err, ErrDataSource)
	assert.NotErrorIs(t, err, ErrArtifact)
	assert.Contains(t, err.Error(), "data/cxr_df.csv")

	withMessage := NewDataSourceError("data/cxr_df.csv", "dataset has no rows")
	assert.Equal(t, "dataset has no rows", withMessage.Error())
}

func TestArtifactError(t *testing.T) {
	err := NewArtifactError("data/reports.idx", "")
	assert.ErrorIs(t, err, ErrArtifact)
	assert.NotErrorIs(t, err, ErrDataSource)
	assert.Contains(t, err.Error(), "data/reports.idx")
}

func TestEmbeddingError(t *testing.T) {
	cause := errors.New("provider down")
	err := NewEmbeddingError("build", cause)
	assert.ErrorIs(t, err, ErrEmbedding)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "build")

	wrapped := fmt.Errorf("ensure ready: %w", err)
	assert.ErrorIs(t, wrapped, ErrEmbedding)
}
