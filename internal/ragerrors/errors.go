// Package ragerrors provides sentinel and custom error types for the application.
package ragerrors

// ErrDataSource represents an unreadable or unparsable corpus source.
// Callers degrade to placeholder data; this is never fatal.
var ErrDataSource = &DataSourceError{}

// DataSourceError is a sentinel error for corpus files that cannot be read.
type DataSourceError struct {
	Path    string
	Message string
}

// NewDataSourceError creates a new DataSourceError for the given path.
func NewDataSourceError(path, message string) *DataSourceError {
	return &DataSourceError{
		Path:    path,
		Message: message,
	}
}

// Error implements the error interface.
func (e *DataSourceError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	if e.Path != "" {
		return "data source unavailable: " + e.Path
	}

	return "data source unavailable"
}

// Is implements the error interface for error comparison.
func (e *DataSourceError) Is(target error) bool {
	_, ok := target.(*DataSourceError)

	return ok
}

// ErrArtifact represents a missing or unreadable persisted index artifact.
// The retrieval engine responds by rebuilding; this is never fatal to callers.
var ErrArtifact = &ArtifactError{}

// ArtifactError is a sentinel error for index artifacts that are absent or corrupt.
type ArtifactError struct {
	Path    string
	Message string
}

// NewArtifactError creates a new ArtifactError for the given artifact path.
func NewArtifactError(path, message string) *ArtifactError {
	return &ArtifactError{
		Path:    path,
		Message: message,
	}
}

// Error implements the error interface.
func (e *ArtifactError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	if e.Path != "" {
		return "index artifact missing or unreadable: " + e.Path
	}

	return "index artifact missing"
}

// Is implements the error interface for error comparison.
func (e *ArtifactError) Is(target error) bool {
	_, ok := target.(*ArtifactError)

	return ok
}

// ErrEmbedding represents an embedding provider failure. It propagates as a
// hard failure for the operation that triggered it and must never corrupt an
// already-ready snapshot.
var ErrEmbedding = &EmbeddingError{}

// EmbeddingError wraps an embedding provider failure with the operation name.
type EmbeddingError struct {
	Op  string
	Err error
}

// NewEmbeddingError creates a new EmbeddingError wrapping the provider error.
func NewEmbeddingError(op string, err error) *EmbeddingError {
	return &EmbeddingError{
		Op:  op,
		Err: err,
	}
}

// Error implements the error interface.
func (e *EmbeddingError) Error() string {
	if e.Op != "" && e.Err != nil {
		return "embedding failed during " + e.Op + ": " + e.Err.Error()
	}

	if e.Err != nil {
		return "embedding failed: " + e.Err.Error()
	}

	return "embedding failed"
}

// Unwrap returns the underlying provider error.
func (e *EmbeddingError) Unwrap() error {
	return e.Err
}

// Is implements the error interface for error comparison.
func (e *EmbeddingError) Is(target error) bool {
	_, ok := target.(*EmbeddingError)

	return ok
}
