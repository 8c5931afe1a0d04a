// Package retrieval orchestrates embedding and index queries into ranked
// similarity results and owns the index snapshot lifecycle.
package retrieval

import (
	"context"
	"encoding/gob"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/singleflight"

	"xrayrag/internal/classify"
	"xrayrag/internal/corpus"
	"xrayrag/internal/domain"
	"xrayrag/internal/embedding"
	"xrayrag/internal/index"
	"xrayrag/internal/ragerrors"
)

// State of the engine's snapshot lifecycle.
type State int

const (
	StateUnbuilt State = iota
	StateBuilding
	StateReady
)

// Metadata is the positional companion of the vector index. All slices are
// aligned to the row order used when embeddings were computed.
type Metadata struct {
	Reports      []string
	IDs          []string
	Diseases     []string
	Dimension    int
	TotalRecords int
}

// snapshot pairs an index with its metadata. Snapshots are immutable; the
// engine replaces them wholesale on rebuild.
type snapshot struct {
	index *index.Flat
	meta  *Metadata
}

// Options configures an Engine.
type Options struct {
	DataPath     string
	IndexPath    string
	MetadataPath string
	// BatchSize bounds peak memory during embedding and paces progress
	// reporting. It does not affect correctness.
	BatchSize int
	Logger    *slog.Logger
	// Progress, when set, is called after each embedded batch with the
	// number of records processed so far and the total.
	Progress func(done, total int)
}

// Engine exclusively owns the in-memory snapshot for the process lifetime.
// Queries are served from the current snapshot; a rebuild computes a new one
// off to the side and swaps it in on completion, so the old snapshot stays
// servable throughout.
type Engine struct {
	opts     Options
	embedder embedding.Embedder

	group singleflight.Group

	mu    sync.RWMutex
	snap  *snapshot
	state State
}

// New creates an engine in the UNBUILT state.
func New(embedder embedding.Embedder, opts Options) *Engine {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Engine{opts: opts, embedder: embedder}
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// Ready reports whether a snapshot is available for queries.
func (e *Engine) Ready() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snap != nil
}

// TotalRecords returns the record count of the current snapshot, 0 when not ready.
func (e *Engine) TotalRecords() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.snap == nil {
		return 0
	}
	return e.snap.meta.TotalRecords
}

// EnsureReady transitions the engine to READY: from persisted artifacts when
// both exist, else by a full build. Concurrent callers share a single build.
func (e *Engine) EnsureReady(ctx context.Context) error {
	if e.Ready() {
		return nil
	}
	_, err, _ := e.group.Do("build", func() (any, error) {
		if e.Ready() {
			return nil, nil
		}
		snap, err := e.loadSnapshot()
		if err == nil {
			e.install(snap)
			e.opts.Logger.Info("loaded index from disk",
				"records", snap.meta.TotalRecords, "dimension", snap.meta.Dimension)
			return nil, nil
		}
		e.opts.Logger.Info("index artifacts unavailable, building", "reason", err)
		return nil, e.build(ctx)
	})
	return err
}

// Rebuild re-executes the full build regardless of existing artifacts and
// replaces the snapshot wholesale. The previous snapshot keeps serving
// queries until the new one is committed.
func (e *Engine) Rebuild(ctx context.Context) error {
	for {
		ran := false
		_, err, _ := e.group.Do("build", func() (any, error) {
			ran = true
			return nil, e.build(ctx)
		})
		if err != nil || ran {
			return err
		}
		// Coalesced into a concurrent EnsureReady flight, which may have
		// merely loaded artifacts from disk; a forced rebuild must run a
		// build of its own, so go around again.
	}
}

// Search embeds the query once, asks the index for the top k matches and
// zips them with metadata by position. A not-ready engine yields an empty,
// non-error result. Only embedding failures propagate.
func (e *Engine) Search(ctx context.Context, queryText string, k int) ([]domain.SearchResult, error) {
	e.mu.RLock()
	snap := e.snap
	e.mu.RUnlock()
	if snap == nil {
		return nil, nil
	}
	if k <= 0 {
		k = 5
	}

	vec, err := e.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, ragerrors.NewEmbeddingError("query", err)
	}
	scores, positions, err := snap.index.Search(vec, k)
	if err != nil {
		return nil, err
	}

	results := make([]domain.SearchResult, 0, len(positions))
	for i, pos := range positions {
		// Positions past the stored metadata would corrupt the zip; skip them.
		if pos < 0 || pos >= len(snap.meta.Reports) {
			continue
		}
		results = append(results, domain.SearchResult{
			ID:      snap.meta.IDs[pos],
			Report:  snap.meta.Reports[pos],
			Disease: snap.meta.Diseases[pos],
			Score:   scores[i],
		})
	}
	return results, nil
}

func (e *Engine) install(snap *snapshot) {
	e.mu.Lock()
	e.snap = snap
	e.state = StateReady
	e.mu.Unlock()
}

func (e *Engine) setState(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

// loadSnapshot restores a snapshot from disk. Both artifacts must be present
// and consistent; anything less reports an ArtifactError so the caller falls
// back to a full build.
func (e *Engine) loadSnapshot() (*snapshot, error) {
	for _, path := range []string{e.opts.IndexPath, e.opts.MetadataPath} {
		if _, err := os.Stat(path); err != nil {
			return nil, ragerrors.NewArtifactError(path, "")
		}
	}
	idx, err := index.Load(e.opts.IndexPath)
	if err != nil {
		return nil, ragerrors.NewArtifactError(e.opts.IndexPath, err.Error())
	}
	meta, err := readMetadata(e.opts.MetadataPath)
	if err != nil {
		return nil, ragerrors.NewArtifactError(e.opts.MetadataPath, err.Error())
	}
	if len(meta.Reports) != meta.TotalRecords ||
		len(meta.IDs) != meta.TotalRecords ||
		len(meta.Diseases) != meta.TotalRecords ||
		idx.Len() != meta.TotalRecords ||
		idx.Dimension() != meta.Dimension {
		return nil, ragerrors.NewArtifactError(e.opts.MetadataPath, "index and metadata are misaligned")
	}
	return &snapshot{index: idx, meta: meta}, nil
}

// build loads the corpus, embeds every record in batches, builds a fresh
// index, classifies every report and persists both artifacts. The index file
// is written before the metadata file: a crash in between leaves no metadata
// and the next start detects UNBUILT rather than a half-valid state.
func (e *Engine) build(ctx context.Context) error {
	e.setState(StateBuilding)
	committed := false
	defer func() {
		if !committed {
			// Failed build: report READY only if an older snapshot survives.
			e.mu.Lock()
			if e.snap != nil {
				e.state = StateReady
			} else {
				e.state = StateUnbuilt
			}
			e.mu.Unlock()
		}
	}()

	records := corpus.Load(e.opts.DataPath, e.opts.Logger)
	total := len(records)
	e.opts.Logger.Info("building index", "records", total, "model", e.embedder.ModelInfo())

	texts := make([]string, total)
	for i, r := range records {
		texts[i] = r.Text
	}

	vectors := make([][]float32, 0, total)
	for start := 0; start < total; start += e.opts.BatchSize {
		end := start + e.opts.BatchSize
		if end > total {
			end = total
		}
		batch, err := e.embedder.EmbedBatch(ctx, texts[start:end])
		if err != nil {
			return ragerrors.NewEmbeddingError("build", err)
		}
		vectors = append(vectors, batch...)
		if e.opts.Progress != nil {
			e.opts.Progress(end, total)
		}
	}

	idx, err := index.Build(vectors)
	if err != nil {
		return fmt.Errorf("building index: %w", err)
	}

	meta := &Metadata{
		Reports:      texts,
		IDs:          make([]string, total),
		Diseases:     make([]string, total),
		Dimension:    idx.Dimension(),
		TotalRecords: total,
	}
	for i, r := range records {
		meta.IDs[i] = r.ID
		meta.Diseases[i] = classify.Classify(r.Text)
	}

	if err := idx.Save(e.opts.IndexPath); err != nil {
		return fmt.Errorf("persisting index: %w", err)
	}
	if err := writeMetadata(e.opts.MetadataPath, meta); err != nil {
		return fmt.Errorf("persisting metadata: %w", err)
	}

	e.install(&snapshot{index: idx, meta: meta})
	committed = true
	e.opts.Logger.Info("index built", "records", total, "dimension", meta.Dimension)
	return nil
}

func readMetadata(path string) (*Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var meta Metadata
	if err := gob.NewDecoder(f).Decode(&meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func writeMetadata(path string, meta *Metadata) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".meta-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if err := gob.NewEncoder(tmp).Encode(meta); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
