// Package index implements an exact flat inner-product index over
// unit-normalized vectors, with binary persistence.
package index

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
)

// File format: magic, version, dimension, count, then count*dimension
// little-endian float32 values in row-major order.
const (
	fileMagic   uint32 = 0x58524958 // "XRIX"
	fileVersion uint16 = 1
)

var (
	// ErrDimensionMismatch is returned when a vector does not match the
	// index dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	// ErrEmptyIndex is returned when building from zero vectors.
	ErrEmptyIndex = errors.New("cannot build index from empty vector set")
)

// Flat is an exact nearest-neighbor index. Vectors are stored unit-normalized
// in input order, so inner product equals cosine similarity. A Flat is
// immutable once built and safe for concurrent readers.
type Flat struct {
	dim   int
	count int
	data  []float32 // row-major, count*dim values
}

// Build constructs an index holding all vectors in input order. Build owns
// normalization: every vector is L2-normalized on the way in, whether or not
// the caller already did so. Zero vectors are kept as zero vectors and score
// 0 against every query.
func Build(vectors [][]float32) (*Flat, error) {
	if len(vectors) == 0 {
		return nil, ErrEmptyIndex
	}
	dim := len(vectors[0])
	if dim == 0 {
		return nil, ErrDimensionMismatch
	}
	f := &Flat{
		dim:   dim,
		count: len(vectors),
		data:  make([]float32, len(vectors)*dim),
	}
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("vector %d: %w", i, ErrDimensionMismatch)
		}
		row := f.data[i*dim : (i+1)*dim]
		copy(row, v)
		Normalize(row)
	}
	return f, nil
}

// Dimension returns the vector dimensionality of the index.
func (f *Flat) Dimension() int { return f.dim }

// Len returns the number of stored vectors.
func (f *Flat) Len() int { return f.count }

// Search returns the k highest inner-product matches for the query, sorted
// by descending score. The query is normalized before scoring, so scores are
// exact cosine similarity in [-1, 1]. When k exceeds the stored count the
// result is truncated to count valid matches; every returned position is
// guaranteed to be in [0, Len()) as an explicit contract.
func (f *Flat) Search(query []float32, k int) ([]float32, []int, error) {
	if len(query) != f.dim {
		return nil, nil, ErrDimensionMismatch
	}
	if k <= 0 {
		return nil, nil, nil
	}
	q := make([]float32, f.dim)
	copy(q, query)
	Normalize(q)

	scores := make([]float32, f.count)
	for i := 0; i < f.count; i++ {
		row := f.data[i*f.dim : (i+1)*f.dim]
		var dot float32
		for j, v := range row {
			dot += v * q[j]
		}
		scores[i] = dot
	}

	positions := make([]int, f.count)
	for i := range positions {
		positions[i] = i
	}
	sort.SliceStable(positions, func(a, b int) bool {
		return scores[positions[a]] > scores[positions[b]]
	})

	if k > f.count {
		k = f.count
	}
	outScores := make([]float32, k)
	outPositions := make([]int, k)
	for i := 0; i < k; i++ {
		outPositions[i] = positions[i]
		outScores[i] = scores[positions[i]]
	}
	return outScores, outPositions, nil
}

// Save writes the index to path. The write goes through a temp file and a
// rename so a crash mid-write never leaves a truncated artifact behind.
func (f *Flat) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".idx-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	header := []any{fileMagic, fileVersion, uint32(f.dim), uint32(f.count)}
	for _, h := range header {
		if err := binary.Write(w, binary.LittleEndian, h); err != nil {
			tmp.Close()
			return err
		}
	}
	if err := binary.Write(w, binary.LittleEndian, f.data); err != nil {
		tmp.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Load reads an index previously written by Save. Query results over a
// loaded index are identical to the index it was saved from.
func Load(path string) (*Flat, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := bufio.NewReader(file)
	var (
		magic   uint32
		version uint16
		dim     uint32
		count   uint32
	)
	for _, h := range []any{&magic, &version, &dim, &count} {
		if err := binary.Read(r, binary.LittleEndian, h); err != nil {
			return nil, fmt.Errorf("reading index header: %w", err)
		}
	}
	if magic != fileMagic {
		return nil, fmt.Errorf("not an index file: %s", path)
	}
	if version != fileVersion {
		return nil, fmt.Errorf("unsupported index version %d", version)
	}
	if dim == 0 || count == 0 {
		return nil, fmt.Errorf("corrupt index header in %s", path)
	}
	f := &Flat{
		dim:   int(dim),
		count: int(count),
		data:  make([]float32, int(dim)*int(count)),
	}
	if err := binary.Read(r, binary.LittleEndian, f.data); err != nil {
		return nil, fmt.Errorf("reading index payload: %w", err)
	}
	return f, nil
}

// Normalize scales v to unit L2 norm in place. A zero vector is left
// untouched rather than divided by zero.
func Normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	inv := float32(1.0 / math.Sqrt(sum))
	for i := range v {
		v[i] *= inv
	}
}
