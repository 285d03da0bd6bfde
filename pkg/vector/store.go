// Package vector indexes archetype coordinate vectors for
// nearest-neighbor queries. Coordinates are the 8-component vectors
// carried by archetype records; partial vectors are rejected.
package vector

import (
	"bytes"
	"encoding/gob"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/fogfish/hnsw"
	"github.com/fogfish/hnsw/vector"
	"github.com/hack-pad/hackpadfs"
	kvector "github.com/kshard/vector"
)

// Dim is the fixed dimensionality of archetype coordinates.
const Dim = 8

// snapshot is the gob-persisted form: HNSW nodes plus the key <-> id
// mapping that ties uint32 index keys back to archetype ids.
type snapshot struct {
	Nodes hnsw.Nodes[vector.VF32]
	IDs   []string
}

// Index is an HNSW index over archetype coordinates with optional
// filesystem persistence.
type Index struct {
	mu    sync.RWMutex
	index *hnsw.HNSW[vector.VF32]
	ids   []string          // key -> archetype id
	keys  map[string]uint32 // archetype id -> key
}

// NewIndex creates an empty index with a cosine surface.
func NewIndex() *Index {
	return &Index{
		index: hnsw.New[vector.VF32](vector.SurfaceVF32(kvector.Cosine())),
		keys:  make(map[string]uint32),
	}
}

// Add inserts an archetype's coordinates. Re-adding an id is an error;
// catalogs are immutable for the session, so that indicates a caller bug.
func (ix *Index) Add(archetypeID string, coords []float64) error {
	if len(coords) != Dim {
		return errors.Newf("coordinates for %s: expected %d components, got %d", archetypeID, Dim, len(coords))
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if _, exists := ix.keys[archetypeID]; exists {
		return errors.Newf("archetype %s already indexed", archetypeID)
	}

	vec := make([]float32, Dim)
	for i, c := range coords {
		vec[i] = float32(c)
	}

	key := uint32(len(ix.ids))
	ix.ids = append(ix.ids, archetypeID)
	ix.keys[archetypeID] = key
	ix.index.Insert(vector.VF32{Key: key, Vec: vec})
	return nil
}

// Size returns the number of indexed archetypes.
func (ix *Index) Size() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.ids)
}

// Nearest returns the ids of the k archetypes closest to coords.
func (ix *Index) Nearest(coords []float64, k int) ([]string, error) {
	if len(coords) != Dim {
		return nil, errors.Newf("query vector: expected %d components, got %d", Dim, len(coords))
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if len(ix.ids) == 0 {
		return nil, nil
	}

	vec := make([]float32, Dim)
	for i, c := range coords {
		vec[i] = float32(c)
	}

	ef := k * 2
	if ef < 100 {
		ef = 100
	}

	results := ix.index.Search(vector.VF32{Vec: vec}, k, ef)
	ids := make([]string, 0, len(results))
	for _, r := range results {
		ids = append(ids, ix.ids[r.Key])
	}
	return ids, nil
}

// NearestTo returns the k nearest neighbors of an already-indexed
// archetype, excluding the archetype itself.
func (ix *Index) NearestTo(archetypeID string, k int) ([]string, error) {
	ix.mu.RLock()
	key, ok := ix.keys[archetypeID]
	ix.mu.RUnlock()
	if !ok {
		return nil, errors.Newf("archetype %s not indexed", archetypeID)
	}

	coords, err := ix.coordinates(key)
	if err != nil {
		return nil, err
	}

	// Ask for one extra: the record is its own nearest neighbor.
	candidates, err := ix.Nearest(coords, k+1)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, k)
	for _, id := range candidates {
		if id == archetypeID {
			continue
		}
		out = append(out, id)
		if len(out) == k {
			break
		}
	}
	return out, nil
}

func (ix *Index) coordinates(key uint32) ([]float64, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	for _, n := range ix.index.Nodes().Heap {
		if n.Vector.Key == key {
			out := make([]float64, len(n.Vector.Vec))
			for i, c := range n.Vector.Vec {
				out[i] = float64(c)
			}
			return out, nil
		}
	}
	return nil, errors.Newf("key %d missing from index nodes", key)
}

// Save persists the index through the filesystem.
func (ix *Index) Save(fs hackpadfs.FS, path string) error {
	ix.mu.RLock()
	snap := snapshot{Nodes: ix.index.Nodes(), IDs: ix.ids}
	ix.mu.RUnlock()

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return errors.Wrap(err, "encode vector index")
	}
	if err := hackpadfs.WriteFullFile(fs, path, buf.Bytes(), 0644); err != nil {
		return errors.Wrapf(err, "write vector index to %s", path)
	}
	return nil
}

// Load reads a persisted index from the filesystem.
func Load(fs hackpadfs.FS, path string) (*Index, error) {
	content, err := hackpadfs.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, "read vector index from %s", path)
	}

	var snap snapshot
	if err := gob.NewDecoder(bytes.NewReader(content)).Decode(&snap); err != nil {
		return nil, errors.Wrap(err, "decode vector index")
	}

	ix := &Index{
		index: hnsw.FromNodes[vector.VF32](vector.SurfaceVF32(kvector.Cosine()), snap.Nodes),
		ids:   snap.IDs,
		keys:  make(map[string]uint32, len(snap.IDs)),
	}
	for i, id := range snap.IDs {
		ix.keys[id] = uint32(i)
	}
	return ix, nil
}
