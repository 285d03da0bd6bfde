// Package engine wires the catalog store, the derived indices and the
// query surfaces into one service object. One Engine is constructed
// per application instance; there is no module-level singleton, so the
// core stays testable without global state.
package engine

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/kittclouds/mythos/pkg/catalog"
	"github.com/kittclouds/mythos/pkg/chain"
	"github.com/kittclouds/mythos/pkg/feed"
	"github.com/kittclouds/mythos/pkg/index"
	"github.com/kittclouds/mythos/pkg/mentions"
	"github.com/kittclouds/mythos/pkg/relgraph"
	"github.com/kittclouds/mythos/pkg/search"
	"github.com/kittclouds/mythos/pkg/vector"
)

// ErrNotLoaded is returned by query methods before LoadAll has settled.
var ErrNotLoaded = errors.New("catalogs not loaded")

// Engine owns one catalog session: the store, the settled snapshot and
// every index derived from it. Indices are built exactly once per
// session, after all catalog fetches have settled; the join in LoadAll
// is what makes lock-free reads safe afterwards.
type Engine struct {
	store  *catalog.Store
	urls   map[catalog.Key]string
	logger *zap.Logger

	mu      sync.RWMutex
	cats    catalog.Catalogs
	indices *index.Indices
	vectors *vector.Index
	scanner *mentions.Scanner
	loaded  bool
}

// New creates an engine. nil urls means catalog.DefaultURLs; a nil
// logger falls back to zap.NewNop.
func New(fetcher catalog.Fetcher, urls map[catalog.Key]string, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		store:  catalog.NewStore(fetcher, logger),
		urls:   urls,
		logger: logger,
	}
}

// Store exposes the underlying catalog store for direct Get/IsLoaded
// reads by the rendering layer.
func (e *Engine) Store() *catalog.Store {
	return e.store
}

// LoadAll fetches all four catalogs concurrently, joins on every
// fetch, and builds the indices from whatever settled. Individual
// catalog failures degrade to empty index portions. Calling LoadAll
// again on a loaded engine is a no-op; catalogs are immutable for the
// session.
func (e *Engine) LoadAll(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.loaded {
		return nil
	}

	cats := e.store.LoadAll(ctx, e.urls)
	idx := index.Build(cats)

	vectors := vector.NewIndex()
	for _, a := range idx.Archetypes {
		if !a.HasCoordinates() {
			continue
		}
		if err := vectors.Add(a.ID, a.Coordinates); err != nil {
			e.logger.Warn("skipping archetype coordinates",
				zap.String("archetype", a.ID),
				zap.Error(err))
		}
	}

	e.cats = cats
	e.indices = idx
	e.vectors = vectors
	e.scanner = mentions.NewScanner(idx.Entities)
	e.loaded = true

	e.logger.Debug("catalog session settled",
		zap.Int("archetypes", len(idx.Archetypes)),
		zap.Int("entities", len(idx.Entities)),
		zap.Int("patterns", len(idx.Patterns)),
		zap.Int("affinity_nodes", len(idx.ArchetypesByNode)),
		zap.Int("indexed_vectors", vectors.Size()))
	return nil
}

// Catalogs returns the settled snapshot.
func (e *Engine) Catalogs() (catalog.Catalogs, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.loaded {
		return catalog.Catalogs{}, ErrNotLoaded
	}
	return e.cats, nil
}

// Indices returns the derived index set.
func (e *Engine) Indices() (*index.Indices, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.loaded {
		return nil, ErrNotLoaded
	}
	return e.indices, nil
}

// Search runs the ranked per-category search with default caps.
func (e *Engine) Search(query string) (search.Results, error) {
	idx, err := e.Indices()
	if err != nil {
		return search.Results{}, err
	}
	return search.Search(query, idx), nil
}

// ResolveChain resolves entity -> archetype -> node for a name.
func (e *Engine) ResolveChain(name string) (chain.Result, error) {
	idx, err := e.Indices()
	if err != nil {
		return chain.Result{}, err
	}
	return chain.ResolveByName(name, idx), nil
}

// Nearest returns the k archetypes closest to an indexed archetype's
// coordinates, excluding the archetype itself.
func (e *Engine) Nearest(archetypeID string, k int) ([]*catalog.Archetype, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.loaded {
		return nil, ErrNotLoaded
	}

	ids, err := e.vectors.NearestTo(archetypeID, k)
	if err != nil {
		return nil, err
	}

	result := make([]*catalog.Archetype, 0, len(ids))
	for _, id := range ids {
		if a, ok := e.indices.Archetype(id).Get(); ok {
			result = append(result, a)
		}
	}
	return result, nil
}

// Related returns the outgoing relationship links of an archetype.
func (e *Engine) Related(archetypeID string) ([]relgraph.Link, error) {
	idx, err := e.Indices()
	if err != nil {
		return nil, err
	}
	return idx.Relationships.Outgoing(archetypeID), nil
}

// Scanner exposes the compiled mention scanner.
func (e *Engine) Scanner() (*mentions.Scanner, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.loaded {
		return nil, ErrNotLoaded
	}
	return e.scanner, nil
}

// EntitiesForArchetype pages through the entities mapped to an
// archetype. The filter was computed at index build time; this only
// slices.
func (e *Engine) EntitiesForArchetype(archetypeID string, cursor, size int) (feed.Batch[*catalog.Entity], error) {
	idx, err := e.Indices()
	if err != nil {
		return feed.Batch[*catalog.Entity]{}, err
	}
	return feed.NextBatch(idx.EntitiesByArchetype[archetypeID], cursor, size), nil
}

// EntitiesForNode pages through the entities whose nearest node is the
// given topology code.
func (e *Engine) EntitiesForNode(nodeID string, cursor, size int) (feed.Batch[*catalog.Entity], error) {
	idx, err := e.Indices()
	if err != nil {
		return feed.Batch[*catalog.Entity]{}, err
	}
	return feed.NextBatch(idx.EntitiesByNode[nodeID], cursor, size), nil
}
