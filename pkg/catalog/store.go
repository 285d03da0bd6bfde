package catalog

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Key identifies one of the four catalogs.
type Key string

// The four catalog keys. "nodes" is the compiled node-affinity ranking
// table; the topology itself is a compiled-in constant.
const (
	KeyArchetypes Key = "archetypes"
	KeyEntities   Key = "entities"
	KeyPatterns   Key = "patterns"
	KeyNodes      Key = "nodes"
)

// Keys lists all catalog keys in load order.
var Keys = []Key{KeyArchetypes, KeyEntities, KeyPatterns, KeyNodes}

// DefaultURLs maps keys to the relative locations the explorer serves.
var DefaultURLs = map[Key]string{
	KeyArchetypes: "data/archetypes.json",
	KeyEntities:   "data/entities.json",
	KeyPatterns:   "data/patterns.json",
	KeyNodes:      "data/node_affinities.json",
}

// Catalogs is a settled snapshot of the four documents. A nil field
// means that catalog failed to load and downstream consumers degrade.
type Catalogs struct {
	Archetypes *Document
	Entities   *Document
	Patterns   *Document
	Nodes      *Document
}

// flight tracks one in-flight fetch. Late callers block on done and
// share the settled result.
type flight struct {
	done chan struct{}
	doc  *Document
	err  error
}

// Store fetches and memoizes catalogs behind a keyed cache with
// single-flight semantics: at most one network request per key at a
// time, successes cached permanently for the session, failures cached
// as nothing so an explicit retry stays possible.
//
// There is deliberately no TTL or invalidation: catalogs are immutable
// for the process lifetime.
type Store struct {
	fetcher Fetcher
	logger  *zap.Logger

	mu       sync.Mutex
	cache    map[Key]*Document
	inflight map[Key]*flight
}

// NewStore creates a store. A nil logger falls back to zap.NewNop.
func NewStore(fetcher Fetcher, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		fetcher:  fetcher,
		logger:   logger,
		cache:    make(map[Key]*Document),
		inflight: make(map[Key]*flight),
	}
}

// Load returns the catalog for key, fetching it from url on a cache
// miss. Concurrent callers for the same key share a single fetch.
// A failed fetch is logged and returned as an error; nothing is cached
// so a later Load retries.
func (s *Store) Load(ctx context.Context, key Key, url string) (*Document, error) {
	s.mu.Lock()
	if doc, ok := s.cache[key]; ok {
		s.mu.Unlock()
		return doc, nil
	}
	if fl, ok := s.inflight[key]; ok {
		s.mu.Unlock()
		<-fl.done
		return fl.doc, fl.err
	}

	fl := &flight{done: make(chan struct{})}
	s.inflight[key] = fl
	s.mu.Unlock()

	doc, err := s.fetch(ctx, key, url)

	s.mu.Lock()
	delete(s.inflight, key)
	if err == nil {
		s.cache[key] = doc
	}
	s.mu.Unlock()

	fl.doc, fl.err = doc, err
	close(fl.done)
	return doc, err
}

func (s *Store) fetch(ctx context.Context, key Key, url string) (*Document, error) {
	raw, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		s.logger.Warn("catalog fetch failed",
			zap.String("catalog", string(key)),
			zap.String("url", url),
			zap.Error(err))
		return nil, err
	}

	doc, err := ParseDocument(raw)
	if err != nil {
		s.logger.Warn("catalog parse failed",
			zap.String("catalog", string(key)),
			zap.String("url", url),
			zap.Error(err))
		return nil, err
	}
	return doc, nil
}

// Get is a pure synchronous cache read.
func (s *Store) Get(key Key) (*Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.cache[key]
	return doc, ok
}

// IsLoaded reports whether the catalog is cached.
func (s *Store) IsLoaded(key Key) bool {
	_, ok := s.Get(key)
	return ok
}

// LoadAll issues all catalog fetches concurrently and joins on every
// one of them before returning. Individual failures are tolerated:
// they were already logged by Load and simply leave a nil slot in the
// snapshot. Index construction must be gated behind this join, never
// behind "first catalog ready".
func (s *Store) LoadAll(ctx context.Context, urls map[Key]string) Catalogs {
	if urls == nil {
		urls = DefaultURLs
	}

	var wg sync.WaitGroup
	for _, key := range Keys {
		url, ok := urls[key]
		if !ok {
			continue
		}
		wg.Add(1)
		go func(key Key, url string) {
			defer wg.Done()
			// Errors are tolerated here; Load logged them already.
			_, _ = s.Load(ctx, key, url)
		}(key, url)
	}
	wg.Wait()

	return s.Snapshot()
}

// Snapshot assembles the current cache into a Catalogs value.
func (s *Store) Snapshot() Catalogs {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Catalogs{
		Archetypes: s.cache[KeyArchetypes],
		Entities:   s.cache[KeyEntities],
		Patterns:   s.cache[KeyPatterns],
		Nodes:      s.cache[KeyNodes],
	}
}
