// Package store persists a settled catalog session to SQLite so the
// curated dataset can be inspected offline without refetching.
// Uses ncruces/go-sqlite3/driver which provides a database/sql
// interface, plus sqlite-vec for coordinate KNN.
//
// This is tooling persistence only. The in-memory session cache in
// pkg/catalog never reads from here.
package store

import (
	"database/sql"
	"encoding/json"
	"sync"

	_ "github.com/asg017/sqlite-vec-go-bindings/ncruces"
	"github.com/cockroachdb/errors"
	_ "github.com/ncruces/go-sqlite3/driver"

	"github.com/kittclouds/mythos/pkg/catalog"
)

// SnapshotStore is the SQLite-backed snapshot of one catalog session.
// Thread-safe for concurrent readers.
type SnapshotStore struct {
	mu sync.RWMutex
	db *sql.DB
}

// schema defines all snapshot tables. JSON-typed columns hold the
// list-valued record fields verbatim.
const schema = `
CREATE TABLE IF NOT EXISTS archetypes (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    system TEXT,
    description TEXT,
    keywords TEXT,
    coordinates TEXT
);

CREATE TABLE IF NOT EXISTS entities (
    name TEXT PRIMARY KEY,
    type TEXT,
    primary_tradition TEXT,
    mention_count INTEGER DEFAULT 0,
    text_count INTEGER DEFAULT 0,
    archetype_id TEXT,
    confidence REAL,
    node_id TEXT,
    node_affinity REAL
);

CREATE INDEX IF NOT EXISTS idx_entities_archetype ON entities(archetype_id);
CREATE INDEX IF NOT EXISTS idx_entities_node ON entities(node_id);

CREATE TABLE IF NOT EXISTS patterns (
    name TEXT PRIMARY KEY,
    arc TEXT,
    description TEXT,
    motifs TEXT,
    traditions TEXT,
    related_entities TEXT
);

CREATE INDEX IF NOT EXISTS idx_patterns_arc ON patterns(arc);

CREATE TABLE IF NOT EXISTS node_affinities (
    node_id TEXT NOT NULL,
    rank INTEGER NOT NULL,
    archetype_id TEXT NOT NULL,
    affinity REAL NOT NULL,
    PRIMARY KEY (node_id, rank)
);

-- rowid mapping for the vec0 virtual table below
CREATE TABLE IF NOT EXISTS archetype_vec_ids (
    rowid INTEGER PRIMARY KEY,
    archetype_id TEXT NOT NULL UNIQUE
);

CREATE VIRTUAL TABLE IF NOT EXISTS vec_archetypes USING vec0(
    coords float[8]
);
`

// NewSnapshotStore creates an in-memory snapshot store.
func NewSnapshotStore() (*SnapshotStore, error) {
	return NewSnapshotStoreWithDSN(":memory:")
}

// NewSnapshotStoreWithDSN creates a store at a specific data source
// name. Use ":memory:" for in-memory or a file path for a persistent
// snapshot.
func NewSnapshotStoreWithDSN(dsn string) (*SnapshotStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open snapshot database")
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create snapshot schema")
	}
	return &SnapshotStore{db: db}, nil
}

// Close closes the database connection.
func (s *SnapshotStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveCatalogs replaces the snapshot with the given settled session.
// A nil catalog simply leaves its tables empty; the snapshot degrades
// the same way the in-memory indices do.
func (s *SnapshotStore) SaveCatalogs(cats catalog.Catalogs) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, "begin snapshot transaction")
	}
	defer tx.Rollback()

	for _, table := range []string{"archetypes", "entities", "patterns", "node_affinities", "archetype_vec_ids", "vec_archetypes"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return errors.Wrapf(err, "clear %s", table)
		}
	}

	if cats.Archetypes != nil {
		if err := saveArchetypes(tx, cats.Archetypes.Archetypes); err != nil {
			return err
		}
	}
	if cats.Entities != nil {
		if err := saveEntities(tx, cats.Entities.Entities); err != nil {
			return err
		}
	}
	if cats.Patterns != nil {
		if err := savePatterns(tx, cats.Patterns.Patterns); err != nil {
			return err
		}
	}
	if cats.Nodes != nil {
		if err := saveNodeAffinities(tx, cats.Nodes.NodeAffinities); err != nil {
			return err
		}
	}

	return errors.Wrap(tx.Commit(), "commit snapshot")
}

func saveArchetypes(tx *sql.Tx, archetypes []catalog.Archetype) error {
	vecRowID := int64(0)
	for i := range archetypes {
		a := &archetypes[i]
		keywords, _ := json.Marshal(a.Keywords)
		coords, _ := json.Marshal(a.Coordinates)

		_, err := tx.Exec(`
			INSERT INTO archetypes (id, name, system, description, keywords, coordinates)
			VALUES (?, ?, ?, ?, ?, ?)
		`, a.ID, a.Name, a.System, a.Description, string(keywords), string(coords))
		if err != nil {
			return errors.Wrapf(err, "insert archetype %s", a.ID)
		}

		// Only full 8-vectors enter the KNN table.
		if !a.HasCoordinates() {
			continue
		}
		vecRowID++
		if _, err := tx.Exec(`INSERT INTO archetype_vec_ids (rowid, archetype_id) VALUES (?, ?)`,
			vecRowID, a.ID); err != nil {
			return errors.Wrapf(err, "map vector rowid for %s", a.ID)
		}
		if _, err := tx.Exec(`INSERT INTO vec_archetypes (rowid, coords) VALUES (?, ?)`,
			vecRowID, string(coords)); err != nil {
			return errors.Wrapf(err, "insert coordinates for %s", a.ID)
		}
	}
	return nil
}

func saveEntities(tx *sql.Tx, entities []catalog.Entity) error {
	for i := range entities {
		e := &entities[i]

		var archetypeID sql.NullString
		var confidence sql.NullFloat64
		if e.Mapped() {
			archetypeID = sql.NullString{String: e.Mapping.ArchetypeID, Valid: true}
			confidence = sql.NullFloat64{Float64: e.Mapping.Confidence, Valid: true}
		}

		var nodeID sql.NullString
		var nodeAffinity sql.NullFloat64
		if e.NearestNode != nil && e.NearestNode.NodeID != "" {
			nodeID = sql.NullString{String: e.NearestNode.NodeID, Valid: true}
			if e.NearestNode.Affinity != nil {
				nodeAffinity = sql.NullFloat64{Float64: *e.NearestNode.Affinity, Valid: true}
			}
		}

		_, err := tx.Exec(`
			INSERT INTO entities (name, type, primary_tradition, mention_count, text_count,
				archetype_id, confidence, node_id, node_affinity)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, e.Name, e.Type, e.PrimaryTradition, e.MentionCount, e.TextCount,
			archetypeID, confidence, nodeID, nodeAffinity)
		if err != nil {
			return errors.Wrapf(err, "insert entity %s", e.Name)
		}
	}
	return nil
}

func savePatterns(tx *sql.Tx, patterns []catalog.Pattern) error {
	for i := range patterns {
		p := &patterns[i]
		motifs, _ := json.Marshal(p.Motifs)
		traditions, _ := json.Marshal(p.Traditions)
		related, _ := json.Marshal(p.RelatedEntities)

		_, err := tx.Exec(`
			INSERT INTO patterns (name, arc, description, motifs, traditions, related_entities)
			VALUES (?, ?, ?, ?, ?, ?)
		`, p.Name, p.Arc, p.Description, string(motifs), string(traditions), string(related))
		if err != nil {
			return errors.Wrapf(err, "insert pattern %s", p.Name)
		}
	}
	return nil
}

func saveNodeAffinities(tx *sql.Tx, table map[string][]catalog.RankedArchetype) error {
	for nodeID, ranked := range table {
		for rank, row := range ranked {
			_, err := tx.Exec(`
				INSERT INTO node_affinities (node_id, rank, archetype_id, affinity)
				VALUES (?, ?, ?, ?)
			`, nodeID, rank, row.ArchetypeID, row.Affinity)
			if err != nil {
				return errors.Wrapf(err, "insert affinity row for node %s", nodeID)
			}
		}
	}
	return nil
}

// Counts returns per-table record counts.
func (s *SnapshotStore) Counts() (archetypes, entities, patterns int, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, q := range []struct {
		table string
		dst   *int
	}{
		{"archetypes", &archetypes},
		{"entities", &entities},
		{"patterns", &patterns},
	} {
		if err = s.db.QueryRow("SELECT COUNT(*) FROM " + q.table).Scan(q.dst); err != nil {
			return 0, 0, 0, errors.Wrapf(err, "count %s", q.table)
		}
	}
	return archetypes, entities, patterns, nil
}

// EntityNamesByArchetype returns the names of entities mapped to an
// archetype, in name order.
func (s *SnapshotStore) EntityNamesByArchetype(archetypeID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT name FROM entities WHERE archetype_id = ? ORDER BY name
	`, archetypeID)
	if err != nil {
		return nil, errors.Wrapf(err, "query entities for %s", archetypeID)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// NearestArchetypes runs a KNN query over the vec0 table and returns
// archetype ids in ascending distance order.
func (s *SnapshotStore) NearestArchetypes(coords []float64, k int) ([]string, error) {
	if len(coords) != catalog.VectorDim {
		return nil, errors.Newf("query vector: expected %d components, got %d", catalog.VectorDim, len(coords))
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	query, _ := json.Marshal(coords)
	rows, err := s.db.Query(`
		SELECT m.archetype_id
		FROM vec_archetypes v
		JOIN archetype_vec_ids m ON m.rowid = v.rowid
		WHERE v.coords MATCH ? AND k = ?
		ORDER BY v.distance
	`, string(query), k)
	if err != nil {
		return nil, errors.Wrap(err, "knn query")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GetArchetype reconstructs one archetype row, without relationship
// and primordial detail (the snapshot keeps the searchable core only).
func (s *SnapshotStore) GetArchetype(id string) (*catalog.Archetype, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var a catalog.Archetype
	var keywords, coords string
	err := s.db.QueryRow(`
		SELECT id, name, system, description, keywords, coordinates
		FROM archetypes WHERE id = ?
	`, id).Scan(&a.ID, &a.Name, &a.System, &a.Description, &keywords, &coords)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get archetype %s", id)
	}

	_ = json.Unmarshal([]byte(keywords), &a.Keywords)
	_ = json.Unmarshal([]byte(coords), &a.Coordinates)
	return &a, nil
}
