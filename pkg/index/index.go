// Package index builds the derived lookup indices over a settled
// catalog snapshot. A build is always a full rebuild in one
// deterministic pass; rebuilding from the same snapshot yields
// structurally identical maps.
package index

import (
	"github.com/kittclouds/mythos/pkg/catalog"
	"github.com/kittclouds/mythos/pkg/relgraph"
)

// Resolution is the outcome of a foreign-key lookup. Unresolved
// references are a normal, expected state (broken links in
// independently-authored catalogs), never an error.
type Resolution[T any] struct {
	record   T
	resolved bool
}

// Resolved wraps a successfully looked-up record.
func Resolved[T any](record T) Resolution[T] {
	return Resolution[T]{record: record, resolved: true}
}

// Unresolved is the absent outcome.
func Unresolved[T any]() Resolution[T] {
	return Resolution[T]{}
}

// Get returns the record and whether it resolved.
func (r Resolution[T]) Get() (T, bool) {
	return r.record, r.resolved
}

// Ok reports whether the lookup resolved.
func (r Resolution[T]) Ok() bool {
	return r.resolved
}

// Indices holds every derived mapping. All maps are populated by Build
// and never mutated afterwards; readers need no locking.
type Indices struct {
	// Archetypes, Entities and Patterns preserve catalog order, which
	// is the tie-break order for search display.
	Archetypes []*catalog.Archetype
	Entities   []*catalog.Entity
	Patterns   []*catalog.Pattern

	ArchetypeByID map[string]*catalog.Archetype
	EntityByName  map[string]*catalog.Entity

	// EntitiesByArchetype is built from entity.mapping.archetype_id;
	// unmapped entities are excluded.
	EntitiesByArchetype map[string][]*catalog.Entity

	// EntitiesByNode is built from the normalized nearest_node.
	EntitiesByNode map[string][]*catalog.Entity

	// ArchetypesByNode is materialized from the node-affinity ranking
	// table, not recomputed from the archetype catalog.
	ArchetypesByNode map[string][]catalog.RankedArchetype

	PatternByName map[string]*catalog.Pattern
	PatternsByArc map[string][]*catalog.Pattern

	// Relationships is the directed archetype relationship graph.
	Relationships *relgraph.Graph
}

// Build derives all indices from a catalog snapshot. A catalog that
// failed to load (nil document) yields empty maps for its portion.
func Build(cats catalog.Catalogs) *Indices {
	idx := &Indices{
		ArchetypeByID:       make(map[string]*catalog.Archetype),
		EntityByName:        make(map[string]*catalog.Entity),
		EntitiesByArchetype: make(map[string][]*catalog.Entity),
		EntitiesByNode:      make(map[string][]*catalog.Entity),
		ArchetypesByNode:    make(map[string][]catalog.RankedArchetype),
		PatternByName:       make(map[string]*catalog.Pattern),
		PatternsByArc:       make(map[string][]*catalog.Pattern),
		Relationships:       relgraph.New(),
	}

	if cats.Archetypes != nil {
		for i := range cats.Archetypes.Archetypes {
			a := &cats.Archetypes.Archetypes[i]
			idx.Archetypes = append(idx.Archetypes, a)
			idx.ArchetypeByID[a.ID] = a
			idx.Relationships.AddNode(a.ID)
		}
		// Edges in a second pass so Known is complete first.
		for i := range cats.Archetypes.Archetypes {
			a := &cats.Archetypes.Archetypes[i]
			for _, rel := range a.Relationships {
				if rel.TargetID == "" {
					continue
				}
				idx.Relationships.AddEdge(a.ID, rel.TargetID, rel.Type, rel.Weight)
			}
		}
	}

	if cats.Entities != nil {
		for i := range cats.Entities.Entities {
			e := &cats.Entities.Entities[i]
			idx.Entities = append(idx.Entities, e)
			idx.EntityByName[e.Name] = e
			if e.Mapped() {
				aid := e.Mapping.ArchetypeID
				idx.EntitiesByArchetype[aid] = append(idx.EntitiesByArchetype[aid], e)
			}
			if e.NearestNode != nil && e.NearestNode.NodeID != "" {
				nid := e.NearestNode.NodeID
				idx.EntitiesByNode[nid] = append(idx.EntitiesByNode[nid], e)
			}
		}
	}

	if cats.Patterns != nil {
		for i := range cats.Patterns.Patterns {
			p := &cats.Patterns.Patterns[i]
			idx.Patterns = append(idx.Patterns, p)
			idx.PatternByName[p.Name] = p
			if p.Arc != "" {
				idx.PatternsByArc[p.Arc] = append(idx.PatternsByArc[p.Arc], p)
			}
		}
	}

	if cats.Nodes != nil {
		for nodeID, ranked := range cats.Nodes.NodeAffinities {
			rows := make([]catalog.RankedArchetype, len(ranked))
			copy(rows, ranked)
			idx.ArchetypesByNode[nodeID] = rows
		}
	}

	return idx
}

// Archetype looks up an archetype by id.
func (idx *Indices) Archetype(id string) Resolution[*catalog.Archetype] {
	if a, ok := idx.ArchetypeByID[id]; ok {
		return Resolved(a)
	}
	return Unresolved[*catalog.Archetype]()
}

// Entity looks up an entity by name.
func (idx *Indices) Entity(name string) Resolution[*catalog.Entity] {
	if e, ok := idx.EntityByName[name]; ok {
		return Resolved(e)
	}
	return Unresolved[*catalog.Entity]()
}

// Pattern looks up a pattern by name.
func (idx *Indices) Pattern(name string) Resolution[*catalog.Pattern] {
	if p, ok := idx.PatternByName[name]; ok {
		return Resolved(p)
	}
	return Unresolved[*catalog.Pattern]()
}
