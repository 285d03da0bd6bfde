// Package search scans the catalogs through the derived indices and
// returns per-category result buckets. Matching is plain substring
// containment over a fixed set of fields per record type; there is no
// stemming, fuzzing, or relevance scoring beyond the per-category cap.
// Ties keep catalog iteration order.
package search

import (
	"strings"

	"github.com/kittclouds/mythos/pkg/catalog"
	"github.com/kittclouds/mythos/pkg/index"
	"github.com/kittclouds/mythos/pkg/topology"
)

// Options controls caps and the short-circuit threshold.
type Options struct {
	// ArchetypeCap and EntityCap bound those two buckets. Nodes and
	// patterns are small catalogs and stay uncapped.
	ArchetypeCap int
	EntityCap    int

	// MinQueryLen short-circuits sub-minimum queries to an empty
	// result set, so a single keystroke never triggers a full scan.
	MinQueryLen int
}

// DefaultOptions are the caps the explorer ships with.
func DefaultOptions() Options {
	return Options{ArchetypeCap: 5, EntityCap: 5, MinQueryLen: 2}
}

// Results holds one bucket per category. Zero matches everywhere is a
// valid outcome rendered as an explicit "no results" state, never an
// error.
type Results struct {
	Nodes      []*topology.Node
	Archetypes []*catalog.Archetype
	Entities   []*catalog.Entity
	Patterns   []*catalog.Pattern
}

// Empty reports whether every bucket is empty.
func (r Results) Empty() bool {
	return len(r.Nodes) == 0 && len(r.Archetypes) == 0 &&
		len(r.Entities) == 0 && len(r.Patterns) == 0
}

// Total returns the combined match count.
func (r Results) Total() int {
	return len(r.Nodes) + len(r.Archetypes) + len(r.Entities) + len(r.Patterns)
}

// Search runs the query with default options.
func Search(query string, idx *index.Indices) Results {
	return SearchWithOptions(query, idx, DefaultOptions())
}

// SearchWithOptions lower-cases the query once and scans each catalog
// linearly, capping the archetype and entity buckets independently.
func SearchWithOptions(query string, idx *index.Indices, opts Options) Results {
	var results Results

	query = strings.TrimSpace(query)
	if len([]rune(query)) < opts.MinQueryLen {
		return results
	}
	q := strings.ToLower(query)

	for _, node := range topology.All() {
		if matchNode(node, q) {
			results.Nodes = append(results.Nodes, node)
		}
	}

	for _, a := range idx.Archetypes {
		if opts.ArchetypeCap > 0 && len(results.Archetypes) >= opts.ArchetypeCap {
			break
		}
		if matchArchetype(a, q) {
			results.Archetypes = append(results.Archetypes, a)
		}
	}

	for _, e := range idx.Entities {
		if opts.EntityCap > 0 && len(results.Entities) >= opts.EntityCap {
			break
		}
		if matchEntity(e, q) {
			results.Entities = append(results.Entities, e)
		}
	}

	for _, p := range idx.Patterns {
		if matchPattern(p, q) {
			results.Patterns = append(results.Patterns, p)
		}
	}

	return results
}

func matchNode(n *topology.Node, q string) bool {
	return contains(n.Code, q) || contains(n.Title, q) ||
		contains(n.Role, q) || contains(n.Tone, q)
}

func matchArchetype(a *catalog.Archetype, q string) bool {
	if contains(a.Name, q) || contains(a.ID, q) || contains(a.Description, q) {
		return true
	}
	for _, kw := range a.Keywords {
		if contains(kw, q) {
			return true
		}
	}
	return false
}

func matchEntity(e *catalog.Entity, q string) bool {
	return contains(e.Name, q) || contains(e.Type, q) ||
		contains(e.PrimaryTradition, q)
}

func matchPattern(p *catalog.Pattern, q string) bool {
	return contains(p.Name, q) || contains(p.Description, q)
}

func contains(field, q string) bool {
	return field != "" && strings.Contains(strings.ToLower(field), q)
}
