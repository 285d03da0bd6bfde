// Package relgraph holds the directed archetype relationship graph.
// Relationships are typed and weighted, and not guaranteed
// bidirectional; targets may be dangling ids that never resolve.
package relgraph

import "strings"

// Edge is one directed relationship between two archetype ids.
type Edge struct {
	Type   string  `json:"type"`
	Weight float64 `json:"weight"`
}

// Link pairs a neighboring archetype id with the edge that reaches it.
type Link struct {
	ID   string
	Edge *Edge
}

// Graph is a directed graph over archetype ids with both adjacency
// directions maintained. Known tracks ids that exist in the archetype
// catalog; edges may point at unknown ids and traversals skip those.
type Graph struct {
	Known    map[string]bool             `json:"known"`
	Outbound map[string]map[string]*Edge `json:"outbound"`
	Inbound  map[string]map[string]*Edge `json:"inbound"`
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		Known:    make(map[string]bool),
		Outbound: make(map[string]map[string]*Edge),
		Inbound:  make(map[string]map[string]*Edge),
	}
}

// AddNode marks an archetype id as present in the catalog.
func (g *Graph) AddNode(id string) {
	g.Known[id] = true
}

// AddEdge records a directed edge. The target is allowed to be
// unknown; it stays dangling until (unless) its record shows up.
func (g *Graph) AddEdge(sourceID, targetID, relType string, weight float64) {
	if g.Outbound[sourceID] == nil {
		g.Outbound[sourceID] = make(map[string]*Edge)
	}
	edge := &Edge{Type: strings.ToUpper(relType), Weight: weight}
	g.Outbound[sourceID][targetID] = edge

	if g.Inbound[targetID] == nil {
		g.Inbound[targetID] = make(map[string]*Edge)
	}
	g.Inbound[targetID][sourceID] = edge
}

// Outgoing returns links from id to known archetypes. Dangling targets
// are skipped.
func (g *Graph) Outgoing(id string) []Link {
	return g.links(g.Outbound[id])
}

// Incoming returns links pointing at id from known archetypes.
func (g *Graph) Incoming(id string) []Link {
	return g.links(g.Inbound[id])
}

func (g *Graph) links(edges map[string]*Edge) []Link {
	if len(edges) == 0 {
		return nil
	}
	result := make([]Link, 0, len(edges))
	for other, edge := range edges {
		if g.Known[other] {
			result = append(result, Link{ID: other, Edge: edge})
		}
	}
	return result
}

// Neighbors returns known archetype ids connected in either direction.
func (g *Graph) Neighbors(id string) []string {
	seen := make(map[string]bool)
	var result []string

	for targetID := range g.Outbound[id] {
		if g.Known[targetID] && !seen[targetID] {
			seen[targetID] = true
			result = append(result, targetID)
		}
	}
	for sourceID := range g.Inbound[id] {
		if g.Known[sourceID] && !seen[sourceID] {
			seen[sourceID] = true
			result = append(result, sourceID)
		}
	}
	return result
}

// NodeCount returns the number of known archetype ids.
func (g *Graph) NodeCount() int {
	return len(g.Known)
}

// EdgeCount returns the number of directed edges, dangling included.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, targets := range g.Outbound {
		count += len(targets)
	}
	return count
}

// DanglingCount returns the number of edges whose target is unknown.
func (g *Graph) DanglingCount() int {
	count := 0
	for _, targets := range g.Outbound {
		for targetID := range targets {
			if !g.Known[targetID] {
				count++
			}
		}
	}
	return count
}

// DegreeCentrality computes (in+out)/(2*(n-1)) per known id, counting
// only edges between known ids.
func (g *Graph) DegreeCentrality() map[string]float64 {
	n := len(g.Known)
	result := make(map[string]float64, n)
	if n <= 1 {
		for id := range g.Known {
			result[id] = 0.0
		}
		return result
	}

	normalizer := 2.0 * float64(n-1)
	for id := range g.Known {
		result[id] = float64(len(g.Outgoing(id))+len(g.Incoming(id))) / normalizer
	}
	return result
}
