// Package chain resolves the entity -> archetype -> node chain.
// Each hop is evaluated independently so a partial chain renders with
// explicit break markers instead of stopping at the first failure.
package chain

import (
	"github.com/kittclouds/mythos/pkg/catalog"
	"github.com/kittclouds/mythos/pkg/index"
	"github.com/kittclouds/mythos/pkg/topology"
)

// Result is the tri-hop outcome for one entity. The OK flags are the
// contract consumed by detail views: a false flag renders as an
// explicit "no mapping found" / "cannot trace" state.
type Result struct {
	Entity   *catalog.Entity
	EntityOK bool

	Archetype   *catalog.Archetype
	ArchetypeOK bool

	NodeID string
	Node   *topology.Node
	NodeOK bool
}

// Resolve walks the optional links of an entity. Read-only, no side
// effects, cheap enough to call repeatedly without caching.
func Resolve(entity *catalog.Entity, idx *index.Indices) Result {
	result := Result{Entity: entity}
	if entity == nil {
		return result
	}
	result.EntityOK = true

	// Hop 1->2: mapping.archetype_id against the archetype index.
	if entity.Mapped() {
		if arch, ok := idx.Archetype(entity.Mapping.ArchetypeID).Get(); ok {
			result.Archetype = arch
			result.ArchetypeOK = true
		}
	}

	// Hop 2->3: an explicit tracing_chain node is an authoritative
	// override; otherwise fall back to the entity's nearest_node.
	// Evaluated regardless of hop 1's outcome.
	nodeID := ""
	if entity.Mapping != nil && entity.Mapping.TracingChain != nil && entity.Mapping.TracingChain.Node != "" {
		nodeID = entity.Mapping.TracingChain.Node
	} else if entity.NearestNode != nil {
		nodeID = entity.NearestNode.NodeID
	}
	if nodeID != "" {
		result.NodeID = nodeID
		if node := topology.Lookup(nodeID); node != nil {
			result.Node = node
			result.NodeOK = true
		}
	}

	return result
}

// ResolveByName resolves the chain for an entity name. An unknown name
// yields EntityOK=false with both downstream hops broken.
func ResolveByName(name string, idx *index.Indices) Result {
	entity, _ := idx.Entity(name).Get()
	return Resolve(entity, idx)
}
