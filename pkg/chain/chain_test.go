package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kittclouds/mythos/pkg/catalog"
	"github.com/kittclouds/mythos/pkg/index"
)

func affinity(v float64) *float64 { return &v }

func buildIndices(entities []catalog.Entity) *index.Indices {
	return index.Build(catalog.Catalogs{
		Archetypes: &catalog.Document{Archetypes: []catalog.Archetype{
			{ID: "arch:NO-ODIN", Name: "Odin (Norse)", System: "norse"},
		}},
		Entities: &catalog.Document{Entities: entities},
	})
}

func TestFullChainResolves(t *testing.T) {
	idx := buildIndices([]catalog.Entity{{
		Name:        "Odin",
		Mapping:     &catalog.Mapping{ArchetypeID: "arch:NO-ODIN"},
		NearestNode: &catalog.NodeRef{NodeID: "D3", Affinity: affinity(0.82)},
	}})

	result := ResolveByName("Odin", idx)

	assert.True(t, result.EntityOK)
	assert.True(t, result.ArchetypeOK)
	assert.True(t, result.NodeOK)
	require.NotNil(t, result.Archetype)
	assert.Equal(t, "arch:NO-ODIN", result.Archetype.ID)
	assert.Equal(t, "D3", result.NodeID)
	require.NotNil(t, result.Node)
	assert.Equal(t, "Gallows", result.Node.Title)
}

func TestBrokenArchetypeHopStaysPartial(t *testing.T) {
	// Mapping points at an archetype id that does not exist.
	idx := buildIndices([]catalog.Entity{{
		Name:        "Prometheus",
		Mapping:     &catalog.Mapping{ArchetypeID: "arch:MISSING"},
		NearestNode: &catalog.NodeRef{NodeID: "A3"},
	}})

	result := ResolveByName("Prometheus", idx)

	assert.True(t, result.EntityOK)
	assert.False(t, result.ArchetypeOK)
	assert.Nil(t, result.Archetype)

	// Hop 2->3 is evaluated independently of the broken hop 1.
	assert.True(t, result.NodeOK)
	assert.Equal(t, "A3", result.NodeID)
}

func TestNoMappingAtAll(t *testing.T) {
	idx := buildIndices([]catalog.Entity{{Name: "Kvasir"}})

	result := ResolveByName("Kvasir", idx)

	assert.True(t, result.EntityOK)
	assert.False(t, result.ArchetypeOK)
	assert.False(t, result.NodeOK)
	assert.Empty(t, result.NodeID)
}

func TestTracingChainOverridesNearestNode(t *testing.T) {
	idx := buildIndices([]catalog.Entity{{
		Name: "Odin",
		Mapping: &catalog.Mapping{
			ArchetypeID:  "arch:NO-ODIN",
			TracingChain: &catalog.TracingChain{Node: "D6"},
		},
		NearestNode: &catalog.NodeRef{NodeID: "D3"},
	}})

	result := ResolveByName("Odin", idx)

	assert.True(t, result.NodeOK)
	assert.Equal(t, "D6", result.NodeID, "tracing_chain is authoritative")
}

func TestUnknownNodeCodeBreaksHopThree(t *testing.T) {
	idx := buildIndices([]catalog.Entity{{
		Name:        "Odin",
		Mapping:     &catalog.Mapping{ArchetypeID: "arch:NO-ODIN"},
		NearestNode: &catalog.NodeRef{NodeID: "Z9"},
	}})

	result := ResolveByName("Odin", idx)

	assert.True(t, result.ArchetypeOK)
	assert.False(t, result.NodeOK)
	assert.Equal(t, "Z9", result.NodeID, "the broken code is still reported")
	assert.Nil(t, result.Node)
}

func TestUnknownEntityName(t *testing.T) {
	idx := buildIndices(nil)

	result := ResolveByName("Nobody", idx)

	assert.False(t, result.EntityOK)
	assert.False(t, result.ArchetypeOK)
	assert.False(t, result.NodeOK)
	assert.Nil(t, result.Entity)
}

func TestResolveNilEntity(t *testing.T) {
	idx := buildIndices(nil)
	result := Resolve(nil, idx)
	assert.False(t, result.EntityOK)
}
