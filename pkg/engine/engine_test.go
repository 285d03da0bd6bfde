package engine

import (
	"context"
	"testing"

	"github.com/hack-pad/hackpadfs"
	"github.com/hack-pad/hackpadfs/mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kittclouds/mythos/pkg/catalog"
)

const archetypesJSON = `{
  "archetypes": [
    {
      "id": "arch:NO-ODIN", "name": "Odin (Norse)", "system": "norse",
      "description": "the hanged god of wisdom",
      "keywords": ["sacrifice", "ravens"],
      "coordinates": [0.9, 0.1, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5],
      "relationships": [{"target_id": "arch:NO-LOKI", "type": "opposes", "weight": 0.6}]
    },
    {
      "id": "arch:NO-LOKI", "name": "Loki (Norse)", "system": "norse",
      "coordinates": [0.85, 0.15, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5]
    }
  ]
}`

const entitiesJSON = `{
  "entities": [
    {
      "name": "Odin", "type": "deity", "primary_tradition": "norse",
      "mapping": {"archetype_id": "arch:NO-ODIN", "confidence": 0.91},
      "nearest_node": {"node_id": "D3", "affinity": 0.82}
    },
    {
      "name": "Loki", "type": "deity", "primary_tradition": "norse",
      "mapping": {"archetype_id": "arch:NO-LOKI", "score": 0.66},
      "nearest_node": "D1"
    },
    {"name": "Kvasir", "type": "figure", "primary_tradition": "norse"}
  ]
}`

const patternsJSON = `{
  "patterns": [
    {"name": "Hanged God", "arc": "D", "description": "Odin sacrifices himself", "related_entities": ["Odin"]}
  ],
  "motifs": {"M1": "self-sacrifice"}
}`

const nodesJSON = `{
  "node_affinities": {
    "D3": [
      {"archetype_id": "arch:NO-ODIN", "affinity": 0.9},
      {"archetype_id": "arch:NO-LOKI", "affinity": 0.4}
    ]
  }
}`

func testFS(t *testing.T) hackpadfs.FS {
	t.Helper()
	fs, err := mem.NewFS()
	require.NoError(t, err)

	for path, body := range map[string]string{
		"archetypes.json": archetypesJSON,
		"entities.json":   entitiesJSON,
		"patterns.json":   patternsJSON,
		"nodes.json":      nodesJSON,
	} {
		require.NoError(t, hackpadfs.WriteFullFile(fs, path, []byte(body), 0644))
	}
	return fs
}

func testURLs() map[catalog.Key]string {
	return map[catalog.Key]string{
		catalog.KeyArchetypes: "archetypes.json",
		catalog.KeyEntities:   "entities.json",
		catalog.KeyPatterns:   "patterns.json",
		catalog.KeyNodes:      "nodes.json",
	}
}

func loadedEngine(t *testing.T) *Engine {
	t.Helper()
	eng := New(catalog.NewFSFetcher(testFS(t)), testURLs(), nil)
	require.NoError(t, eng.LoadAll(context.Background()))
	return eng
}

func TestQueriesBeforeLoadFail(t *testing.T) {
	eng := New(catalog.NewFSFetcher(testFS(t)), testURLs(), nil)

	_, err := eng.Search("odin")
	assert.ErrorIs(t, err, ErrNotLoaded)
	_, err = eng.ResolveChain("Odin")
	assert.ErrorIs(t, err, ErrNotLoaded)
	_, err = eng.Indices()
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestLoadAllBuildsEverything(t *testing.T) {
	eng := loadedEngine(t)

	idx, err := eng.Indices()
	require.NoError(t, err)
	assert.Len(t, idx.Archetypes, 2)
	assert.Len(t, idx.Entities, 3)
	assert.Len(t, idx.Patterns, 1)
	assert.Len(t, idx.ArchetypesByNode["D3"], 2)

	// LoadAll on a loaded engine is a no-op.
	require.NoError(t, eng.LoadAll(context.Background()))
}

func TestChainScenario(t *testing.T) {
	eng := loadedEngine(t)

	result, err := eng.ResolveChain("Odin")
	require.NoError(t, err)

	assert.True(t, result.EntityOK)
	assert.True(t, result.ArchetypeOK)
	assert.True(t, result.NodeOK)
	assert.Equal(t, "arch:NO-ODIN", result.Archetype.ID)
	assert.Equal(t, "D3", result.NodeID)
}

func TestChainUnmappedEntity(t *testing.T) {
	eng := loadedEngine(t)

	result, err := eng.ResolveChain("Kvasir")
	require.NoError(t, err)
	assert.True(t, result.EntityOK)
	assert.False(t, result.ArchetypeOK)
	assert.False(t, result.NodeOK)
}

func TestSearchThroughEngine(t *testing.T) {
	eng := loadedEngine(t)

	results, err := eng.Search("odin")
	require.NoError(t, err)
	assert.False(t, results.Empty())
	require.NotEmpty(t, results.Entities)
	assert.Equal(t, "Odin", results.Entities[0].Name)
}

func TestNearestArchetypes(t *testing.T) {
	eng := loadedEngine(t)

	neighbors, err := eng.Nearest("arch:NO-ODIN", 1)
	require.NoError(t, err)
	require.Len(t, neighbors, 1)
	assert.Equal(t, "arch:NO-LOKI", neighbors[0].ID)
}

func TestRelated(t *testing.T) {
	eng := loadedEngine(t)

	links, err := eng.Related("arch:NO-ODIN")
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "arch:NO-LOKI", links[0].ID)
	assert.Equal(t, "OPPOSES", links[0].Edge.Type)
}

func TestEntityFeeds(t *testing.T) {
	eng := loadedEngine(t)

	batch, err := eng.EntitiesForArchetype("arch:NO-ODIN", 0, 10)
	require.NoError(t, err)
	require.Len(t, batch.Items, 1)
	assert.Equal(t, "Odin", batch.Items[0].Name)
	assert.True(t, batch.Exhausted)

	byNode, err := eng.EntitiesForNode("D1", 0, 10)
	require.NoError(t, err)
	require.Len(t, byNode.Items, 1)
	assert.Equal(t, "Loki", byNode.Items[0].Name, "bare-string nearest_node still indexes")
}

func TestDegradedSessionStillQueries(t *testing.T) {
	fs, err := mem.NewFS()
	require.NoError(t, err)
	// Only two of four catalogs exist; the others fail to fetch.
	require.NoError(t, hackpadfs.WriteFullFile(fs, "archetypes.json", []byte(archetypesJSON), 0644))
	require.NoError(t, hackpadfs.WriteFullFile(fs, "entities.json", []byte(entitiesJSON), 0644))

	eng := New(catalog.NewFSFetcher(fs), testURLs(), nil)
	require.NoError(t, eng.LoadAll(context.Background()))

	idx, err := eng.Indices()
	require.NoError(t, err)
	assert.Len(t, idx.Archetypes, 2)
	assert.Empty(t, idx.Patterns)
	assert.Empty(t, idx.ArchetypesByNode)

	results, err := eng.Search("odin")
	require.NoError(t, err)
	assert.False(t, results.Empty())
}

func TestMentionScannerWired(t *testing.T) {
	eng := loadedEngine(t)

	scanner, err := eng.Scanner()
	require.NoError(t, err)
	counts := scanner.Count("Odin spoke; Loki laughed; Odin answered.")
	assert.Equal(t, 2, counts["Odin"])
	assert.Equal(t, 1, counts["Loki"])
}
