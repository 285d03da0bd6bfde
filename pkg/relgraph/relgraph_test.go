package relgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectedEdges(t *testing.T) {
	g := New()
	g.AddNode("arch:A")
	g.AddNode("arch:B")
	g.AddEdge("arch:A", "arch:B", "opposes", 0.6)

	out := g.Outgoing("arch:A")
	require.Len(t, out, 1)
	assert.Equal(t, "arch:B", out[0].ID)
	assert.Equal(t, "OPPOSES", out[0].Edge.Type)
	assert.InDelta(t, 0.6, out[0].Edge.Weight, 1e-9)

	// Not guaranteed bidirectional.
	assert.Empty(t, g.Outgoing("arch:B"))
	require.Len(t, g.Incoming("arch:B"), 1)
	assert.Equal(t, "arch:A", g.Incoming("arch:B")[0].ID)
}

func TestDanglingTargetsSkipped(t *testing.T) {
	g := New()
	g.AddNode("arch:A")
	g.AddEdge("arch:A", "arch:GONE", "mirrors", 0.4)

	assert.Empty(t, g.Outgoing("arch:A"), "unknown targets never surface in traversals")
	assert.Equal(t, 1, g.EdgeCount(), "the edge itself is kept")
	assert.Equal(t, 1, g.DanglingCount())
	assert.Empty(t, g.Neighbors("arch:A"))
}

func TestNeighborsBothDirections(t *testing.T) {
	g := New()
	for _, id := range []string{"arch:A", "arch:B", "arch:C"} {
		g.AddNode(id)
	}
	g.AddEdge("arch:A", "arch:B", "opposes", 0.5)
	g.AddEdge("arch:C", "arch:A", "mirrors", 0.3)

	neighbors := g.Neighbors("arch:A")
	assert.ElementsMatch(t, []string{"arch:B", "arch:C"}, neighbors)
}

func TestDegreeCentrality(t *testing.T) {
	g := New()
	for _, id := range []string{"arch:A", "arch:B", "arch:C"} {
		g.AddNode(id)
	}
	g.AddEdge("arch:A", "arch:B", "opposes", 0.5)
	g.AddEdge("arch:A", "arch:C", "mirrors", 0.3)

	c := g.DegreeCentrality()
	require.Len(t, c, 3)
	assert.InDelta(t, 0.5, c["arch:A"], 1e-9) // (2+0)/(2*2)
	assert.InDelta(t, 0.25, c["arch:B"], 1e-9)
	assert.InDelta(t, 0.25, c["arch:C"], 1e-9)
}

func TestDegreeCentralitySingleNode(t *testing.T) {
	g := New()
	g.AddNode("arch:A")
	c := g.DegreeCentrality()
	assert.Equal(t, 0.0, c["arch:A"])
}
