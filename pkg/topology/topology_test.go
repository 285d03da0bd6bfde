package topology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopologyShape(t *testing.T) {
	assert.Equal(t, 19, Count(), "18 arc nodes plus the center")
	assert.Len(t, All(), 19)

	for _, arc := range []string{ArcAscent, ArcDescent, ArcReturn} {
		nodes := ByArc(arc)
		require.Len(t, nodes, 6, "arc %s", arc)
		for i, n := range nodes {
			assert.Equal(t, i+1, n.Condition)
			assert.Equal(t, arc, n.Arc)
		}
	}
}

func TestLookup(t *testing.T) {
	node := Lookup("D3")
	require.NotNil(t, node)
	assert.Equal(t, "Gallows", node.Title)
	assert.Equal(t, ArcDescent, node.Arc)
	assert.Equal(t, 3, node.Condition)

	assert.Nil(t, Lookup("Z9"))
	assert.Nil(t, Lookup(""))
}

func TestCenterNode(t *testing.T) {
	center := Lookup(CenterCode)
	require.NotNil(t, center)
	assert.True(t, center.IsCenter())
	assert.Empty(t, center.Arc, "the center belongs to no arc")

	for _, arc := range []string{ArcAscent, ArcDescent, ArcReturn} {
		for _, n := range ByArc(arc) {
			assert.False(t, n.IsCenter())
		}
	}
}

func TestCodesAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, n := range All() {
		assert.False(t, seen[n.Code], "duplicate code %s", n.Code)
		seen[n.Code] = true
	}
}
