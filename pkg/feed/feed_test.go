package feed

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func items(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("item-%03d", i)
	}
	return out
}

func TestNextBatchSlices(t *testing.T) {
	list := items(120)

	first := NextBatch(list, 0, 50)
	require.Len(t, first.Items, 50)
	assert.Equal(t, "item-000", first.Items[0])
	assert.Equal(t, 50, first.Cursor)
	assert.False(t, first.Exhausted)

	second := NextBatch(list, first.Cursor, 50)
	require.Len(t, second.Items, 50)
	assert.Equal(t, "item-050", second.Items[0])
	assert.False(t, second.Exhausted)

	third := NextBatch(list, second.Cursor, 50)
	require.Len(t, third.Items, 20)
	assert.Equal(t, 120, third.Cursor)
	assert.True(t, third.Exhausted, "exhaustion is the only termination signal")
}

func TestNextBatchExactBoundary(t *testing.T) {
	batch := NextBatch(items(50), 0, 50)
	assert.Len(t, batch.Items, 50)
	assert.True(t, batch.Exhausted, "a full final page is still exhausted")
}

func TestNextBatchPastEnd(t *testing.T) {
	batch := NextBatch(items(10), 25, 50)
	assert.Empty(t, batch.Items)
	assert.Equal(t, 10, batch.Cursor)
	assert.True(t, batch.Exhausted)
}

func TestNextBatchEmptyList(t *testing.T) {
	batch := NextBatch([]string{}, 0, 50)
	assert.Empty(t, batch.Items)
	assert.True(t, batch.Exhausted)
}

func TestNextBatchDefaults(t *testing.T) {
	// Non-positive size falls back to the fixed explorer batch size.
	batch := NextBatch(items(80), 0, 0)
	assert.Len(t, batch.Items, DefaultBatchSize)

	// Negative cursors clamp to the start.
	clamped := NextBatch(items(10), -3, 5)
	require.Len(t, clamped.Items, 5)
	assert.Equal(t, "item-000", clamped.Items[0])
}

func TestNextBatchIsPure(t *testing.T) {
	list := items(7)
	a := NextBatch(list, 0, 3)
	b := NextBatch(list, 0, 3)
	assert.Equal(t, a, b)
	assert.Len(t, list, 7, "input list is never mutated")
}
