// Package feed slices an already-filtered list into fixed-size
// batches. It never re-runs filtering; all data is resident in memory
// after the initial catalog load, so exhaustion is the only
// termination signal.
package feed

// DefaultBatchSize is the fixed batch size used by the explorer,
// independent of category.
const DefaultBatchSize = 50

// Batch is one page of a filtered list plus the cursor to request the
// next page.
type Batch[T any] struct {
	Items     []T
	Cursor    int
	Exhausted bool
}

// NextBatch returns up to size items starting at cursor. Pure function
// of its inputs. A non-positive size falls back to DefaultBatchSize; a
// cursor past the end yields an empty, exhausted batch.
func NextBatch[T any](items []T, cursor, size int) Batch[T] {
	if size <= 0 {
		size = DefaultBatchSize
	}
	if cursor < 0 {
		cursor = 0
	}
	if cursor >= len(items) {
		return Batch[T]{Items: nil, Cursor: len(items), Exhausted: true}
	}

	end := cursor + size
	if end > len(items) {
		end = len(items)
	}
	return Batch[T]{
		Items:     items[cursor:end],
		Cursor:    end,
		Exhausted: end >= len(items),
	}
}
