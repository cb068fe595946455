package terminal

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func remoteBatch(n, offset int) []Entry {
	batch := make([]Entry, 0, n)
	for i := 0; i < n; i++ {
		batch = append(batch, Entry{
			ID:        fmt.Sprintf("srv-%d", offset+i),
			Timestamp: time.Now(),
			Category:  CategorySentinel,
			Message:   fmt.Sprintf("remote event %d", offset+i),
		})
	}
	return batch
}

func TestAppendAlwaysSucceeds(t *testing.T) {
	log := NewLog(50)

	e1 := log.Append(CategoryTrade, "order placed: %s", "BUY")
	e2 := log.Append(CategoryTrade, "order placed: %s", "BUY")

	assert.Equal(t, 2, log.Count())
	assert.NotEqual(t, e1.ID, e2.ID, "local ids must be unique")
	assert.Equal(t, "order placed: BUY", e1.Message)
}

func TestMergeDiscardsDuplicates(t *testing.T) {
	log := NewLog(50)
	batch := remoteBatch(5, 0)

	added := log.Merge(batch)
	assert.Equal(t, 5, added)

	// Same batch again is a no-op.
	added = log.Merge(batch)
	assert.Equal(t, 0, added)
	assert.Equal(t, 5, log.Count())
}

func TestMergeIdempotence(t *testing.T) {
	once := NewLog(50)
	twice := NewLog(50)
	batch := remoteBatch(10, 100)

	once.Merge(batch)
	twice.Merge(batch)
	twice.Merge(batch)

	assert.Equal(t, once.Entries(), twice.Entries())
}

func TestMergeOverCapacityBatchIsIdempotent(t *testing.T) {
	log := NewLog(50)
	batch := remoteBatch(100, 0) // ascending, twice the capacity

	added := log.Merge(batch)
	assert.Equal(t, 50, added)

	entries := log.Entries()
	require.Len(t, entries, 50)
	assert.Equal(t, "srv-50", entries[0].ID)
	assert.Equal(t, "srv-99", entries[49].ID)

	// The identical poll again adds nothing and the retained window must
	// not move.
	added = log.Merge(batch)
	assert.Equal(t, 0, added)
	assert.Equal(t, entries, log.Entries())
}

func TestMergePreservesBackendOrder(t *testing.T) {
	log := NewLog(50)
	log.Merge(remoteBatch(3, 0))

	entries := log.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "srv-0", entries[0].ID)
	assert.Equal(t, "srv-2", entries[2].ID)
}

func TestCapacityBound(t *testing.T) {
	log := NewLog(50)

	for i := 0; i < 30; i++ {
		log.Append(CategorySystem, "local %d", i)
	}
	log.Merge(remoteBatch(40, 0))

	assert.Equal(t, 50, log.Count())

	// The retained set is exactly the 50 most recently inserted: the last
	// 10 local entries followed by all 40 remote ones.
	entries := log.Entries()
	assert.Equal(t, "local 20", entries[0].Message)
	assert.Equal(t, "srv-39", entries[49].ID)
}

func TestEvictionPrunesDedupSet(t *testing.T) {
	log := NewLog(10)
	log.Merge(remoteBatch(10, 0))
	log.Merge(remoteBatch(10, 10)) // evicts srv-0..srv-9

	// An evicted id resent by the backend is treated as new again.
	added := log.Merge(remoteBatch(1, 0))
	assert.Equal(t, 1, added)
	assert.Equal(t, 10, log.Count())
}

func TestInterleavedProducers(t *testing.T) {
	log := NewLog(50)

	log.Append(CategoryRisk, "force close triggered")
	log.Merge(remoteBatch(2, 0))
	log.Append(CategoryTrade, "force close done")

	entries := log.Entries()
	require.Len(t, entries, 4)
	// Rendered in insertion order, not strict timestamp order.
	assert.Equal(t, CategoryRisk, entries[0].Category)
	assert.Equal(t, "srv-0", entries[1].ID)
	assert.Equal(t, CategoryTrade, entries[3].Category)
}

func TestExport(t *testing.T) {
	log := NewLog(50)
	log.Append(CategorySystem, "hello")

	out := log.Export()
	assert.Contains(t, out, "system")
	assert.Contains(t, out, "hello")
}
