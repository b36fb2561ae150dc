// Package ristretto provides an in-process note cache backed by dgraph-io/ristretto.
package ristretto

import (
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/Strob0t/notestream/internal/domain/note"
)

// entryOverhead approximates the fixed per-note cost beyond field bytes.
const entryOverhead = 64

// NoteCache caches notes by id. Cost is measured in approximate bytes.
type NoteCache struct {
	c   *ristretto.Cache[int64, note.Note]
	ttl time.Duration
}

// New creates a note cache bounded by maxCostBytes. Entries expire after ttl;
// a zero ttl keeps entries until evicted.
func New(maxCostBytes int64, ttl time.Duration) (*NoteCache, error) {
	counters := maxCostBytes / 100 * 10 // ~10x expected items
	if counters < 1000 {
		counters = 1000
	}
	c, err := ristretto.NewCache(&ristretto.Config[int64, note.Note]{
		NumCounters: counters,
		MaxCost:     maxCostBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &NoteCache{c: c, ttl: ttl}, nil
}

// Get returns the cached note for id.
func (c *NoteCache) Get(id int64) (note.Note, bool) {
	return c.c.Get(id)
}

// Set stores n and waits for the write to be applied, so a Get on the same
// goroutine observes it. The admission policy may still reject the entry.
func (c *NoteCache) Set(n note.Note) {
	c.c.SetWithTTL(n.ID, n, cost(n), c.ttl)
	c.c.Wait()
}

// Delete drops id from the cache. Deletes apply immediately.
func (c *NoteCache) Delete(id int64) {
	c.c.Del(id)
}

// Close shuts down the cache and releases resources.
func (c *NoteCache) Close() {
	c.c.Close()
}

func cost(n note.Note) int64 {
	size := int64(entryOverhead)
	for _, f := range n.Fields {
		size += int64(len(f))
	}
	return size
}
