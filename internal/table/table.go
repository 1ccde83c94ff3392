// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package table provides the per-process side table that maps kernel buffer
// names to the buffer objects resolved in this process.
package table

import (
	"sync"
	"sync/atomic"
)

const (
	// ShardCount is the number of shards for reduced lock contention.
	// Must be a power of 2 for fast modulo via bitwise AND.
	ShardCount = 16

	shardMask = ShardCount - 1
)

// Table is a thread-safe map from kernel buffer names to values.
// Unlike a cache it never evicts: an entry lives until Delete, because
// dropping a live buffer object would break per-process identity.
type Table[V any] struct {
	shards [ShardCount]*shard[V]

	// Statistics (atomic for zero-allocation reads)
	hits   atomic.Uint64
	misses atomic.Uint64
}

type shard[V any] struct {
	mu      sync.RWMutex
	entries map[uint32]V
}

// Stats holds lookup statistics.
type Stats struct {
	Len    int
	Hits   uint64
	Misses uint64
}

// New creates an empty table.
func New[V any]() *Table[V] {
	t := &Table[V]{}
	for i := range t.shards {
		t.shards[i] = &shard[V]{entries: make(map[uint32]V)}
	}
	return t
}

// getShard returns the shard for a name. Kernel names are small sequential
// integers, so the low bits spread them evenly.
func (t *Table[V]) getShard(name uint32) *shard[V] {
	return t.shards[name&shardMask]
}

// Get returns the value stored for name.
func (t *Table[V]) Get(name uint32) (V, bool) {
	s := t.getShard(name)

	s.mu.RLock()
	v, ok := s.entries[name]
	s.mu.RUnlock()

	if ok {
		t.hits.Add(1)
	} else {
		t.misses.Add(1)
	}
	return v, ok
}

// Put stores v for name, replacing any previous value.
func (t *Table[V]) Put(name uint32, v V) {
	s := t.getShard(name)

	s.mu.Lock()
	s.entries[name] = v
	s.mu.Unlock()
}

// CompareAndDelete removes the entry for name only if match reports true
// for the stored value.
func (t *Table[V]) CompareAndDelete(name uint32, match func(V) bool) bool {
	s := t.getShard(name)

	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.entries[name]
	if !ok || !match(v) {
		return false
	}
	delete(s.entries, name)
	return true
}

// Len returns the total number of entries across all shards.
func (t *Table[V]) Len() int {
	total := 0
	for _, s := range t.shards {
		s.mu.RLock()
		total += len(s.entries)
		s.mu.RUnlock()
	}
	return total
}

// Range calls fn for every entry until fn returns false. Entries added or
// removed during Range may or may not be visited.
func (t *Table[V]) Range(fn func(name uint32, v V) bool) {
	for _, s := range t.shards {
		s.mu.RLock()
		snapshot := make(map[uint32]V, len(s.entries))
		for k, v := range s.entries {
			snapshot[k] = v
		}
		s.mu.RUnlock()

		for k, v := range snapshot {
			if !fn(k, v) {
				return
			}
		}
	}
}

// ShardLen returns the number of entries in each shard.
// Useful for debugging load distribution.
func (t *Table[V]) ShardLen() [ShardCount]int {
	var lens [ShardCount]int
	for i, s := range t.shards {
		s.mu.RLock()
		lens[i] = len(s.entries)
		s.mu.RUnlock()
	}
	return lens
}

// Stats returns current lookup statistics.
func (t *Table[V]) Stats() Stats {
	return Stats{
		Len:    t.Len(),
		Hits:   t.hits.Load(),
		Misses: t.misses.Load(),
	}
}
