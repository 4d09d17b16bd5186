package buffer

import "sync"

// Metrics accumulates pool-wide counters. It is observability, not a
// correctness mechanism — nothing in the pool consults it to make a
// decision. Adapted from the teacher's common.Stats running-counter
// style, specialized to the counters a buffer pool operator actually
// wants (hit rate, eviction pressure, write-back volume) instead of a
// generic named-average map.
type Metrics struct {
	mu sync.Mutex

	hits            uint64
	misses          uint64
	evictions       uint64
	dirtyWritebacks uint64
	poolExhausted   uint64
}

// Snapshot is a point-in-time copy of Metrics safe to read without a lock.
type Snapshot struct {
	Hits            uint64
	Misses          uint64
	Evictions       uint64
	DirtyWritebacks uint64
	PoolExhausted   uint64
}

func (m *Metrics) recordHit() {
	m.mu.Lock()
	m.hits++
	m.mu.Unlock()
}

func (m *Metrics) recordMiss() {
	m.mu.Lock()
	m.misses++
	m.mu.Unlock()
}

func (m *Metrics) recordEviction() {
	m.mu.Lock()
	m.evictions++
	m.mu.Unlock()
}

func (m *Metrics) recordDirtyWriteback() {
	m.mu.Lock()
	m.dirtyWritebacks++
	m.mu.Unlock()
}

func (m *Metrics) recordPoolExhausted() {
	m.mu.Lock()
	m.poolExhausted++
	m.mu.Unlock()
}

// Snapshot returns a copy of the current counters.
func (m *Metrics) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		Hits:            m.hits,
		Misses:          m.misses,
		Evictions:       m.evictions,
		DirtyWritebacks: m.dirtyWritebacks,
		PoolExhausted:   m.poolExhausted,
	}
}
