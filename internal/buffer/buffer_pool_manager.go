// Package buffer implements the buffer pool manager: the component
// that orchestrates pinning, I/O, and eviction over a fixed pool of
// page-sized frames, routing through the extendible hash table (the
// page table) and the LRU-K replacer.
package buffer

import (
	"fmt"
	"log"
	"sync"

	"go.uber.org/multierr"

	"bustub/internal/disk"
	"bustub/internal/hashtable"
	"bustub/internal/replacer"
	"bustub/internal/wal"
)

// PoolManager owns a fixed frame array and mediates every access to it.
// All public operations hold poolLatch for their full extent, including
// any disk I/O they perform — a single coarse latch, per the design's
// baseline concurrency model. The hash table and replacer hold their
// own internal latches too, always acquired with poolLatch already
// held (poolLatch -> {page table latch, replacer latch}, never
// reversed).
type PoolManager struct {
	poolLatch sync.Mutex

	frames    []*Page
	pageTable *hashtable.Table[uint64, replacer.FrameID]
	freeList  []replacer.FrameID
	repl      replacer.Replacer

	disk disk.Manager
	log  wal.LogManager

	metrics Metrics
}

// New builds a pool of cfg.PoolSize frames backed by dm. A nil lm wires
// wal.Noop, matching pools that don't need the WAL hook.
func New(cfg Config, dm disk.Manager, lm wal.LogManager) *PoolManager {
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	if lm == nil {
		lm = wal.Noop
	}

	frames := make([]*Page, cfg.PoolSize)
	free := make([]replacer.FrameID, cfg.PoolSize)
	for i := range frames {
		frames[i] = newPage()
		free[i] = replacer.FrameID(i)
	}

	return &PoolManager{
		frames:    frames,
		pageTable: hashtable.New[uint64, replacer.FrameID](cfg.HashBucketSize, hashtable.XXHashUint64()),
		freeList:  free,
		repl:      replacer.NewLRUK(cfg.PoolSize, cfg.ReplacerK),
		disk:      dm,
		log:       lm,
	}
}

func tableKey(id disk.PageID) uint64 { return uint64(id) }

// NewPage allocates a fresh page, pins it, and returns its frame. The
// second return is InvalidPageID and ok is false if the pool has no
// free or evictable frame.
func (p *PoolManager) NewPage() (page *Page, id disk.PageID, ok bool) {
	p.poolLatch.Lock()
	defer p.poolLatch.Unlock()

	fid, got := p.allocFrame()
	if !got {
		p.metrics.recordPoolExhausted()
		log.Printf("buffer: NewPage failed, pool exhausted")
		return nil, disk.InvalidPageID, false
	}

	pid := p.disk.AllocatePage()
	frame := p.frames[fid]

	frame.WLock()
	frame.reset(pid)
	frame.pinCount = 1
	frame.WUnlock()

	p.pageTable.Insert(tableKey(pid), fid)
	p.repl.RecordAccess(fid)
	p.repl.SetEvictable(fid, false)

	return frame, pid, true
}

// FetchPage returns the frame holding pid, reading it from disk on a
// miss. ok is false only when the pool cannot allocate a frame.
func (p *PoolManager) FetchPage(pid disk.PageID) (page *Page, ok bool) {
	p.poolLatch.Lock()
	defer p.poolLatch.Unlock()

	if fid, hit := p.pageTable.Find(tableKey(pid)); hit {
		frame := p.frames[fid]
		frame.pinCount++
		p.repl.RecordAccess(fid)
		p.repl.SetEvictable(fid, false)
		p.metrics.recordHit()
		return frame, true
	}
	p.metrics.recordMiss()

	fid, got := p.allocFrame()
	if !got {
		p.metrics.recordPoolExhausted()
		log.Printf("buffer: FetchPage(%d) failed, pool exhausted", pid)
		return nil, false
	}

	frame := p.frames[fid]
	frame.WLock()
	frame.reset(pid)
	frame.pinCount = 1
	err := p.disk.ReadPage(pid, frame.data)
	frame.WUnlock()
	if err != nil {
		p.freeList = append(p.freeList, fid)
		panic(fmt.Errorf("buffer: FetchPage(%d): %w", pid, err))
	}

	p.pageTable.Insert(tableKey(pid), fid)
	p.repl.RecordAccess(fid)
	p.repl.SetEvictable(fid, false)

	return frame, true
}

// UnpinPage releases one pin on pid. It returns false if pid is not
// resident or is already fully unpinned.
func (p *PoolManager) UnpinPage(pid disk.PageID, isDirty bool) bool {
	p.poolLatch.Lock()
	defer p.poolLatch.Unlock()

	fid, ok := p.pageTable.Find(tableKey(pid))
	if !ok {
		return false
	}

	frame := p.frames[fid]
	if frame.pinCount == 0 {
		return false
	}

	frame.pinCount--
	if isDirty {
		frame.dirty = true
	}
	if frame.pinCount == 0 {
		p.repl.SetEvictable(fid, true)
	}
	return true
}

// FlushPage writes pid's buffer to disk unconditionally, regardless of
// its dirty flag, to support explicit durability requests. It returns
// false if pid is not resident.
func (p *PoolManager) FlushPage(pid disk.PageID) bool {
	if pid == disk.InvalidPageID {
		panic("buffer: FlushPage called with InvalidPageID")
	}

	p.poolLatch.Lock()
	defer p.poolLatch.Unlock()

	fid, ok := p.pageTable.Find(tableKey(pid))
	if !ok {
		return false
	}

	p.forceFlushLocked(p.frames[fid])
	return true
}

// FlushAllPages writes back every dirty resident page. It attempts all
// of them even if one fails, aggregating failures with multierr rather
// than stopping at the first.
func (p *PoolManager) FlushAllPages() error {
	p.poolLatch.Lock()
	defer p.poolLatch.Unlock()

	var errs error
	if err := p.log.Flush(); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("buffer: log flush: %w", err))
	}

	for _, frame := range p.frames {
		if frame.id == disk.InvalidPageID || !frame.dirty {
			continue
		}
		if err := p.disk.WritePage(frame.id, frame.data); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("buffer: flush page %d: %w", frame.id, err))
			continue
		}
		frame.dirty = false
		p.metrics.recordDirtyWriteback()
	}
	return errs
}

// DeletePage removes pid from the pool, freeing its frame for reuse.
// It is idempotent (true if pid was never resident) and refuses to
// delete a pinned page.
func (p *PoolManager) DeletePage(pid disk.PageID) bool {
	p.poolLatch.Lock()
	defer p.poolLatch.Unlock()

	fid, ok := p.pageTable.Find(tableKey(pid))
	if !ok {
		return true
	}

	frame := p.frames[fid]
	if frame.pinCount > 0 {
		return false
	}

	p.repl.Remove(fid)
	if frame.dirty {
		p.writeBackLocked(frame)
	}

	p.pageTable.Remove(tableKey(pid))

	frame.WLock()
	frame.reset(disk.InvalidPageID)
	frame.WUnlock()

	p.freeList = append(p.freeList, fid)
	p.disk.DeallocatePage(pid)
	return true
}

// Metrics returns a snapshot of pool-wide counters.
func (p *PoolManager) Metrics() Snapshot {
	return p.metrics.Snapshot()
}

// allocFrame returns a frame ready for a fresh residency, preferring
// the free list over evicting. Callers must hold poolLatch.
func (p *PoolManager) allocFrame() (replacer.FrameID, bool) {
	if n := len(p.freeList); n > 0 {
		fid := p.freeList[n-1]
		p.freeList = p.freeList[:n-1]
		return fid, true
	}

	fid, ok := p.repl.Evict()
	if !ok {
		return 0, false
	}
	p.metrics.recordEviction()

	frame := p.frames[fid]
	if frame.dirty {
		p.writeBackLocked(frame)
	}
	p.pageTable.Remove(tableKey(frame.id))
	return fid, true
}

// writeBackLocked flushes frame to disk because it is dirty (eviction
// or delete path). Callers must hold poolLatch and have already
// checked frame.dirty.
func (p *PoolManager) writeBackLocked(frame *Page) {
	p.flushLogIfNeededLocked(frame)
	if err := p.disk.WritePage(frame.id, frame.data); err != nil {
		panic(fmt.Errorf("buffer: write-back page %d: %w", frame.id, err))
	}
	frame.dirty = false
	p.metrics.recordDirtyWriteback()
}

// forceFlushLocked writes frame to disk unconditionally, for explicit
// FlushPage calls.
func (p *PoolManager) forceFlushLocked(frame *Page) {
	p.flushLogIfNeededLocked(frame)
	if err := p.disk.WritePage(frame.id, frame.data); err != nil {
		panic(fmt.Errorf("buffer: flush page %d: %w", frame.id, err))
	}
	frame.dirty = false
	p.metrics.recordDirtyWriteback()
}

// flushLogIfNeededLocked honors the reserved WAL hook (§6, §9): if
// frame's content is described by a log record not yet durable, force
// the log through before letting the page write proceed.
func (p *PoolManager) flushLogIfNeededLocked(frame *Page) {
	if frame.lsn <= p.log.GetFlushedLSN() {
		return
	}
	if err := p.log.Flush(); err != nil {
		panic(fmt.Errorf("buffer: log flush before page %d write-back: %w", frame.id, err))
	}
}
