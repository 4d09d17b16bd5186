package buffer

import (
	"sync"

	"bustub/internal/disk"
	"bustub/internal/wal"
)

// Page is a frame's content plus the metadata the pool needs to manage
// it. Its memory is allocated once and reused for the lifetime of the
// pool; only its identity and content change across residencies.
//
// The rwLatch protects only the byte buffer. page_id/pin_count/dirty
// are metadata guarded by the pool's own latch (see PoolManager),
// not by rwLatch — the two are independent lock layers per the design.
type Page struct {
	rwLatch sync.RWMutex

	id       disk.PageID
	pinCount int
	dirty    bool
	lsn      wal.LSN
	data     []byte
}

func newPage() *Page {
	return &Page{
		id:   disk.InvalidPageID,
		data: make([]byte, disk.PageSize),
	}
}

// PageID returns the logical page currently resident in this frame.
func (p *Page) PageID() disk.PageID { return p.id }

// PinCount returns the number of outstanding borrows.
func (p *Page) PinCount() int { return p.pinCount }

// IsDirty reports whether the buffer differs from what's on disk.
func (p *Page) IsDirty() bool { return p.dirty }

// Data exposes the page's raw bytes. Callers must hold RLock or WLock
// before touching it and must not retain the slice past their unpin.
func (p *Page) Data() []byte { return p.data }

// LSN returns the log sequence number of the last log record covering
// this page's content, or wal.ZeroLSN if none was ever set.
func (p *Page) LSN() wal.LSN { return p.lsn }

// SetLSN stamps the page with the LSN of a log record describing a
// modification to it. Callers writing to Data() under WLock are
// expected to call this before unpinning dirty.
func (p *Page) SetLSN(lsn wal.LSN) { p.lsn = lsn }

// RLock/RUnlock/WLock/WUnlock coordinate concurrent readers and writers
// of this frame's content. They are acquired by callers (an index, a
// query operator) around their use of Data(); the pool itself only
// takes WLock while it is initializing or filling a frame, to fence out
// any reader that might otherwise observe half-written bytes.
func (p *Page) RLock()   { p.rwLatch.RLock() }
func (p *Page) RUnlock() { p.rwLatch.RUnlock() }
func (p *Page) WLock()   { p.rwLatch.Lock() }
func (p *Page) WUnlock() { p.rwLatch.Unlock() }

// reset re-initializes metadata and zeroes content for a fresh
// residency. Callers must hold WLock.
func (p *Page) reset(id disk.PageID) {
	p.id = id
	p.pinCount = 0
	p.dirty = false
	p.lsn = wal.ZeroLSN
	for i := range p.data {
		p.data[i] = 0
	}
}
