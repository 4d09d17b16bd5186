// Package disk implements the DiskManager collaborator described by the
// buffer pool's external interface: a page-sized slab store the pool
// reads from and writes back to. The pool treats every call here as
// total — a failing read or write is a fatal, synchronous error, never
// retried internally.
package disk

import (
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

// Manager is the contract the buffer pool consumes. It knows nothing
// about frames, pinning, or eviction — only about moving fixed-size
// slabs to and from stable storage and handing out fresh page ids.
type Manager interface {
	ReadPage(id PageID, buf []byte) error
	WritePage(id PageID, buf []byte) error
	AllocatePage() PageID
	DeallocatePage(id PageID)
	Close() error
}

// headerPageID is reserved for the free-list head/tail bookkeeping, the
// way the teacher reserves page 0 for its own header.
const headerPageID PageID = 0

// FileManager is a file-backed Manager. It keeps a small header page
// tracking a singly linked free-page chain so that DeallocatePage'd
// pages are handed back out by AllocatePage before the file is grown.
type FileManager struct {
	file       *os.File
	filename   string
	mu         sync.Mutex
	lastPageID PageID
	header     *fileHeader
}

type fileHeader struct {
	freeListHead PageID
	freeListTail PageID
}

// NewFileManager opens (creating if necessary) the backing file at path.
// The returned bool reports whether the file was freshly created.
func NewFileManager(path string) (*FileManager, bool, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, false, fmt.Errorf("disk: open %s: %w", path, err)
	}

	m := &FileManager{file: f, filename: path}

	stat, err := f.Stat()
	if err != nil {
		return nil, false, fmt.Errorf("disk: stat %s: %w", path, err)
	}

	if stat.Size() == 0 {
		m.lastPageID = headerPageID
		m.header = &fileHeader{freeListHead: InvalidPageID, freeListTail: InvalidPageID}
		if err := m.writeHeader(); err != nil {
			return nil, false, err
		}
		return m, true, nil
	}

	m.lastPageID = PageID(stat.Size()/PageSize) - 1
	log.Printf("disk: opened %s, %d pages present", path, m.lastPageID+1)
	return m, false, nil
}

// ReadPage reads exactly one page-sized slab into buf.
func (m *FileManager) ReadPage(id PageID, buf []byte) error {
	if len(buf) != PageSize {
		panic(fmt.Sprintf("disk: ReadPage buffer size %d != PageSize %d", len(buf), PageSize))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.file.Seek(int64(id)*PageSize, io.SeekStart); err != nil {
		return fmt.Errorf("disk: seek page %d: %w", id, err)
	}
	n, err := io.ReadFull(m.file, buf)
	if err != nil {
		return fmt.Errorf("disk: read page %d: %w", id, err)
	}
	if n != PageSize {
		panic(fmt.Sprintf("disk: partial page read for page %d: got %d bytes", id, n))
	}
	return nil
}

// WritePage writes exactly one page-sized slab. The file is never
// fsynced, so durability beyond the OS page cache is not guaranteed.
func (m *FileManager) WritePage(id PageID, buf []byte) error {
	if len(buf) != PageSize {
		panic(fmt.Sprintf("disk: WritePage buffer size %d != PageSize %d", len(buf), PageSize))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.file.Seek(int64(id)*PageSize, io.SeekStart); err != nil {
		return fmt.Errorf("disk: seek page %d: %w", id, err)
	}
	n, err := m.file.Write(buf)
	if err != nil {
		return fmt.Errorf("disk: write page %d: %w", id, err)
	}
	if n != PageSize {
		panic(fmt.Sprintf("disk: partial page write for page %d: wrote %d bytes", id, n))
	}
	return nil
}

// AllocatePage returns a page id free for use, preferring a
// previously-deallocated page over growing the file.
func (m *FileManager) AllocatePage() PageID {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id := m.popFreeList(); id != InvalidPageID {
		return id
	}
	m.lastPageID++
	return m.lastPageID
}

// DeallocatePage marks id free on disk by appending it to the free-list
// chain rooted in the header page.
func (m *FileManager) DeallocatePage(id PageID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	h := m.getHeader()
	if h.freeListHead == InvalidPageID {
		h.freeListHead, h.freeListTail = id, id
		m.header = h
		m.mustWriteHeader()
		m.mustWriteFreeListNext(id, InvalidPageID)
		return
	}

	m.mustWriteFreeListNext(h.freeListTail, id)
	m.mustWriteFreeListNext(id, InvalidPageID)
	h.freeListTail = id
	m.header = h
	m.mustWriteHeader()
}

func (m *FileManager) Close() error {
	return m.file.Close()
}

func (m *FileManager) popFreeList() PageID {
	h := m.getHeader()
	if h.freeListHead == InvalidPageID {
		return InvalidPageID
	}

	id := h.freeListHead
	if h.freeListHead == h.freeListTail {
		h.freeListHead, h.freeListTail = InvalidPageID, InvalidPageID
	} else {
		buf := make([]byte, PageSize)
		if err := m.readPageLocked(id, buf); err != nil {
			panic(err)
		}
		h.freeListHead = PageID(binary.BigEndian.Uint64(buf))
	}
	m.header = h
	m.mustWriteHeader()
	return id
}

// mustWriteFreeListNext stashes the next-pointer of the free-list chain
// in the first 8 bytes of the freed page itself, the way the teacher's
// disk manager threads its free list through page 0's tail chain.
func (m *FileManager) mustWriteFreeListNext(id PageID, next PageID) {
	buf := make([]byte, PageSize)
	binary.BigEndian.PutUint64(buf, uint64(next))
	if err := m.writePageLocked(id, buf); err != nil {
		panic(fmt.Errorf("disk: free-list chain write for page %d: %w", id, err))
	}
}

func (m *FileManager) getHeader() *fileHeader {
	if m.header != nil {
		return &fileHeader{freeListHead: m.header.freeListHead, freeListTail: m.header.freeListTail}
	}
	buf := make([]byte, PageSize)
	if err := m.readPageLocked(headerPageID, buf); err != nil {
		panic(err)
	}
	h := &fileHeader{
		freeListHead: PageID(binary.BigEndian.Uint64(buf)),
		freeListTail: PageID(binary.BigEndian.Uint64(buf[8:])),
	}
	m.header = h
	return h
}

func (m *FileManager) writeHeader() error {
	buf := make([]byte, PageSize)
	binary.BigEndian.PutUint64(buf, uint64(m.header.freeListHead))
	binary.BigEndian.PutUint64(buf[8:], uint64(m.header.freeListTail))
	return m.writePageLocked(headerPageID, buf)
}

func (m *FileManager) mustWriteHeader() {
	if err := m.writeHeader(); err != nil {
		panic(err)
	}
}

// readPageLocked/writePageLocked assume mu is already held.
func (m *FileManager) readPageLocked(id PageID, buf []byte) error {
	if _, err := m.file.Seek(int64(id)*PageSize, io.SeekStart); err != nil {
		return err
	}
	_, err := io.ReadFull(m.file, buf)
	return err
}

func (m *FileManager) writePageLocked(id PageID, buf []byte) error {
	if _, err := m.file.Seek(int64(id)*PageSize, io.SeekStart); err != nil {
		return err
	}
	_, err := m.file.Write(buf)
	return err
}
