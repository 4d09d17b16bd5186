package wal

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang/snappy"
	"github.com/sourcegraph/conc"
)

// FlushInterval is the period of the background flusher started by
// RunFlusher, mirroring the teacher's common.LogTimeout.
const FlushInterval = 3 * time.Millisecond

// Manager is a snappy-compressing, group-commit log manager. Records
// appended between two Flush calls are batched, compressed once, and
// written together — the same amortization the teacher's GroupWriter
// performs, minus its manual double-buffer bookkeeping.
type Manager struct {
	w io.Writer

	mu      sync.Mutex
	pending []byte

	currLSN       uint64
	flushedLSN    uint64
	stopBackgroud context.CancelFunc
	wg            *conc.WaitGroup
}

var _ LogManager = (*Manager)(nil)

// NewManager builds a Manager writing compressed batches to w. w is
// typically a log file distinct from the data file the DiskManager
// owns.
func NewManager(w io.Writer) *Manager {
	return &Manager{w: w, wg: conc.NewWaitGroup()}
}

// AppendLog serializes record as a length-prefixed entry into the
// pending batch and returns its assigned LSN. It does not block on I/O.
func (m *Manager) AppendLog(record []byte) LSN {
	m.mu.Lock()
	defer m.mu.Unlock()

	lsn := LSN(atomic.AddUint64(&m.currLSN, 1))

	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(record)))
	m.pending = append(m.pending, lenBuf[:]...)
	m.pending = append(m.pending, record...)
	return lsn
}

// Flush compresses and writes every record appended so far, then
// records the flushed LSN as the LSN in effect at the time of the call.
func (m *Manager) Flush() error {
	m.mu.Lock()
	batch := m.pending
	m.pending = nil
	lsnAtSwap := atomic.LoadUint64(&m.currLSN)
	m.mu.Unlock()

	if len(batch) == 0 {
		atomic.StoreUint64(&m.flushedLSN, lsnAtSwap)
		return nil
	}

	compressed := snappy.Encode(nil, batch)
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(compressed)))

	if _, err := m.w.Write(header[:]); err != nil {
		return fmt.Errorf("wal: write batch header: %w", err)
	}
	if _, err := m.w.Write(compressed); err != nil {
		return fmt.Errorf("wal: write batch: %w", err)
	}

	atomic.StoreUint64(&m.flushedLSN, lsnAtSwap)
	return nil
}

// GetFlushedLSN returns the highest LSN durable as of the last Flush.
func (m *Manager) GetFlushedLSN() LSN {
	return LSN(atomic.LoadUint64(&m.flushedLSN))
}

// RunFlusher starts a background goroutine that calls Flush every
// FlushInterval. Panics inside the flusher are captured and re-raised
// from StopFlusher rather than crashing the process, courtesy of
// conc.WaitGroup.
func (m *Manager) RunFlusher() {
	ctx, cancel := context.WithCancel(context.Background())
	m.stopBackgroud = cancel

	m.wg.Go(func() {
		ticker := time.NewTicker(FlushInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_ = m.Flush()
			}
		}
	})
}

// StopFlusher stops the background flusher, waits for it to exit, and
// performs one final flush.
func (m *Manager) StopFlusher() error {
	if m.stopBackgroud != nil {
		m.stopBackgroud()
	}
	m.wg.Wait()
	return m.Flush()
}
