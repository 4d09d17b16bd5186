// Package wal implements the reserved log-manager hook the buffer pool
// may call before writing a dirty page back to disk. The pool spec
// (see §6 and §9 of the design doc) requires only that a LogManager be
// pluggable and that its Flush be honored ahead of a write-back for
// pages whose LSN has not yet reached disk; it does not require WAL
// ordering, redo/undo, or recovery — those remain out of scope.
package wal

// LogManager is the interface the buffer pool consumes. Implementers
// wiring durability semantics on top of this hook must flush log
// records up to a page's LSN before writing that page back.
type LogManager interface {
	// AppendLog buffers record for eventual durability and returns the
	// LSN assigned to it. It does not itself guarantee the record has
	// reached storage.
	AppendLog(record []byte) LSN

	// Flush forces every buffered record through to the underlying
	// writer and blocks until that write completes.
	Flush() error

	// GetFlushedLSN returns the highest LSN known to be durable.
	GetFlushedLSN() LSN
}
