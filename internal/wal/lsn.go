package wal

// LSN is a log sequence number: a monotonically increasing tag on log
// records used to decide whether a dirty page's modifications are
// durable yet.
type LSN uint64

// ZeroLSN is the LSN of a page that predates any log record, or of a
// pool wired to the Noop log manager.
const ZeroLSN LSN = 0
