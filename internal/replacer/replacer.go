// Package replacer implements the LRU-K frame replacement policy the
// buffer pool consults when it needs to evict an unpinned frame.
package replacer

// FrameID indexes a slot in the buffer pool's frame array.
type FrameID int

// Replacer chooses which tracked, evictable frame to reclaim next. The
// buffer pool is the only intended caller; frame ids it has not started
// tracking via RecordAccess are simply ignored by SetEvictable/Remove.
type Replacer interface {
	// RecordAccess notes that fid was just accessed "now". The first
	// call for a given fid begins tracking it.
	RecordAccess(fid FrameID)

	// SetEvictable flips whether a tracked frame counts toward Size and
	// is a candidate for Evict. A no-op for untracked frames.
	SetEvictable(fid FrameID, evictable bool)

	// Evict picks the highest-priority evictable frame, stops tracking
	// it, and returns it. The second return is false if none exists.
	Evict() (FrameID, bool)

	// Remove stops tracking fid without evicting it. Only valid on an
	// evictable tracked frame; a no-op if fid is not tracked.
	Remove(fid FrameID)

	// Size returns the number of tracked, evictable frames.
	Size() int
}
