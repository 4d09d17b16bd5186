package replacer

import (
	"container/list"
	"fmt"
	"sync"
)

// node is the per-frame record kept in whichever list currently owns
// it. visits saturates its usefulness at k: once a frame has been seen
// k times it moves permanently into the buffer list and further
// accesses only reorder it there.
type node struct {
	frameID   FrameID
	visits    int
	evictable bool
}

type location struct {
	elem      *list.Element
	inHistory bool
}

// LRUK implements Replacer. A frame's backward k-distance is the age of
// its k-th most recent access; frames with fewer than k accesses have
// infinite k-distance and always lose to any frame with a finite one.
// That rule falls out for free from keeping two lists: the history list
// (visits < k, FIFO by first access) always yields its head before the
// buffer list (visits >= k, LRU order) is even consulted.
type LRUK struct {
	mu             sync.Mutex
	k              int
	capacity       int
	evictableCount int
	history        *list.List
	buffer         *list.List
	locations      map[FrameID]*location
}

var _ Replacer = (*LRUK)(nil)

// NewLRUK builds a replacer tracking at most capacity frames (normally
// the buffer pool's size), using k historical accesses to compute
// backward k-distance.
func NewLRUK(capacity, k int) *LRUK {
	if capacity <= 0 {
		panic("replacer: capacity must be positive")
	}
	if k <= 0 {
		panic("replacer: k must be positive")
	}
	return &LRUK{
		k:         k,
		capacity:  capacity,
		history:   list.New(),
		buffer:    list.New(),
		locations: make(map[FrameID]*location, capacity),
	}
}

func (r *LRUK) RecordAccess(fid FrameID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	loc, tracked := r.locations[fid]
	if !tracked {
		if len(r.locations) >= r.capacity {
			// The reference leaves eviction-on-overflow commented out;
			// we resolve the open question by treating this as a
			// caller-contract violation instead (see design notes).
			panic(fmt.Sprintf("replacer: RecordAccess(%d) would exceed capacity %d", fid, r.capacity))
		}
		n := &node{frameID: fid, visits: 1}
		elem := r.history.PushBack(n)
		r.locations[fid] = &location{elem: elem, inHistory: true}
		return
	}

	n := loc.elem.Value.(*node)
	n.visits++

	if loc.inHistory {
		if n.visits >= r.k {
			r.history.Remove(loc.elem)
			loc.elem = r.buffer.PushBack(n)
			loc.inHistory = false
		}
		return
	}

	r.buffer.MoveToBack(loc.elem)
}

func (r *LRUK) SetEvictable(fid FrameID, evictable bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	loc, tracked := r.locations[fid]
	if !tracked {
		return
	}
	n := loc.elem.Value.(*node)
	if n.evictable == evictable {
		return
	}
	n.evictable = evictable
	if evictable {
		r.evictableCount++
	} else {
		r.evictableCount--
	}
}

func (r *LRUK) Evict() (FrameID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.evictableCount == 0 {
		return 0, false
	}

	for e := r.history.Front(); e != nil; e = e.Next() {
		n := e.Value.(*node)
		if n.evictable {
			r.history.Remove(e)
			delete(r.locations, n.frameID)
			r.evictableCount--
			return n.frameID, true
		}
	}
	for e := r.buffer.Front(); e != nil; e = e.Next() {
		n := e.Value.(*node)
		if n.evictable {
			r.buffer.Remove(e)
			delete(r.locations, n.frameID)
			r.evictableCount--
			return n.frameID, true
		}
	}

	panic("replacer: evictableCount > 0 but no evictable frame found in either list")
}

func (r *LRUK) Remove(fid FrameID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	loc, tracked := r.locations[fid]
	if !tracked {
		return
	}

	n := loc.elem.Value.(*node)
	if !n.evictable {
		panic(fmt.Sprintf("replacer: Remove(%d) called on a non-evictable tracked frame", fid))
	}

	if loc.inHistory {
		r.history.Remove(loc.elem)
	} else {
		r.buffer.Remove(loc.elem)
	}
	delete(r.locations, fid)
	r.evictableCount--
}

func (r *LRUK) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.evictableCount
}
