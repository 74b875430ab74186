package conn

import "sync/atomic"

// Table is the fixed-capacity, descriptor-indexed slot table. Slots
// are allocated lazily and reused across both keep-alive requests
// and descriptor reuse after a close, rather than preallocating
// every descriptor's buffers up front. Acquire, the only method that
// writes the slice, is called from the single reactor goroutine, so
// the slice itself needs no lock. Release is also called from a worker
// that fails to stage a response; it touches only that descriptor's
// slot, which one-shot readiness keeps away from other goroutines.
// The live count changes on both paths and is read from other
// goroutines (metrics), and is therefore atomic.
type Table struct {
	max   int
	slots []*Slot
	live  atomic.Int64
}

// NewTable builds a table that can hold at most max concurrently live
// connections (constants.MaxFD by default).
func NewTable(max int) *Table {
	if max < 1 {
		max = 1
	}
	return &Table{
		max:   max,
		slots: make([]*Slot, max),
	}
}

// Acquire allocates (or reuses) the slot for fd and initializes it
// for a freshly accepted connection. It returns ok=false if fd is out
// of range or the table is already at capacity, in which case the
// caller must close the descriptor without registering it.
func (t *Table) Acquire(fd int, peer string) (*Slot, bool) {
	if fd < 0 || fd >= t.max {
		return nil, false
	}
	if t.live.Load() >= int64(t.max) {
		return nil, false
	}
	sl := t.slots[fd]
	if sl == nil {
		sl = newSlot()
		t.slots[fd] = sl
	}
	sl.Init(fd, peer)
	t.live.Add(1)
	return sl, true
}

// Get returns the slot registered for fd, or nil if fd is out of
// range or has never been acquired.
func (t *Table) Get(fd int) *Slot {
	if fd < 0 || fd >= t.max {
		return nil
	}
	return t.slots[fd]
}

// Release marks fd's slot as dead and releases any mapped file it
// still holds. It is a no-op if fd was already released, so the
// reactor can call it unconditionally on every teardown path.
func (t *Table) Release(fd int) {
	sl := t.Get(fd)
	if sl == nil || sl.FD < 0 {
		return
	}
	sl.FD = -1
	if sl.Mapped != nil {
		sl.Mapped.Close()
		sl.Mapped = nil
	}
	t.live.Add(-1)
}

// LiveCount reports the number of currently registered connections.
func (t *Table) LiveCount() int64 {
	return t.live.Load()
}

// Cap reports the table's maximum concurrent connection count.
func (t *Table) Cap() int {
	return t.max
}
