package alloc

import "sync/atomic"

// MaxThreads bounds the fixed-size slot table used to track cumulative
// allocation totals per OS thread. Unlike the goroutine-keyed frame stacks
// (which use a sync.Map and can grow and shrink freely), thread totals use
// a fixed array deliberately: the table must tolerate exactly MaxThreads
// threads and fail closed beyond that, which a growable map can't express.
const MaxThreads = 256

type threadSlot struct {
	id           atomic.Int64 // 0 means unclaimed; thread ids are never 0
	allocBytes   atomic.Uint64
	allocObjects atomic.Uint64
	freeBytes    atomic.Uint64
	freeObjects  atomic.Uint64
}

var threadSlots [MaxThreads]threadSlot

// claimSlot finds (or claims) the slot for threadID, returning nil if the
// table is full and threadID isn't already present -- the fail-closed
// behavior the boundary test exercises.
func claimSlot(threadID int64) *threadSlot {
	for i := range threadSlots {
		slot := &threadSlots[i]
		cur := slot.id.Load()
		if cur == threadID {
			return slot
		}
		if cur == 0 && slot.id.CompareAndSwap(0, threadID) {
			return slot
		}
	}
	return nil
}

// AddThreadTotals records an allocation/free delta against threadID's
// cumulative counters, claiming a table slot on first use. Attribution is
// to the OS thread that is executing the guard's Stop call at the moment
// the delta is measured -- an approximation documented in DESIGN.md, since
// runtime/metrics exposes only process-wide counters, not per-thread ones.
// Silently drops the update if the table is full and threadID is new,
// failing closed rather than growing past MaxThreads.
func AddThreadTotals(threadID int64, allocBytes, allocObjects, freeBytes, freeObjects uint64) {
	slot := claimSlot(threadID)
	if slot == nil {
		return
	}
	slot.allocBytes.Add(allocBytes)
	slot.allocObjects.Add(allocObjects)
	slot.freeBytes.Add(freeBytes)
	slot.freeObjects.Add(freeObjects)
}

// ThreadTotal is a point-in-time read of one thread's cumulative counters.
type ThreadTotal struct {
	ThreadID     int64
	AllocBytes   uint64
	AllocObjects uint64
	FreeBytes    uint64
	FreeObjects  uint64
}

// ThreadTotals returns a snapshot of every claimed slot, in slot order.
func ThreadTotals() []ThreadTotal {
	out := make([]ThreadTotal, 0, MaxThreads)
	for i := range threadSlots {
		slot := &threadSlots[i]
		id := slot.id.Load()
		if id == 0 {
			continue
		}
		out = append(out, ThreadTotal{
			ThreadID:     id,
			AllocBytes:   slot.allocBytes.Load(),
			AllocObjects: slot.allocObjects.Load(),
			FreeBytes:    slot.freeBytes.Load(),
			FreeObjects:  slot.freeObjects.Load(),
		})
	}
	return out
}
