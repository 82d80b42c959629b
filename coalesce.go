package segheap

import "unsafe"

// coalesce merges the block at payload pointer p, already removed from
// service and known not to reside in any bin, with its immediately
// adjacent physical neighbors when they are free. It returns the
// (possibly rebased) payload pointer of the merged block; its free-bit is
// stamped on its successor, but the result is NOT inserted into any bin.
//
// Order matters: the backward step rebases p, so the forward neighbor's
// boundary tag must be read before that happens.
func (h *Heap) coalesce(p unsafe.Pointer) unsafe.Pointer {
	size := sizeOf(p)

	if !isLastBlock(h, p) {
		if next := nextPayload(p); isFree(next) {
			nextSize := sizeOf(next)
			nextTotal := uint32(headerSize) + nextSize
			h.removeFree(next, nextTotal)
			size += nextTotal
			setSize(p, size)
		}
	}

	if isPrevFree(p) {
		prevSize := prevSizeOf(p)
		prevTotal := uint32(headerSize) + prevSize
		prevPayload := unsafe.Add(p, -uintptr(prevTotal))
		h.removeFree(prevPayload, prevTotal)
		size += prevTotal
		p = prevPayload
		setSize(p, size)
	}

	markFree(p, size)
	return p
}
