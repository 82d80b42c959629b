package segheap

import "unsafe"

// split carves block f - already removed from its bin, with total size
// total and requested total size need, where total-need >= MinBlockSize -
// into two blocks: f now has payload need-H (still free-marked; the caller
// is expected to mark_live it), and a remainder block is formatted,
// free-marked, and inserted at the head of its own bin.
func (h *Heap) split(f unsafe.Pointer, total, need uint32) {
	remainderTotal := total - need
	remainderPayload := remainderTotal - uint32(headerSize)

	setSize(f, need-uint32(headerSize))

	remainder := unsafe.Add(f, uintptr(need))
	setSize(remainder, remainderPayload)
	markFree(remainder, remainderPayload)       // stamps the block after remainder
	markFree(f, need-uint32(headerSize))        // stamps remainder's own prevSizeAndFlag: f still free

	h.insertFree(remainder, remainderTotal)
}
