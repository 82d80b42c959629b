package segheap

import "math/bits"

// binIndex maps a block's total size (header + payload) to a bin index.
// Bin i holds free blocks whose total size falls in
// [2^(i+MinSizeExp), 2^(i+MinSizeExp+1)).
//
// This is the index of the most-significant set bit of total, minus
// MinSizeExp, clamped to the valid bin range - constant time via
// bits.Len32, matching the clz-based formula of the C allocator this
// package's bin layout was distilled from.
//
//go:inline
func (h *Heap) binIndex(total uint32) int {
	msb := bits.Len32(total) - 1
	idx := msb - int(h.cfg.MinSizeExp)
	last := h.numBins - 1
	if idx < 0 {
		return 0
	}
	if idx > last {
		return last
	}
	return idx
}
