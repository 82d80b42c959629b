package segheap

import "unsafe"

// headerSize is H from the design: two uint32 fields, the platform word
// width on every 64-bit host this package targets.
const headerSize = uintptr(unsafe.Sizeof(blockHeader{}))

// freeBit marks, in a block's successor's prevSizeAndFlag field, that this
// block is free. Sizes are always a multiple of alignment (>= 8), so the
// low bit of a genuine size is always zero and never collides with the flag.
const freeBit uint32 = 0x1

// blockHeader is the fixed-size record stored immediately before every
// block's payload.
//
// size is this block's own payload byte count. prevSizeAndFlag is the
// payload size of the PHYSICALLY PRECEDING block with the low bit
// repurposed as "the preceding block is free", so a block's own free bit
// lives in its successor's header.
type blockHeader struct {
	size            uint32
	prevSizeAndFlag uint32
}

// freeNode reinterprets the first 16 bytes of a free block's payload as a
// doubly linked list node. Only valid while the owning block is free.
type freeNode struct {
	prev unsafe.Pointer
	next unsafe.Pointer
}

// minFreeNodePayload is the smallest payload a block can hold: two pointers'
// worth of free-list linkage.
const minFreeNodePayload = uintptr(unsafe.Sizeof(freeNode{}))

//go:inline
func headerAt(p unsafe.Pointer) *blockHeader {
	return (*blockHeader)(unsafe.Pointer(uintptr(p) - headerSize))
}

//go:inline
func nodeAt(p unsafe.Pointer) *freeNode {
	return (*freeNode)(p)
}

// sizeOf returns the payload byte count of the block at payload pointer p.
//
//go:inline
func sizeOf(p unsafe.Pointer) uint32 {
	return headerAt(p).size
}

// prevSizeOf returns the payload size of the block physically preceding p.
//
//go:inline
func prevSizeOf(p unsafe.Pointer) uint32 {
	return headerAt(p).prevSizeAndFlag &^ freeBit
}

// isPrevFree reports whether the block physically preceding p is free.
//
//go:inline
func isPrevFree(p unsafe.Pointer) bool {
	return headerAt(p).prevSizeAndFlag&freeBit != 0
}

// isFree reports whether the block at p itself is marked free, as recorded
// in its successor's boundary tag.
// Precondition: a successor (real block or sentinel) exists.
//
//go:inline
func isFree(p unsafe.Pointer) bool {
	q := nextPayload(p)
	return isPrevFree(q)
}

// nextPayload computes the payload address of the block physically
// following p, given p's own current size.
//
//go:inline
func nextPayload(p unsafe.Pointer) unsafe.Pointer {
	return unsafe.Add(p, uintptr(sizeOf(p))+headerSize)
}

// setSize sets p's own header.size field without touching any neighbor.
//
//go:inline
func setSize(p unsafe.Pointer, s uint32) {
	headerAt(p).size = s
}

// markFree stamps the successor's prevSizeAndFlag to record that the block
// at p, of payload size s, is free.
//
//go:inline
func markFree(p unsafe.Pointer, s uint32) {
	headerAt(unsafe.Add(p, uintptr(s)+headerSize)).prevSizeAndFlag = s | freeBit
}

// markLive stamps the successor's prevSizeAndFlag to record that the block
// at p, of payload size s, is live.
//
//go:inline
func markLive(p unsafe.Pointer, s uint32) {
	headerAt(unsafe.Add(p, uintptr(s)+headerSize)).prevSizeAndFlag = s
}

// alignUp rounds n up to the nearest multiple of align, which must be a
// power of two.
func alignUp(n, align uint32) uint32 {
	return (n + align - 1) &^ (align - 1)
}
