package segheap

import (
	"fmt"
	"unsafe"
)

// PageProvider is the external collaborator a Heap grows into. It exposes
// grow-only semantics: the region it backs never shrinks, and its base
// address must never move once bytes have been handed out, since every
// block header and free-list pointer is computed via raw address
// arithmetic off that base.
type PageProvider interface {
	// LowBound returns the inclusive low byte of the region.
	LowBound() uintptr

	// HighBound returns the inclusive last byte of the region. It changes
	// after a successful Grow.
	HighBound() uintptr

	// Grow extends the region by exactly n bytes and returns the address
	// of the first new byte, or an error if no more memory is available.
	Grow(n uint32) (unsafe.Pointer, error)
}

// Heap is a segregated-fit, boundary-tag allocator over a PageProvider's
// region. The zero value is not usable; construct one with New.
//
// WARNING: not goroutine-safe, see the package doc comment.
type Heap struct {
	provider PageProvider
	cfg      Config
	numBins  int

	// base is the payload address of the first real block ever carved,
	// fixed for the Heap's lifetime: everything the provider hands out
	// lives at or after it.
	base unsafe.Pointer

	// top is the address of the sentinel header: a zero-payload header
	// that terminates the chain of real blocks and, by the same boundary
	// tag convention every other header uses, records the size and
	// free-bit of the last real block. It is relocated on every grow.
	top unsafe.Pointer

	// bins holds one head pointer per size class.
	bins []unsafe.Pointer

	strict bool
}

// New constructs a Heap over the given PageProvider and immediately
// performs the equivalent of spec's init(): it aligns the provider's
// current high bound upward, grows just enough to place a zero-sized
// sentinel header there, and clears all size-class bins.
func New(provider PageProvider, opts ...Option) (*Heap, error) {
	cfg := DefaultConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	h := &Heap{
		provider: provider,
		cfg:      cfg,
		numBins:  cfg.numBins(),
		bins:     make([]unsafe.Pointer, cfg.numBins()),
	}

	nextFree := provider.HighBound() + 1
	aligned := uintptr(alignUp(uint32(nextFree), cfg.Alignment))
	pad := uint32(aligned - nextFree)

	raw, err := provider.Grow(pad + uint32(headerSize))
	if err != nil {
		return nil, fmt.Errorf("segheap: init failed to reserve sentinel: %w", err)
	}

	h.top = unsafe.Add(raw, uintptr(pad))
	h.base = unsafe.Add(h.top, headerSize)
	hdr := headerAt(unsafe.Add(h.top, headerSize))
	hdr.size = 0
	hdr.prevSizeAndFlag = 0

	return h, nil
}

// SetStrict enables the O(n) pointer-ownership check ErrInvalidPointer
// guards; it is off by default because the hot path cannot afford it.
func (h *Heap) SetStrict(strict bool) {
	h.strict = strict
}

// requestTotal rounds a requested payload size up to alignment, adds the
// header, and raises the result to MinBlockSize.
func (h *Heap) requestTotal(n uint32) uint32 {
	aligned := alignUp(n, h.cfg.Alignment)
	total := aligned + uint32(headerSize)
	if total < h.cfg.MinBlockSize {
		total = h.cfg.MinBlockSize
	}
	return total
}

// lastBlockFree reads the sentinel's boundary tag to learn about the
// physically last real block, treating the sentinel's own header exactly
// as any other block's successor header: its prevSizeAndFlag field
// already encodes the last real block's payload size and free-bit.
func (h *Heap) lastBlockFree() (payload unsafe.Pointer, size uint32, free bool) {
	sentinelPayload := unsafe.Add(h.top, headerSize)
	free = isPrevFree(sentinelPayload)
	size = prevSizeOf(sentinelPayload)
	payload = unsafe.Add(h.top, -uintptr(size))
	return payload, size, free
}

// Allocate reserves at least n bytes and returns an alignment-satisfying
// payload pointer, or (nil, ErrOutOfMemory) if the provider could not
// supply more memory.
func (h *Heap) Allocate(n uint32) (unsafe.Pointer, error) {
	need := h.requestTotal(n)
	k := h.binIndex(need)

	if p := h.firstFit(k, need); p != nil {
		return h.finishAllocate(p, headerSize+uintptr(sizeOf(p)), need), nil
	}

	for i := k + 1; i < h.numBins; i++ {
		if p := h.popBin(i); p != nil {
			// Any head in a strictly larger class is large enough.
			return h.finishAllocate(p, headerSize+uintptr(sizeOf(p)), need), nil
		}
	}

	if p, free, lastTotal := h.tryLastBlock(); free {
		shortfall := need - lastTotal
		if _, err := h.provider.Grow(shortfall); err != nil {
			h.insertFree(p, lastTotal)
			return nil, ErrOutOfMemory
		}
		h.top = unsafe.Add(h.top, uintptr(shortfall))
		newPayload := need - uint32(headerSize)
		setSize(p, newPayload)
		markLive(p, newPayload)
		return p, nil
	}

	raw, err := h.provider.Grow(need)
	if err != nil {
		return nil, ErrOutOfMemory
	}
	// raw is exactly the old sentinel's header address plus headerSize: the
	// bytes of the old sentinel header are reused as this new block's own
	// header, so the payload starts at raw itself, not raw+headerSize.
	p := raw
	payloadSize := need - uint32(headerSize)
	setSize(p, payloadSize)
	h.top = unsafe.Add(raw, uintptr(payloadSize))
	markLive(p, payloadSize)
	return p, nil
}

// tryLastBlock reports whether the physically last real block is free,
// removing it from its bin when it is so the caller can extend it in
// place. free is false when there is no free last block, in which case
// the other return values are meaningless.
func (h *Heap) tryLastBlock() (payload unsafe.Pointer, free bool, total uint32) {
	p, size, isFree := h.lastBlockFree()
	if !isFree {
		return nil, false, 0
	}
	total = uint32(headerSize) + size
	h.removeFree(p, total)
	return p, true, total
}

// finishAllocate splits the free block at p (total size total) if the
// remainder would be >= MinBlockSize, then stamps it live and returns its
// payload pointer.
func (h *Heap) finishAllocate(p unsafe.Pointer, total uintptr, need uint32) unsafe.Pointer {
	if uint32(total)-need >= h.cfg.MinBlockSize {
		h.split(p, uint32(total), need)
	}
	markLive(p, sizeOf(p))
	return p
}

// Release returns the block at payload pointer p to the heap, coalescing
// it with free physical neighbors.
//
// Precondition: p was returned by Allocate or Resize and has not already
// been released. Ordinary builds do not check this — it costs an O(n)
// region scan the hot path cannot afford — so violating it is undefined
// behavior and Release returns nil. SetStrict(true) opts into the scan,
// returning ErrInvalidPointer instead of corrupting the heap.
func (h *Heap) Release(p unsafe.Pointer) error {
	if h.strict && !h.ownsLiveBlock(p) {
		return ErrInvalidPointer
	}
	debugLogf("release addr=%p size=%d", p, sizeOf(p))
	q := h.coalesce(p)
	total := uint32(headerSize) + sizeOf(q)
	h.insertFree(q, total)
	return nil
}

// ownsLiveBlock walks the physical block chain looking for a live block
// whose payload address is exactly p. Used only by the strict-mode check.
func (h *Heap) ownsLiveBlock(p unsafe.Pointer) bool {
	cur := h.base
	for unsafe.Pointer(headerAt(cur)) != unsafe.Pointer(headerAt(unsafe.Add(h.top, headerSize))) {
		if cur == p {
			return !isFree(cur)
		}
		cur = nextPayload(cur)
	}
	return false
}

// Resize changes the size of the block at payload pointer p to n bytes,
// preserving min(oldSize, n) bytes of content, and returns the
// (possibly new) payload pointer. A nil p behaves as Allocate(n); n == 0
// behaves as Release(p) and returns nil. With SetStrict(true), a non-nil p
// that is not a live block yields ErrInvalidPointer.
func (h *Heap) Resize(p unsafe.Pointer, n uint32) (unsafe.Pointer, error) {
	if p != nil && h.strict && !h.ownsLiveBlock(p) {
		return nil, ErrInvalidPointer
	}
	if n == 0 {
		if p != nil {
			h.Release(p)
		}
		return nil, nil
	}
	if p == nil {
		return h.Allocate(n)
	}

	cur := sizeOf(p)
	alignedN := alignUp(n, h.cfg.Alignment)
	need := h.requestTotal(n)

	if cur >= alignedN {
		excess := uint32(headerSize) + cur - need
		if excess >= h.cfg.MinBlockSize {
			h.split(p, uint32(headerSize)+cur, need)
			markLive(p, sizeOf(p))
		}
		return p, nil
	}

	if !isLastBlock(h, p) {
		if next := nextPayload(p); isFree(next) {
			nextTotal := uint32(headerSize) + sizeOf(next)
			combined := uint32(headerSize) + cur + nextTotal
			if combined >= need {
				h.removeFree(next, nextTotal)
				if combined-need >= h.cfg.MinBlockSize {
					h.split(p, combined, need)
				} else {
					setSize(p, combined-uint32(headerSize))
				}
				markLive(p, sizeOf(p))
				return p, nil
			}
		}
	} else {
		shortfall := need - (uint32(headerSize) + cur)
		if _, err := h.provider.Grow(shortfall); err != nil {
			return nil, ErrOutOfMemory
		}
		h.top = unsafe.Add(h.top, uintptr(shortfall))
		newPayload := need - uint32(headerSize)
		setSize(p, newPayload)
		markLive(p, newPayload)
		return p, nil
	}

	newP, err := h.Allocate(n)
	if err != nil {
		return nil, err
	}
	copyBytes(newP, p, uintptr(cur))
	h.Release(p)
	return newP, nil
}

// isLastBlock reports whether payload pointer p is the physically last
// real block in the heap, live or not.
func isLastBlock(h *Heap, p unsafe.Pointer) bool {
	return unsafe.Add(p, uintptr(sizeOf(p))) == h.top
}

// copyBytes copies n bytes from src to dst using raw pointer arithmetic,
// mirroring the byte-for-byte memcpy semantics of the reference allocator.
func copyBytes(dst, src unsafe.Pointer, n uintptr) {
	d := unsafe.Slice((*byte)(dst), n)
	s := unsafe.Slice((*byte)(src), n)
	copy(d, s)
}
