package segheap

import (
	"fmt"
	"unsafe"
)

// CheckReport is the result of a Heap.Check invariant walk. It accumulates
// every violation found rather than stopping at the first one, which is a
// deliberate improvement on the single-message validator this package's
// block layout was distilled from: a single run tells you everything that's
// wrong, not just the first symptom.
type CheckReport struct {
	OK         bool
	Violations []string
}

func (r *CheckReport) fail(format string, args ...any) {
	r.OK = false
	r.Violations = append(r.Violations, fmt.Sprintf(format, args...))
}

// Check walks the entire heap - the physical block chain and every
// size-class bin - and verifies boundary-tag agreement, alignment,
// coalescing completeness and free-list membership. It is O(blocks + free blocks) and is meant for tests
// and debugging, not the hot path.
func (h *Heap) Check() CheckReport {
	report := CheckReport{OK: true}

	h.checkChain(&report)
	h.checkBins(&report)

	return report
}

// checkChain walks every physical block from the first block up to the
// sentinel, checking boundary-tag agreement, alignment, and that no two
// adjacent free blocks survived a Release without being coalesced.
func (h *Heap) checkChain(report *CheckReport) {
	p := h.base

	var prevFree bool
	first := true

	for unsafe.Pointer(headerAt(p)) != unsafe.Pointer(headerAt(unsafe.Add(h.top, headerSize))) {
		size := sizeOf(p)
		total := uint32(headerSize) + size

		// Every payload address must be a multiple of the configured
		// alignment.
		if uint32(uintptr(p))%h.cfg.Alignment != 0 {
			report.fail("block at %p is not %d-byte aligned", p, h.cfg.Alignment)
		}
		if size < h.cfg.MinBlockSize-uint32(headerSize) && total != 0 {
			report.fail("block at %p has payload %d smaller than the minimum block size", p, size)
		}

		free := isFree(p)
		if !first && free && prevFree {
			report.fail("block at %p and its predecessor are both free but were not coalesced", p)
		}
		prevFree = free
		first = false

		if free {
			if !h.binContains(p, total) {
				report.fail("block at %p is marked free but absent from its size-class bin", p)
			}
		}

		next := nextPayload(p)
		if prevSizeOf(next) != size {
			report.fail("block at %p: successor's recorded prev-size %d disagrees with this block's size %d", p, prevSizeOf(next), size)
		}

		p = next
	}
}

// binContains reports whether payload pointer p appears in the bin
// binIndex(total) would select for it - an O(bin length) scan used only by
// Check.
func (h *Heap) binContains(p unsafe.Pointer, total uint32) bool {
	i := h.binIndex(total)
	for cur := h.bins[i]; cur != nil; cur = nodeAt(cur).next {
		if cur == p {
			return true
		}
	}
	return false
}

// checkBins walks every size-class bin, verifying that every member is
// actually marked free, lands in the bin its size maps to, and that the
// doubly linked list is internally consistent.
func (h *Heap) checkBins(report *CheckReport) {
	for i := 0; i < h.numBins; i++ {
		var prev unsafe.Pointer
		for cur := h.bins[i]; cur != nil; cur = nodeAt(cur).next {
			if !isFree(cur) {
				report.fail("bin %d contains block at %p that is not marked free", i, cur)
			}
			total := uint32(headerSize) + sizeOf(cur)
			if got := h.binIndex(total); got != i {
				report.fail("block at %p of total size %d sits in bin %d, belongs in bin %d", cur, total, i, got)
			}
			if nodeAt(cur).prev != prev {
				report.fail("bin %d: block at %p has a broken back-link", i, cur)
			}
			prev = cur
		}
	}
}
