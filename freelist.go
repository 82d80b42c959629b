package segheap

import "unsafe"

// insertFree head-inserts the free block at payload pointer p, of total
// size total, into its size class's list. O(1).
func (h *Heap) insertFree(p unsafe.Pointer, total uint32) {
	i := h.binIndex(total)
	node := nodeAt(p)
	head := h.bins[i]
	node.prev = nil
	node.next = head
	if head != nil {
		nodeAt(head).prev = p
	}
	h.bins[i] = p
}

// removeFree unlinks the free block at payload pointer p, of total size
// total, from its size class's list. O(1). The caller must know total (it
// is recomputed from the block's own size field by callers that don't
// already have it).
func (h *Heap) removeFree(p unsafe.Pointer, total uint32) {
	i := h.binIndex(total)
	node := nodeAt(p)
	if node.prev != nil {
		nodeAt(node.prev).next = node.next
	} else {
		h.bins[i] = node.next
	}
	if node.next != nil {
		nodeAt(node.next).prev = node.prev
	}
	node.prev, node.next = nil, nil
}

// popBin removes and returns the head of bin i, or nil if empty. O(1).
func (h *Heap) popBin(i int) unsafe.Pointer {
	head := h.bins[i]
	if head == nil {
		return nil
	}
	node := nodeAt(head)
	h.bins[i] = node.next
	if node.next != nil {
		nodeAt(node.next).prev = nil
	}
	node.prev, node.next = nil, nil
	return head
}

// firstFit scans bin i linearly for the first block whose total size is at
// least need, removing and returning it. Free lists are unordered within a
// bin, so this is effectively a random pick; class granularity (a factor of
// two) bounds the resulting internal fragmentation.
func (h *Heap) firstFit(i int, need uint32) unsafe.Pointer {
	for cur := h.bins[i]; cur != nil; cur = nodeAt(cur).next {
		total := headerSize + uintptr(sizeOf(cur))
		if uint32(total) >= need {
			h.removeFree(cur, uint32(total))
			return cur
		}
	}
	return nil
}
