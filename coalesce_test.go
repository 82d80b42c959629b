package segheap

import "testing"

func TestCoalesceWithFreeNext(t *testing.T) {
	h := newTestHeap()
	_, p := layout(t, 32, 32, 32)

	markLive(p[0], sizeOf(p[0]))
	markFree(p[1], sizeOf(p[1]))
	h.insertFree(p[1], uint32(headerSize)+sizeOf(p[1]))
	markLive(p[2], sizeOf(p[2]))

	merged := h.coalesce(p[0])
	if merged != p[0] {
		t.Fatalf("coalesce rebased p0 forward-only merge to %p, want %p", merged, p[0])
	}
	wantSize := 32 + uint32(headerSize) + 32
	if got := sizeOf(merged); got != wantSize {
		t.Fatalf("merged size = %d, want %d", got, wantSize)
	}
	if got := nextPayload(merged); got != p[2] {
		t.Fatalf("nextPayload(merged) = %p, want %p", got, p[2])
	}
}

func TestCoalesceWithFreePrev(t *testing.T) {
	h := newTestHeap()
	_, p := layout(t, 32, 32, 32)

	markFree(p[0], sizeOf(p[0]))
	h.insertFree(p[0], uint32(headerSize)+sizeOf(p[0]))
	markLive(p[1], sizeOf(p[1]))
	markLive(p[2], sizeOf(p[2]))

	merged := h.coalesce(p[1])
	if merged != p[0] {
		t.Fatalf("coalesce should rebase to the preceding block %p, got %p", p[0], merged)
	}
	wantSize := 32 + uint32(headerSize) + 32
	if got := sizeOf(merged); got != wantSize {
		t.Fatalf("merged size = %d, want %d", got, wantSize)
	}
}

func TestCoalesceBothNeighborsFree(t *testing.T) {
	h := newTestHeap()
	_, p := layout(t, 32, 32, 32)

	markFree(p[0], sizeOf(p[0]))
	h.insertFree(p[0], uint32(headerSize)+sizeOf(p[0]))
	markLive(p[1], sizeOf(p[1]))
	markFree(p[2], sizeOf(p[2]))
	h.insertFree(p[2], uint32(headerSize)+sizeOf(p[2]))

	merged := h.coalesce(p[1])
	if merged != p[0] {
		t.Fatalf("merged = %p, want rebase to %p", merged, p[0])
	}
	wantSize := 32*3 + 2*uint32(headerSize)
	if got := sizeOf(merged); got != wantSize {
		t.Fatalf("merged size = %d, want %d", got, wantSize)
	}
	// Both former neighbors must have been unlinked from their bins.
	for i := 0; i < h.numBins; i++ {
		for cur := h.bins[i]; cur != nil; cur = nodeAt(cur).next {
			if cur == p[0] || cur == p[2] {
				t.Fatalf("coalesced neighbor %p still present in bin %d", cur, i)
			}
		}
	}
}

func TestCoalesceIsolated(t *testing.T) {
	h := newTestHeap()
	_, p := layout(t, 32, 32, 32)
	markLive(p[0], sizeOf(p[0]))
	markLive(p[1], sizeOf(p[1]))
	markLive(p[2], sizeOf(p[2]))

	merged := h.coalesce(p[1])
	if merged != p[1] {
		t.Fatalf("isolated block should not rebase, got %p want %p", merged, p[1])
	}
	if got := sizeOf(merged); got != 32 {
		t.Fatalf("isolated block size changed to %d, want 32", got)
	}
}
