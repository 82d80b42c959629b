package segheap

import "testing"

func TestSplitProducesUsableRemainder(t *testing.T) {
	h := newTestHeap()
	_, p := layout(t, 256)
	markFree(p[0], sizeOf(p[0]))

	total := uint32(headerSize) + 256
	need := uint32(headerSize) + 32 // small request, large remainder

	h.split(p[0], total, need)

	if got := sizeOf(p[0]); got != 32 {
		t.Fatalf("split head payload = %d, want 32", got)
	}

	remainder := nextPayload(p[0])
	wantRemainderPayload := total - need - uint32(headerSize)
	if got := sizeOf(remainder); got != wantRemainderPayload {
		t.Fatalf("remainder payload = %d, want %d", got, wantRemainderPayload)
	}
	if !isFree(remainder) {
		t.Fatal("remainder should be marked free")
	}
	if !isPrevFree(remainder) {
		t.Fatal("split head block should still be marked free (caller stamps live)")
	}

	i := h.binIndex(total - need)
	found := false
	for cur := h.bins[i]; cur != nil; cur = nodeAt(cur).next {
		if cur == remainder {
			found = true
		}
	}
	if !found {
		t.Fatal("remainder was not inserted into its size-class bin")
	}
}
