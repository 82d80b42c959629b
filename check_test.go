package segheap

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	"segheap/region"
)

func TestCheckOKAfterManyOperations(t *testing.T) {
	provider := region.NewSliceProvider(1 << 22)
	h, err := New(provider)
	require.NoError(t, err)

	var live []unsafe.Pointer
	for i := 0; i < 200; i++ {
		n := uint32(8 + i%500)
		p, err := h.Allocate(n)
		require.NoError(t, err)
		live = append(live, p)
		if i%3 == 0 && len(live) > 1 {
			h.Release(live[0])
			live = live[1:]
		}
	}
	for _, p := range live {
		h.Release(p)
	}

	report := h.Check()
	require.True(t, report.OK, "violations: %v", report.Violations)
}

func TestCheckReportsBinRangeViolation(t *testing.T) {
	provider := region.NewSliceProvider(1 << 16)
	h, err := New(provider)
	require.NoError(t, err)

	p, err := h.Allocate(64)
	require.NoError(t, err)
	h.Release(p)

	// Corrupt bookkeeping: move the free block into a bin that does not
	// match its size, simulating a miscomputed binIndex somewhere upstream.
	total := uint32(headerSize) + sizeOf(p)
	correct := h.binIndex(total)
	wrong := (correct + 1) % h.numBins
	if wrong == correct {
		t.Skip("not enough bins to construct a mismatch")
	}
	h.removeFree(p, total)
	h.bins[wrong] = nil
	node := nodeAt(p)
	node.prev, node.next = nil, nil
	h.bins[wrong] = p

	report := h.Check()
	require.False(t, report.OK)
}
